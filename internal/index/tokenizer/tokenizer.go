// Package tokenizer turns raw text into the ordered term stream the index
// is built from. It lower-cases input and emits maximal runs of ASCII
// letters and digits; every other character is a delimiter. There is no
// stemming and no stop-word removal, so token positions line up exactly
// with the term stream stored in the positional index.
package tokenizer

import "strings"

// Token is a single normalised term and its zero-based position in the
// tokenized stream.
type Token struct {
	Term     string
	Position int
}

// Tokenize breaks text into lowercase alphanumeric tokens. Position is the
// index of the token in the output sequence, starting at 0. Empty input
// yields an empty slice, never an error.
func Tokenize(text string) []Token {
	words := Terms(text)
	tokens := make([]Token, len(words))
	for i, word := range words {
		tokens[i] = Token{Term: word, Position: i}
	}
	return tokens
}

// Terms is Tokenize without the position bookkeeping: the ordered sequence
// of normalised terms extracted from text.
func Terms(text string) []string {
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !isAlphanumeric(r)
	})
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
