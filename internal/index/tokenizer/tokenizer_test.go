package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "simple sentence",
			input: "Angels fear to tread.",
			want: []Token{
				{Term: "angels", Position: 0},
				{Term: "fear", Position: 1},
				{Term: "to", Position: 2},
				{Term: "tread", Position: 3},
			},
		},
		{
			name:  "punctuation and symbols are delimiters",
			input: "foo-bar, baz! (qux)",
			want: []Token{
				{Term: "foo", Position: 0},
				{Term: "bar", Position: 1},
				{Term: "baz", Position: 2},
				{Term: "qux", Position: 3},
			},
		},
		{
			name:  "digits kept inside tokens",
			input: "doc7 has 2 copies",
			want: []Token{
				{Term: "doc7", Position: 0},
				{Term: "has", Position: 1},
				{Term: "2", Position: 2},
				{Term: "copies", Position: 3},
			},
		},
		{
			name:  "case folding",
			input: "MiXeD CaSe",
			want: []Token{
				{Term: "mixed", Position: 0},
				{Term: "case", Position: 1},
			},
		},
		{
			name:  "non-ascii characters are delimiters",
			input: "café au lait",
			want: []Token{
				{Term: "caf", Position: 0},
				{Term: "au", Position: 1},
				{Term: "lait", Position: 2},
			},
		},
		{
			name:  "empty input",
			input: "",
			want:  []Token{},
		},
		{
			name:  "only delimiters",
			input: "!!! --- ...",
			want:  []Token{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTermsPreservesDuplicates(t *testing.T) {
	got := Terms("the cat and the hat")
	want := []string{"the", "cat", "and", "the", "hat"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
}
