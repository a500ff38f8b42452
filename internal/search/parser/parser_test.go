package parser

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantKind    Kind
		wantInclude []string
		wantExclude []string
	}{
		{
			name:        "free query",
			query:       "angels fear",
			wantKind:    Free,
			wantInclude: []string{"angels", "fear"},
		},
		{
			name:        "quoted phrase stays free",
			query:       `"angels fear to tread"`,
			wantKind:    Free,
			wantInclude: []string{"angels", "fear", "to", "tread"},
		},
		{
			name:        "conjunctive",
			query:       "fools AND fear",
			wantKind:    Conjunctive,
			wantInclude: []string{"fools", "fear"},
		},
		{
			name:        "conjunctive generalizes beyond two operands",
			query:       "fools AND fear AND tread",
			wantKind:    Conjunctive,
			wantInclude: []string{"fools", "fear", "tread"},
		},
		{
			name:        "conjunctive negated",
			query:       "angels AND NOT fear",
			wantKind:    ConjunctiveNegated,
			wantInclude: []string{"angels"},
			wantExclude: []string{"fear"},
		},
		{
			name:        "and not wins over and",
			query:       "angels AND fear AND NOT fools",
			wantKind:    ConjunctiveNegated,
			wantInclude: []string{"angels", "and", "fear"},
			wantExclude: []string{"fools"},
		},
		{
			name:        "lowercase and is a plain term",
			query:       "salt and pepper",
			wantKind:    Free,
			wantInclude: []string{"salt", "and", "pepper"},
		},
		{
			name:        "empty query",
			query:       "",
			wantKind:    Free,
			wantInclude: []string{},
		},
		{
			name:        "operators only",
			query:       " AND NOT ",
			wantKind:    ConjunctiveNegated,
			wantInclude: []string{},
			wantExclude: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Parse(tt.query)
			if q.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", q.Kind, tt.wantKind)
			}
			if !reflect.DeepEqual(q.Include, tt.wantInclude) {
				t.Errorf("Include = %v, want %v", q.Include, tt.wantInclude)
			}
			if tt.wantExclude == nil {
				if len(q.Exclude) != 0 {
					t.Errorf("Exclude = %v, want empty", q.Exclude)
				}
			} else if !reflect.DeepEqual(q.Exclude, tt.wantExclude) {
				t.Errorf("Exclude = %v, want %v", q.Exclude, tt.wantExclude)
			}
			if q.Raw != tt.query {
				t.Errorf("Raw = %q, want %q", q.Raw, tt.query)
			}
		})
	}
}

func TestParseKeepsDuplicateTerms(t *testing.T) {
	q := Parse("angels angels fear")
	want := []string{"angels", "angels", "fear"}
	if !reflect.DeepEqual(q.Include, want) {
		t.Errorf("Include = %v, want %v", q.Include, want)
	}
}

func TestIsEmpty(t *testing.T) {
	if !Parse("").IsEmpty() {
		t.Error("empty string should parse to an empty query")
	}
	if Parse("angels").IsEmpty() {
		t.Error("non-empty query reported as empty")
	}
}
