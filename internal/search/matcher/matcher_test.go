package matcher

import (
	"reflect"
	"testing"

	"github.com/ahmeedHassan1/ir-iss-project/internal/index"
	"github.com/ahmeedHassan1/ir-iss-project/internal/search/parser"
)

func buildTable(docs map[string]string) *index.Table {
	table := index.NewTable()
	for id, text := range docs {
		table.Add(index.BuildDocument(id, text))
	}
	return table
}

func docIDs(candidates []Candidate) []string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.DocID
	}
	return ids
}

func TestMatchConjunctiveNegated(t *testing.T) {
	table := buildTable(map[string]string{
		"doc1": "angels tread softly",
		"doc2": "angels fear nothing",
		"doc3": "unrelated words",
	})

	got := Match(table, parser.Parse("angels AND NOT fear"))
	if !reflect.DeepEqual(docIDs(got), []string{"doc1"}) {
		t.Errorf("candidates = %v, want [doc1]", docIDs(got))
	}
}

func TestMatchConjunctiveRequiresAllTerms(t *testing.T) {
	table := buildTable(map[string]string{
		"doc1": "fools rush in",
		"doc2": "fools fear tread",
		"doc3": "fear alone",
	})

	got := Match(table, parser.Parse("fools AND fear"))
	if !reflect.DeepEqual(docIDs(got), []string{"doc2"}) {
		t.Errorf("candidates = %v, want [doc2]", docIDs(got))
	}
}

func TestMatchConjunctiveDuplicateTermsCountOnce(t *testing.T) {
	table := buildTable(map[string]string{
		"doc1": "fear fear fear",
	})
	// Duplicates in the include list must not inflate the required count.
	got := Match(table, parser.Parse("fear AND fear"))
	if !reflect.DeepEqual(docIDs(got), []string{"doc1"}) {
		t.Errorf("candidates = %v, want [doc1]", docIDs(got))
	}
}

func TestMatchFreeIsUnion(t *testing.T) {
	table := buildTable(map[string]string{
		"doc1": "angels",
		"doc2": "fear",
		"doc3": "neither word",
	})

	got := Match(table, parser.Parse("angels fear"))
	if !reflect.DeepEqual(docIDs(got), []string{"doc1", "doc2"}) {
		t.Errorf("candidates = %v, want [doc1 doc2]", docIDs(got))
	}
}

func TestMatchedTerms(t *testing.T) {
	table := buildTable(map[string]string{
		"doc1": "angels fear",
		"doc2": "angels",
	})

	got := Match(table, parser.Parse("angels fear"))
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if !reflect.DeepEqual(got[0].MatchedTerms, []string{"angels", "fear"}) {
		t.Errorf("doc1 matched = %v, want [angels fear]", got[0].MatchedTerms)
	}
	if !reflect.DeepEqual(got[1].MatchedTerms, []string{"angels"}) {
		t.Errorf("doc2 matched = %v, want [angels]", got[1].MatchedTerms)
	}
}

func TestMatchEmptyQuery(t *testing.T) {
	table := buildTable(map[string]string{"doc1": "something"})
	if got := Match(table, parser.Parse("")); len(got) != 0 {
		t.Errorf("empty query should match nothing, got %v", got)
	}
}

func TestMatchUnknownTerms(t *testing.T) {
	table := buildTable(map[string]string{"doc1": "something"})
	if got := Match(table, parser.Parse("missing AND absent")); len(got) != 0 {
		t.Errorf("unknown terms should match nothing, got %v", got)
	}
}
