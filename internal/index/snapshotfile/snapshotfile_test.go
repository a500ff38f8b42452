package snapshotfile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ahmeedHassan1/ir-iss-project/internal/index"
)

func buildTable(t *testing.T) *index.Table {
	t.Helper()
	table := index.NewTable()
	doc1 := index.BuildDocument("doc1", "angels fear to tread where angels fly")
	doc2 := index.BuildDocument("doc2", "fools rush in")
	for _, doc := range []index.DocumentIndex{doc1, doc2} {
		table.Add(doc)
	}
	return table
}

func TestWriteLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	table := buildTable(t)

	name, err := Write(dir, table)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	loaded, err := Load(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got, want := loaded.TermCount(), table.TermCount(); got != want {
		t.Errorf("TermCount = %d, want %d", got, want)
	}
	if got, want := loaded.DocCount(), table.DocCount(); got != want {
		t.Errorf("DocCount = %d, want %d", got, want)
	}
	if got, want := loaded.Positions("angels", "doc1"), []int{0, 5}; !reflect.DeepEqual(got, want) {
		t.Errorf("Positions(angels, doc1) = %v, want %v", got, want)
	}
	if got, want := loaded.WordCount("doc1"), 7; got != want {
		t.Errorf("WordCount(doc1) = %d, want %d", got, want)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	table := buildTable(t)

	name, err := Write(dir, table)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	path := filepath.Join(dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	// Flip a byte in the postings block.
	data[headerSize+3] ^= 0xff
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected checksum error for corrupted file")
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad"+FileSuffix)
	if err := os.WriteFile(path, make([]byte, headerSize+footerSize), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected bad magic error")
	}
}

func TestLatestAndPrune(t *testing.T) {
	dir := t.TempDir()
	table := buildTable(t)

	var last string
	for i := 0; i < 3; i++ {
		name, err := Write(dir, table)
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		last = name
	}

	latest, err := Latest(dir)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest != filepath.Join(dir, last) {
		t.Errorf("Latest = %s, want %s", latest, filepath.Join(dir, last))
	}

	if err := Prune(dir, 1); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("after prune: %d files, want 1", len(entries))
	}
	if entries[0].Name() != last {
		t.Errorf("surviving snapshot = %s, want %s", entries[0].Name(), last)
	}
}

func TestLatestEmptyDir(t *testing.T) {
	latest, err := Latest(t.TempDir())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest != "" {
		t.Errorf("Latest on empty dir = %q, want empty", latest)
	}
}
