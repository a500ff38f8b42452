// Package snapshotfile persists a complete postings table as a single
// binary snapshot file, so the searcher can load the index the indexer
// built without recomputing it. A file holds a fixed header, a JSON
// postings block, a JSON document block (word counts), and a CRC footer.
// Files are written to a temp path and renamed, so a reader never sees a
// partial snapshot. Weight matrices are derived data and are recomputed
// on load.
package snapshotfile

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ahmeedHassan1/ir-iss-project/internal/index"
)

const (
	// Magic identifies a valid snapshot file ("IRSX").
	Magic         uint32 = 0x49525358
	FormatVersion uint32 = 1
	headerSize           = 48
	footerSize           = 8

	// FileSuffix is the extension of snapshot files.
	FileSuffix = ".iridx"
)

type header struct {
	Magic        uint32
	Version      uint32
	TermCount    uint32
	DocCount     uint32
	CreatedAt    int64
	PostingsSize int64
	DocsSize     int64
}

type docEntry struct {
	DocID     string `json:"doc_id"`
	WordCount int    `json:"word_count"`
}

// Write serialises the postings table into a new snapshot file in dataDir
// and returns the file name.
func Write(dataDir string, table *index.Table) (string, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("creating snapshot directory: %w", err)
	}
	name := fmt.Sprintf("snap_%d%s", time.Now().UnixNano(), FileSuffix)
	finalPath := filepath.Join(dataDir, name)
	tmpPath := finalPath + ".tmp"

	postings := make([]index.Posting, 0, table.PostingCount())
	for _, term := range table.Terms() {
		postings = append(postings, table.Postings(term)...)
	}
	postingsData, err := json.Marshal(postings)
	if err != nil {
		return "", fmt.Errorf("marshaling postings: %w", err)
	}

	docs := make([]docEntry, 0, table.DocCount())
	for _, docID := range table.Documents() {
		docs = append(docs, docEntry{DocID: docID, WordCount: table.WordCount(docID)})
	}
	docsData, err := json.Marshal(docs)
	if err != nil {
		return "", fmt.Errorf("marshaling documents: %w", err)
	}

	h := header{
		Magic:        Magic,
		Version:      FormatVersion,
		TermCount:    uint32(table.TermCount()),
		DocCount:     uint32(table.DocCount()),
		CreatedAt:    time.Now().Unix(),
		PostingsSize: int64(len(postingsData)),
		DocsSize:     int64(len(docsData)),
	}
	headerBytes := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(headerBytes[0:4], h.Magic)
	binary.LittleEndian.PutUint32(headerBytes[4:8], h.Version)
	binary.LittleEndian.PutUint32(headerBytes[8:12], h.TermCount)
	binary.LittleEndian.PutUint32(headerBytes[12:16], h.DocCount)
	binary.LittleEndian.PutUint64(headerBytes[16:24], uint64(h.CreatedAt))
	binary.LittleEndian.PutUint64(headerBytes[24:32], uint64(h.PostingsSize))
	binary.LittleEndian.PutUint64(headerBytes[32:40], uint64(h.DocsSize))

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating temp snapshot file: %w", err)
	}
	defer f.Close()

	checksum := crc32.ChecksumIEEE(postingsData)
	checksum = crc32.Update(checksum, crc32.IEEETable, docsData)
	footer := make([]byte, footerSize)
	binary.LittleEndian.PutUint32(footer[0:4], checksum)

	for _, chunk := range [][]byte{headerBytes, postingsData, docsData, footer} {
		if _, err := f.Write(chunk); err != nil {
			return "", fmt.Errorf("writing snapshot file: %w", err)
		}
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("syncing snapshot file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("renaming snapshot file: %w", err)
	}
	return name, nil
}

// Load reads one snapshot file back into a postings table, verifying the
// magic, version, and checksum.
func Load(path string) (*index.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}
	if len(data) < headerSize+footerSize {
		return nil, fmt.Errorf("snapshot file %s truncated (%d bytes)", path, len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != Magic {
		return nil, fmt.Errorf("snapshot file %s: bad magic %#x", path, magic)
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != FormatVersion {
		return nil, fmt.Errorf("snapshot file %s: unsupported version %d", path, version)
	}
	postingsSize := int64(binary.LittleEndian.Uint64(data[24:32]))
	docsSize := int64(binary.LittleEndian.Uint64(data[32:40]))
	if int64(len(data)) != int64(headerSize)+postingsSize+docsSize+int64(footerSize) {
		return nil, fmt.Errorf("snapshot file %s: size mismatch", path)
	}

	postingsData := data[headerSize : int64(headerSize)+postingsSize]
	docsData := data[int64(headerSize)+postingsSize : int64(len(data))-int64(footerSize)]

	checksum := crc32.ChecksumIEEE(postingsData)
	checksum = crc32.Update(checksum, crc32.IEEETable, docsData)
	if stored := binary.LittleEndian.Uint32(data[len(data)-footerSize:]); stored != checksum {
		return nil, fmt.Errorf("snapshot file %s: checksum mismatch", path)
	}

	var postings []index.Posting
	if err := json.Unmarshal(postingsData, &postings); err != nil {
		return nil, fmt.Errorf("decoding postings: %w", err)
	}
	var docs []docEntry
	if err := json.Unmarshal(docsData, &docs); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}

	table := index.NewTable()
	for _, p := range postings {
		table.Insert(p.Term, p.DocID, p.Positions)
	}
	for _, d := range docs {
		table.SetWordCount(d.DocID, d.WordCount)
	}
	return table, nil
}

// Latest returns the path of the newest snapshot file in dataDir, or ""
// when none exists.
func Latest(dataDir string) (string, error) {
	names, err := list(dataDir)
	if err != nil || len(names) == 0 {
		return "", err
	}
	return filepath.Join(dataDir, names[len(names)-1]), nil
}

// Prune deletes all but the newest keep snapshot files.
func Prune(dataDir string, keep int) error {
	if keep <= 0 {
		return nil
	}
	names, err := list(dataDir)
	if err != nil {
		return err
	}
	for len(names) > keep {
		if err := os.Remove(filepath.Join(dataDir, names[0])); err != nil {
			return fmt.Errorf("pruning snapshot %s: %w", names[0], err)
		}
		names = names[1:]
	}
	return nil
}

// list returns snapshot file names in dataDir, oldest first. Name order
// matches creation order because names embed a nanosecond timestamp of
// equal width.
func list(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), FileSuffix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
