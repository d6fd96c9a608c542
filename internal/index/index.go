// Package index is the transcript search backend. Transcripts are
// ingested as per-cue chunks into a bleve index; searches run boosted
// fuzzy matches over content, filename, and speaker.
package index

import (
	"fmt"
	"log"
	"os"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/mapping"
)

// chunkDoc is the indexed unit: one transcript cue (or one window of a
// plain-text file). Timestamp is stored for display, never searched.
type chunkDoc struct {
	FileID    string  `json:"file_id"`
	Filename  string  `json:"filename"`
	Content   string  `json:"content"`
	Speaker   string  `json:"speaker"`
	Timestamp string  `json:"timestamp"`
	Seq       float64 `json:"seq"`
}

// Index wraps a bleve index of transcript chunks.
type Index struct {
	idx    bleve.Index
	logger *log.Logger
}

func buildMapping() mapping.IndexMapping {
	chunk := bleve.NewDocumentMapping()

	// file_id carries the normalized filename verbatim so document
	// fetches can filter with an exact term match.
	fileID := bleve.NewTextFieldMapping()
	fileID.Analyzer = keyword.Name
	chunk.AddFieldMappingsAt("file_id", fileID)

	chunk.AddFieldMappingsAt("filename", bleve.NewTextFieldMapping())
	chunk.AddFieldMappingsAt("content", bleve.NewTextFieldMapping())
	chunk.AddFieldMappingsAt("speaker", bleve.NewTextFieldMapping())

	timestamp := bleve.NewTextFieldMapping()
	timestamp.Index = false
	chunk.AddFieldMappingsAt("timestamp", timestamp)

	chunk.AddFieldMappingsAt("seq", bleve.NewNumericFieldMapping())

	m := bleve.NewIndexMapping()
	m.DefaultMapping = chunk
	return m
}

// Open opens the index at path, creating it when absent. An empty path
// yields a memory-only index (used by tests and one-shot CLI runs).
func Open(path string, logger *log.Logger) (*Index, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[INDEX] ", log.LstdFlags)
	}

	if path == "" {
		idx, err := bleve.NewMemOnly(buildMapping())
		if err != nil {
			return nil, fmt.Errorf("creating in-memory index: %w", err)
		}
		return &Index{idx: idx, logger: logger}, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		idx, err := bleve.New(path, buildMapping())
		if err != nil {
			return nil, fmt.Errorf("creating index at %s: %w", path, err)
		}
		logger.Printf("created new index at %s", path)
		return &Index{idx: idx, logger: logger}, nil
	}

	idx, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index at %s: %w", path, err)
	}
	return &Index{idx: idx, logger: logger}, nil
}

// DocCount reports the number of indexed chunks.
func (ix *Index) DocCount() (uint64, error) {
	return ix.idx.DocCount()
}

func (ix *Index) Close() error {
	return ix.idx.Close()
}
