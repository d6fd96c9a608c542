package research

import "context"

// Hit is one retrieved transcript passage. Hits coming back from the
// search backend are treated as immutable; the collector returns copies
// when it needs to normalize the filename or truncate content.
type Hit struct {
	Filename  string  `json:"filename"`
	Content   string  `json:"content"`
	Timestamp string  `json:"timestamp,omitempty"`
	Speaker   string  `json:"speaker,omitempty"`
	Score     float64 `json:"score,omitempty"`
}

// EvidenceSet is the deduplicated, order-preserving collection of hits
// gathered for one user turn. No two hits share the same
// (normalized filename, content prefix) signature.
type EvidenceSet struct {
	Hits  []Hit `json:"hits"`
	Total int   `json:"total"`
}

// Document is the full concatenated content of one transcript file,
// returned by the document-fetch backend.
type Document struct {
	Filename   string `json:"filename"`
	Content    string `json:"content"`
	Speaker    string `json:"speaker,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
	ChunkCount int    `json:"chunk_count"`
}

// Searcher is the search backend consumed by the pipeline. filenameFilter,
// when non-empty, restricts matches to one named document while still
// ranking by content relevance. FetchDocument returns ErrDocumentNotFound
// when no chunks exist for the filename.
type Searcher interface {
	Search(ctx context.Context, query string, size int, filenameFilter string) (*EvidenceSet, error)
	FetchDocument(ctx context.Context, filename string) (*Document, error)
}

// Message is one role-tagged message for the generation backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenOptions are per-call generation parameters. Zero values fall back to
// the provider's configured defaults.
type GenOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Generator is the generation backend consumed by the pipeline. The
// provider prepends its fixed system instruction ahead of messages.
type Generator interface {
	Complete(ctx context.Context, messages []Message, opts GenOptions) (string, error)
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
