package research

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
)

// ErrDocumentNotFound is returned by Searcher.FetchDocument when no
// chunks exist for the requested filename.
var ErrDocumentNotFound = errors.New("document not found")

// DefaultPageSize is the per-term search size. It is deliberately large:
// later stages subsample, the collector wants high recall per term.
const DefaultPageSize = 200

// DefaultDedupPrefix is how many leading content characters participate
// in the dedup signature. Tunable: two long passages sharing a common
// prefix of this length collapse into one.
const DefaultDedupPrefix = 200

var (
	filenameMarkerRe = regexp.MustCompile(`(?i)Filename:\s*([^\n]+)`)
	lineNumberRe     = regexp.MustCompile(`^\d+\s*$`)
	extensionRe      = regexp.MustCompile(`(?i)\.(txt|vtt|srt)$`)

	quotedFileRe   = regexp.MustCompile(`["']([^"']+\.(?:txt|vtt|srt))["']`)
	explicitFileRe = regexp.MustCompile(`(?i)\b(?:file|transcript|document)\s*:\s*["']?([^"'\n]+?)["']?\s*$`)
)

// CollectorOptions tune evidence collection.
type CollectorOptions struct {
	PageSize    int
	DedupPrefix int
}

// Collector runs an expanded term set against the search backend and
// accumulates a deduplicated EvidenceSet.
type Collector struct {
	searcher Searcher
	opts     CollectorOptions
	logger   *log.Logger
}

// NewCollector creates a collector over the given search backend.
func NewCollector(searcher Searcher, opts CollectorOptions, logger *log.Logger) *Collector {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.DedupPrefix <= 0 {
		opts.DedupPrefix = DefaultDedupPrefix
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[COLLECT] ", log.LstdFlags)
	}
	return &Collector{searcher: searcher, opts: opts, logger: logger}
}

// DetectFilenameRequest reports the document name when the query
// explicitly names a file (a quoted name with a transcript extension, or
// an explicit "file:"/"transcript:"/"document:" reference). Empty when
// the query is a normal research question.
func DetectFilenameRequest(query string) string {
	if m := quotedFileRe.FindStringSubmatch(query); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := explicitFileRe.FindStringSubmatch(query); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// CollectDocument fetches the full concatenated content of one named
// document, bypassing search, and wraps it as a single-hit EvidenceSet.
// When the name has no transcript extension a ".txt" variant is retried
// before giving up.
func (c *Collector) CollectDocument(ctx context.Context, filename string) (*EvidenceSet, error) {
	doc, err := c.searcher.FetchDocument(ctx, filename)
	if errors.Is(err, ErrDocumentNotFound) && !extensionRe.MatchString(filename) {
		doc, err = c.searcher.FetchDocument(ctx, filename+".txt")
	}
	if err != nil {
		return nil, err
	}
	name := doc.Filename
	if name == "" {
		name = filename
	}
	return &EvidenceSet{
		Hits: []Hit{{
			Filename:  name,
			Content:   doc.Content,
			Speaker:   doc.Speaker,
			Timestamp: doc.Timestamp,
		}},
		Total: 1,
	}, nil
}

// Collect runs every term against the search backend and merges the
// results. Hits are deduplicated across all terms by
// (normalized filename, content prefix) signature; a failed search for
// one term is logged and skipped. filenameFilter, when set, drops hits
// whose resolved filename does not overlap the requested name and is also
// forwarded to the backend so ranking stays content-driven.
func (c *Collector) Collect(ctx context.Context, terms []string, filenameFilter string) (*EvidenceSet, error) {
	set := &EvidenceSet{}
	seen := make(map[string]struct{})

	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return set, err
		}

		results, err := c.searcher.Search(ctx, term, c.opts.PageSize, filenameFilter)
		if err != nil {
			c.logger.Printf("search failed for %q: %v", term, err)
			continue
		}

		for _, hit := range results.Hits {
			resolved := resolveFilename(hit)
			if filenameFilter != "" && !filenamesOverlap(resolved, filenameFilter) {
				continue
			}

			sig := normalizeFilename(resolved) + ":" + contentPrefix(hit.Content, c.opts.DedupPrefix)
			if _, dup := seen[sig]; dup {
				continue
			}
			seen[sig] = struct{}{}

			hit.Filename = resolved
			set.Hits = append(set.Hits, hit)
			set.Total++
		}
	}

	return set, nil
}

// resolveFilename recovers a usable filename for a hit. The backend's
// value wins unless it is missing or the "unknown" sentinel; then a
// "Filename: X" marker in the content is tried, then the first non-empty
// content line, skipping lone line-number artifacts.
func resolveFilename(hit Hit) string {
	name := strings.TrimSpace(hit.Filename)
	if name != "" && !strings.EqualFold(name, "unknown") {
		return name
	}

	if m := filenameMarkerRe.FindStringSubmatch(hit.Content); m != nil {
		return strings.TrimSpace(m[1])
	}

	for _, line := range strings.Split(hit.Content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if lineNumberRe.MatchString(line) {
			break
		}
		return line
	}
	return "Unknown"
}

// filenamesOverlap reports whether two names refer to the same document:
// case-insensitive, extension-stripped, substring in either direction.
func filenamesOverlap(a, b string) bool {
	na, nb := normalizeFilename(a), normalizeFilename(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

func normalizeFilename(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return extensionRe.ReplaceAllString(name, "")
}

func contentPrefix(content string, n int) string {
	if len(content) > n {
		return content[:n]
	}
	return content
}
