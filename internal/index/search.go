package index

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/search/query"

	"github.com/furydoc/cybersyn/internal/research"
	"github.com/furydoc/cybersyn/internal/telemetry"
)

// contentBoost ranks content matches above filename or speaker matches.
const contentBoost = 3.0

// fetchPageSize bounds a full-document fetch. Transcripts run to a few
// thousand cues at most.
const fetchPageSize = 10000

// Search runs one term as a fuzzy disjunction over content, filename,
// and speaker. filenameFilter, when set, constrains hits to chunks of
// the named file.
func (ix *Index) Search(ctx context.Context, term string, size int, filenameFilter string) (*research.EvidenceSet, error) {
	start := time.Now()

	content := bleve.NewMatchQuery(term)
	content.SetField("content")
	content.SetBoost(contentBoost)
	content.SetFuzziness(1)

	filename := bleve.NewMatchQuery(term)
	filename.SetField("filename")

	speaker := bleve.NewMatchQuery(term)
	speaker.SetField("speaker")

	var q query.Query = bleve.NewDisjunctionQuery(content, filename, speaker)
	if filenameFilter != "" {
		q = bleve.NewConjunctionQuery(q, fileScopeQuery(filenameFilter))
	}

	req := bleve.NewSearchRequestOptions(q, size, 0, false)
	req.Fields = []string{"filename", "content", "speaker", "timestamp"}

	res, err := ix.idx.SearchInContext(ctx, req)
	telemetry.SearchesTotal.WithLabelValues(telemetry.Outcome(err)).Inc()
	telemetry.SearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", term, err)
	}

	set := &research.EvidenceSet{}
	for _, hit := range res.Hits {
		set.Hits = append(set.Hits, research.Hit{
			Filename:  fieldString(hit.Fields, "filename"),
			Content:   fieldString(hit.Fields, "content"),
			Speaker:   fieldString(hit.Fields, "speaker"),
			Timestamp: fieldString(hit.Fields, "timestamp"),
			Score:     hit.Score,
		})
		set.Total++
	}
	return set, nil
}

// fileScopeQuery matches chunks belonging to the named file: an exact
// term on the keyword file_id field, or a match on the analyzed filename
// for partial names.
func fileScopeQuery(filename string) query.Query {
	exact := bleve.NewTermQuery(normalizeFileID(filename))
	exact.SetField("file_id")

	partial := bleve.NewMatchQuery(filename)
	partial.SetField("filename")

	return bleve.NewDisjunctionQuery(exact, partial)
}

// FetchDocument returns the full reconstructed content of one file,
// chunks concatenated in cue order.
func (ix *Index) FetchDocument(ctx context.Context, filename string) (*research.Document, error) {
	exact := bleve.NewTermQuery(normalizeFileID(filename))
	exact.SetField("file_id")

	req := bleve.NewSearchRequestOptions(exact, fetchPageSize, 0, false)
	req.Fields = []string{"filename", "content", "speaker", "timestamp", "seq"}
	req.SortBy([]string{"seq"})

	res, err := ix.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetching %q: %w", filename, err)
	}
	if len(res.Hits) == 0 {
		return nil, research.ErrDocumentNotFound
	}

	doc := &research.Document{
		Filename:   fieldString(res.Hits[0].Fields, "filename"),
		Speaker:    fieldString(res.Hits[0].Fields, "speaker"),
		ChunkCount: len(res.Hits),
	}

	parts := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if ts := fieldString(hit.Fields, "timestamp"); ts != "" {
			parts = append(parts, "["+ts+"]\n"+fieldString(hit.Fields, "content"))
		} else {
			parts = append(parts, fieldString(hit.Fields, "content"))
		}
	}
	doc.Content = strings.Join(parts, "\n\n")
	doc.Timestamp = spanTimestamp(
		fieldString(res.Hits[0].Fields, "timestamp"),
		fieldString(res.Hits[len(res.Hits)-1].Fields, "timestamp"),
	)
	return doc, nil
}

// spanTimestamp merges the first and last cue ranges into one covering
// range. Cue ranges look like "00:00:00.001 – 00:00:01.760".
func spanTimestamp(first, last string) string {
	if first == "" || last == "" {
		return first
	}
	fs := strings.Split(first, timestampSeparator)
	ls := strings.Split(last, timestampSeparator)
	if len(fs) != 2 || len(ls) != 2 {
		return first
	}
	return strings.TrimSpace(fs[0]) + timestampSeparator + strings.TrimSpace(ls[1])
}

func fieldString(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

func normalizeFileID(filename string) string {
	return strings.ToLower(strings.TrimSpace(filename))
}
