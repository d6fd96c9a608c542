package research

import "strings"

// truncationMarker is appended to any single hit cut down to the per-hit
// token cap during batching.
const truncationMarker = "\n\n[... Content truncated due to length ...]"

// perHitShare is the fraction of a batch budget any single hit may occupy.
const perHitShare = 0.2

// packingShare is the fraction of a batch budget usable for evidence; the
// remaining 20% covers prompt-instruction overhead.
const packingShare = 0.8

// ChunkContent splits raw text into windows of at most maxTokensPerChunk
// tokens, overlapping by roughly overlapTokens so context survives a
// split. Windows break at the nearest paragraph break, then newline, then
// space before the boundary; a break point is accepted only if it keeps
// at least 80% of the target window, otherwise the cut is hard.
func ChunkContent(content string, maxTokensPerChunk, overlapTokens int) []string {
	maxChars := maxTokensPerChunk * charsPerToken
	overlapChars := overlapTokens * charsPerToken

	if len(content) <= maxChars {
		return []string{content}
	}

	var chunks []string
	start := 0
	for start < len(content) {
		end := start + maxChars
		if end >= len(content) {
			chunks = append(chunks, content[start:])
			break
		}

		breakPoint := lastIndexBefore(content, "\n\n", end)
		if breakPoint <= start || breakPoint-start < maxChars*4/5 {
			breakPoint = lastIndexBefore(content, "\n", end)
		}
		if breakPoint <= start || breakPoint-start < maxChars*4/5 {
			breakPoint = lastIndexBefore(content, " ", end)
		}
		if breakPoint <= start {
			breakPoint = end
		}

		chunks = append(chunks, content[start:breakPoint])

		start = breakPoint - overlapChars
		if start < 0 {
			start = 0
		}
	}

	return chunks
}

// lastIndexBefore returns the last index of sep starting at or before
// limit, or -1 when there is none.
func lastIndexBefore(s, sep string, limit int) int {
	end := limit + len(sep)
	if end > len(s) {
		end = len(s)
	}
	return strings.LastIndex(s[:end], sep)
}

// ChunkHits packs an EvidenceSet into batches whose estimated evidence
// token cost stays within 80% of maxTokensPerChunk. Any single hit above
// 20% of the budget is truncated with a marker first. An empty set yields
// one (empty) batch so downstream code always has a prompt to send.
func ChunkHits(set *EvidenceSet, maxTokensPerChunk int) []*EvidenceSet {
	if set == nil || len(set.Hits) == 0 {
		if set == nil {
			set = &EvidenceSet{}
		}
		return []*EvidenceSet{set}
	}

	maxTokensPerHit := int(float64(maxTokensPerChunk) * perHitShare)
	maxCharsPerHit := maxTokensPerHit * charsPerToken
	effectiveLimit := int(float64(maxTokensPerChunk) * packingShare)

	var batches []*EvidenceSet
	current := &EvidenceSet{}
	currentTokens := 0

	for _, hit := range set.Hits {
		if EstimateTokens(hit.Content) > maxTokensPerHit {
			hit.Content = hit.Content[:maxCharsPerHit] + truncationMarker
		}
		hitTokens := EstimateTokens(hit.Content)

		if currentTokens+hitTokens > effectiveLimit && len(current.Hits) > 0 {
			batches = append(batches, current)
			current = &EvidenceSet{}
			currentTokens = 0
		}

		current.Hits = append(current.Hits, hit)
		current.Total++
		currentTokens += hitTokens
	}

	if len(current.Hits) > 0 {
		batches = append(batches, current)
	}

	return batches
}
