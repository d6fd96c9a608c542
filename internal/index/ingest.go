package index

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/furydoc/cybersyn/internal/research"
	"github.com/furydoc/cybersyn/internal/telemetry"
)

// timestampSeparator joins a cue's start and end times in the stored
// range, e.g. "00:00:00.001 – 00:00:01.760".
const timestampSeparator = " – "

// Plain-text files carry no cue boundaries; they are windowed so a
// single long file does not become one giant chunk.
const (
	txtWindowTokens  = 500
	txtOverlapTokens = 50
)

var (
	cueTimeRe = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2}[.,]\d{3})\s+-->\s+(\d{2}:\d{2}:\d{2}[.,]\d{3})`)
	voiceRe   = regexp.MustCompile(`<v\s+([^>]+)>`)
	vttTagRe  = regexp.MustCompile(`<[^>]+>`)
	// A cue line like "Shivam: I have about one million debt".
	speakerPrefixRe = regexp.MustCompile(`^([A-Z][\w .'-]{0,40}):\s+`)
	srtIndexRe      = regexp.MustCompile(`^\d+$`)
)

type cue struct {
	start   string
	end     string
	speaker string
	text    string
}

func (c cue) timestamp() string {
	if c.start == "" {
		return ""
	}
	return c.start + timestampSeparator + c.end
}

// parseCues reads WebVTT or SRT content into cues. The two formats share
// the time-line shape; SRT's comma millisecond separators are normalized
// to dots and its numeric cue indices are skipped.
func parseCues(content string) []cue {
	var cues []cue
	var current *cue

	flush := func() {
		if current != nil && strings.TrimSpace(current.text) != "" {
			current.text = strings.TrimSpace(current.text)
			cues = append(cues, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if m := cueTimeRe.FindStringSubmatch(line); m != nil {
			flush()
			current = &cue{
				start: strings.ReplaceAll(m[1], ",", "."),
				end:   strings.ReplaceAll(m[2], ",", "."),
			}
			continue
		}
		if current == nil {
			// Header lines, SRT indices, blank separators before the
			// first cue.
			continue
		}
		if line == "" || srtIndexRe.MatchString(line) {
			if line == "" {
				flush()
			}
			continue
		}

		line = extractSpeaker(line, current)
		if current.text != "" {
			current.text += " "
		}
		current.text += line
	}
	flush()

	return cues
}

// extractSpeaker pulls a speaker name out of a cue line, from a WebVTT
// voice tag or a leading "Name:" prefix, and returns the line with
// markup stripped.
func extractSpeaker(line string, c *cue) string {
	if m := voiceRe.FindStringSubmatch(line); m != nil && c.speaker == "" {
		c.speaker = strings.TrimSpace(m[1])
	}
	line = vttTagRe.ReplaceAllString(line, "")
	if m := speakerPrefixRe.FindStringSubmatch(line); m != nil {
		if c.speaker == "" {
			c.speaker = strings.TrimSpace(m[1])
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, m[0]))
	}
	return strings.TrimSpace(line)
}

// defaultSpeaker guesses the interview subject from the filename, e.g.
// "Shivam Interview A Roll.vtt" names Shivam. Used only when the cue
// itself carries no speaker.
func defaultSpeaker(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	fields := strings.Fields(stem)
	if len(fields) == 0 {
		return ""
	}
	first := fields[0]
	if first[0] >= 'A' && first[0] <= 'Z' {
		return first
	}
	return ""
}

// fileChunks turns one transcript file into indexable chunks. VTT and
// SRT files chunk per cue; anything else is windowed plain text.
func fileChunks(filename, content string) []chunkDoc {
	fileID := normalizeFileID(filename)
	ext := strings.ToLower(filepath.Ext(filename))
	fallback := defaultSpeaker(filename)

	var chunks []chunkDoc
	switch ext {
	case ".vtt", ".srt":
		for i, c := range parseCues(content) {
			speaker := c.speaker
			if speaker == "" {
				speaker = fallback
			}
			chunks = append(chunks, chunkDoc{
				FileID:    fileID,
				Filename:  filename,
				Content:   c.text,
				Speaker:   speaker,
				Timestamp: c.timestamp(),
				Seq:       float64(i),
			})
		}
	default:
		for i, window := range research.ChunkContent(content, txtWindowTokens, txtOverlapTokens) {
			window = strings.TrimSpace(window)
			if window == "" {
				continue
			}
			chunks = append(chunks, chunkDoc{
				FileID:   fileID,
				Filename: filename,
				Content:  window,
				Speaker:  fallback,
				Seq:      float64(i),
			})
		}
	}
	return chunks
}

// IngestContent indexes one file's content under the given filename,
// replacing nothing; re-ingesting a file overwrites its chunks by ID.
func (ix *Index) IngestContent(filename, content string) (int, error) {
	chunks := fileChunks(filename, content)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no indexable content in %s", filename)
	}

	batch := ix.idx.NewBatch()
	for _, chunk := range chunks {
		id := fmt.Sprintf("%s#%d", chunk.FileID, int(chunk.Seq))
		if err := batch.Index(id, chunk); err != nil {
			return 0, fmt.Errorf("batching chunk %s: %w", id, err)
		}
	}
	if err := ix.idx.Batch(batch); err != nil {
		return 0, fmt.Errorf("indexing %s: %w", filename, err)
	}

	telemetry.ChunksIndexed.Add(float64(len(chunks)))
	ix.logger.Printf("indexed %s (%d chunks)", filename, len(chunks))
	return len(chunks), nil
}

// IngestFile reads and indexes one transcript file.
func (ix *Index) IngestFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return ix.IngestContent(filepath.Base(path), string(data))
}

// IngestDir indexes every .txt, .vtt, and .srt file directly under dir.
func (ix *Index) IngestDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", dir, err)
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt", ".vtt", ".srt":
		default:
			continue
		}
		n, err := ix.IngestFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
