package index

import (
	"strings"
	"testing"
)

const sampleVTT = `WEBVTT

00:00:00.001 --> 00:00:01.760
<v Shivam>I have about one million debt when I was 19.</v>

00:00:02.000 --> 00:00:05.500
<v Shivam>I spend from that time until now
to prove myself to my parents.</v>

00:00:06.000 --> 00:00:08.000
Jake: Wrestling means everything to me.
`

const sampleSRT = `1
00:00:00,001 --> 00:00:01,760
I have about one million debt.

2
00:00:02,000 --> 00:00:05,500
I spend from that time until now.
`

func TestParseCuesVTT(t *testing.T) {
	cues := parseCues(sampleVTT)
	if len(cues) != 3 {
		t.Fatalf("got %d cues, want 3", len(cues))
	}

	first := cues[0]
	if first.start != "00:00:00.001" || first.end != "00:00:01.760" {
		t.Errorf("first cue times = %q / %q", first.start, first.end)
	}
	if first.speaker != "Shivam" {
		t.Errorf("first cue speaker = %q, want Shivam", first.speaker)
	}
	if first.text != "I have about one million debt when I was 19." {
		t.Errorf("first cue text = %q", first.text)
	}
	if first.timestamp() != "00:00:00.001 – 00:00:01.760" {
		t.Errorf("first cue timestamp = %q", first.timestamp())
	}

	// Multi-line cue text joins with a space.
	if !strings.Contains(cues[1].text, "until now to prove myself") {
		t.Errorf("second cue text = %q", cues[1].text)
	}

	// Speaker prefix form.
	if cues[2].speaker != "Jake" {
		t.Errorf("third cue speaker = %q, want Jake", cues[2].speaker)
	}
	if cues[2].text != "Wrestling means everything to me." {
		t.Errorf("third cue text = %q", cues[2].text)
	}
}

func TestParseCuesSRT(t *testing.T) {
	cues := parseCues(sampleSRT)
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(cues))
	}
	// Comma millisecond separators normalize to dots.
	if cues[0].timestamp() != "00:00:00.001 – 00:00:01.760" {
		t.Errorf("timestamp = %q", cues[0].timestamp())
	}
	if cues[0].text != "I have about one million debt." {
		t.Errorf("text = %q", cues[0].text)
	}
}

func TestFileChunksVTT(t *testing.T) {
	chunks := fileChunks("Shivam Interview A Roll.vtt", sampleVTT)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.FileID != "shivam interview a roll.vtt" {
			t.Errorf("chunk %d file_id = %q", i, chunk.FileID)
		}
		if chunk.Filename != "Shivam Interview A Roll.vtt" {
			t.Errorf("chunk %d filename = %q", i, chunk.Filename)
		}
		if chunk.Seq != float64(i) {
			t.Errorf("chunk %d seq = %v", i, chunk.Seq)
		}
	}
}

func TestFileChunksTXTWindows(t *testing.T) {
	content := strings.Repeat("the quick brown fox jumps over the lazy dog\n", 200)
	chunks := fileChunks("notes.txt", content)
	if len(chunks) < 2 {
		t.Fatalf("expected a long txt file to window, got %d chunks", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Timestamp != "" {
			t.Errorf("chunk %d has timestamp %q, want none for txt", i, chunk.Timestamp)
		}
		if len(chunk.Content) > txtWindowTokens*4 {
			t.Errorf("chunk %d is %d chars, over the window cap", i, len(chunk.Content))
		}
	}
}

func TestDefaultSpeaker(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"Shivam Interview A Roll.vtt", "Shivam"},
		{"Jake B Roll.srt", "Jake"},
		{"notes.txt", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := defaultSpeaker(tc.filename); got != tc.want {
			t.Errorf("defaultSpeaker(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func TestFileChunksEmpty(t *testing.T) {
	if chunks := fileChunks("empty.txt", "   \n  "); len(chunks) != 0 {
		t.Fatalf("got %d chunks from blank content, want 0", len(chunks))
	}
}
