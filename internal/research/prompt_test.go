package research

import (
	"strings"
	"testing"
)

func TestBuildThematicPrompt(t *testing.T) {
	b := NewBuilder(nil, 0)
	evidence := &EvidenceSet{
		Hits: []Hit{
			{
				Filename:  "Shivam Interview A Roll",
				Content:   "I have about one million debt when I was 19",
				Timestamp: "00:00:00.001 – 00:00:01.760",
			},
			{
				Filename: "Weather Report",
				Content:  "Sunny skies expected through the weekend",
			},
		},
		Total: 2,
	}

	prompt := b.Build("career sacrifices", evidence)

	for _, want := range []string{
		`QUERY: "career sacrifices"`,
		"ANTI-HALLUCINATION RULES",
		"GOOD QUOTES SHOW",
		"ALWAYS EXCLUDE",
		`FILE: "Shivam Interview A Roll"`,
		"[00:00:00.001 – 00:00:01.760]",
		"one million debt when I was 19",
		`FILE: "Weather Report"`,
		"---END OF FILE---",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// Hits without a timestamp render no empty bracket line.
	if strings.Contains(prompt, "[]") {
		t.Error("prompt contains an empty timestamp bracket")
	}
	// Files render in first-seen order.
	if strings.Index(prompt, "Shivam Interview A Roll") > strings.Index(prompt, "Weather Report") {
		t.Error("files out of first-seen order")
	}
}

func TestBuildSubjectVerification(t *testing.T) {
	b := NewBuilder(nil, 0)
	prompt := b.Build("what do people say about Pumi", &EvidenceSet{
		Hits:  []Hit{{Filename: "a.txt", Content: "Pumi really understands wrestling"}},
		Total: 1,
	})

	for _, want := range []string{
		`SUBJECT VERIFICATION FOR "Pumi"`,
		`EXPLICITLY MENTIONS "Pumi" BY NAME`,
		"EXCLUDE any quotes from Pumi themselves",
		`Quotes that do NOT mention "Pumi" by name`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildSpeakerFilter(t *testing.T) {
	b := NewBuilder(nil, 0)
	prompt := b.Build("quotes from Jake", &EvidenceSet{
		Hits:  []Hit{{Filename: "a.txt", Content: "content"}},
		Total: 1,
	})

	if !strings.Contains(prompt, `SPEAKER FILTER FOR "Jake"`) {
		t.Error("prompt missing speaker filter block")
	}
	if !strings.Contains(prompt, `ONLY include quotes where "Jake" is the SPEAKER`) {
		t.Error("prompt missing speaker-only rule")
	}
	if strings.Contains(prompt, "SUBJECT VERIFICATION") {
		t.Error("speaker query must not render the subject block")
	}
}

func TestBuildIntroductionPrompt(t *testing.T) {
	b := NewBuilder(nil, 0)
	prompt := b.Build("give me a bio of everyone", &EvidenceSet{
		Hits:  []Hit{{Filename: "a.txt", Content: "content"}},
		Total: 1,
	})

	if !strings.Contains(prompt, "INTRODUCTION/BACKGROUND REQUESTED") {
		t.Error("prompt missing introduction block")
	}
	if strings.Contains(prompt, "ALWAYS EXCLUDE") {
		t.Error("introduction prompt must not carry the thematic exclusions")
	}
}

func TestBuildEmptyEvidence(t *testing.T) {
	b := NewBuilder(nil, 0)
	prompt := b.Build("anything", &EvidenceSet{})
	if !strings.Contains(prompt, "No search results found.") {
		t.Errorf("prompt missing empty-evidence notice:\n%s", prompt)
	}
	if strings.Contains(prompt, "TRANSCRIPT CONTENT") {
		t.Error("empty evidence must not render a transcript header")
	}
}

func TestBuildPortionNote(t *testing.T) {
	b := NewBuilder(nil, 0)
	prompt := b.Build("the ending of the interview", &EvidenceSet{
		Hits:  []Hit{{Filename: "a.txt", Content: "content"}},
		Total: 1,
	})
	if !strings.Contains(prompt, "Showing END portion of transcript") {
		t.Error("prompt missing portion note")
	}
}

func TestExtractContentPortion(t *testing.T) {
	content := strings.Repeat("a", 100) + strings.Repeat("b", 100) + strings.Repeat("c", 100)

	head := extractContentPortion(content, PortionAll, 50)
	if head != strings.Repeat("a", 50) {
		t.Errorf("all: got %q", head)
	}

	tail := extractContentPortion(content, PortionEnd, 50)
	if !strings.HasPrefix(tail, "... [Content skipped from middle] ...") || !strings.HasSuffix(tail, strings.Repeat("c", 50)) {
		t.Errorf("end: got %q", tail)
	}

	mid := extractContentPortion(content, PortionMiddle, 100)
	if !strings.Contains(mid, strings.Repeat("b", 100)) {
		t.Errorf("middle: got %q", mid)
	}
	if !strings.HasPrefix(mid, "... [Beginning skipped] ...") || !strings.HasSuffix(mid, "... [End skipped] ...") {
		t.Errorf("middle markers missing: %q", mid)
	}

	whole := extractContentPortion("short", PortionMiddle, 50)
	if whole != "short" {
		t.Errorf("undersized content must pass through, got %q", whole)
	}
}

func TestBuildCombination(t *testing.T) {
	b := NewBuilder(nil, 0)
	parts := []string{"part one quotes", "part two quotes", "part three quotes"}

	prompt := b.BuildCombination("career sacrifices", parts)

	for _, want := range []string{
		"split into 3 parts",
		"=== PART 1 RESULTS ===\npart one quotes",
		"=== PART 2 RESULTS ===\npart two quotes",
		"=== PART 3 RESULTS ===\npart three quotes",
		"Combine and deduplicate similar quotes",
		"=== FINAL OUTPUT ===",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("combination prompt missing %q", want)
		}
	}

	if strings.Index(prompt, "PART 1") > strings.Index(prompt, "PART 2") {
		t.Error("parts out of order")
	}
}

func TestBuildCombinationSubjectRules(t *testing.T) {
	b := NewBuilder(nil, 0)
	prompt := b.BuildCombination("what people say about Pumi", []string{"p1", "p2"})

	if !strings.Contains(prompt, `SUBJECT VERIFICATION FOR "Pumi"`) {
		t.Error("combination prompt missing subject verification")
	}
	if !strings.Contains(prompt, `FILTER OUT any quotes that don't mention "Pumi" by name`) {
		t.Error("combination prompt missing subject filter step")
	}
}
