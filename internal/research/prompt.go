package research

import (
	"fmt"
	"strings"
)

// DefaultPerHitRenderChars is the per-hit content ceiling when rendering
// evidence into a prompt (~10k tokens per passage).
const DefaultPerHitRenderChars = 40000

// Builder renders a batch of evidence plus task instructions into one
// prompt for the generation model. It has no side effects and keeps no
// per-turn state.
type Builder struct {
	classifier  IntentClassifier
	perHitChars int
}

// NewBuilder creates a prompt builder. classifier may be nil, in which
// case the default regex classifier is used; perHitChars <= 0 selects
// DefaultPerHitRenderChars.
func NewBuilder(classifier IntentClassifier, perHitChars int) *Builder {
	if classifier == nil {
		classifier = NewRegexClassifier()
	}
	if perHitChars <= 0 {
		perHitChars = DefaultPerHitRenderChars
	}
	return &Builder{classifier: classifier, perHitChars: perHitChars}
}

// Build renders the full analysis prompt for one query over one evidence
// batch: an intent-specific instruction block followed by the evidence
// grouped by file.
func (b *Builder) Build(query string, evidence *EvidenceSet) string {
	intent := b.classifier.Classify(query)

	var p strings.Builder
	fmt.Fprintf(&p, "QUERY: %q\n\n", query)

	switch intent.Kind {
	case IntentIntroduction:
		p.WriteString("=== QUERY TYPE: INTRODUCTION/BACKGROUND REQUESTED ===\n")
		p.WriteString("The user explicitly asked for introductions, biography, or background information.\n")
		p.WriteString("Include relevant introductory content, name mentions, role descriptions, and origin stories.\n\n")
		writeTimestampRules(&p)
	case IntentTechnical:
		p.WriteString("=== QUERY TYPE: TECHNICAL/SETUP REQUESTED ===\n")
		p.WriteString("The user explicitly asked for technical or setup content.\n")
		p.WriteString("Include behind-the-scenes moments, audio checks, preparation dialogue.\n\n")
		writeTimestampRules(&p)
	default:
		b.writeThematicBlock(&p, intent)
	}

	b.writeEvidence(&p, evidence, intent.Portion)

	return p.String()
}

func writeTimestampRules(p *strings.Builder) {
	p.WriteString("TIMESTAMP RULES:\n")
	p.WriteString("- Copy EXACT timestamps from [BRACKETS] below\n")
	p.WriteString("- Format: - **Filename** | `timestamp`: \"Quote\"\n\n")
}

func (b *Builder) writeThematicBlock(p *strings.Builder, intent Intent) {
	p.WriteString("=== QUOTE SELECTION CRITERIA ===\n\n")
	p.WriteString("CRITICAL - ANTI-HALLUCINATION RULES:\n")
	p.WriteString("- ONLY extract quotes that EXIST in the provided transcript content below\n")
	p.WriteString("- NEVER invent quotes, timestamps, or attribute quotes to people not in the transcript\n")
	p.WriteString("- If no relevant quotes exist, respond: \"No relevant quotes found for [query].\"\n")
	p.WriteString("- Only include content that matches the query topic\n\n")

	if intent.Subject != "" {
		writeSubjectVerification(p, intent.Subject)
	} else if intent.Speaker != "" {
		fmt.Fprintf(p, "CRITICAL - SPEAKER FILTER FOR %q:\n", intent.Speaker)
		fmt.Fprintf(p, "- This query asks for quotes FROM %q\n", intent.Speaker)
		fmt.Fprintf(p, "- ONLY include quotes where %q is the SPEAKER\n", intent.Speaker)
		p.WriteString("- EXCLUDE quotes from all other speakers\n\n")
	}

	p.WriteString("GOOD QUOTES SHOW:\n")
	p.WriteString("- Personal stories with emotional depth (struggles, triumphs, revelations)\n")
	p.WriteString("- Specific moments and details (not generic statements)\n")
	p.WriteString("- Character revealed through action or experience\n")
	p.WriteString("- Authentic voice - how they actually talk, not polished PR speak\n")
	p.WriteString("- Narrative arc - beginning, middle, transformation\n")
	p.WriteString("- Universal themes (identity, belonging, sacrifice, passion)\n\n")

	p.WriteString("ALWAYS EXCLUDE:\n")
	p.WriteString("- Interviewer questions (only extract quotes from the person BEING interviewed)\n")
	p.WriteString("- Technical checks: \"Can you hear me?\" / \"Is this on?\" / \"Testing one two\"\n")
	p.WriteString("- Empty agreements: standalone \"Yeah\" / \"Sure\" / \"Okay\" / \"Right\"\n")
	p.WriteString("- Repetition: Same idea rephrased multiple times\n")
	p.WriteString("- ANY content not present in the transcript below\n")
	if intent.Subject != "" {
		fmt.Fprintf(p, "- Quotes that do NOT mention %q by name\n", intent.Subject)
	}
	p.WriteString("\n")

	p.WriteString("INCLUDE THESE IF THEY TELL A STORY:\n")
	p.WriteString("- Introductions that reveal something unique (not just name/age)\n")
	p.WriteString("- Job titles IF they explain the meaning behind the role\n")
	p.WriteString("- Background IF it has emotional weight or unusual details\n\n")

	p.WriteString("EXAMPLES:\n\n")
	p.WriteString("QUERY: \"career sacrifices\"\n\n")
	p.WriteString("WEAK: \"I'm the owner of Z Afterland Wrestling.\" (just a label)\n")
	p.WriteString("STRONG: \"I have about one million debt when I was 19... I spend from that time until now to prove myself to my parents that I can make this a job.\" (specific stakes, personal struggle)\n\n")
	p.WriteString("WEAK: \"Yeah, wrestling is my passion.\" (generic)\n")
	p.WriteString("STRONG: \"I was forced to watch wrestling since I was two... It feels like wrestling is a big part of our family times.\" (specific memory, emotional connection)\n\n")
	if intent.Subject != "" {
		fmt.Fprintf(p, "QUERY: \"people talking about %s\"\n\n", intent.Subject)
		fmt.Fprintf(p, "WRONG: \"I'm the owner of the company.\" - %s talking about themselves\n", intent.Subject)
		fmt.Fprintf(p, "WRONG: \"I like training here.\" - doesn't mention %s at all\n", intent.Subject)
		fmt.Fprintf(p, "CORRECT: \"%s, you know, he really understands wrestling.\" - others mentioning %s by name\n\n", intent.Subject, intent.Subject)
	}

	p.WriteString("=== SELECTION GUIDELINES ===\n")
	p.WriteString("- Return 5-10 of the BEST quotes maximum - quality over quantity\n")
	p.WriteString("- If no relevant content exists, say so clearly - DO NOT invent quotes\n")
	p.WriteString("- Combine adjacent moments to build complete thoughts\n")
	p.WriteString("- Prioritize quotes with emotional resonance and specific details\n")
	p.WriteString("- If a specific person was requested, ONLY include quotes from that person\n\n")
	p.WriteString("=== TIMESTAMPS (copy EXACTLY from [BRACKETS] below) ===\n")
	p.WriteString("Format: - **Filename** | `timestamp`: \"Quote\"\n")
	p.WriteString("WARNING: Invented timestamps will be caught and rejected.\n\n")
}

// writeSubjectVerification renders the hardest correctness rule in the
// system with its own worked inclusion and exclusion examples.
func writeSubjectVerification(p *strings.Builder, subject string) {
	fmt.Fprintf(p, "CRITICAL - SUBJECT VERIFICATION FOR %q:\n", subject)
	fmt.Fprintf(p, "- This query asks for quotes ABOUT %q from OTHER people\n", subject)
	fmt.Fprintf(p, "- ONLY include quotes where the speaker EXPLICITLY MENTIONS %q BY NAME\n", subject)
	fmt.Fprintf(p, "- EXCLUDE any quotes from %s themselves (they cannot talk ABOUT themselves in this context)\n", subject)
	fmt.Fprintf(p, "- EXCLUDE quotes that don't mention %q at all\n", subject)
	fmt.Fprintf(p, "- Before including ANY quote, verify: Does this quote text actually contain the word %q?\n\n", subject)
}

func (b *Builder) writeEvidence(p *strings.Builder, evidence *EvidenceSet, portion Portion) {
	if evidence == nil || len(evidence.Hits) == 0 {
		p.WriteString(noResultsNotice)
		return
	}

	// Group hits by filename, preserving first-seen file order, so the
	// model can attribute quotes without re-deriving file boundaries.
	var order []string
	groups := make(map[string][]Hit)
	for _, hit := range evidence.Hits {
		name := hit.Filename
		if name == "" {
			name = "Unknown"
		}
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], hit)
	}

	p.WriteString("TRANSCRIPT CONTENT (timestamps in [BRACKETS] before each section):\n")
	p.WriteString("==========================\n\n")

	if portion != PortionAll {
		fmt.Fprintf(p, "NOTE: Showing %s portion of transcript (due to length limits).\n", strings.ToUpper(string(portion)))
		opposite := PortionStart
		if portion == PortionStart {
			opposite = PortionEnd
		}
		fmt.Fprintf(p, "To see other portions, ask for \"%s of [filename]\"\n\n", opposite)
	}

	for _, name := range order {
		fmt.Fprintf(p, "FILE: %q\n", name)
		for _, hit := range groups[name] {
			if ts := strings.TrimSpace(hit.Timestamp); ts != "" {
				fmt.Fprintf(p, "[%s]\n", ts)
			}
			content := extractContentPortion(hit.Content, portion, b.perHitChars)
			lines := nonEmptyLines(content)
			if len(lines) > 0 {
				p.WriteString(strings.Join(lines, "\n"))
				p.WriteString("\n\n")
			}
		}
		p.WriteString(endOfFileMarker)
	}
}

// extractContentPortion slices oversized content to the portion of the
// document the query asked about, annotating skipped regions. "all"
// truncates from the head.
func extractContentPortion(content string, portion Portion, maxLen int) string {
	if len(content) <= maxLen {
		return content
	}
	switch portion {
	case PortionEnd:
		return "... [Content skipped from middle] ...\n\n" + content[len(content)-maxLen:]
	case PortionMiddle:
		start := (len(content) - maxLen) / 2
		return "... [Beginning skipped] ...\n\n" + content[start:start+maxLen] + "\n\n... [End skipped] ..."
	default:
		return content[:maxLen]
	}
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// BuildCombination renders the fan-in prompt that merges per-batch
// outputs into one deduplicated, theme-organized response.
func (b *Builder) BuildCombination(query string, parts []string) string {
	intent := b.classifier.Classify(query)

	var p strings.Builder
	fmt.Fprintf(&p, "You are analyzing a long interview transcript that was split into %d parts due to length.\n\n", len(parts))
	fmt.Fprintf(&p, "QUERY: %q\n\n", query)
	p.WriteString("CRITICAL ANTI-HALLUCINATION RULE:\n")
	p.WriteString("- ONLY use quotes that appear in the PART results below\n")
	p.WriteString("- NEVER invent new quotes, timestamps, or attribute quotes to people not mentioned\n")
	p.WriteString("- If no relevant quotes exist across all parts, state: \"No relevant quotes found\"\n")

	if intent.Subject != "" {
		p.WriteString("\n")
		writeSubjectVerification(&p, intent.Subject)
		p.WriteString("- When combining results, verify each quote actually contains the subject's name\n")
	}

	p.WriteString("\nBelow are the relevant quotes found from each part of the transcript. Your task is to:\n")
	p.WriteString("1. Combine and deduplicate similar quotes\n")
	p.WriteString("2. Organize ALL unique quotes by theme\n")
	p.WriteString("3. Ensure each theme flows logically\n")
	p.WriteString("4. Include EVERY meaningful quote - don't summarize away the details\n")
	if intent.Subject != "" {
		fmt.Fprintf(&p, "5. FILTER OUT any quotes that don't mention %q by name\n", intent.Subject)
	}
	p.WriteString("\n")

	for i, part := range parts {
		fmt.Fprintf(&p, "\n=== PART %d RESULTS ===\n%s\n", i+1, part)
	}

	p.WriteString("\n=== FINAL OUTPUT ===\n\nProvide a comprehensive response that:\n")
	p.WriteString("- Groups quotes by theme (e.g., \"Struggles and Sacrifices\", \"Passion and Dreams\")\n")
	if intent.Subject != "" {
		fmt.Fprintf(&p, "- ONLY includes quotes where someone OTHER than %s mentions %s by name\n", intent.Subject, intent.Subject)
		fmt.Fprintf(&p, "- EXCLUDES quotes from %s themselves\n", intent.Subject)
	}
	p.WriteString("- Lists quotes under each person\n")
	p.WriteString("- Uses the exact format: **Person Name** followed by bullet points with Filename | Time: \"Quote\"\n")
	p.WriteString("- Includes ALL unique quotes found across all parts\n")
	p.WriteString("- Maintains the original timestamps and filenames\n")
	p.WriteString("- Does NOT invent any new quotes or content\n\n")
	p.WriteString("If the same quote appears multiple times, include it only once.\n")
	p.WriteString("If no quotes exist for this query across all parts, say so clearly.")

	return p.String()
}
