package research

import (
	"regexp"
	"strings"
)

// IntentKind selects which instruction block the prompt builder renders.
type IntentKind int

const (
	// IntentThematic is the default quote-extraction mode.
	IntentThematic IntentKind = iota
	// IntentIntroduction asks for bio/background content that thematic
	// mode normally excludes.
	IntentIntroduction
	// IntentTechnical asks for setup/sound-check chatter.
	IntentTechnical
)

// Portion names which part of a long document the query targets.
type Portion string

const (
	PortionAll    Portion = "all"
	PortionStart  Portion = "start"
	PortionMiddle Portion = "middle"
	PortionEnd    Portion = "end"
)

// Intent is the classified shape of one user query.
type Intent struct {
	Kind    IntentKind
	Portion Portion
	// Subject is set for "about X" queries: only quotes where someone
	// other than Subject names Subject may be included.
	Subject string
	// Speaker is set for "from X"/"by X" queries: only quotes spoken by
	// Speaker may be included.
	Speaker string
}

// IntentClassifier turns a raw query into an Intent. The default is
// regex-based and deliberately matches the original heuristics, including
// their known gaps (single-word subject capture only); a stricter
// classifier can be substituted without changing the prompt builder.
type IntentClassifier interface {
	Classify(query string) Intent
}

var (
	introRe    = regexp.MustCompile(`intro|biography|bio|background|who is|tell me about|describe`)
	techRe     = regexp.MustCompile(`tech|setup|audio|mic|sound check|preparation`)
	endRe      = regexp.MustCompile(`\b(end|ending|last|final|later|conclusion|wrap up|finish)\b`)
	endMinRe   = regexp.MustCompile(`\b(last \d+ minutes?|final \d+ minutes?)\b`)
	middleRe   = regexp.MustCompile(`\b(middle|center|halfway)\b`)
	startRe    = regexp.MustCompile(`\b(start|beginning|first|early|opening)\b`)
	startMinRe = regexp.MustCompile(`\b(first \d+ minutes?|opening \d+ minutes?)\b`)
	aboutRe    = regexp.MustCompile(`(?i)(?:about|talking about|talk about)\s+(\w+)`)
	fromRe     = regexp.MustCompile(`(?i)(?:from|by)\s+(\w+)`)
)

type regexClassifier struct{}

// NewRegexClassifier returns the default heuristic classifier.
func NewRegexClassifier() IntentClassifier { return regexClassifier{} }

func (regexClassifier) Classify(query string) Intent {
	lower := strings.ToLower(query)

	intent := Intent{Kind: IntentThematic, Portion: PortionAll}
	switch {
	case introRe.MatchString(lower):
		intent.Kind = IntentIntroduction
	case techRe.MatchString(lower):
		intent.Kind = IntentTechnical
	}

	// End indicators checked first: "last" outranks "first" in queries
	// like "the last few minutes of the first interview".
	switch {
	case endRe.MatchString(lower) || endMinRe.MatchString(lower):
		intent.Portion = PortionEnd
	case middleRe.MatchString(lower):
		intent.Portion = PortionMiddle
	case startRe.MatchString(lower) || startMinRe.MatchString(lower):
		intent.Portion = PortionStart
	}

	// Subject capture is a single \w+ group; multi-word names are out of
	// scope for the default classifier.
	if m := aboutRe.FindStringSubmatch(query); m != nil {
		intent.Subject = m[1]
	} else if m := fromRe.FindStringSubmatch(query); m != nil {
		intent.Speaker = m[1]
	}

	return intent
}
