package research

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strings"
)

// themeEntry pairs a lowercase substring key with its curated expansion
// list. The table is an ordered list, not a map: the first key found as a
// substring of the query wins, so more specific keys must come before the
// broad terms they contain ("career sacrifices" before "sacrifices").
type themeEntry struct {
	key        string
	expansions []string
}

var themeSearches = []themeEntry{
	{"career sacrifices", []string{
		"money financial debt", "family wife husband parents", "left home moved away",
		"struggle hard difficult", "training physical pain injury", "job work quit",
		"million debt", "lost everything", "risk dangerous", "prove myself parents",
	}},
	{"sacrifices", []string{
		"money financial debt", "family wife husband parents", "left home moved away",
		"struggle hard difficult", "training physical pain injury", "job work quit",
		"million debt", "lost everything",
	}},
	{"money", []string{"financial debt cost", "million debt", "broke no money", "pay rent eat", "broke struggle", "job work"}},
	{"financial", []string{"money pay", "debt cost million", "broke struggle", "job work income", "lost everything"}},
	{"family", []string{"wife husband partner", "parents mother father", "kids children", "relationship", "prove myself parents"}},
	{"wife", []string{"husband partner", "family", "relationship", "home"}},
	{"husband", []string{"wife partner", "family", "relationship", "home"}},
	{"struggle", []string{"hard difficult challenge", "problem obstacle", "money financial", "physical pain injury", "million debt", "lost everything"}},
	{"thailand", []string{"bangkok", "pattaya", "moved here", "living here", "asia"}},
	{"pattaya", []string{"thailand", "bangkok", "living here", "moved here"}},
	{"bangkok", []string{"thailand", "pattaya", "living here", "moved here"}},
	{"training", []string{"gym workout", "practice", "physical pain", "learning"}},
	{"wrestling", []string{"wrestler", "match", "fight", "training", "promotion"}},
	{"character", []string{"personality", "who is", "background", "story"}},
	{"personality", []string{"character", "who is", "background", "story"}},
	{"experience", []string{"background", "history", "journey", "story"}},
	{"journey", []string{"experience", "background", "came here", "started"}},
	{"why wrestling", []string{"dream", "passion", "love", "why", "reason", "wrestling means everything", "obsession"}},
	{"dream", []string{"passion", "goal", "want to", "ambition", "wrestling means everything"}},
	{"passion", []string{"dream", "love", "why", "obsession", "wrestling means everything"}},
	{"first match", []string{"debut", "started", "beginning", "nervous"}},
	{"debut", []string{"first match", "started", "beginning"}},
	{"future", []string{"plan", "goal", "want to", "next"}},
	{"plan", []string{"future", "goal", "want to", "next"}},
	{"goal", []string{"future", "plan", "want to", "dream"}},
	{"nervous", []string{"scared", "afraid", "first time", "worry"}},
	{"scared", []string{"nervous", "afraid", "fear", "worry"}},
	{"travel", []string{"flew", "came here", "international", "different country"}},
	{"international", []string{"travel", "overseas", "different country", "came here"}},
	{"home", []string{"family", "wife", "husband", "left", "back home"}},
	{"good quotes", []string{
		"wrestling means everything", "dream passion love", "struggle difficult hard",
		"million debt money", "family parents sacrifice", "imagination key dream",
		"forced watch wrestling", "special unique different", "prove myself",
		"lost everything", "larger than life", "identity who I am",
	}},
}

// keywordExpansion contributes a fixed term set when its pattern matches a
// query that hit no theme key.
type keywordExpansion struct {
	pattern *regexp.Regexp
	terms   []string
}

var keywordExpansions = []keywordExpansion{
	{regexp.MustCompile(`\b(wrestle|fight|match|ring|show)\b`), []string{"training", "gym", "match", "promotion"}},
	{regexp.MustCompile(`\b(come|came|move|moved|travel|here)\b`), []string{"thailand", "pattaya", "bangkok", "moved here"}},
	{regexp.MustCompile(`\b(feel|think|believe|opinion)\b`), []string{"passion", "dream", "love", "why"}},
	{regexp.MustCompile(`\b(hard|difficult|tough|struggle|problem)\b`), []string{"struggle", "challenge", "money", "financial"}},
	{regexp.MustCompile(`\b(wife|husband|family|home|kid)\b`), []string{"family", "wife", "husband", "left home"}},
	{regexp.MustCompile(`\b(money|pay|cost|debt|broke)\b`), []string{"financial", "money", "job", "work"}},
	{regexp.MustCompile(`\b(start|begin|first|started)\b`), []string{"first match", "debut", "training", "began"}},
	{regexp.MustCompile(`\b(future|plan|goal|next|want)\b`), []string{"future", "plan", "goal", "dream"}},
}

var genericExpansions = []string{"experience", "background", "story", "journey"}

// jsonArrayRe finds the first top-level bracketed array in a model
// response; everything around it is prose the model was told not to emit.
var jsonArrayRe = regexp.MustCompile(`\[[^\]]+\]`)

// PlanCache caches model-generated search plans keyed by query. Both
// methods are best-effort; a miss or a failed put never blocks expansion.
type PlanCache interface {
	Get(ctx context.Context, query string) ([]string, bool)
	Put(ctx context.Context, query string, terms []string)
}

// Expander turns one raw user query into a deduplicated, order-preserving
// set of search terms: the literal query, then model-planned terms, then
// static/keyword expansions.
type Expander struct {
	gen    Generator
	cache  PlanCache
	model  string
	logger *log.Logger
}

// NewExpander creates an expander. gen may be nil to disable the planned
// contribution (static expansion still runs); cache is optional.
func NewExpander(gen Generator, cache PlanCache, model string, logger *log.Logger) *Expander {
	if logger == nil {
		logger = log.New(log.Writer(), "[EXPAND] ", log.LstdFlags)
	}
	return &Expander{gen: gen, cache: cache, model: model, logger: logger}
}

// Expand produces the final term set for one query. The literal query is
// always first; duplicates keep their first occurrence.
func (e *Expander) Expand(ctx context.Context, query string) []string {
	terms := []string{query}
	terms = append(terms, e.planSearches(ctx, query)...)
	terms = append(terms, relatedSearches(query)...)
	return dedupTerms(terms)
}

// relatedSearches consults the static theme table (first matching key
// wins), then the keyword triggers, then the generic fallback.
func relatedSearches(query string) []string {
	lower := strings.ToLower(query)

	for _, entry := range themeSearches {
		if strings.Contains(lower, entry.key) {
			return entry.expansions
		}
	}

	var expansions []string
	for _, ke := range keywordExpansions {
		if ke.pattern.MatchString(lower) {
			expansions = append(expansions, ke.terms...)
		}
	}
	if len(expansions) == 0 {
		return genericExpansions
	}
	return dedupTerms(expansions)
}

// planSearches asks the generation model for 6-10 emotionally salient
// phrasings. Any failure (transport, missing array, bad JSON) degrades to
// an empty contribution; planning must never block expansion.
func (e *Expander) planSearches(ctx context.Context, query string) []string {
	if e.gen == nil {
		return nil
	}
	if e.cache != nil {
		if terms, ok := e.cache.Get(ctx, query); ok {
			return terms
		}
	}

	response, err := e.gen.Complete(ctx, []Message{{Role: RoleUser, Content: planSearchesPrompt(query)}}, GenOptions{
		Model:       e.model,
		Temperature: 0.8,
	})
	if err != nil {
		e.logger.Printf("search planning failed: %v", err)
		return nil
	}

	raw := jsonArrayRe.FindString(response)
	if raw == "" {
		e.logger.Printf("search planning returned no JSON array")
		return nil
	}
	var terms []string
	if err := json.Unmarshal([]byte(raw), &terms); err != nil {
		e.logger.Printf("search plan parse failed: %v", err)
		return nil
	}

	if e.cache != nil && len(terms) > 0 {
		e.cache.Put(ctx, query, terms)
	}
	return terms
}

// dedupTerms removes duplicates preserving first occurrence. Blank terms
// are dropped.
func dedupTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
