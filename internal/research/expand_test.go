package research

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// stubGen returns canned responses keyed by a substring of the prompt,
// or a single fixed response.
type stubGen struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (s *stubGen) Complete(_ context.Context, msgs []Message, _ GenOptions) (string, error) {
	s.calls++
	if len(msgs) > 0 {
		s.prompts = append(s.prompts, msgs[len(msgs)-1].Content)
	}
	return s.response, s.err
}

type memPlanCache struct {
	store map[string][]string
	puts  int
}

func (m *memPlanCache) Get(_ context.Context, query string) ([]string, bool) {
	terms, ok := m.store[query]
	return terms, ok
}

func (m *memPlanCache) Put(_ context.Context, query string, terms []string) {
	if m.store == nil {
		m.store = make(map[string][]string)
	}
	m.store[query] = terms
	m.puts++
}

func TestExpandLiteralQueryFirst(t *testing.T) {
	e := NewExpander(nil, nil, "", testLogger(t))
	terms := e.Expand(context.Background(), "career sacrifices")
	if len(terms) == 0 || terms[0] != "career sacrifices" {
		t.Fatalf("terms = %v, want literal query first", terms)
	}
}

func TestRelatedSearchesFirstThemeKeyWins(t *testing.T) {
	// "career sacrifices" contains both the "career sacrifices" and
	// "sacrifices" keys; the more specific one is listed first and wins.
	got := relatedSearches("tell me about their career sacrifices")
	want := themeSearches[0].expansions
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want the career-sacrifices expansions", got)
	}
}

func TestRelatedSearchesKeywordFallback(t *testing.T) {
	got := relatedSearches("was it hard to pay for all this")
	// Both the hardship and money keyword triggers fire; their term sets
	// merge with duplicates removed.
	joined := strings.Join(got, ",")
	for _, want := range []string{"struggle", "challenge", "financial", "money", "job", "work"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expansions %v missing %q", got, want)
		}
	}
	seen := map[string]bool{}
	for _, term := range got {
		if seen[term] {
			t.Errorf("duplicate expansion %q", term)
		}
		seen[term] = true
	}
}

func TestRelatedSearchesGenericFallback(t *testing.T) {
	got := relatedSearches("zzz qqq")
	if !reflect.DeepEqual(got, genericExpansions) {
		t.Fatalf("got %v, want generic expansions", got)
	}
}

func TestExpandDeduplicates(t *testing.T) {
	gen := &stubGen{response: `["money", "career sacrifices", "million debt"]`}
	e := NewExpander(gen, nil, "test-model", testLogger(t))

	terms := e.Expand(context.Background(), "career sacrifices")
	seen := map[string]bool{}
	for _, term := range terms {
		if seen[term] {
			t.Fatalf("duplicate term %q in %v", term, terms)
		}
		seen[term] = true
	}
	if terms[0] != "career sacrifices" {
		t.Fatalf("literal query not first: %v", terms)
	}
	if !seen["million debt"] {
		t.Fatalf("planned term missing from %v", terms)
	}
}

func TestExpandIdempotent(t *testing.T) {
	e := NewExpander(nil, nil, "", testLogger(t))
	first := e.Expand(context.Background(), "money problems")
	second := dedupTerms(first)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("dedup not idempotent: %v vs %v", first, second)
	}
}

func TestPlanSearchesParsesEmbeddedArray(t *testing.T) {
	gen := &stubGen{response: "Here you go:\n[\"left everything behind\", \"prove myself\"]\nHope that helps."}
	e := NewExpander(gen, nil, "test-model", testLogger(t))

	got := e.planSearches(context.Background(), "career sacrifices")
	want := []string{"left everything behind", "prove myself"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPlanSearchesFailuresDegradeToNil(t *testing.T) {
	cases := []struct {
		name string
		gen  *stubGen
	}{
		{"transport error", &stubGen{err: errors.New("boom")}},
		{"no array", &stubGen{response: "I cannot help with that."}},
		{"bad json", &stubGen{response: `[not, valid, json]`}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewExpander(tc.gen, nil, "test-model", testLogger(t))
			if got := e.planSearches(context.Background(), "q"); got != nil {
				t.Fatalf("got %v, want nil", got)
			}
		})
	}
}

func TestPlanSearchesUsesCache(t *testing.T) {
	gen := &stubGen{response: `["a", "b"]`}
	cache := &memPlanCache{}
	e := NewExpander(gen, cache, "test-model", testLogger(t))

	first := e.planSearches(context.Background(), "repeat query")
	if gen.calls != 1 || cache.puts != 1 {
		t.Fatalf("calls=%d puts=%d after miss, want 1/1", gen.calls, cache.puts)
	}

	second := e.planSearches(context.Background(), "repeat query")
	if gen.calls != 1 {
		t.Fatalf("generator called again on cache hit (calls=%d)", gen.calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("cache returned %v, want %v", second, first)
	}
}
