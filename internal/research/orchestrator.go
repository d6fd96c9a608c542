package research

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config tunes one pipeline instance. Zero values select the defaults
// below.
type Config struct {
	// MaxContextTokens is the generation model's hard context limit.
	MaxContextTokens int
	// ChunkTokens is the per-batch budget when evidence must be split; it
	// sits well under MaxContextTokens so instructions and output fit.
	ChunkTokens int
	// OverlapTokens is the window overlap for raw-text chunking.
	OverlapTokens int
	// MaxConcurrentChunks caps in-flight generation calls per turn.
	MaxConcurrentChunks int

	Model           string
	Temperature     float64
	MaxOutputTokens int
}

const (
	DefaultMaxContextTokens    = 128000
	DefaultChunkTokens         = 100000
	DefaultOverlapTokens       = 2000
	DefaultMaxConcurrentChunks = 10
	DefaultMaxOutputTokens     = 4000
	DefaultTemperature         = 0.7
)

func (c Config) withDefaults() Config {
	if c.MaxContextTokens <= 0 {
		c.MaxContextTokens = DefaultMaxContextTokens
	}
	if c.ChunkTokens <= 0 {
		c.ChunkTokens = DefaultChunkTokens
	}
	if c.OverlapTokens <= 0 {
		c.OverlapTokens = DefaultOverlapTokens
	}
	if c.MaxConcurrentChunks <= 0 {
		c.MaxConcurrentChunks = DefaultMaxConcurrentChunks
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	return c
}

// Pipeline is the per-process research engine. All per-turn state is
// local to Research; one Pipeline serves concurrent turns safely.
type Pipeline struct {
	cfg       Config
	expander  *Expander
	collector *Collector
	builder   *Builder
	gen       Generator
	logger    *log.Logger
}

// NewPipeline wires the pipeline components together.
func NewPipeline(cfg Config, expander *Expander, collector *Collector, builder *Builder, gen Generator, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(log.Writer(), "[RESEARCH] ", log.LstdFlags)
	}
	return &Pipeline{
		cfg:       cfg.withDefaults(),
		expander:  expander,
		collector: collector,
		builder:   builder,
		gen:       gen,
		logger:    logger,
	}
}

// TurnResult carries the final text plus per-turn accounting for the
// caller's response payload and logs.
type TurnResult struct {
	Content  string        `json:"content"`
	Terms    int           `json:"terms"`
	Hits     int           `json:"hits"`
	Batches  int           `json:"batches"`
	Duration time.Duration `json:"duration"`
}

// Research runs one complete user turn: expansion, collection, prompt
// assembly, and generation (chunked when the evidence outgrows the
// context budget).
func (p *Pipeline) Research(ctx context.Context, query string) (TurnResult, error) {
	start := time.Now()
	turnID := uuid.NewString()[:8]
	p.logger.Printf("[turn %s] query: %q", turnID, query)

	evidence, terms, err := p.gather(ctx, query, turnID)
	if err != nil {
		return TurnResult{}, err
	}
	p.logger.Printf("[turn %s] %d unique hits from %d terms", turnID, evidence.Total, terms)

	content, batches, err := p.analyze(ctx, query, evidence, turnID)
	if err != nil {
		return TurnResult{}, err
	}

	res := TurnResult{
		Content:  content,
		Terms:    terms,
		Hits:     evidence.Total,
		Batches:  batches,
		Duration: time.Since(start),
	}
	p.logger.Printf("[turn %s] done in %v (%d batches)", turnID, res.Duration, batches)
	return res, nil
}

// gather produces the turn's EvidenceSet. An explicit single-document
// request short-circuits to a full-document fetch; on fetch failure it
// falls back to multi-term search scoped to that filename.
func (p *Pipeline) gather(ctx context.Context, query, turnID string) (*EvidenceSet, int, error) {
	if filename := DetectFilenameRequest(query); filename != "" {
		p.logger.Printf("[turn %s] specific document requested: %q", turnID, filename)
		set, err := p.collector.CollectDocument(ctx, filename)
		if err == nil {
			return set, 1, nil
		}
		p.logger.Printf("[turn %s] document fetch failed (%v), falling back to search", turnID, err)
		terms := p.expander.Expand(ctx, query)
		set, cerr := p.collector.Collect(ctx, terms, filename)
		return set, len(terms), cerr
	}

	terms := p.expander.Expand(ctx, query)
	set, err := p.collector.Collect(ctx, terms, "")
	return set, len(terms), err
}

// singleShotBudget is what remains of the context window after the fixed
// system instruction and the reserved output tokens; the instructional
// overhead is budgeted explicitly rather than hoped for.
func (p *Pipeline) singleShotBudget() int {
	return p.cfg.MaxContextTokens - EstimateTokens(TimecodeAgentPrompt) - p.cfg.MaxOutputTokens
}

// analyze issues the generation call(s): one shot when the full prompt
// fits, otherwise a bounded-concurrency fan-out over evidence batches
// followed by a combination pass.
func (p *Pipeline) analyze(ctx context.Context, query string, evidence *EvidenceSet, turnID string) (string, int, error) {
	full := p.builder.Build(query, evidence)
	if EstimateTokens(full) <= p.singleShotBudget() {
		content, err := p.complete(ctx, full)
		if err != nil {
			return "", 0, fmt.Errorf("generation failed: %w", err)
		}
		return content, 1, nil
	}

	batches := ChunkHits(evidence, p.cfg.ChunkTokens)
	p.logger.Printf("[turn %s] evidence over budget, split into %d batches", turnID, len(batches))

	results, err := p.processBatches(ctx, query, batches)
	if err != nil {
		return "", len(batches), err
	}

	if len(results) == 1 {
		return results[0], 1, nil
	}

	combined, err := p.complete(ctx, p.builder.BuildCombination(query, results))
	if err != nil {
		return "", len(batches), fmt.Errorf("combination failed: %w", err)
	}
	return combined, len(batches), nil
}

// processBatches dispatches one generation call per batch, starting a
// call as soon as a pool slot frees rather than in fixed waves. Results
// are index-addressed so part ordering survives out-of-order completion.
// Any batch failure fails the turn: partial evidence silently dropped is
// worse than a visible error.
func (p *Pipeline) processBatches(ctx context.Context, query string, batches []*EvidenceSet) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]string, len(batches))
	sem := make(chan struct{}, p.cfg.MaxConcurrentChunks)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for i, batch := range batches {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			fail(ctx.Err())
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(i int, batch *EvidenceSet) {
			defer wg.Done()
			defer func() { <-sem }()

			content, err := p.complete(ctx, p.builder.Build(query, batch))
			if err != nil {
				fail(fmt.Errorf("batch %d/%d failed: %w", i+1, len(batches), err))
				return
			}
			results[i] = content
		}(i, batch)
	}

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (p *Pipeline) complete(ctx context.Context, prompt string) (string, error) {
	return p.gen.Complete(ctx, []Message{{Role: RoleUser, Content: prompt}}, GenOptions{
		Model:       p.cfg.Model,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxOutputTokens,
	})
}
