package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/nicoforge/internal/chunker"
	"codeberg.org/snonux/nicoforge/internal/dataset"
	"codeberg.org/snonux/nicoforge/internal/state"
	"codeberg.org/snonux/nicoforge/internal/translator"
)

// Options configure one orchestrator run.
type Options struct {
	BatchSize   int
	FlushEvery  int // interim flush after this many finished batches
	Concurrency int // batches translated in parallel

	Retry RetryPolicy
	QA    QAConfig

	OutputCSV      string
	OutputJSON     string
	FailedOutput   string
	QCFailedOutput string
}

// Stats summarizes one orchestrator run.
type Stats struct {
	Translated int
	Failed     int
	QCFailed   int
}

// Pipeline drives batched translation of canonical chunks with retry,
// resume, duplicate expansion and quality sampling.
type Pipeline struct {
	opts    Options
	store   state.Store
	breaker *gobreaker.CircuitBreaker

	mu       sync.Mutex
	pairs    []dataset.Pair
	failed   []dataset.FailureRecord
	qcFailed []dataset.QCFailureRecord
	finished int // batches finished since the last flush
}

// New creates a pipeline. The store records per-chunk completion for
// resume; it must not be nil.
func New(opts Options, store state.Store) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.FlushEvery <= 0 {
		opts.FlushEvery = 5
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = DefaultRetryPolicy()
	}

	return &Pipeline{
		opts:  opts,
		store: store,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "translation",
			Timeout: opts.Retry.Max,
		}),
	}
}

// Translate runs the orchestrator over the full chunk set. Only
// canonical chunks are sent to the translator; duplicates inherit their
// canonical translation afterwards. Already completed chunks are skipped
// via the state store, which makes the run resumable.
func (p *Pipeline) Translate(ctx context.Context, chunks []chunker.Chunk, tr translator.Translator) (Stats, error) {
	canonical := make([]chunker.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.IsCanonical {
			canonical = append(canonical, c)
		}
	}
	fmt.Printf("Translating %d canonical chunks (skipping %d duplicates)\n",
		len(canonical), len(chunks)-len(canonical))

	completed := p.store.CompletedIDs(state.StageTranslation)
	if len(completed) > 0 {
		fmt.Printf("Resuming: %d chunks already translated\n", len(completed))
		p.seedFromInterim(completed)
	}

	remaining := make([]chunker.Chunk, 0, len(canonical))
	for _, c := range canonical {
		if _, done := completed[c.ID]; !done {
			remaining = append(remaining, c)
		}
	}

	if len(remaining) == 0 && len(canonical) > 0 && len(p.pairs) == 0 {
		// Nothing left to translate and a prior run already wrote the
		// final outputs.
		fmt.Println("All chunks already translated")
		return p.loadExistingResults()
	}

	if err := p.store.MarkInProgress(state.StageTranslation, nil); err != nil {
		return Stats{}, err
	}

	batches := makeBatches(remaining, p.opts.BatchSize)
	fmt.Printf("Processing %d batches (batch size %d, concurrency %d)\n",
		len(batches), p.opts.BatchSize, p.opts.Concurrency)

	if err := p.runBatches(ctx, batches, tr); err != nil {
		// Interrupted: completed chunks are already durable, so the
		// next run resumes from here.
		p.flush()
		return Stats{}, err
	}

	// Final flush happens regardless of FlushEvery.
	p.flush()

	if err := ctx.Err(); err != nil {
		// Interrupted after dispatch: leave the stage in_progress so
		// unfinished chunks are re-issued next run.
		return Stats{}, err
	}

	p.expandDuplicates(chunks)
	p.runQASampling()

	if err := p.persist(); err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Translated: len(p.pairs),
		Failed:     len(p.failed),
		QCFailed:   len(p.qcFailed),
	}
	err := p.store.MarkCompleted(state.StageTranslation, map[string]any{
		"total_translated": stats.Translated,
		"failed":           stats.Failed,
		"qc_failed":        stats.QCFailed,
	})
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// runBatches translates batches through a bounded worker pool. Output
// writes wait for every in-flight batch before they happen.
func (p *Pipeline) runBatches(ctx context.Context, batches [][]chunker.Chunk, tr translator.Translator) error {
	jobs := make(chan []chunker.Chunk)
	var wg sync.WaitGroup

	for i := 0; i < p.opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				p.processBatch(ctx, batch, tr)
			}
		}()
	}

	var err error
	total := len(batches)
feed:
	for i, batch := range batches {
		select {
		case jobs <- batch:
			fmt.Printf("Dispatched batch %d/%d\n", i+1, total)
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	return err
}

// processBatch translates one batch, retrying transient failures with
// backoff. The batch is always retried whole; after the retry budget is
// spent every chunk in it is recorded as failed, with no partial credit.
func (p *Pipeline) processBatch(ctx context.Context, batch []chunker.Chunk, tr translator.Translator) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	var translations []string
	var lastErr error
	for attempt := 1; attempt <= p.opts.Retry.MaxAttempts; attempt++ {
		result, err := p.breaker.Execute(func() (any, error) {
			return tr.TranslateBatch(ctx, texts)
		})
		if err == nil {
			translations = result.([]string)
			lastErr = nil
			break
		}
		lastErr = err

		if !retryable(err) {
			break
		}
		if attempt == p.opts.Retry.MaxAttempts {
			break
		}
		delay := p.opts.Retry.Backoff(attempt)
		fmt.Printf("Batch attempt %d failed (%v), retrying in %s\n", attempt, err, delay)
		if sleep(ctx, delay) != nil {
			break
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if lastErr != nil {
		fmt.Fprintf(os.Stderr, "Batch failed after %d attempts: %v\n", p.opts.Retry.MaxAttempts, lastErr)
		for _, c := range batch {
			p.failed = append(p.failed, dataset.FailureRecord{
				ChunkID: c.ID,
				Text:    c.Text,
				Error:   lastErr.Error(),
			})
		}
		p.finishBatchLocked()
		return
	}

	now := time.Now()
	for i, c := range batch {
		if translations[i] == "" {
			// Permanent per-item failure inside an otherwise usable
			// response; never retried.
			p.failed = append(p.failed, dataset.FailureRecord{
				ChunkID: c.ID,
				Text:    c.Text,
				Error:   "empty translation",
			})
			continue
		}

		p.pairs = append(p.pairs, dataset.Pair{
			ChunkID: c.ID,
			English: c.Text,
			Hindi:   translations[i],
			Metadata: dataset.PairMetadata{
				SourceFile:   c.SourceFile,
				StartWordIdx: c.StartWordIdx,
				EndWordIdx:   c.EndWordIdx,
				Translator:   tr.ModelInfo(),
				Timestamp:    now,
			},
		})
		// Durable before anything else happens, so a crash never
		// double-translates this chunk.
		if err := p.store.RecordCompleted(state.StageTranslation, c.ID); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to record completion of chunk %d: %v\n", c.ID, err)
		}
	}
	p.finishBatchLocked()
}

// retryable treats provider-transient errors and an open circuit
// breaker as worth retrying.
func retryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}
	return translator.IsTransient(err)
}

// finishBatchLocked counts a finished batch and flushes interim output
// every FlushEvery batches. Caller holds p.mu.
func (p *Pipeline) finishBatchLocked() {
	p.finished++
	if p.finished%p.opts.FlushEvery == 0 {
		p.flushLocked()
	}
}

func (p *Pipeline) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flushLocked()
}

// flushLocked writes the pairs gathered so far, limiting what a crash
// can lose. Caller holds p.mu.
func (p *Pipeline) flushLocked() {
	if len(p.pairs) == 0 {
		return
	}
	if err := dataset.WriteJSON(p.opts.OutputJSON, p.pairs); err != nil {
		fmt.Fprintf(os.Stderr, "Interim flush failed: %v\n", err)
	}
}

// seedFromInterim reloads pairs persisted by a previous interrupted run
// so its completed chunks stay in the final dataset.
func (p *Pipeline) seedFromInterim(completed map[int]struct{}) {
	pairs, err := dataset.LoadPairs(p.opts.OutputJSON)
	if err != nil {
		return
	}
	for _, pair := range pairs {
		if pair.Metadata.IsDuplicate {
			continue // re-derived from canonicals after this run
		}
		if _, ok := completed[pair.ChunkID]; ok {
			p.pairs = append(p.pairs, pair)
		}
	}
}

// loadExistingResults reports a fully completed previous run.
func (p *Pipeline) loadExistingResults() (Stats, error) {
	pairs, err := dataset.LoadPairs(p.opts.OutputJSON)
	if err != nil {
		return Stats{}, fmt.Errorf("translation already completed but dataset is unreadable: %w", err)
	}
	return Stats{Translated: len(pairs)}, nil
}

// expandDuplicates clones each canonical translation onto the duplicate
// chunks linked to it. Duplicates of canonicals that failed stay
// unexpanded: they surface neither in the dataset nor in the failure
// list. That asymmetry is deliberate; changing it would change the
// observable dataset size.
func (p *Pipeline) expandDuplicates(chunks []chunker.Chunk) {
	byID := make(map[int]dataset.Pair, len(p.pairs))
	for _, pair := range p.pairs {
		byID[pair.ChunkID] = pair
	}

	expanded := 0
	for _, c := range chunks {
		if c.IsCanonical || c.CanonicalID == nil {
			continue
		}
		canonicalPair, ok := byID[*c.CanonicalID]
		if !ok {
			continue
		}
		canonicalID := *c.CanonicalID
		pair := canonicalPair
		pair.ChunkID = c.ID
		pair.Metadata.IsDuplicate = true
		pair.Metadata.CanonicalID = &canonicalID
		p.pairs = append(p.pairs, pair)
		expanded++
	}
	if expanded > 0 {
		fmt.Printf("Expanded %d duplicate chunks\n", expanded)
	}
}

// runQASampling validates a systematic sample of the dataset and
// records every failing pair with all its reason codes. Quality
// failures never block the pipeline.
func (p *Pipeline) runQASampling() {
	total := len(p.pairs)
	n := SampleSize(total, p.opts.QA.SampleRate, p.opts.QA.MinSamples)
	if n == 0 {
		return
	}
	fmt.Printf("Running QA on %d samples\n", n)

	sorted := make([]dataset.Pair, total)
	copy(sorted, p.pairs)
	dataset.SortPairs(sorted)

	for _, pair := range systematicSample(sorted, n) {
		issues := p.opts.QA.validatePair(pair.English, pair.Hindi)
		if len(issues) > 0 {
			p.qcFailed = append(p.qcFailed, dataset.QCFailureRecord{
				ChunkID: pair.ChunkID,
				English: pair.English,
				Hindi:   pair.Hindi,
				Issues:  issues,
			})
		}
	}

	if len(p.qcFailed) > 0 {
		fmt.Fprintf(os.Stderr, "QA: %d/%d samples failed (%.1f%%)\n",
			len(p.qcFailed), n, float64(len(p.qcFailed))/float64(n)*100)
	} else {
		fmt.Println("QA: All samples passed")
	}
}

// persist writes the final sorted datasets and the failure lists.
func (p *Pipeline) persist() error {
	if err := dataset.WriteCSV(p.opts.OutputCSV, p.pairs); err != nil {
		return err
	}
	fmt.Printf("Saved CSV dataset: %s\n", p.opts.OutputCSV)

	if err := dataset.WriteJSON(p.opts.OutputJSON, p.pairs); err != nil {
		return err
	}
	fmt.Printf("Saved JSON dataset: %s\n", p.opts.OutputJSON)

	if len(p.failed) > 0 {
		if err := dataset.WriteFailures(p.opts.FailedOutput, p.failed); err != nil {
			return err
		}
		fmt.Printf("Saved failed chunks: %s\n", p.opts.FailedOutput)
	}
	if len(p.qcFailed) > 0 {
		if err := dataset.WriteQCFailures(p.opts.QCFailedOutput, p.qcFailed); err != nil {
			return err
		}
		fmt.Printf("Saved QC failures: %s\n", p.opts.QCFailedOutput)
	}
	return nil
}

// makeBatches partitions chunks into fixed-size groups, preserving
// order within and across batches.
func makeBatches(chunks []chunker.Chunk, size int) [][]chunker.Chunk {
	var batches [][]chunker.Chunk
	for i := 0; i < len(chunks); i += size {
		end := i + size
		if end > len(chunks) {
			end = len(chunks)
		}
		batches = append(batches, chunks[i:end])
	}
	return batches
}
