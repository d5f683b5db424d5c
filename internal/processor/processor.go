package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/snonux/nicoforge/internal/chunker"
	"codeberg.org/snonux/nicoforge/internal/cleaner"
	"codeberg.org/snonux/nicoforge/internal/cli"
	"codeberg.org/snonux/nicoforge/internal/pipeline"
	"codeberg.org/snonux/nicoforge/internal/state"
	"codeberg.org/snonux/nicoforge/internal/translator"
)

// Processor drives the whole dataset generation run: cleaning,
// chunking, translation and the final report. Each stage records its
// completion in the state store, so an interrupted run resumes where
// it stopped.
type Processor struct {
	flags      *cli.Flags
	store      state.Store
	closeStore func() error

	// translator overrides the provider built from flags; used by tests
	translator translator.Translator
}

// NewProcessor creates a processor with its state store under the
// output directory
func NewProcessor(flags *cli.Flags) (*Processor, error) {
	if err := os.MkdirAll(flags.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	p := &Processor{flags: flags}

	switch flags.StateBackend {
	case "", "file":
		store, err := state.NewFileStore(filepath.Join(flags.OutputDir, ".state"))
		if err != nil {
			return nil, fmt.Errorf("failed to create state store: %w", err)
		}
		p.store = store
	case "sqlite":
		store, err := state.NewSQLiteStore(filepath.Join(flags.OutputDir, "state.db"))
		if err != nil {
			return nil, fmt.Errorf("failed to create state store: %w", err)
		}
		p.store = store
		p.closeStore = store.Close
	default:
		return nil, fmt.Errorf("unknown state backend: %s (use file or sqlite)", flags.StateBackend)
	}

	return p, nil
}

// Close releases the state store
func (p *Processor) Close() error {
	if p.closeStore != nil {
		return p.closeStore()
	}
	return nil
}

// Run executes the pipeline for one input file
func (p *Processor) Run(ctx context.Context, inputPath string) error {
	start := time.Now()

	if p.flags.ForceRestart {
		fmt.Println("Force restart: clearing saved state")
		if err := p.store.ClearAll(); err != nil {
			return fmt.Errorf("failed to clear state: %w", err)
		}
	}

	sourceLabel := p.flags.SourceLabel
	if sourceLabel == "" {
		sourceLabel = filepath.Base(inputPath)
	}

	cleanedPath := filepath.Join(p.flags.OutputDir, "cleaned_text.txt")
	previewPath := filepath.Join(p.flags.OutputDir, "clean_preview.txt")
	manifestPath := filepath.Join(p.flags.OutputDir, "chunks_manifest.json")

	// Stage 1: clean
	if p.store.IsCompleted(state.StageCleaner) && fileExists(cleanedPath) {
		fmt.Println("Cleaning already completed, skipping")
	} else {
		c := cleaner.NewCleaner(cleaner.DefaultOptions(), p.store)
		stats, err := c.CleanFile(inputPath, cleanedPath, previewPath)
		if err != nil {
			return fmt.Errorf("cleaning failed: %w", err)
		}
		fmt.Printf("Cleaned text: %d -> %d characters (%.1f%% reduction)\n",
			stats.InputLength, stats.OutputLength, stats.ReductionPct())
	}

	// Stage 2: chunk and deduplicate
	var manifest *chunker.Manifest
	if p.store.IsCompleted(state.StageChunker) && fileExists(manifestPath) {
		m, err := chunker.LoadManifest(manifestPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Saved manifest unreadable, re-chunking: %v\n", err)
		} else {
			fmt.Printf("Chunking already completed, loaded %d chunks\n", m.TotalChunks)
			manifest = m
		}
	}
	if manifest == nil {
		text, err := os.ReadFile(cleanedPath)
		if err != nil {
			return fmt.Errorf("failed to read cleaned text: %w", err)
		}
		ch, err := chunker.NewChunker(p.flags.ChunkSize, manifestPath, p.store)
		if err != nil {
			return err
		}
		ch.Dedup = !p.flags.NoDedup
		ch.FuzzyMatching = p.flags.FuzzyMatching
		manifest, err = ch.Chunk(string(text), sourceLabel)
		if err != nil {
			return fmt.Errorf("chunking failed: %w", err)
		}
	}

	if len(manifest.Chunks) == 0 {
		return fmt.Errorf("no usable chunks produced from %s", inputPath)
	}

	// Stage 3: translate. A completed stage is never re-entered: its
	// failed chunks stay failed until --force-restart, so the dataset
	// size cannot change across plain restarts.
	if st, ok := p.store.Load(state.StageTranslation); ok && st.Status == state.StatusCompleted {
		fmt.Println("Translation already completed, skipping")
		stats := statsFromSummary(st.Data.Summary)
		p.printReport(sourceLabel, manifest, stats, time.Since(start))
		return nil
	}

	tr := p.translator
	if tr == nil {
		var err error
		tr, err = translator.New(translator.Config{
			Provider:     p.flags.Provider,
			APIKey:       cli.GetAPIKey(p.flags.Provider),
			Model:        p.flags.Model,
			BaseURL:      p.flags.BaseURL,
			CustomPrompt: p.flags.CustomPrompt,
			RequestDelay: p.flags.RequestDelay,
			TimeoutSecs:  p.flags.TimeoutSecs,
		})
		if err != nil {
			return fmt.Errorf("failed to create translator: %w", err)
		}
	}

	if p.flags.MaxCostINR > 0 {
		est := tr.EstimateCost(manifest.TotalWords)
		fmt.Printf("Estimated translation cost: INR %.2f\n", est)
		if est > p.flags.MaxCostINR {
			return fmt.Errorf("estimated cost INR %.2f exceeds the limit of INR %.2f; raise --max-cost or pick a cheaper model", est, p.flags.MaxCostINR)
		}
	}

	pl := pipeline.New(pipeline.Options{
		BatchSize:   p.flags.BatchSize,
		FlushEvery:  p.flags.FlushEvery,
		Concurrency: p.flags.Concurrency,
		Retry: pipeline.RetryPolicy{
			MaxAttempts: p.flags.Retries,
			Base:        secondsToDuration(p.flags.BackoffBase),
			Multiplier:  p.flags.BackoffMultiplier,
			Max:         secondsToDuration(p.flags.BackoffMax),
		},
		QA: pipeline.QAConfig{
			SampleRate:          p.flags.QASampleRate,
			MinSamples:          p.flags.QAMinSamples,
			DevanagariThreshold: p.flags.DevanagariThreshold,
			MinLengthRatio:      p.flags.MinLengthRatio,
			MaxLengthRatio:      p.flags.MaxLengthRatio,
		},
		OutputCSV:      filepath.Join(p.flags.OutputDir, "dataset.csv"),
		OutputJSON:     filepath.Join(p.flags.OutputDir, "dataset.json"),
		FailedOutput:   filepath.Join(p.flags.OutputDir, "failed", "translation_failed.json"),
		QCFailedOutput: filepath.Join(p.flags.OutputDir, "failed", "translation_qc_failed.json"),
	}, p.store)

	stats, err := pl.Translate(ctx, manifest.Chunks, tr)
	if err != nil {
		return err
	}

	duration := time.Since(start)
	p.printReport(sourceLabel, manifest, stats, duration)

	if err := p.writeRunMetadata(sourceLabel, tr, manifest, stats, duration); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to write run metadata: %v\n", err)
	}

	return nil
}

// printReport writes the final run summary
func (p *Processor) printReport(sourceLabel string, manifest *chunker.Manifest, stats pipeline.Stats, duration time.Duration) {
	fmt.Printf("\n=== Dataset Generation Summary ===\n")
	fmt.Printf("Source: %s\n", sourceLabel)
	fmt.Printf("Total words: %d\n", manifest.TotalWords)
	fmt.Printf("Chunks: %d total, %d unique, %d duplicates\n",
		manifest.TotalChunks, manifest.UniqueChunks, manifest.DuplicateChunks)
	fmt.Printf("Translated pairs: %d\n", stats.Translated)
	if stats.Failed > 0 {
		fmt.Printf("Failed chunks: %d\n", stats.Failed)
	}
	if stats.QCFailed > 0 {
		fmt.Printf("QC failures: %d\n", stats.QCFailed)
	}
	fmt.Printf("Duration: %s\n", duration.Round(time.Second))
	fmt.Printf("==================================\n")
}

// statsFromSummary rebuilds the run counts a completed translation
// stage recorded. Summary values come back from JSON as float64.
func statsFromSummary(summary map[string]any) pipeline.Stats {
	return pipeline.Stats{
		Translated: summaryCount(summary, "total_translated"),
		Failed:     summaryCount(summary, "failed"),
		QCFailed:   summaryCount(summary, "qc_failed"),
	}
}

func summaryCount(summary map[string]any, key string) int {
	switch v := summary[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// writeRunMetadata records how the dataset was produced next to it
func (p *Processor) writeRunMetadata(sourceLabel string, tr translator.Translator, manifest *chunker.Manifest, stats pipeline.Stats, duration time.Duration) error {
	metadata := map[string]any{
		"generated_at":     time.Now().Format(time.RFC3339),
		"duration_seconds": duration.Seconds(),
		"source":           sourceLabel,
		"translator":       tr.ModelInfo(),
		"config": map[string]any{
			"chunk_size":  p.flags.ChunkSize,
			"batch_size":  p.flags.BatchSize,
			"concurrency": p.flags.Concurrency,
			"dedup":       !p.flags.NoDedup,
			"provider":    p.flags.Provider,
			"model":       p.flags.Model,
		},
		"statistics": map[string]any{
			"total_words":      manifest.TotalWords,
			"total_chunks":     manifest.TotalChunks,
			"unique_chunks":    manifest.UniqueChunks,
			"duplicate_chunks": manifest.DuplicateChunks,
			"chunk_size":       manifest.ChunkSize,
			"translated":       stats.Translated,
			"failed":           stats.Failed,
			"qc_failed":        stats.QCFailed,
		},
		"outputs": map[string]string{
			"csv":  "dataset.csv",
			"json": "dataset.json",
		},
	}

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(p.flags.OutputDir, "metadata.json")
	return os.WriteFile(path, data, 0644)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
