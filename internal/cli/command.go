package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/nicoforge/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nicoforge [input.txt]",
		Short: "English-Hindi Parallel Dataset Generator",
		Long: `nicoforge builds an English-Hindi parallel dataset from cleaned text.

The input text is normalized, split into fixed-size word chunks,
deduplicated by content hash and translated in batches through an
LLM provider. Runs are resumable: interrupting the pipeline keeps
completed chunks and the next run picks up the remainder.

Examples:
  nicoforge book.txt                     # Run the full pipeline
  nicoforge book.txt --chunk-size 80     # Smaller chunks
  nicoforge book.txt --force-restart     # Discard state and start over
  nicoforge --list-models                # List usable chat models`,
		Args:    cobra.MaximumNArgs(1),
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.nicoforge.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory")
	cmd.Flags().StringVar(&flags.SourceLabel, "source-label", "", "Source label stored in chunk metadata (default: input file name)")
	cmd.Flags().BoolVar(&flags.ForceRestart, "force-restart", false, "Clear state and restart from the beginning")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Archive the output directory and exit")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available chat models for the current API key")

	// Chunking flags
	cmd.Flags().IntVar(&flags.ChunkSize, "chunk-size", flags.ChunkSize, "Words per chunk")
	cmd.Flags().BoolVar(&flags.NoDedup, "no-dedup", false, "Disable chunk deduplication")
	cmd.Flags().BoolVar(&flags.FuzzyMatching, "fuzzy", false, "Reserved for near-duplicate matching (currently a no-op)")

	// Translation flags
	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "Translation provider: openrouter, openai or gemini")
	cmd.Flags().StringVar(&flags.Model, "model", flags.Model, "Model name for the translation provider")
	cmd.Flags().StringVar(&flags.BaseURL, "base-url", flags.BaseURL, "OpenAI-compatible API base URL")
	cmd.Flags().StringVar(&flags.CustomPrompt, "prompt", "", "Custom prompt template with a %s slot for the text")
	cmd.Flags().Float64Var(&flags.RequestDelay, "request-delay", flags.RequestDelay, "Seconds between requests within a batch")
	cmd.Flags().IntVar(&flags.TimeoutSecs, "timeout", flags.TimeoutSecs, "Per-request timeout in seconds")
	cmd.Flags().IntVar(&flags.BatchSize, "batch-size", flags.BatchSize, "Chunks per translation batch")
	cmd.Flags().IntVar(&flags.FlushEvery, "flush-every", flags.FlushEvery, "Flush interim output every N batches")
	cmd.Flags().IntVar(&flags.Concurrency, "concurrency", flags.Concurrency, "Batches translated in parallel")

	// Retry flags
	cmd.Flags().IntVar(&flags.Retries, "retries", flags.Retries, "Attempts per batch on transient provider errors")
	cmd.Flags().Float64Var(&flags.BackoffBase, "backoff-base", flags.BackoffBase, "Base backoff in seconds")
	cmd.Flags().Float64Var(&flags.BackoffMultiplier, "backoff-multiplier", flags.BackoffMultiplier, "Backoff growth factor")
	cmd.Flags().Float64Var(&flags.BackoffMax, "backoff-max", flags.BackoffMax, "Backoff cap in seconds")

	// QA flags
	cmd.Flags().Float64Var(&flags.QASampleRate, "qa-sample-rate", flags.QASampleRate, "Fraction of pairs to quality-sample")
	cmd.Flags().IntVar(&flags.QAMinSamples, "qa-min-samples", flags.QAMinSamples, "Minimum QA sample size")
	cmd.Flags().Float64Var(&flags.DevanagariThreshold, "devanagari-threshold", flags.DevanagariThreshold, "Minimum Devanagari share among alphanumerics")
	cmd.Flags().Float64Var(&flags.MinLengthRatio, "min-length-ratio", flags.MinLengthRatio, "Minimum Hindi/English length ratio")
	cmd.Flags().Float64Var(&flags.MaxLengthRatio, "max-length-ratio", flags.MaxLengthRatio, "Maximum Hindi/English length ratio")

	// State and cost flags
	cmd.Flags().StringVar(&flags.StateBackend, "state-backend", flags.StateBackend, "State store backend: file or sqlite")
	cmd.Flags().Float64Var(&flags.MaxCostINR, "max-cost", flags.MaxCostINR, "Abort before translating when the estimated cost (INR) exceeds this (0 disables)")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("outputs.base_dir", cmd.Flags().Lookup("output"))
	viper.BindPFlag("pipeline.chunk_size", cmd.Flags().Lookup("chunk-size"))
	viper.BindPFlag("pipeline.batch_size", cmd.Flags().Lookup("batch-size"))
	viper.BindPFlag("pipeline.flush_every", cmd.Flags().Lookup("flush-every"))
	viper.BindPFlag("pipeline.concurrency", cmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("deduplication.disabled", cmd.Flags().Lookup("no-dedup"))
	viper.BindPFlag("deduplication.fuzzy_matching", cmd.Flags().Lookup("fuzzy"))
	viper.BindPFlag("translation.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("translation.model", cmd.Flags().Lookup("model"))
	viper.BindPFlag("translation.base_url", cmd.Flags().Lookup("base-url"))
	viper.BindPFlag("translation.request_delay", cmd.Flags().Lookup("request-delay"))
	viper.BindPFlag("translation.timeout", cmd.Flags().Lookup("timeout"))
	viper.BindPFlag("retry.retries", cmd.Flags().Lookup("retries"))
	viper.BindPFlag("retry.backoff_base", cmd.Flags().Lookup("backoff-base"))
	viper.BindPFlag("retry.backoff_multiplier", cmd.Flags().Lookup("backoff-multiplier"))
	viper.BindPFlag("retry.backoff_max", cmd.Flags().Lookup("backoff-max"))
	viper.BindPFlag("qa.sample_rate", cmd.Flags().Lookup("qa-sample-rate"))
	viper.BindPFlag("qa.min_samples", cmd.Flags().Lookup("qa-min-samples"))
	viper.BindPFlag("qa.devanagari_threshold", cmd.Flags().Lookup("devanagari-threshold"))
	viper.BindPFlag("qa.min_length_ratio", cmd.Flags().Lookup("min-length-ratio"))
	viper.BindPFlag("qa.max_length_ratio", cmd.Flags().Lookup("max-length-ratio"))
	viper.BindPFlag("state.backend", cmd.Flags().Lookup("state-backend"))
	viper.BindPFlag("cost.abort_threshold", cmd.Flags().Lookup("max-cost"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".nicoforge" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".nicoforge")
	}

	// Environment variables
	viper.SetEnvPrefix("NICOFORGE")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetAPIKey retrieves the provider API key from environment or config
func GetAPIKey(provider string) string {
	envVars := map[string]string{
		"openrouter": "OPENROUTER_API_KEY",
		"openai":     "OPENAI_API_KEY",
		"gemini":     "GEMINI_API_KEY",
	}
	if envVar, ok := envVars[provider]; ok {
		if key := os.Getenv(envVar); key != "" {
			return key
		}
	}

	// Then check config file
	return viper.GetString("translation.api_key")
}
