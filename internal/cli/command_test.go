package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestCreateRootCommand(t *testing.T) {
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "nicoforge [input.txt]" {
		t.Errorf("Expected Use to be 'nicoforge [input.txt]', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "English-Hindi Parallel Dataset Generator") {
		t.Errorf("Expected Short description to contain 'English-Hindi Parallel Dataset Generator'")
	}

	// Test that flags are set up
	flagTests := []struct {
		name     string
		expected bool
	}{
		{"config", true},
		{"output", true},
		{"source-label", true},
		{"force-restart", true},
		{"archive", true},
		{"list-models", true},
		{"chunk-size", true},
		{"no-dedup", true},
		{"fuzzy", true},
		{"provider", true},
		{"model", true},
		{"base-url", true},
		{"prompt", true},
		{"request-delay", true},
		{"timeout", true},
		{"batch-size", true},
		{"flush-every", true},
		{"concurrency", true},
		{"retries", true},
		{"backoff-base", true},
		{"backoff-multiplier", true},
		{"backoff-max", true},
		{"qa-sample-rate", true},
		{"qa-min-samples", true},
		{"devanagari-threshold", true},
		{"min-length-ratio", true},
		{"max-length-ratio", true},
		{"state-backend", true},
		{"max-cost", true},
	}

	for _, tt := range flagTests {
		t.Run("flag_"+tt.name, func(t *testing.T) {
			var flag *pflag.Flag
			if tt.name == "config" {
				flag = cmd.PersistentFlags().Lookup(tt.name)
			} else {
				flag = cmd.Flags().Lookup(tt.name)
			}
			if flag == nil && tt.expected {
				t.Errorf("Expected flag %s to exist", tt.name)
			}
		})
	}
}

func TestSetupFlags(t *testing.T) {
	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	// Test default values
	outputFlag := cmd.Flags().Lookup("output")
	if outputFlag == nil {
		t.Fatal("output flag not found")
	}
	if outputFlag.DefValue != "outputs" {
		t.Errorf("Expected default output dir to be outputs, got %s", outputFlag.DefValue)
	}

	chunkFlag := cmd.Flags().Lookup("chunk-size")
	if chunkFlag == nil {
		t.Fatal("chunk-size flag not found")
	}
	if chunkFlag.DefValue != "100" {
		t.Errorf("Expected default chunk size to be 100, got %s", chunkFlag.DefValue)
	}

	providerFlag := cmd.Flags().Lookup("provider")
	if providerFlag == nil {
		t.Fatal("provider flag not found")
	}
	if providerFlag.DefValue != "openrouter" {
		t.Errorf("Expected default provider to be openrouter, got %s", providerFlag.DefValue)
	}
}

func TestInitConfig(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	tests := []struct {
		name      string
		cfgFile   string
		setupFunc func(t *testing.T) string
	}{
		{
			name:    "with config file",
			cfgFile: "test-config.yaml",
			setupFunc: func(t *testing.T) string {
				tmpDir := t.TempDir()
				cfgPath := filepath.Join(tmpDir, "test-config.yaml")
				content := `translation:
  provider: gemini
  api_key: test-key
pipeline:
  chunk_size: 80`
				err := os.WriteFile(cfgPath, []byte(content), 0644)
				if err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
		},
		{
			name:    "without config file",
			cfgFile: "",
			setupFunc: func(t *testing.T) string {
				return ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper for each test
			viper.Reset()

			cfgPath := tt.setupFunc(t)
			if tt.cfgFile != "" && cfgPath != "" {
				tt.cfgFile = cfgPath
			}

			InitConfig(tt.cfgFile)

			// Test environment variable prefix
			os.Setenv("NICOFORGE_TEST_VAR", "test-value")
			defer os.Unsetenv("NICOFORGE_TEST_VAR")

			if viper.GetString("test_var") != "test-value" {
				t.Error("Environment variable not properly loaded")
			}
		})
	}
}

func TestGetAPIKey(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	tests := []struct {
		name      string
		provider  string
		envVar    string
		envKey    string
		configKey string
		expected  string
	}{
		{
			name:     "openrouter from environment",
			provider: "openrouter",
			envVar:   "OPENROUTER_API_KEY",
			envKey:   "env-or-key",
			expected: "env-or-key",
		},
		{
			name:     "openai from environment",
			provider: "openai",
			envVar:   "OPENAI_API_KEY",
			envKey:   "env-oa-key",
			expected: "env-oa-key",
		},
		{
			name:     "gemini from environment",
			provider: "gemini",
			envVar:   "GEMINI_API_KEY",
			envKey:   "env-gm-key",
			expected: "env-gm-key",
		},
		{
			name:      "from config when no env",
			provider:  "openrouter",
			envVar:    "OPENROUTER_API_KEY",
			configKey: "config-key",
			expected:  "config-key",
		},
		{
			name:     "empty when neither set",
			provider: "openrouter",
			envVar:   "OPENROUTER_API_KEY",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper
			viper.Reset()

			if tt.envKey != "" {
				os.Setenv(tt.envVar, tt.envKey)
				defer os.Unsetenv(tt.envVar)
			} else {
				os.Unsetenv(tt.envVar)
			}

			if tt.configKey != "" {
				viper.Set("translation.api_key", tt.configKey)
			}

			got := GetAPIKey(tt.provider)
			if got != tt.expected {
				t.Errorf("GetAPIKey(%q) = %v, want %v", tt.provider, got, tt.expected)
			}
		})
	}
}

func TestBindFlagsToViper(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	// Reset viper
	viper.Reset()

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	// Set some flag values
	cmd.Flags().Set("chunk-size", "80")
	cmd.Flags().Set("provider", "gemini")
	cmd.Flags().Set("qa-sample-rate", "0.05")

	// Test that values are bound
	if viper.GetInt("pipeline.chunk_size") != 80 {
		t.Errorf("Expected pipeline.chunk_size to be 80, got %d", viper.GetInt("pipeline.chunk_size"))
	}

	if viper.GetString("translation.provider") != "gemini" {
		t.Errorf("Expected translation.provider to be gemini, got %s", viper.GetString("translation.provider"))
	}

	if viper.GetFloat64("qa.sample_rate") != 0.05 {
		t.Errorf("Expected qa.sample_rate to be 0.05, got %f", viper.GetFloat64("qa.sample_rate"))
	}
}
