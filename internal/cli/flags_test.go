package cli

import (
	"reflect"
	"testing"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	// Test default values
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"OutputDir", flags.OutputDir, "outputs"},
		{"ChunkSize", flags.ChunkSize, 100},
		{"Provider", flags.Provider, "openrouter"},
		{"Model", flags.Model, "google/gemini-2.0-flash-thinking-exp:free"},
		{"BaseURL", flags.BaseURL, "https://openrouter.ai/api/v1"},
		{"TimeoutSecs", flags.TimeoutSecs, 30},
		{"BatchSize", flags.BatchSize, 20},
		{"FlushEvery", flags.FlushEvery, 5},
		{"Concurrency", flags.Concurrency, 1},
		{"Retries", flags.Retries, 3},
		{"BackoffBase", flags.BackoffBase, 2.0},
		{"BackoffMultiplier", flags.BackoffMultiplier, 2.0},
		{"BackoffMax", flags.BackoffMax, 60.0},
		{"QASampleRate", flags.QASampleRate, 0.01},
		{"QAMinSamples", flags.QAMinSamples, 50},
		{"DevanagariThreshold", flags.DevanagariThreshold, 0.7},
		{"MinLengthRatio", flags.MinLengthRatio, 0.5},
		{"MaxLengthRatio", flags.MaxLengthRatio, 2.0},
		{"StateBackend", flags.StateBackend, "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Test boolean defaults (should be false)
	boolTests := []struct {
		name  string
		value bool
	}{
		{"ForceRestart", flags.ForceRestart},
		{"Archive", flags.Archive},
		{"ListModels", flags.ListModels},
		{"NoDedup", flags.NoDedup},
		{"FuzzyMatching", flags.FuzzyMatching},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != false {
				t.Errorf("%s = %v, want false", tt.name, tt.value)
			}
		})
	}

	// Test string defaults (should be empty)
	stringTests := []struct {
		name  string
		value string
	}{
		{"CfgFile", flags.CfgFile},
		{"SourceLabel", flags.SourceLabel},
		{"CustomPrompt", flags.CustomPrompt},
	}

	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Errorf("%s = %v, want empty string", tt.name, tt.value)
			}
		})
	}
}

func TestFlagsStructure(t *testing.T) {
	// Test that Flags struct has all expected fields
	flags := &Flags{}
	flagsType := reflect.TypeOf(*flags)

	expectedFields := []string{
		"CfgFile", "OutputDir", "SourceLabel", "ForceRestart", "Archive", "ListModels",
		"ChunkSize", "NoDedup", "FuzzyMatching",
		"Provider", "Model", "BaseURL", "CustomPrompt", "RequestDelay", "TimeoutSecs",
		"BatchSize", "FlushEvery", "Concurrency",
		"Retries", "BackoffBase", "BackoffMultiplier", "BackoffMax",
		"QASampleRate", "QAMinSamples", "DevanagariThreshold", "MinLengthRatio", "MaxLengthRatio",
		"StateBackend", "MaxCostINR",
	}

	for _, fieldName := range expectedFields {
		t.Run("has_field_"+fieldName, func(t *testing.T) {
			if _, ok := flagsType.FieldByName(fieldName); !ok {
				t.Errorf("Flags struct missing field: %s", fieldName)
			}
		})
	}
}
