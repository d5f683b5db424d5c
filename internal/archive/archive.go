package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// outputArtifacts are the files and directories a pipeline run leaves
// behind. A directory holding none of them is not archived, so a typo
// in --output cannot move an unrelated directory away.
var outputArtifacts = []string{
	"dataset.csv",
	"dataset.json",
	"chunks_manifest.json",
	"cleaned_text.txt",
	"metadata.json",
	".state",
	"state.db",
}

// ArchiveOutputs moves the output directory of a finished or interrupted
// run into a timestamped directory under a sibling archive/.
func ArchiveOutputs(outputDir string) error {
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		return fmt.Errorf("output directory does not exist: %s", outputDir)
	}
	if !hasPipelineArtifacts(outputDir) {
		return fmt.Errorf("refusing to archive %s: no pipeline outputs found", outputDir)
	}

	parentDir := filepath.Dir(outputDir)
	archiveDir := filepath.Join(parentDir, "archive")

	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	// Generate timestamp
	timestamp := time.Now().Format("20060102-150405")
	archiveName := fmt.Sprintf("outputs-%s", timestamp)
	archivePath := filepath.Join(archiveDir, archiveName)

	// Check if archive already exists (unlikely but possible)
	if _, err := os.Stat(archivePath); err == nil {
		// Add microseconds to make it unique
		timestamp = time.Now().Format("20060102-150405.000000")
		archiveName = fmt.Sprintf("outputs-%s", timestamp)
		archivePath = filepath.Join(archiveDir, archiveName)
	}

	if err := os.Rename(outputDir, archivePath); err != nil {
		return fmt.Errorf("failed to archive output directory: %w", err)
	}

	fmt.Printf("Output directory archived to: %s\n", archivePath)
	return nil
}

func hasPipelineArtifacts(dir string) bool {
	for _, name := range outputArtifacts {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
