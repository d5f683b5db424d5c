package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/nicoforge/internal"
	"codeberg.org/snonux/nicoforge/internal/dataset"
)

var (
	// Flags
	outputPath string
	renumber   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dsmerge [dataset...]",
	Short: "Merge parallel dataset files",
	Long: `dsmerge combines several dataset files produced by nicoforge
into one. Inputs may be JSON or CSV in any mix; the output format
follows the output file's extension.

Example:
  dsmerge -o combined.json run1/dataset.json run2/dataset.json
  dsmerge -o combined.csv --renumber run1/dataset.csv run2/dataset.json`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runCommand,
	Version: internal.Version,
}

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "merged_dataset.json", "Output file (.json or .csv)")
	rootCmd.Flags().BoolVar(&renumber, "renumber", false, "Reassign dense ascending chunk IDs across the merged result")
}

func runCommand(cmd *cobra.Command, args []string) error {
	merger := &dataset.Merger{Renumber: renumber}

	total, err := merger.Merge(args, outputPath)
	if err != nil {
		return err
	}

	fmt.Printf("Merged %d pairs into %s\n", total, outputPath)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
