package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/nicoforge/internal/archive"
	"codeberg.org/snonux/nicoforge/internal/cli"
	"codeberg.org/snonux/nicoforge/internal/models"
	"codeberg.org/snonux/nicoforge/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	// Handle --archive flag
	if flags.Archive {
		if err := archive.ArchiveOutputs(flags.OutputDir); err != nil {
			return fmt.Errorf("failed to archive outputs: %w", err)
		}
		return nil
	}

	// Handle --list-models flag
	if flags.ListModels {
		baseURL := flags.BaseURL
		if flags.Provider == "openai" {
			baseURL = ""
		}
		lister := models.NewLister(cli.GetAPIKey(flags.Provider), baseURL)
		return lister.ListAvailableModels()
	}

	if len(args) == 0 {
		return fmt.Errorf("no input file given, see --help")
	}

	// Interrupts cancel the run; completed chunks stay recorded
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc, err := processor.NewProcessor(flags)
	if err != nil {
		return err
	}
	defer proc.Close()

	if err := proc.Run(ctx, args[0]); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("\nInterrupted. State has been saved. Run again to resume.")
			return nil
		}
		return err
	}

	fmt.Printf("\nDone! Dataset saved to: %s\n", flags.OutputDir)
	return nil
}
