package main

import (
	"context"
	"os"
	"os/signal"

	"coursework-roadmap/internal/helpers"

	"github.com/spf13/cobra"
)

var (
	configFile string
	useLocal   bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		helpers.PrintError("Error: %v", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "roadmap",
		Short: "Coursework Roadmap - track progress through decomposed coursework",
		Long: `Coursework Roadmap turns a coursework specification into milestones and
tasks, tracks the status of each task and keeps your progress saved.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "~/.coursework-roadmap/config.yaml", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&useLocal, "local", false, "Use local drafts instead of the coursework service")

	rootCmd.AddCommand(
		newInitCmd(),
		newRegisterCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newWhoAmICmd(),
		newListCmd(),
		newShowCmd(),
		newTaskCmd(),
		newAdvanceCmd(),
		newSetStatusCmd(),
		newEditCmd(),
		newRenameCmd(),
		newDeleteCmd(),
		newDecomposeCmd(),
		newImportCmd(),
		newExportCmd(),
		newChatCmd(),
		newClearChatCmd(),
	)
	return rootCmd
}
