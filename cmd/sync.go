package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"dict-manager/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the sync commands
	syncChoice string
	syncYes    bool

	stdin = bufio.NewReader(os.Stdin)
)

// syncCmd is the parent command for CSV reconciliation.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the database with the CSV directory",
	Long: `Compare the database with the CSV directory and decide which side wins.

Examples:
  # Show the startup analysis and choose interactively
  sync startup

  # Keep the database without prompting
  sync startup --choice keep_db --yes

  # Save the database to CSV
  sync shutdown --choice export_csv --yes`,
}

var syncStartupCmd = &cobra.Command{
	Use:   "startup",
	Short: "Analyze and resolve the startup state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		view, err := a.sync.Startup(ctx)
		if err != nil {
			return err
		}
		s := view.Status
		a.logger.Info("Startup analysis",
			zap.Bool("csv_dir_exists", s.CSVDirExists),
			zap.Int64("csv_games", s.CSVGameCount),
			zap.Int64("csv_entries", s.CSVEntryCount),
			zap.Int64("db_games", s.DBGameCount),
			zap.Int64("db_entries", s.DBEntryCount),
			zap.String("conflict", string(s.ConflictType)),
			zap.String("recommendation", string(s.Recommendation)),
		)

		switch s.Recommendation {
		case reconcile.RecommendSkipImport:
			a.logger.Info("Nothing to import")
			return nil
		case reconcile.RecommendAutoImport:
			if syncChoice == "" {
				return applyResult(a.logger, a.sync.ApplyStartup(ctx, reconcile.StartupChoice{
					Action:    reconcile.ActionImportCSV,
					Confirmed: true,
				}))
			}
		}

		action, err := choose(view.Prompt, syncChoice)
		if err != nil {
			return abort(a.logger, err)
		}
		return applyResult(a.logger, a.sync.ApplyStartup(ctx, reconcile.StartupChoice{
			Action:    action,
			Confirmed: confirm(fmt.Sprintf("Apply %q?", action)),
		}))
	},
}

var syncShutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Analyze and resolve the shutdown state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		// Earlier commands changed the store, so compare against the CSV files.
		a, err := bootstrap(ctx, reconcile.WithCSVBaseline())
		if err != nil {
			return err
		}
		defer a.close()

		view, err := a.sync.Exit(ctx)
		if err != nil {
			return err
		}
		s := view.Status
		a.logger.Info("Shutdown analysis",
			zap.Bool("has_changes", s.HasChanges),
			zap.Int64("csv_games", s.CSVGameCount),
			zap.Int64("csv_entries", s.CSVEntryCount),
			zap.Int64("db_games", s.DBGameCount),
			zap.Int64("db_entries", s.DBEntryCount),
			zap.String("recommendation", string(s.Recommendation)),
		)

		if len(view.Prompt.Options) == 0 && syncChoice == "" {
			a.logger.Info("Nothing to export")
			return nil
		}

		action, err := choose(view.Prompt, syncChoice)
		if err != nil {
			return abort(a.logger, err)
		}
		return applyResult(a.logger, a.sync.ApplyExit(ctx, reconcile.ExitChoice{
			Action:    action,
			Confirmed: confirm(fmt.Sprintf("Apply %q?", action)),
		}))
	},
}

func init() {
	syncCmd.AddCommand(syncStartupCmd, syncShutdownCmd)
	syncCmd.PersistentFlags().StringVar(&syncChoice, "choice", "", "Action to apply instead of prompting")
	syncCmd.PersistentFlags().BoolVar(&syncYes, "yes", false, "Auto-confirm the action (non-interactive)")
	RootCmd.AddCommand(syncCmd)
}

// choose returns the flag action when given, otherwise asks on stdin.
func choose[A ~string](p reconcile.Prompt[A], flag string) (A, error) {
	if flag != "" {
		action := A(flag)
		if len(p.Options) > 0 && !p.Allows(action) {
			return "", fmt.Errorf("%w: %q is not offered here", reconcile.ErrInvalidAction, flag)
		}
		return action, nil
	}

	fmt.Printf("\n%s\n\n%s\n\n", titleStyle.Render(p.Title), p.Message)
	for i, o := range p.Options {
		fmt.Printf("  %d) %s %s\n", i+1, o.Label, mutedStyle.Render(o.Description))
	}
	fmt.Print("\nChoice: ")

	line, err := stdin.ReadString('\n')
	if err != nil {
		return "", reconcile.ErrCancelled
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > len(p.Options) {
		return "", reconcile.ErrCancelled
	}
	return p.Options[n-1].Action, nil
}

// confirm asks for a yes/no answer unless --yes was given.
func confirm(question string) bool {
	if syncYes {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("%s [y/N]: ", question)
	response, err := stdin.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true
	}
	return false
}

func applyResult(l *zap.Logger, res reconcile.Result) error {
	if res.Success {
		l.Info("Sync completed")
		return nil
	}
	return abort(l, res.Err())
}

// abort treats a declined prompt or confirmation as a clean exit.
func abort(l *zap.Logger, err error) error {
	if errors.Is(err, reconcile.ErrCancelled) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}
	return err
}
