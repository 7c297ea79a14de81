package cmd

import (
	"context"
	"fmt"
	"strconv"

	"dict-manager/feature/dictionary"
	"dict-manager/feature/dictionary/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the csv and ime commands
	csvDir    string
	csvFile   string
	imeVendor string
	imeOutput string
)

// csvCmd is the parent command for the CSV mirror.
var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export or import the CSV mirror",
}

var csvExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the database into the CSV directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		files, err := a.csv.Export(ctx, csvDir)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		a.logger.Info("Exported CSV files", zap.Int("files", len(files)), zap.Strings("paths", files))
		return nil
	},
}

var csvImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Merge the CSV directory, or a single file, into the database",
	Long: `Merge CSV files into the database. Existing games, categories and entries
are kept; only missing rows are added.

Examples:
  # Import the configured CSV directory
  csv import

  # Import one per-game file
  csv import --file csv/game-ff14.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		var summary any
		if csvFile != "" {
			summary, err = a.csv.ImportFile(ctx, csvFile)
		} else {
			summary, err = a.csv.Import(ctx, csvDir)
		}
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		a.logger.Info("Import completed", zap.Any("summary", summary))
		return nil
	},
}

var csvPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Restore the CSV directory from the object storage mirror",
	Long: `Download the mirrored CSV files into the CSV directory, overwriting local
copies. Requires storage.enabled. Run "sync startup" afterwards to import them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		files, err := a.csv.Pull(ctx, csvDir)
		if err != nil {
			return fmt.Errorf("pull failed: %w", err)
		}
		a.logger.Info("Pulled CSV files", zap.Int("files", len(files)), zap.Strings("paths", files))
		return nil
	},
}

// imeCmd exports vendor dictionaries.
var imeCmd = &cobra.Command{
	Use:   "ime [game id or code]",
	Short: "Export a game's entries as an IME dictionary",
	Long: `Export a game's entries for an IME.

Examples:
  # Google IME file under the export directory
  ime ff14 --vendor google

  # ATOK file at a given path
  ime 3 --vendor atok --output dict.csv

  # Tab separated MS-IME file
  ime ff14 --vendor msime

  # Suggested file names
  ime paths ff14`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		game, err := findGame(ctx, a.store, args[0])
		if err != nil {
			return err
		}

		var path string
		if imeVendor == "msime" {
			path, err = a.csv.ExportMicrosoftIME(ctx, game.ID)
		} else {
			vendor, perr := models.ParseVendor(imeVendor)
			if perr != nil {
				return perr
			}
			path, err = a.csv.ExportIME(ctx, game.ID, vendor, imeOutput)
		}
		if err != nil {
			return fmt.Errorf("IME export failed: %w", err)
		}
		a.logger.Info("Exported IME dictionary", zap.String("game", game.Name), zap.String("path", path))
		return nil
	},
}

var imePathsCmd = &cobra.Command{
	Use:   "paths [game id or code]",
	Short: "Show suggested export file names",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		var gameID *uint
		if len(args) == 1 {
			game, err := findGame(ctx, a.store, args[0])
			if err != nil {
				return err
			}
			gameID = &game.ID
		}
		paths, err := a.csv.SuggestPaths(ctx, gameID)
		if err != nil {
			return err
		}
		printTable([]string{"TARGET", "PATH"}, [][]string{
			{"Git CSV", paths.GitCSV},
			{"Google IME", paths.GoogleCSV},
			{"MS-IME", paths.MsCSV},
			{"ATOK", paths.AtokCSV},
		})
		return nil
	},
}

func init() {
	csvCmd.AddCommand(csvExportCmd, csvImportCmd, csvPullCmd)
	csvCmd.PersistentFlags().StringVar(&csvDir, "dir", "", "CSV directory (defaults to sync.csv_dir)")
	csvImportCmd.Flags().StringVar(&csvFile, "file", "", "Import a single per-game file")

	imeCmd.AddCommand(imePathsCmd)
	imeCmd.Flags().StringVar(&imeVendor, "vendor", "google", "Target IME (google, ms, atok, msime)")
	imeCmd.Flags().StringVar(&imeOutput, "output", "", "Output file (defaults to the suggested path)")

	RootCmd.AddCommand(csvCmd, imeCmd)
}

// findGame resolves a numeric id or a game code.
func findGame(ctx context.Context, store *dictionary.Store, ref string) (*models.Game, error) {
	var (
		game *models.Game
		err  error
	)
	if id, perr := strconv.ParseUint(ref, 10, 64); perr == nil {
		game, err = store.Games.GetByID(ctx, uint(id))
	} else {
		game, err = store.Games.GetByCode(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("%w: game %q", dictionary.ErrNotFound, ref)
	}
	return game, nil
}
