package cmd

import (
	"context"
	"fmt"
	"strconv"

	"dict-manager/feature/dictionary"
	"dict-manager/feature/dictionary/models"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	// Flags shared by the dictionary commands
	flagName        string
	flagCode        string
	flagGoogle      string
	flagMS          string
	flagATOK        string
	flagReading     string
	flagWord        string
	flagDescription string
	flagGame        string
)

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Manage games",
}

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories",
}

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage dictionary entries",
}

// withApp runs fn against a bootstrapped app.
func withApp(fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(ctx, a, cmd, args)
	}
}

// changed returns a pointer to value when the flag was set.
func changed(flags *pflag.FlagSet, name, value string) *string {
	if !flags.Changed(name) {
		return nil
	}
	return &value
}

func parseUint(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", dictionary.ErrInvalidInput, s)
	}
	return uint(id), nil
}

func findCategory(ctx context.Context, store *dictionary.Store, ref string) (*models.Category, error) {
	var (
		category *models.Category
		err      error
	)
	if id, perr := strconv.ParseUint(ref, 10, 64); perr == nil {
		category, err = store.Categories.GetByID(ctx, uint(id))
	} else {
		category, err = store.Categories.GetByName(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("%w: category %q", dictionary.ErrNotFound, ref)
	}
	return category, nil
}

var gameListCmd = &cobra.Command{
	Use:   "list",
	Short: "List games with their entry counts",
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		games, err := a.dictionary.GameSummaries(ctx)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(games))
		for _, g := range games {
			rows = append(rows, []string{strconv.FormatUint(uint64(g.ID), 10), g.Code, g.Name, strconv.FormatInt(g.EntryCount, 10)})
		}
		printTable([]string{"ID", "CODE", "NAME", "ENTRIES"}, rows)
		return nil
	}),
}

var gameAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a game",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		game, err := a.store.Games.Create(ctx, dictionary.NewGame{Name: args[0], Code: flagCode})
		if err != nil {
			return err
		}
		a.logger.Info("Game created", zap.Uint("id", game.ID), zap.String("code", game.Code))
		return nil
	}),
}

var gameUpdateCmd = &cobra.Command{
	Use:   "update [game id or code]",
	Short: "Rename a game or change its code",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		game, err := findGame(ctx, a.store, args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		updated, err := a.store.Games.Update(ctx, game.ID, dictionary.GameUpdate{
			Name: changed(flags, "name", flagName),
			Code: changed(flags, "code", flagCode),
		})
		if err != nil {
			return err
		}
		a.logger.Info("Game updated", zap.Uint("id", updated.ID), zap.String("name", updated.Name), zap.String("code", updated.Code))
		return nil
	}),
}

var gameDeleteCmd = &cobra.Command{
	Use:   "delete [game id or code]",
	Short: "Delete a game and its entries",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		game, err := findGame(ctx, a.store, args[0])
		if err != nil {
			return err
		}
		if !confirm(fmt.Sprintf("Delete %q and all its entries?", game.Name)) {
			a.logger.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}
		if _, err := a.store.Games.Delete(ctx, game.ID); err != nil {
			return err
		}
		a.logger.Info("Game deleted", zap.Uint("id", game.ID))
		return nil
	}),
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories with their IME labels",
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		categories, err := a.store.Categories.GetAll(ctx)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(categories))
		for _, c := range categories {
			rows = append(rows, []string{
				strconv.FormatUint(uint64(c.ID), 10), c.Name,
				c.VendorName(models.VendorGoogle), c.VendorName(models.VendorMS), c.VendorName(models.VendorATOK),
			})
		}
		printTable([]string{"ID", "NAME", "GOOGLE", "MS", "ATOK"}, rows)
		return nil
	}),
}

var categoryAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		category, err := a.store.Categories.Create(ctx, dictionary.NewCategory{
			Name:          args[0],
			GoogleImeName: models.StringPtr(flagGoogle),
			MsImeName:     models.StringPtr(flagMS),
			AtokName:      models.StringPtr(flagATOK),
		})
		if err != nil {
			return err
		}
		a.logger.Info("Category created", zap.Uint("id", category.ID), zap.String("name", category.Name))
		return nil
	}),
}

var categoryUpdateCmd = &cobra.Command{
	Use:   "update [category id or name]",
	Short: "Change a category's name or IME labels",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		category, err := findCategory(ctx, a.store, args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		updated, err := a.store.Categories.Update(ctx, category.ID, dictionary.CategoryUpdate{
			Name:          changed(flags, "name", flagName),
			GoogleImeName: changed(flags, "google", flagGoogle),
			MsImeName:     changed(flags, "ms", flagMS),
			AtokName:      changed(flags, "atok", flagATOK),
		})
		if err != nil {
			return err
		}
		a.logger.Info("Category updated", zap.Uint("id", updated.ID), zap.String("name", updated.Name))
		return nil
	}),
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete [category id or name]",
	Short: "Delete an unused category",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		category, err := findCategory(ctx, a.store, args[0])
		if err != nil {
			return err
		}
		if _, err := a.store.Categories.Delete(ctx, category.ID); err != nil {
			return err
		}
		a.logger.Info("Category deleted", zap.Uint("id", category.ID))
		return nil
	}),
}

var entryListCmd = &cobra.Command{
	Use:   "list [game id or code]",
	Short: "List a game's entries",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		game, err := findGame(ctx, a.store, args[0])
		if err != nil {
			return err
		}
		entries, err := a.store.Entries.GetByGameWithDetails(ctx, game.ID)
		if err != nil {
			return err
		}
		printEntries(entries)
		return nil
	}),
}

var entrySearchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search readings, words and descriptions",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		var gameID *uint
		if flagGame != "" {
			game, err := findGame(ctx, a.store, flagGame)
			if err != nil {
				return err
			}
			gameID = &game.ID
		}
		entries, err := a.store.Entries.Search(ctx, args[0], gameID)
		if err != nil {
			return err
		}
		printEntries(entries)
		return nil
	}),
}

var entryAddCmd = &cobra.Command{
	Use:   "add [game id or code] [word]",
	Short: "Add an entry; the reading is suggested when omitted",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		game, err := findGame(ctx, a.store, args[0])
		if err != nil {
			return err
		}
		ref, _ := cmd.Flags().GetString("category")
		category, err := findCategory(ctx, a.store, ref)
		if err != nil {
			return err
		}
		entry, err := a.dictionary.AddEntry(ctx, dictionary.NewEntry{
			GameID:      game.ID,
			CategoryID:  category.ID,
			Reading:     flagReading,
			Word:        args[1],
			Description: models.StringPtr(flagDescription),
		})
		if err != nil {
			return err
		}
		a.logger.Info("Entry created", zap.Uint("id", entry.ID), zap.String("reading", entry.Reading), zap.String("word", entry.Word))
		return nil
	}),
}

var entryUpdateCmd = &cobra.Command{
	Use:   "update [entry id]",
	Short: "Change an entry",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		id, err := parseUint(args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		in := dictionary.EntryUpdate{
			Reading:     changed(flags, "reading", flagReading),
			Word:        changed(flags, "word", flagWord),
			Description: changed(flags, "description", flagDescription),
		}
		if flags.Changed("category") {
			ref, _ := flags.GetString("category")
			category, err := findCategory(ctx, a.store, ref)
			if err != nil {
				return err
			}
			in.CategoryID = &category.ID
		}
		entry, err := a.store.Entries.Update(ctx, id, in)
		if err != nil {
			return err
		}
		if entry == nil {
			return fmt.Errorf("%w: entry %d", dictionary.ErrNotFound, id)
		}
		a.logger.Info("Entry updated", zap.Uint("id", entry.ID))
		return nil
	}),
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete [entry id]",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		id, err := parseUint(args[0])
		if err != nil {
			return err
		}
		deleted, err := a.store.Entries.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("%w: entry %d", dictionary.ErrNotFound, id)
		}
		a.logger.Info("Entry deleted", zap.Uint("id", id))
		return nil
	}),
}

var entryReadingCmd = &cobra.Command{
	Use:   "reading [word]",
	Short: "Suggest a hiragana reading for a word",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		fmt.Println(a.dictionary.SuggestReading(args[0]))
		return nil
	}),
}

func printEntries(entries []models.EntryWithDetails) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(e.ID), 10), e.GameName, e.CategoryName, e.Reading, e.Word, e.DescriptionText(),
		})
	}
	printTable([]string{"ID", "GAME", "CATEGORY", "READING", "WORD", "DESCRIPTION"}, rows)
	if len(entries) == 0 {
		fmt.Println(mutedStyle.Render("No entries."))
	}
}

func init() {
	gameAddCmd.Flags().StringVar(&flagCode, "code", "", "Game code (derived from the name when empty)")
	gameUpdateCmd.Flags().StringVar(&flagName, "name", "", "New name")
	gameUpdateCmd.Flags().StringVar(&flagCode, "code", "", "New code")
	gameDeleteCmd.Flags().BoolVar(&syncYes, "yes", false, "Skip the confirmation prompt")
	gameCmd.AddCommand(gameListCmd, gameAddCmd, gameUpdateCmd, gameDeleteCmd)

	for _, c := range []*cobra.Command{categoryAddCmd, categoryUpdateCmd} {
		c.Flags().StringVar(&flagGoogle, "google", "", "Google IME label")
		c.Flags().StringVar(&flagMS, "ms", "", "MS-IME label")
		c.Flags().StringVar(&flagATOK, "atok", "", "ATOK label")
	}
	categoryUpdateCmd.Flags().StringVar(&flagName, "name", "", "New name")
	categoryCmd.AddCommand(categoryListCmd, categoryAddCmd, categoryUpdateCmd, categoryDeleteCmd)

	entryAddCmd.Flags().String("category", "名詞", "Category id or name")
	entryAddCmd.Flags().StringVar(&flagReading, "reading", "", "Reading in hiragana (suggested when empty)")
	entryAddCmd.Flags().StringVar(&flagDescription, "description", "", "Description")
	entryUpdateCmd.Flags().String("category", "", "Category id or name")
	entryUpdateCmd.Flags().StringVar(&flagReading, "reading", "", "Reading")
	entryUpdateCmd.Flags().StringVar(&flagWord, "word", "", "Word")
	entryUpdateCmd.Flags().StringVar(&flagDescription, "description", "", "Description (empty clears it)")
	entrySearchCmd.Flags().StringVar(&flagGame, "game", "", "Limit to a game id or code")
	entryCmd.AddCommand(entryListCmd, entrySearchCmd, entryAddCmd, entryUpdateCmd, entryDeleteCmd, entryReadingCmd)

	RootCmd.AddCommand(gameCmd, categoryCmd, entryCmd)
}
