// Package reconcile decides how the live dictionary store and its on-disk
// CSV mirror are brought back in line at the two lifecycle points of a
// session: startup and shutdown.
//
// # Startup
//
// AnalyzeStartup counts games and entries on both sides and classifies the
// pair. The rules are evaluated in order and the first match wins:
//
//  1. CSV directory or files absent: csv_missing when the store has data,
//     otherwise safe with skip_import.
//  2. Store has more games or more entries than the CSV: db_has_more_data.
//  3. Both sides hold data: mixed_data.
//  4. Otherwise safe with auto_import.
//
// # Shutdown
//
// The Engine snapshots the store counts when it is built. AnalyzeExit
// compares the current counts to that snapshot; any difference asks the
// user, a populated store with an empty CSV mirror is exported
// automatically, and everything else is skipped. One-shot commands pass
// WithCSVBaseline so the snapshot comes from the CSV directory instead.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(ctx, store, codec, afero.NewOsFs(), cfg.Sync.CSVDir, logger)
//
//	status, err := engine.AnalyzeStartup(ctx)
//	switch status.Recommendation {
//	case reconcile.RecommendAutoImport:
//	    res := engine.PerformAutoImport(ctx)
//	case reconcile.RecommendUserConfirm:
//	    prompt := reconcile.StartupMessage(status)
//	    res := engine.PerformUserChoice(ctx, reconcile.StartupChoice{Action: picked, Confirmed: true})
//	}
//
// Action methods never return errors; failures come back in Result.
package reconcile
