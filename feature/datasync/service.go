package datasync

import (
	"context"

	"dict-manager/core/reconcile"

	"go.uber.org/zap"
)

// StartupView is the startup status with the prompt to show for it.
type StartupView struct {
	Status reconcile.StartupStatus                   `json:"status"`
	Prompt reconcile.Prompt[reconcile.StartupAction] `json:"prompt"`
}

// ExitView is the shutdown status with the prompt to show for it.
type ExitView struct {
	Status reconcile.ExitStatus                   `json:"status"`
	Prompt reconcile.Prompt[reconcile.ExitAction] `json:"prompt"`
}

// Outcome reports what an automatic run did. Result is nil when nothing ran.
type Outcome[V any] struct {
	View   V                 `json:"view"`
	Result *reconcile.Result `json:"result,omitempty"`
}

// Service applies the reconciliation policy around an Engine.
type Service struct {
	engine *reconcile.Engine
	cfg    reconcile.Config
	logger *zap.Logger
}

// NewService creates a sync service.
func NewService(engine *reconcile.Engine, cfg reconcile.Config, logger *zap.Logger) *Service {
	return &Service{engine: engine, cfg: cfg, logger: logger}
}

// Startup analyzes the startup state.
func (s *Service) Startup(ctx context.Context) (StartupView, error) {
	status, err := s.engine.AnalyzeStartup(ctx)
	if err != nil {
		return StartupView{}, err
	}
	return StartupView{Status: status, Prompt: reconcile.StartupMessage(status)}, nil
}

// ApplyStartup runs the user's startup choice.
func (s *Service) ApplyStartup(ctx context.Context, choice reconcile.StartupChoice) reconcile.Result {
	return s.engine.PerformUserChoice(ctx, choice)
}

// AutoStartup imports the CSV directory when that is the recommendation and
// auto import is enabled. Anything else is left to the caller.
func (s *Service) AutoStartup(ctx context.Context) (Outcome[StartupView], error) {
	view, err := s.Startup(ctx)
	if err != nil {
		return Outcome[StartupView]{}, err
	}
	out := Outcome[StartupView]{View: view}

	switch view.Status.Recommendation {
	case reconcile.RecommendAutoImport:
		if !s.cfg.AutoImport {
			s.logger.Info("Auto import disabled, skipping", zap.String("csv_dir", s.engine.CSVDir()))
			return out, nil
		}
		res := s.engine.PerformAutoImport(ctx)
		out.Result = &res
	case reconcile.RecommendUserConfirm:
		s.logger.Warn("Startup sync needs a decision",
			zap.String("conflict", string(view.Status.ConflictType)),
			zap.String("title", view.Prompt.Title),
		)
	}
	return out, nil
}

// Exit analyzes the shutdown state.
func (s *Service) Exit(ctx context.Context) (ExitView, error) {
	status, err := s.engine.AnalyzeExit(ctx)
	if err != nil {
		return ExitView{}, err
	}
	return ExitView{Status: status, Prompt: reconcile.ExitMessage(status)}, nil
}

// ApplyExit runs the user's shutdown choice.
func (s *Service) ApplyExit(ctx context.Context, choice reconcile.ExitChoice) reconcile.Result {
	return s.engine.PerformExitChoice(ctx, choice)
}

// AutoExit exports when that is the recommendation and auto export is enabled.
func (s *Service) AutoExit(ctx context.Context) (Outcome[ExitView], error) {
	view, err := s.Exit(ctx)
	if err != nil {
		return Outcome[ExitView]{}, err
	}
	out := Outcome[ExitView]{View: view}

	switch view.Status.Recommendation {
	case reconcile.RecommendAutoExport:
		if !s.cfg.AutoExport {
			s.logger.Info("Auto export disabled, skipping", zap.String("csv_dir", s.engine.CSVDir()))
			return out, nil
		}
		res := s.engine.PerformAutoExport(ctx)
		out.Result = &res
	case reconcile.RecommendExitUserConfirm:
		s.logger.Warn("Unsaved changes at shutdown",
			zap.Int64("db_games", view.Status.DBGameCount),
			zap.Int64("db_entries", view.Status.DBEntryCount),
		)
	}
	return out, nil
}
