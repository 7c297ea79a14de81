package dictionary

import (
	"context"
	"strings"

	"dict-manager/feature/dictionary/models"

	"go.uber.org/zap"
)

// GameSummary is a game with its entry count.
type GameSummary struct {
	models.Game
	EntryCount int64 `json:"entry_count"`
}

// Service exposes dictionary operations to the HTTP and CLI surfaces.
type Service struct {
	store     *Store
	suggester *ReadingSuggester
	logger    *zap.Logger
}

// NewService creates a dictionary service. suggester may be nil.
func NewService(store *Store, suggester *ReadingSuggester, logger *zap.Logger) *Service {
	return &Service{store: store, suggester: suggester, logger: logger}
}

// Store returns the underlying store.
func (s *Service) Store() *Store {
	return s.store
}

// GameSummaries lists all games with their entry counts.
func (s *Service) GameSummaries(ctx context.Context) ([]GameSummary, error) {
	games, err := s.store.Games.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]GameSummary, 0, len(games))
	for _, g := range games {
		n, err := s.store.Entries.CountByGame(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, GameSummary{Game: g, EntryCount: n})
	}
	return out, nil
}

// SuggestReading returns a hiragana reading for word, or an empty string
// when no suggester is configured.
func (s *Service) SuggestReading(word string) string {
	if s.suggester == nil {
		return ""
	}
	return s.suggester.Suggest(word)
}

// AddEntry creates an entry. A blank reading is filled from SuggestReading.
func (s *Service) AddEntry(ctx context.Context, in NewEntry) (*models.Entry, error) {
	if strings.TrimSpace(in.Reading) == "" && strings.TrimSpace(in.Word) != "" {
		in.Reading = s.SuggestReading(in.Word)
		s.logger.Debug("Suggested reading", zap.String("word", in.Word), zap.String("reading", in.Reading))
	}
	return s.store.Entries.Create(ctx, in)
}
