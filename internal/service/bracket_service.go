package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/opencourt/bracket-engine/internal/bracket"
	"github.com/opencourt/bracket-engine/internal/live"
	"github.com/opencourt/bracket-engine/internal/store"
)

type BracketService struct {
	db    *sqlx.DB
	store *store.TournamentStore
	hub   *live.Hub
}

func NewBracketService(db *sqlx.DB, store *store.TournamentStore, hub *live.Hub) *BracketService {
	return &BracketService{db: db, store: store, hub: hub}
}

// Generate snapshots the category's dupla list, runs the pure generator and
// persists the resulting graph. Generation happens at most once per category;
// regeneration means discarding the whole bracket first.
func (s *BracketService) Generate(ctx context.Context, tournamentID string, categoryID uuid.UUID) (*bracket.Category, error) {
	cat, err := s.store.GetCategory(ctx, categoryID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, categoryID)
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	if cat.Bracket.Status != bracket.BracketNotGenerated {
		return nil, ErrBracketAlreadyGenerated
	}

	bs, err := GenerateBracket(cat.Duplas, cat.ID, *cat)
	if err != nil {
		return nil, err
	}

	updated := *cat
	updated.Bracket = bs

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateMatches(ctx, tx, bs.Matches); err != nil {
		return nil, fmt.Errorf("failed to save matches: %w", err)
	}
	if err := s.store.UpdateCategoryBracket(ctx, tx, updated); err != nil {
		return nil, fmt.Errorf("failed to save bracket state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("bracket generated",
		"category_id", cat.ID,
		"duplas", len(cat.Duplas),
		"matches", len(bs.Matches),
		"seed", bs.Config.ShuffleSeed)

	if s.hub != nil {
		s.hub.BroadcastToRoom(tournamentID, live.Message{Type: "BRACKET_GENERATED", Payload: &updated})
	}

	return &updated, nil
}
