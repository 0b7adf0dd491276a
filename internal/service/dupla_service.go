package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/opencourt/bracket-engine/internal/bracket"
	"github.com/opencourt/bracket-engine/internal/state"
	"github.com/opencourt/bracket-engine/internal/store"
	"github.com/opencourt/bracket-engine/internal/utils"
)

type DuplaService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewDuplaService(db *sqlx.DB, store *store.TournamentStore) *DuplaService {
	return &DuplaService{db: db, store: store}
}

type DuplaInput struct {
	Name    string
	Players [2]bracket.Player
}

// Register validates and persists a new dupla. The core engine leaves the
// registration window to its caller, so the freeze after generation and the
// category cap are enforced here.
func (s *DuplaService) Register(ctx context.Context, categoryID uuid.UUID, input DuplaInput) (*bracket.Dupla, error) {
	cat, err := s.loadCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if cat.Bracket.Status != bracket.BracketNotGenerated {
		return nil, ErrRegistrationClosed
	}
	if err := state.ValidateDuplaPlayers(input.Players[0], input.Players[1]); err != nil {
		return nil, err
	}
	if !state.CanAddDupla(*cat) {
		return nil, ErrCategoryFull
	}

	d := bracket.Dupla{
		ID:           uuid.New(),
		CategoryID:   categoryID,
		Name:         utils.StringOrNil(input.Name),
		Players:      input.Players,
		RegisteredAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateDuplas(ctx, tx, []bracket.Dupla{d}); err != nil {
		return nil, fmt.Errorf("failed to save dupla: %w", err)
	}

	return &d, tx.Commit()
}

// Update replaces a dupla's name and players while registration is open.
func (s *DuplaService) Update(ctx context.Context, categoryID, duplaID uuid.UUID, input DuplaInput) (*bracket.Dupla, error) {
	cat, err := s.loadCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if cat.Bracket.Status != bracket.BracketNotGenerated {
		return nil, ErrRegistrationClosed
	}
	if err := state.ValidateDuplaPlayers(input.Players[0], input.Players[1]); err != nil {
		return nil, err
	}

	var existing *bracket.Dupla
	for i := range cat.Duplas {
		if cat.Duplas[i].ID == duplaID {
			existing = &cat.Duplas[i]
			break
		}
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: dupla %s", ErrNotFound, duplaID)
	}

	d := *existing
	d.Name = utils.StringOrNil(input.Name)
	d.Players = input.Players

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.UpdateDupla(ctx, tx, d); err != nil {
		return nil, fmt.Errorf("failed to update dupla: %w", err)
	}

	return &d, tx.Commit()
}

func (s *DuplaService) Remove(ctx context.Context, categoryID, duplaID uuid.UUID) error {
	cat, err := s.loadCategory(ctx, categoryID)
	if err != nil {
		return err
	}

	if cat.Bracket.Status != bracket.BracketNotGenerated {
		return ErrRegistrationClosed
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.store.DeleteDupla(ctx, tx, duplaID); err != nil {
		return fmt.Errorf("failed to remove dupla: %w", err)
	}

	return tx.Commit()
}

func (s *DuplaService) loadCategory(ctx context.Context, categoryID uuid.UUID) (*bracket.Category, error) {
	cat, err := s.store.GetCategory(ctx, categoryID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, categoryID)
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return cat, nil
}
