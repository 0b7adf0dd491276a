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
	"github.com/opencourt/bracket-engine/internal/store"
	"github.com/opencourt/bracket-engine/internal/utils"
)

type TournamentService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore) *TournamentService {
	return &TournamentService{db: db, store: store}
}

type CategoryInput struct {
	Name            string
	Format          bracket.Format
	MaxDuplas       int
	BestOfSemifinal int
	BestOfFinal     int
}

// CreateTournament persists a tournament and its categories in one
// transaction. Categories start with an empty dupla list and a not-generated
// bracket.
func (s *TournamentService) CreateTournament(ctx context.Context, name string, categoryInputs []CategoryInput) (uuid.UUID, error) {
	if name == "" {
		return uuid.Nil, fmt.Errorf("%w: tournament name is required", ErrInvalidInput)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	tournamentID := uuid.New()
	tournament := bracket.Tournament{
		ID:        tournamentID,
		Name:      name,
		Status:    bracket.TournamentDraft,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateTournament(ctx, tx, &tournament); err != nil {
		return uuid.Nil, err
	}

	var categories []bracket.Category
	for _, input := range categoryInputs {
		format := input.Format
		if format == "" {
			format = bracket.FormatSingle
		}

		c := bracket.Category{
			ID:              uuid.New(),
			TournamentID:    tournamentID,
			Name:            input.Name,
			Format:          format,
			BestOfSemifinal: normalizeBestOf(input.BestOfSemifinal),
			BestOfFinal:     normalizeBestOf(input.BestOfFinal),
			Bracket:         bracket.BracketState{Status: bracket.BracketNotGenerated},
		}
		if input.MaxDuplas > 0 {
			c.MaxDuplas = utils.Ptr(input.MaxDuplas)
		}

		categories = append(categories, c)
	}

	if err := s.store.CreateCategories(ctx, tx, categories); err != nil {
		return uuid.Nil, err
	}

	return tournamentID, tx.Commit()
}

// GetTournamentData loads the full aggregate: tournament, categories, duplas
// and matches.
func (s *TournamentService) GetTournamentData(ctx context.Context, id string) (*bracket.Tournament, error) {
	tournament, err := s.store.GetTournament(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: tournament %s", ErrNotFound, id)
		}
		return nil, err
	}
	return tournament, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	return s.store.ListTournaments(ctx)
}

func normalizeBestOf(bestOf int) int {
	if bestOf == 3 {
		return 3
	}
	return 1
}
