package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/opencourt/bracket-engine/internal/bracket"
	"github.com/opencourt/bracket-engine/internal/live"
	"github.com/opencourt/bracket-engine/internal/state"
	"github.com/opencourt/bracket-engine/internal/store"
	"github.com/opencourt/bracket-engine/internal/utils"
)

// ApplyMatchResult merges a partial result into one match of the tournament
// tree and pushes the outcome through the bracket. The input is never
// mutated; unknown category or match ids return the input unchanged.
//
// Propagation is push-based: completing a match immediately runs a resolution
// sweep over the whole bracket, so downstream matches never need re-resolving
// on read.
func ApplyMatchResult(t bracket.Tournament, categoryID, matchID uuid.UUID, patch state.MatchPatch) (bracket.Tournament, error) {
	var cat *bracket.Category
	for i := range t.Categories {
		if t.Categories[i].ID == categoryID {
			cat = &t.Categories[i]
			break
		}
	}
	if cat == nil {
		return t, nil
	}

	var current *bracket.Match
	for i := range cat.Bracket.Matches {
		if cat.Bracket.Matches[i].ID == matchID {
			current = &cat.Bracket.Matches[i]
			break
		}
	}
	if current == nil {
		return t, nil
	}

	merged := patch.Apply(*current)
	if merged.Status == bracket.MatchCompleted {
		if err := validateCompletion(merged); err != nil {
			return t, err
		}
	}

	bs := state.PatchMatch(cat.Bracket, matchID, patch)
	bs = propagate(bs)

	return state.ReplaceCategory(t, state.ReplaceBracket(*cat, bs)), nil
}

// A match may only complete with both participants resolved and a score that
// decides it under its wins-to-advance threshold.
func validateCompletion(m bracket.Match) error {
	if !m.Resolved() {
		return fmt.Errorf("%w: match %s", ErrMatchNotReady, m.ID)
	}
	if m.ScoreA < 0 || m.ScoreB < 0 || m.ScoreA > m.WinsToAdvance || m.ScoreB > m.WinsToAdvance {
		return fmt.Errorf("%w: score %d-%d out of range for best of %d", ErrInvalidInput, m.ScoreA, m.ScoreB, m.BestOf)
	}
	aWins := m.ScoreA == m.WinsToAdvance
	bWins := m.ScoreB == m.WinsToAdvance
	if aWins == bWins {
		return fmt.Errorf("%w: %d-%d with %d wins to advance", ErrScoreUndecided, m.ScoreA, m.ScoreB, m.WinsToAdvance)
	}
	return nil
}

// propagate resolves every slot whose source match has completed, flips
// pending matches with both slots filled to ready, and refreshes the bracket
// status and round cursor.
func propagate(bs bracket.BracketState) bracket.BracketState {
	matches := make([]bracket.Match, len(bs.Matches))
	copy(matches, bs.Matches)

	byID := make(map[uuid.UUID]*bracket.Match, len(matches))
	for i := range matches {
		byID[matches[i].ID] = &matches[i]
	}

	for i := range matches {
		m := &matches[i]
		if m.Status == bracket.MatchCompleted {
			continue
		}
		if m.DuplaA == nil {
			m.DuplaA = resolveSource(m.SourceA, byID)
		}
		if m.DuplaB == nil {
			m.DuplaB = resolveSource(m.SourceB, byID)
		}
		if m.Status == bracket.MatchPending && m.Resolved() {
			m.Status = bracket.MatchReady
		}
	}

	bs.Matches = matches
	bs.Status = bracketStatus(matches, bs.Status)
	bs.CurrentRound = currentRound(matches, bs.CurrentRound)
	return bs
}

// resolveSource returns the participant a slot resolves to, or nil while the
// source match is unfinished. A reference to a match missing from the graph
// means the generator produced a malformed graph, so it fails loudly.
func resolveSource(src bracket.Source, byID map[uuid.UUID]*bracket.Match) *uuid.UUID {
	switch src.Kind {
	case bracket.SourceDirect:
		return utils.Ptr(src.DuplaID)
	case bracket.SourceWinnerOf:
		srcMatch, ok := byID[src.MatchID]
		if !ok {
			panic(fmt.Sprintf("match graph: winner_of references unknown match %s", src.MatchID))
		}
		if w := srcMatch.Winner(); w != nil {
			return utils.Ptr(*w)
		}
		return nil
	case bracket.SourceLoserOf:
		srcMatch, ok := byID[src.MatchID]
		if !ok {
			panic(fmt.Sprintf("match graph: loser_of references unknown match %s", src.MatchID))
		}
		if l := srcMatch.Loser(); l != nil {
			return utils.Ptr(*l)
		}
		return nil
	default:
		panic(fmt.Sprintf("match graph: unknown source kind %q", src.Kind))
	}
}

func bracketStatus(matches []bracket.Match, current bracket.BracketStatus) bracket.BracketStatus {
	completed := 0
	for _, m := range matches {
		if m.Status == bracket.MatchCompleted {
			completed++
		}
	}
	switch {
	case len(matches) > 0 && completed == len(matches):
		return bracket.BracketFinished
	case completed > 0:
		return bracket.BracketInProgress
	default:
		return current
	}
}

// The cursor sits on the lowest round that still has an unfinished match and
// parks on the last round once everything is decided.
func currentRound(matches []bracket.Match, fallback int) int {
	lowest, found := 0, false
	highest := fallback
	for _, m := range matches {
		if m.Round > highest {
			highest = m.Round
		}
		if m.Status != bracket.MatchCompleted && (!found || m.Round < lowest) {
			lowest, found = m.Round, true
		}
	}
	if found {
		return lowest
	}
	return highest
}

type MatchService struct {
	db    *sqlx.DB
	store *store.TournamentStore
	hub   *live.Hub
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore, hub *live.Hub) *MatchService {
	return &MatchService{db: db, store: store, hub: hub}
}

// UpdateMatchResult loads the tournament aggregate, applies the result through
// the pure engine and persists the touched category in one transaction.
func (s *MatchService) UpdateMatchResult(ctx context.Context, tournamentID string, categoryID, matchID uuid.UUID, patch state.MatchPatch) (*bracket.Tournament, error) {
	tournament, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: tournament %s", ErrNotFound, tournamentID)
		}
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}

	if findMatch(tournament, categoryID, matchID) == nil {
		return nil, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}

	updated, err := ApplyMatchResult(*tournament, categoryID, matchID, patch)
	if err != nil {
		return nil, err
	}

	cat := findCategory(&updated, categoryID)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.UpdateMatches(ctx, tx, cat.Bracket.Matches); err != nil {
		return nil, fmt.Errorf("failed to update matches: %w", err)
	}
	if err := s.store.UpdateCategoryBracket(ctx, tx, *cat); err != nil {
		return nil, fmt.Errorf("failed to update bracket state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(tournamentID, live.Message{Type: "MATCH_UPDATED", Payload: cat})
	}

	return &updated, nil
}

func findCategory(t *bracket.Tournament, categoryID uuid.UUID) *bracket.Category {
	for i := range t.Categories {
		if t.Categories[i].ID == categoryID {
			return &t.Categories[i]
		}
	}
	return nil
}

func findMatch(t *bracket.Tournament, categoryID, matchID uuid.UUID) *bracket.Match {
	cat := findCategory(t, categoryID)
	if cat == nil {
		return nil
	}
	for i := range cat.Bracket.Matches {
		if cat.Bracket.Matches[i].ID == matchID {
			return &cat.Bracket.Matches[i]
		}
	}
	return nil
}
