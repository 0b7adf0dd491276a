package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opencourt/bracket-engine/internal/bracket"
)

// Row types flatten the domain model for sqlx: the Source sum type becomes a
// kind column plus a single reference column holding either a dupla id or a
// match id.

type tournamentRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

type categoryRow struct {
	ID              uuid.UUID `db:"id"`
	TournamentID    uuid.UUID `db:"tournament_id"`
	Name            string    `db:"name"`
	Format          string    `db:"format"`
	MaxDuplas       *int      `db:"max_duplas"`
	BestOfSemifinal int       `db:"best_of_semifinal"`
	BestOfFinal     int       `db:"best_of_final"`
	BracketStatus   string    `db:"bracket_status"`
	CurrentRound    int       `db:"current_round"`
	ShuffleSeed     int64     `db:"shuffle_seed"`
}

type duplaRow struct {
	ID              uuid.UUID `db:"id"`
	CategoryID      uuid.UUID `db:"category_id"`
	Name            *string   `db:"name"`
	Player1Kind     string    `db:"player1_kind"`
	Player1RosterID string    `db:"player1_roster_id"`
	Player1Name     string    `db:"player1_name"`
	Player2Kind     string    `db:"player2_kind"`
	Player2RosterID string    `db:"player2_roster_id"`
	Player2Name     string    `db:"player2_name"`
	RegisteredAt    time.Time `db:"registered_at"`
}

type matchRow struct {
	ID            uuid.UUID  `db:"id"`
	CategoryID    uuid.UUID  `db:"category_id"`
	Phase         string     `db:"phase"`
	Round         int        `db:"round"`
	ASourceKind   string     `db:"a_source_kind"`
	ASourceRef    uuid.UUID  `db:"a_source_ref"`
	BSourceKind   string     `db:"b_source_kind"`
	BSourceRef    uuid.UUID  `db:"b_source_ref"`
	DuplaAID      *uuid.UUID `db:"dupla_a_id"`
	DuplaBID      *uuid.UUID `db:"dupla_b_id"`
	BestOf        int        `db:"best_of"`
	WinsToAdvance int        `db:"wins_to_advance"`
	ScoreA        int        `db:"score_a"`
	ScoreB        int        `db:"score_b"`
	Status        string     `db:"status"`
	NextMatchID   *uuid.UUID `db:"next_match_id"`
	NextMatchSlot *int       `db:"next_match_slot"`
}

func rowFromTournament(t bracket.Tournament) tournamentRow {
	return tournamentRow{ID: t.ID, Name: t.Name, Status: string(t.Status), CreatedAt: t.CreatedAt}
}

func (r tournamentRow) toTournament() bracket.Tournament {
	return bracket.Tournament{
		ID:        r.ID,
		Name:      r.Name,
		Status:    bracket.TournamentStatus(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

func rowFromCategory(c bracket.Category) categoryRow {
	return categoryRow{
		ID:              c.ID,
		TournamentID:    c.TournamentID,
		Name:            c.Name,
		Format:          string(c.Format),
		MaxDuplas:       c.MaxDuplas,
		BestOfSemifinal: c.BestOfSemifinal,
		BestOfFinal:     c.BestOfFinal,
		BracketStatus:   string(c.Bracket.Status),
		CurrentRound:    c.Bracket.CurrentRound,
		ShuffleSeed:     c.Bracket.Config.ShuffleSeed,
	}
}

func (r categoryRow) toCategory() bracket.Category {
	return bracket.Category{
		ID:              r.ID,
		TournamentID:    r.TournamentID,
		Name:            r.Name,
		Format:          bracket.Format(r.Format),
		MaxDuplas:       r.MaxDuplas,
		BestOfSemifinal: r.BestOfSemifinal,
		BestOfFinal:     r.BestOfFinal,
		Bracket: bracket.BracketState{
			Status:       bracket.BracketStatus(r.BracketStatus),
			CurrentRound: r.CurrentRound,
			Config:       bracket.GenerationConfig{ShuffleSeed: r.ShuffleSeed},
		},
	}
}

func rowFromDupla(d bracket.Dupla) duplaRow {
	return duplaRow{
		ID:              d.ID,
		CategoryID:      d.CategoryID,
		Name:            d.Name,
		Player1Kind:     string(d.Players[0].Kind),
		Player1RosterID: d.Players[0].RosterID,
		Player1Name:     d.Players[0].Name,
		Player2Kind:     string(d.Players[1].Kind),
		Player2RosterID: d.Players[1].RosterID,
		Player2Name:     d.Players[1].Name,
		RegisteredAt:    d.RegisteredAt,
	}
}

func (r duplaRow) toDupla() bracket.Dupla {
	return bracket.Dupla{
		ID:         r.ID,
		CategoryID: r.CategoryID,
		Name:       r.Name,
		Players: [2]bracket.Player{
			{Kind: bracket.PlayerKind(r.Player1Kind), RosterID: r.Player1RosterID, Name: r.Player1Name},
			{Kind: bracket.PlayerKind(r.Player2Kind), RosterID: r.Player2RosterID, Name: r.Player2Name},
		},
		RegisteredAt: r.RegisteredAt,
	}
}

func rowFromMatch(m bracket.Match) matchRow {
	return matchRow{
		ID:            m.ID,
		CategoryID:    m.CategoryID,
		Phase:         string(m.Phase),
		Round:         m.Round,
		ASourceKind:   string(m.SourceA.Kind),
		ASourceRef:    sourceRef(m.SourceA),
		BSourceKind:   string(m.SourceB.Kind),
		BSourceRef:    sourceRef(m.SourceB),
		DuplaAID:      m.DuplaA,
		DuplaBID:      m.DuplaB,
		BestOf:        m.BestOf,
		WinsToAdvance: m.WinsToAdvance,
		ScoreA:        m.ScoreA,
		ScoreB:        m.ScoreB,
		Status:        string(m.Status),
		NextMatchID:   m.NextMatchID,
		NextMatchSlot: m.NextMatchSlot,
	}
}

func (r matchRow) toMatch() bracket.Match {
	return bracket.Match{
		ID:            r.ID,
		CategoryID:    r.CategoryID,
		Phase:         bracket.MatchPhase(r.Phase),
		Round:         r.Round,
		SourceA:       sourceFromRow(r.ASourceKind, r.ASourceRef),
		SourceB:       sourceFromRow(r.BSourceKind, r.BSourceRef),
		DuplaA:        r.DuplaAID,
		DuplaB:        r.DuplaBID,
		BestOf:        r.BestOf,
		WinsToAdvance: r.WinsToAdvance,
		ScoreA:        r.ScoreA,
		ScoreB:        r.ScoreB,
		Status:        bracket.MatchStatus(r.Status),
		NextMatchID:   r.NextMatchID,
		NextMatchSlot: r.NextMatchSlot,
	}
}

func sourceRef(src bracket.Source) uuid.UUID {
	if src.Kind == bracket.SourceDirect {
		return src.DuplaID
	}
	return src.MatchID
}

func sourceFromRow(kind string, ref uuid.UUID) bracket.Source {
	switch bracket.SourceKind(kind) {
	case bracket.SourceDirect:
		return bracket.DirectSource(ref)
	case bracket.SourceWinnerOf:
		return bracket.WinnerOf(ref)
	case bracket.SourceLoserOf:
		return bracket.LoserOf(ref)
	default:
		panic(fmt.Sprintf("store: unknown source kind %q", kind))
	}
}
