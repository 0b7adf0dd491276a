package bracket

import "github.com/google/uuid"

type MatchPhase string

const (
	PhasePlayIn        MatchPhase = "play_in"
	PhaseWinnerBracket MatchPhase = "winner_bracket"
	PhaseLoserBracket  MatchPhase = "loser_bracket"
	PhaseSemifinal     MatchPhase = "semifinal"
	PhaseFinal         MatchPhase = "final"
	PhaseThirdPlace    MatchPhase = "third_place"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchReady     MatchStatus = "ready"
	MatchCompleted MatchStatus = "completed"
)

type SourceKind string

const (
	SourceDirect   SourceKind = "direct"
	SourceWinnerOf SourceKind = "winner_of"
	SourceLoserOf  SourceKind = "loser_of"
)

// Source says where a match slot's participant comes from: a dupla known at
// generation time, or the eventual winner/loser of an earlier match.
type Source struct {
	Kind    SourceKind `json:"kind"`
	DuplaID uuid.UUID  `json:"dupla_id,omitempty"`
	MatchID uuid.UUID  `json:"match_id,omitempty"`
}

func DirectSource(duplaID uuid.UUID) Source {
	return Source{Kind: SourceDirect, DuplaID: duplaID}
}

func WinnerOf(matchID uuid.UUID) Source {
	return Source{Kind: SourceWinnerOf, MatchID: matchID}
}

func LoserOf(matchID uuid.UUID) Source {
	return Source{Kind: SourceLoserOf, MatchID: matchID}
}

type Match struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"category_id"`

	// Position in the graph for reconstructing the view
	Phase MatchPhase `json:"phase"`
	Round int        `json:"round"` // play-in is round 0

	SourceA Source `json:"source_a"`
	SourceB Source `json:"source_b"`

	// Resolved participants, set once the corresponding source match completes
	DuplaA *uuid.UUID `json:"dupla_a,omitempty"`
	DuplaB *uuid.UUID `json:"dupla_b,omitempty"`

	BestOf        int `json:"best_of"`
	WinsToAdvance int `json:"wins_to_advance"`

	ScoreA int         `json:"score_a"`
	ScoreB int         `json:"score_b"`
	Status MatchStatus `json:"status"`

	NextMatchID   *uuid.UUID `json:"next_match_id,omitempty"`
	NextMatchSlot *int       `json:"next_match_slot,omitempty"`
}

// Resolved reports whether both participant slots are filled.
func (m *Match) Resolved() bool {
	return m.DuplaA != nil && m.DuplaB != nil
}

// Winner returns the advancing dupla, or nil while the match is unfinished.
func (m *Match) Winner() *uuid.UUID {
	if m.Status != MatchCompleted {
		return nil
	}
	if m.ScoreA >= m.WinsToAdvance {
		return m.DuplaA
	}
	return m.DuplaB
}

// Loser returns the eliminated dupla, or nil while the match is unfinished.
func (m *Match) Loser() *uuid.UUID {
	if m.Status != MatchCompleted {
		return nil
	}
	if m.ScoreA >= m.WinsToAdvance {
		return m.DuplaB
	}
	return m.DuplaA
}
