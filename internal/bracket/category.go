package bracket

import "github.com/google/uuid"

type Format string

const (
	FormatSingle      Format = "single"
	FormatConsolation Format = "consolation"
	FormatDouble      Format = "double"
)

type BracketStatus string

const (
	BracketNotGenerated BracketStatus = "not_generated"
	BracketGenerated    BracketStatus = "generated"
	BracketInProgress   BracketStatus = "in_progress"
	BracketFinished     BracketStatus = "finished"
)

// GenerationConfig records how a bracket was generated so the draw can be
// replayed and audited.
type GenerationConfig struct {
	ShuffleSeed int64 `json:"shuffle_seed"`
}

type BracketState struct {
	Status       BracketStatus    `json:"status"`
	Matches      []Match          `json:"matches"`
	CurrentRound int              `json:"current_round"`
	Config       GenerationConfig `json:"config"`
}

type Category struct {
	ID           uuid.UUID `json:"id"`
	TournamentID uuid.UUID `json:"tournament_id"`
	Name         string    `json:"name"`
	MaxDuplas    *int      `json:"max_duplas,omitempty"`
	Format       Format    `json:"format"`

	BestOfSemifinal int `json:"best_of_semifinal"`
	BestOfFinal     int `json:"best_of_final"`

	Duplas  []Dupla      `json:"duplas"`
	Bracket BracketState `json:"bracket"`
}
