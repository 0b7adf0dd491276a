package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentDraft     TournamentStatus = "draft"
	TournamentStarted   TournamentStatus = "started"
	TournamentCompleted TournamentStatus = "completed"
)

type Tournament struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	Status     TournamentStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	Categories []Category       `json:"categories"`
}
