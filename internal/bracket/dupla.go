package bracket

import (
	"time"

	"github.com/google/uuid"
)

type PlayerKind string

const (
	PlayerRoster PlayerKind = "roster"
	PlayerGuest  PlayerKind = "guest"
)

// Player is one half of a dupla: either a reference to a member of the
// external roster or a free-text guest.
type Player struct {
	Kind     PlayerKind `json:"kind"`
	RosterID string     `json:"roster_id,omitempty"`
	Name     string     `json:"name"`
}

func RosterPlayer(id, name string) Player {
	return Player{Kind: PlayerRoster, RosterID: id, Name: name}
}

func GuestPlayer(name string) Player {
	return Player{Kind: PlayerGuest, Name: name}
}

// Dupla is an immutable registration record for a two-player pair.
type Dupla struct {
	ID           uuid.UUID `json:"id"`
	CategoryID   uuid.UUID `json:"category_id"`
	Name         *string   `json:"name,omitempty"`
	Players      [2]Player `json:"players"`
	RegisteredAt time.Time `json:"registered_at"`
}
