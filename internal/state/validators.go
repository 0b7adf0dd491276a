package state

import (
	"errors"
	"strings"

	"github.com/opencourt/bracket-engine/internal/bracket"
)

// ErrDuplicatePlayer signals a registration naming the same person twice. It
// is meant to surface as an inline form message, not to abort the caller.
var ErrDuplicatePlayer = errors.New("dupla players must be two different people")

// ValidateDuplaPlayers rejects a pair referencing the same roster member, or
// two guests whose names collapse to the same string after trimming and
// case-folding.
func ValidateDuplaPlayers(a, b bracket.Player) error {
	if a.Kind == bracket.PlayerRoster && b.Kind == bracket.PlayerRoster && a.RosterID == b.RosterID {
		return ErrDuplicatePlayer
	}
	if a.Kind == bracket.PlayerGuest && b.Kind == bracket.PlayerGuest &&
		normalizeGuestName(a.Name) == normalizeGuestName(b.Name) {
		return ErrDuplicatePlayer
	}
	return nil
}

func normalizeGuestName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CanAddDupla reports whether the category still has room for a registration.
// Categories without a cap always have room.
func CanAddDupla(cat bracket.Category) bool {
	if cat.MaxDuplas == nil {
		return true
	}
	return len(cat.Duplas) < *cat.MaxDuplas
}
