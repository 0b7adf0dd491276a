// Package state provides pure transforms over the tournament tree. Every
// transform returns a new value with only the targeted node replaced and is
// total: an unknown target id yields a result deep-equal to the input, never
// an error. Callers that care about existence must check it separately.
package state

import (
	"github.com/google/uuid"

	"github.com/opencourt/bracket-engine/internal/bracket"
)

// ReplaceTournament swaps the tournament carrying t.ID inside ts.
func ReplaceTournament(ts []bracket.Tournament, t bracket.Tournament) []bracket.Tournament {
	out := make([]bracket.Tournament, len(ts))
	copy(out, ts)
	for i := range out {
		if out[i].ID == t.ID {
			out[i] = t
		}
	}
	return out
}

// ReplaceCategory swaps the category carrying cat.ID inside t.
func ReplaceCategory(t bracket.Tournament, cat bracket.Category) bracket.Tournament {
	cats := make([]bracket.Category, len(t.Categories))
	copy(cats, t.Categories)
	for i := range cats {
		if cats[i].ID == cat.ID {
			cats[i] = cat
		}
	}
	t.Categories = cats
	return t
}

// PushDupla appends a registration to the category's dupla list.
func PushDupla(cat bracket.Category, d bracket.Dupla) bracket.Category {
	duplas := make([]bracket.Dupla, len(cat.Duplas), len(cat.Duplas)+1)
	copy(duplas, cat.Duplas)
	cat.Duplas = append(duplas, d)
	return cat
}

// UpdateDupla replaces the dupla carrying d.ID.
func UpdateDupla(cat bracket.Category, d bracket.Dupla) bracket.Category {
	duplas := make([]bracket.Dupla, len(cat.Duplas))
	copy(duplas, cat.Duplas)
	for i := range duplas {
		if duplas[i].ID == d.ID {
			duplas[i] = d
		}
	}
	cat.Duplas = duplas
	return cat
}

// RemoveDupla drops the dupla with the given id, if present.
func RemoveDupla(cat bracket.Category, duplaID uuid.UUID) bracket.Category {
	duplas := make([]bracket.Dupla, 0, len(cat.Duplas))
	for _, d := range cat.Duplas {
		if d.ID != duplaID {
			duplas = append(duplas, d)
		}
	}
	cat.Duplas = duplas
	return cat
}

// ReplaceBracket swaps the category's bracket state wholesale.
func ReplaceBracket(cat bracket.Category, bs bracket.BracketState) bracket.Category {
	cat.Bracket = bs
	return cat
}

// MatchPatch is a partial match result: nil fields are left untouched by
// PatchMatch.
type MatchPatch struct {
	ScoreA *int
	ScoreB *int
	Status *bracket.MatchStatus
	DuplaA *uuid.UUID
	DuplaB *uuid.UUID
}

// Apply merges the patch into a copy of m.
func (p MatchPatch) Apply(m bracket.Match) bracket.Match {
	if p.ScoreA != nil {
		m.ScoreA = *p.ScoreA
	}
	if p.ScoreB != nil {
		m.ScoreB = *p.ScoreB
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.DuplaA != nil {
		m.DuplaA = p.DuplaA
	}
	if p.DuplaB != nil {
		m.DuplaB = p.DuplaB
	}
	return m
}

// PatchMatch shallow-merges a partial result into the match with the given id.
func PatchMatch(bs bracket.BracketState, matchID uuid.UUID, patch MatchPatch) bracket.BracketState {
	matches := make([]bracket.Match, len(bs.Matches))
	copy(matches, bs.Matches)
	for i := range matches {
		if matches[i].ID == matchID {
			matches[i] = patch.Apply(matches[i])
		}
	}
	bs.Matches = matches
	return bs
}
