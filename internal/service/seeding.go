package service

import (
	"fmt"
	"math"
)

// PlayInPlan describes how a field of N duplas is reduced to a power of two:
// the lowest TeamsInPlayIn shuffled duplas contest PlayInMatches preliminary
// matches while the remaining TeamsWithBye go straight to round 1.
type PlayInPlan struct {
	// Next power of two covering the field (equal to N when N already is one)
	EffectiveTeams int
	PlayInMatches  int
	TeamsInPlayIn  int
	TeamsWithBye   int
}

func (p PlayInPlan) HasPlayIn() bool {
	return p.PlayInMatches > 0
}

// MainSlots is the number of duplas entering round 1 of the main bracket:
// byes plus one winner per play-in match. Always a power of two.
func (p PlayInPlan) MainSlots() int {
	return p.TeamsWithBye + p.PlayInMatches
}

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func calcBracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// PlanPlayIn computes the play-in split for n duplas. Pure function of n.
func PlanPlayIn(n int) (PlayInPlan, error) {
	if n < 4 {
		return PlayInPlan{}, fmt.Errorf("%w: need at least 4 duplas, got %d", ErrInvalidInput, n)
	}

	size := calcBracketSize(n)
	if size == n {
		return PlayInPlan{EffectiveTeams: n, TeamsWithBye: n}, nil
	}

	playIn := n - size/2
	return PlayInPlan{
		EffectiveTeams: size,
		PlayInMatches:  playIn,
		TeamsInPlayIn:  playIn * 2,
		TeamsWithBye:   n - playIn*2,
	}, nil
}
