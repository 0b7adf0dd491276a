package service

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/opencourt/bracket-engine/internal/bracket"
	"github.com/opencourt/bracket-engine/internal/utils"
)

// GenerateBracket builds the full match graph for a category from a snapshot
// of its registered duplas. The shuffle seed is taken from the clock and
// recorded in the returned state; use GenerateBracketSeeded to replay a draw.
func GenerateBracket(duplas []bracket.Dupla, categoryID uuid.UUID, cat bracket.Category) (bracket.BracketState, error) {
	return GenerateBracketSeeded(duplas, categoryID, cat, time.Now().UnixNano())
}

func GenerateBracketSeeded(duplas []bracket.Dupla, categoryID uuid.UUID, cat bracket.Category, seed int64) (bracket.BracketState, error) {
	plan, err := PlanPlayIn(len(duplas))
	if err != nil {
		return bracket.BracketState{}, err
	}

	b := &graphBuilder{
		categoryID: categoryID,
		category:   cat,
		plan:       plan,
		shuffled:   shuffleDuplas(duplas, seed),
	}

	switch cat.Format {
	case bracket.FormatSingle, bracket.FormatDouble:
		// Full double elimination is not implemented; double degrades to a
		// plain winner bracket.
		b.buildPlayIn()
		b.buildWinnerBracket()
	case bracket.FormatConsolation:
		b.buildPlayIn()
		b.buildWinnerBracket()
		b.buildLoserBracket()
		b.buildThirdPlace()
	default:
		return bracket.BracketState{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, cat.Format)
	}

	currentRound := 1
	if plan.HasPlayIn() {
		currentRound = 0
	}

	return bracket.BracketState{
		Status:       bracket.BracketGenerated,
		Matches:      b.allMatches(),
		CurrentRound: currentRound,
		Config:       bracket.GenerationConfig{ShuffleSeed: seed},
	}, nil
}

// Fisher–Yates over a copy. Generation never reorders the caller's slice.
func shuffleDuplas(duplas []bracket.Dupla, seed int64) []bracket.Dupla {
	out := make([]bracket.Dupla, len(duplas))
	copy(out, duplas)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

type graphBuilder struct {
	categoryID uuid.UUID
	category   bracket.Category
	plan       PlayInPlan
	shuffled   []bracket.Dupla

	playIn      []bracket.Match
	main        []bracket.Match
	extra       []bracket.Match
	round1IDs   []uuid.UUID
	totalRounds int
}

func (b *graphBuilder) allMatches() []bracket.Match {
	out := make([]bracket.Match, 0, len(b.playIn)+len(b.main)+len(b.extra))
	out = append(out, b.playIn...)
	out = append(out, b.main...)
	out = append(out, b.extra...)
	return out
}

// The lowest TeamsInPlayIn shuffled duplas contest round 0 in pairs. Both
// participants are known up front, so play-in matches start ready.
func (b *graphBuilder) buildPlayIn() {
	inPlayIn := b.shuffled[:b.plan.TeamsInPlayIn]
	for i := 0; i < b.plan.PlayInMatches; i++ {
		home, away := inPlayIn[2*i], inPlayIn[2*i+1]
		b.playIn = append(b.playIn, bracket.Match{
			ID:            uuid.New(),
			CategoryID:    b.categoryID,
			Phase:         bracket.PhasePlayIn,
			Round:         0,
			SourceA:       bracket.DirectSource(home.ID),
			SourceB:       bracket.DirectSource(away.ID),
			DuplaA:        utils.Ptr(home.ID),
			DuplaB:        utils.Ptr(away.ID),
			BestOf:        1,
			WinsToAdvance: 1,
			Status:        bracket.MatchReady,
		})
	}
}

func (b *graphBuilder) buildWinnerBracket() {
	slots := b.plan.MainSlots()
	b.totalRounds = int(math.Log2(float64(slots)))

	// Significantly easier to start from the last round and work backwards:
	// parent match ids then exist when the children record their next-match
	// back-pointers.
	rounds := make([][]bracket.Match, b.totalRounds+1)
	var nextRoundIDs []uuid.UUID

	for r := b.totalRounds; r >= 1; r-- {
		count := slots >> uint(r)
		ids := make([]uuid.UUID, count)
		roundMatches := make([]bracket.Match, count)

		for i := 0; i < count; i++ {
			phase := b.phaseFor(r)
			bestOf := b.bestOfFor(phase)
			m := bracket.Match{
				ID:            uuid.New(),
				CategoryID:    b.categoryID,
				Phase:         phase,
				Round:         r,
				BestOf:        bestOf,
				WinsToAdvance: bestOf/2 + 1,
				Status:        bracket.MatchPending,
			}
			if r < b.totalRounds {
				m.NextMatchID = utils.Ptr(nextRoundIDs[i/2])
				if i%2 == 0 {
					m.NextMatchSlot = utils.Ptr(1)
				} else {
					m.NextMatchSlot = utils.Ptr(2)
				}
			}
			ids[i] = m.ID
			roundMatches[i] = m
		}
		rounds[r] = roundMatches
		nextRoundIDs = ids
	}

	// Second pass, forwards: rounds 2..R are fed by the winners of the two
	// matches below them.
	for r := 2; r <= b.totalRounds; r++ {
		for i := range rounds[r] {
			rounds[r][i].SourceA = bracket.WinnerOf(rounds[r-1][2*i].ID)
			rounds[r][i].SourceB = bracket.WinnerOf(rounds[r-1][2*i+1].ID)
		}
	}

	b.wireRound1(rounds[1])

	for r := 1; r <= b.totalRounds; r++ {
		b.main = append(b.main, rounds[r]...)
	}
	for _, m := range rounds[1] {
		b.round1IDs = append(b.round1IDs, m.ID)
	}
}

// Round-1 slots are filled byes first, then one winner reference per play-in
// match. A slot fed by a play-in match also wires that match's next-match
// back-pointer.
func (b *graphBuilder) wireRound1(round1 []bracket.Match) {
	byes := b.shuffled[b.plan.TeamsInPlayIn:]

	sources := make([]bracket.Source, 0, b.plan.MainSlots())
	for _, d := range byes {
		sources = append(sources, bracket.DirectSource(d.ID))
	}
	for _, pm := range b.playIn {
		sources = append(sources, bracket.WinnerOf(pm.ID))
	}

	for j, src := range sources {
		m := &round1[j/2]
		slot := j%2 + 1
		if slot == 1 {
			m.SourceA = src
		} else {
			m.SourceB = src
		}

		switch src.Kind {
		case bracket.SourceDirect:
			if slot == 1 {
				m.DuplaA = utils.Ptr(src.DuplaID)
			} else {
				m.DuplaB = utils.Ptr(src.DuplaID)
			}
		case bracket.SourceWinnerOf:
			pm := b.playInByID(src.MatchID)
			pm.NextMatchID = utils.Ptr(m.ID)
			pm.NextMatchSlot = utils.Ptr(slot)
		}
	}

	for i := range round1 {
		if round1[i].Resolved() {
			round1[i].Status = bracket.MatchReady
		}
	}
}

func (b *graphBuilder) playInByID(id uuid.UUID) *bracket.Match {
	for i := range b.playIn {
		if b.playIn[i].ID == id {
			return &b.playIn[i]
		}
	}
	panic(fmt.Sprintf("bracket generation: round 1 references unknown play-in match %s", id))
}

// The consolation ladder is seeded exclusively by round-1 losers; semifinal
// and final losers never enter it. Pairs of round-1 matches feed LoserOf
// matches, then survivors meet through WinnerOf matches until one remains.
func (b *graphBuilder) buildLoserBracket() {
	var lb []bracket.Match
	index := make(map[uuid.UUID]int)

	layer := b.round1IDs
	first := true
	round := 1

	for len(layer) >= 2 {
		next := make([]uuid.UUID, 0, len(layer)/2)
		for i := 0; i+1 < len(layer); i += 2 {
			var srcA, srcB bracket.Source
			if first {
				srcA = bracket.LoserOf(layer[i])
				srcB = bracket.LoserOf(layer[i+1])
			} else {
				srcA = bracket.WinnerOf(layer[i])
				srcB = bracket.WinnerOf(layer[i+1])
			}

			m := bracket.Match{
				ID:            uuid.New(),
				CategoryID:    b.categoryID,
				Phase:         bracket.PhaseLoserBracket,
				Round:         round,
				SourceA:       srcA,
				SourceB:       srcB,
				BestOf:        1,
				WinsToAdvance: 1,
				Status:        bracket.MatchPending,
			}

			if !first {
				lb[index[layer[i]]].NextMatchID = utils.Ptr(m.ID)
				lb[index[layer[i]]].NextMatchSlot = utils.Ptr(1)
				lb[index[layer[i+1]]].NextMatchID = utils.Ptr(m.ID)
				lb[index[layer[i+1]]].NextMatchSlot = utils.Ptr(2)
			}

			index[m.ID] = len(lb)
			lb = append(lb, m)
			next = append(next, m.ID)
		}
		layer = next
		first = false
		round++
	}

	b.extra = append(b.extra, lb...)
}

// One third-place match whenever the winner bracket produced exactly two
// semifinals, played to the semifinal best-of setting.
func (b *graphBuilder) buildThirdPlace() {
	var semis []uuid.UUID
	for _, m := range b.main {
		if m.Phase == bracket.PhaseSemifinal {
			semis = append(semis, m.ID)
		}
	}
	if len(semis) != 2 {
		return
	}

	bestOf := b.bestOfFor(bracket.PhaseThirdPlace)
	b.extra = append(b.extra, bracket.Match{
		ID:            uuid.New(),
		CategoryID:    b.categoryID,
		Phase:         bracket.PhaseThirdPlace,
		Round:         b.totalRounds,
		SourceA:       bracket.LoserOf(semis[0]),
		SourceB:       bracket.LoserOf(semis[1]),
		BestOf:        bestOf,
		WinsToAdvance: bestOf/2 + 1,
		Status:        bracket.MatchPending,
	})
}

func (b *graphBuilder) phaseFor(round int) bracket.MatchPhase {
	switch {
	case round == b.totalRounds:
		return bracket.PhaseFinal
	case round == b.totalRounds-1:
		return bracket.PhaseSemifinal
	default:
		return bracket.PhaseWinnerBracket
	}
}

func (b *graphBuilder) bestOfFor(phase bracket.MatchPhase) int {
	var bestOf int
	switch phase {
	case bracket.PhaseFinal:
		bestOf = b.category.BestOfFinal
	case bracket.PhaseSemifinal, bracket.PhaseThirdPlace:
		bestOf = b.category.BestOfSemifinal
	}
	if bestOf != 1 && bestOf != 3 {
		bestOf = 1
	}
	return bestOf
}
