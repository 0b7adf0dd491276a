package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourt/bracket-engine/internal/bracket"
	"github.com/opencourt/bracket-engine/internal/utils"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

func inTx(t *testing.T, db *sqlx.DB, fn func(tx *sqlx.Tx) error) {
	t.Helper()
	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, fn(tx))
	require.NoError(t, tx.Commit())
}

// seedTournament persists a tournament with one category and returns both.
func seedTournament(t *testing.T, db *sqlx.DB, store *TournamentStore) (bracket.Tournament, bracket.Category) {
	t.Helper()

	tournament := bracket.Tournament{
		ID:        uuid.New(),
		Name:      "Copa de Teste",
		Status:    bracket.TournamentDraft,
		CreatedAt: time.Now().UTC(),
	}
	category := bracket.Category{
		ID:              uuid.New(),
		TournamentID:    tournament.ID,
		Name:            "Open",
		Format:          bracket.FormatSingle,
		MaxDuplas:       utils.Ptr(16),
		BestOfSemifinal: 3,
		BestOfFinal:     3,
		Bracket:         bracket.BracketState{Status: bracket.BracketNotGenerated},
	}

	inTx(t, db, func(tx *sqlx.Tx) error {
		if err := store.CreateTournament(context.Background(), tx, &tournament); err != nil {
			return err
		}
		return store.CreateCategories(context.Background(), tx, []bracket.Category{category})
	})

	return tournament, category
}

func testDupla(categoryID uuid.UUID, name string) bracket.Dupla {
	return bracket.Dupla{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Name:       utils.StringOrNil(name),
		Players: [2]bracket.Player{
			bracket.RosterPlayer(uuid.NewString(), name+" A"),
			bracket.GuestPlayer(name + " B"),
		},
		RegisteredAt: time.Now().UTC(),
	}
}

func TestTournamentAggregateRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	tournament, category := seedTournament(t, db, store)

	duplas := []bracket.Dupla{
		testDupla(category.ID, "Dupla 1"),
		testDupla(category.ID, "Dupla 2"),
	}
	duplas[1].Name = nil

	matchA := bracket.Match{
		ID:            uuid.New(),
		CategoryID:    category.ID,
		Phase:         bracket.PhaseFinal,
		Round:         1,
		SourceA:       bracket.DirectSource(duplas[0].ID),
		SourceB:       bracket.DirectSource(duplas[1].ID),
		DuplaA:        utils.Ptr(duplas[0].ID),
		DuplaB:        utils.Ptr(duplas[1].ID),
		BestOf:        3,
		WinsToAdvance: 2,
		Status:        bracket.MatchReady,
	}

	inTx(t, db, func(tx *sqlx.Tx) error {
		if err := store.CreateDuplas(context.Background(), tx, duplas); err != nil {
			return err
		}
		return store.CreateMatches(context.Background(), tx, []bracket.Match{matchA})
	})

	fetched, err := store.GetTournament(context.Background(), tournament.ID.String())
	require.NoError(t, err)

	assert.Equal(t, tournament.ID, fetched.ID)
	assert.Equal(t, tournament.Name, fetched.Name)
	assert.Equal(t, tournament.Status, fetched.Status)
	assert.WithinDuration(t, tournament.CreatedAt, fetched.CreatedAt, time.Second)

	require.Len(t, fetched.Categories, 1)
	cat := fetched.Categories[0]
	assert.Equal(t, category.ID, cat.ID)
	assert.Equal(t, bracket.FormatSingle, cat.Format)
	require.NotNil(t, cat.MaxDuplas)
	assert.Equal(t, 16, *cat.MaxDuplas)
	assert.Equal(t, 3, cat.BestOfSemifinal)
	assert.Equal(t, bracket.BracketNotGenerated, cat.Bracket.Status)

	require.Len(t, cat.Duplas, 2)
	assert.Equal(t, duplas[0].ID, cat.Duplas[0].ID)
	require.NotNil(t, cat.Duplas[0].Name)
	assert.Equal(t, "Dupla 1", *cat.Duplas[0].Name)
	assert.Equal(t, bracket.PlayerRoster, cat.Duplas[0].Players[0].Kind)
	assert.Equal(t, bracket.PlayerGuest, cat.Duplas[0].Players[1].Kind)
	assert.Nil(t, cat.Duplas[1].Name)

	require.Len(t, cat.Bracket.Matches, 1)
	got := cat.Bracket.Matches[0]
	assert.Equal(t, matchA.ID, got.ID)
	assert.Equal(t, bracket.PhaseFinal, got.Phase)
	assert.Equal(t, matchA.SourceA, got.SourceA)
	assert.Equal(t, matchA.SourceB, got.SourceB)
	require.NotNil(t, got.DuplaA)
	assert.Equal(t, duplas[0].ID, *got.DuplaA)
	assert.Equal(t, 2, got.WinsToAdvance)
	assert.Equal(t, bracket.MatchReady, got.Status)
	assert.Nil(t, got.NextMatchID)
}

func TestMatchSourceAndPointerRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	_, category := seedTournament(t, db, store)

	feeder := bracket.Match{
		ID:         uuid.New(),
		CategoryID: category.ID,
		Phase:      bracket.PhasePlayIn,
		Round:      0,
		SourceA:    bracket.DirectSource(uuid.New()),
		SourceB:    bracket.DirectSource(uuid.New()),
		BestOf:     1, WinsToAdvance: 1,
		Status: bracket.MatchReady,
	}
	parent := bracket.Match{
		ID:         uuid.New(),
		CategoryID: category.ID,
		Phase:      bracket.PhaseSemifinal,
		Round:      1,
		SourceA:    bracket.WinnerOf(feeder.ID),
		SourceB:    bracket.LoserOf(feeder.ID),
		BestOf:     3, WinsToAdvance: 2,
		Status: bracket.MatchPending,
	}
	feeder.NextMatchID = utils.Ptr(parent.ID)
	feeder.NextMatchSlot = utils.Ptr(1)

	inTx(t, db, func(tx *sqlx.Tx) error {
		return store.CreateMatches(context.Background(), tx, []bracket.Match{feeder, parent})
	})

	cat, err := store.GetCategory(context.Background(), category.ID.String())
	require.NoError(t, err)
	require.Len(t, cat.Bracket.Matches, 2)

	byID := map[uuid.UUID]bracket.Match{}
	for _, m := range cat.Bracket.Matches {
		byID[m.ID] = m
	}

	gotFeeder := byID[feeder.ID]
	require.NotNil(t, gotFeeder.NextMatchID)
	assert.Equal(t, parent.ID, *gotFeeder.NextMatchID)
	require.NotNil(t, gotFeeder.NextMatchSlot)
	assert.Equal(t, 1, *gotFeeder.NextMatchSlot)

	gotParent := byID[parent.ID]
	assert.Equal(t, bracket.WinnerOf(feeder.ID), gotParent.SourceA)
	assert.Equal(t, bracket.LoserOf(feeder.ID), gotParent.SourceB)
	assert.Nil(t, gotParent.DuplaA)
}

func TestUpdateMatches(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	_, category := seedTournament(t, db, store)

	winner := uuid.New()
	match := bracket.Match{
		ID:         uuid.New(),
		CategoryID: category.ID,
		Phase:      bracket.PhaseWinnerBracket,
		Round:      1,
		SourceA:    bracket.DirectSource(winner),
		SourceB:    bracket.DirectSource(uuid.New()),
		BestOf:     1, WinsToAdvance: 1,
		Status: bracket.MatchPending,
	}

	inTx(t, db, func(tx *sqlx.Tx) error {
		return store.CreateMatches(context.Background(), tx, []bracket.Match{match})
	})

	match.DuplaA = utils.Ptr(winner)
	match.DuplaB = utils.Ptr(uuid.New())
	match.ScoreA = 1
	match.Status = bracket.MatchCompleted

	inTx(t, db, func(tx *sqlx.Tx) error {
		return store.UpdateMatches(context.Background(), tx, []bracket.Match{match})
	})

	cat, err := store.GetCategory(context.Background(), category.ID.String())
	require.NoError(t, err)
	require.Len(t, cat.Bracket.Matches, 1)

	got := cat.Bracket.Matches[0]
	assert.Equal(t, bracket.MatchCompleted, got.Status)
	assert.Equal(t, 1, got.ScoreA)
	assert.Equal(t, 0, got.ScoreB)
	require.NotNil(t, got.DuplaA)
	assert.Equal(t, winner, *got.DuplaA)
}

func TestUpdateCategoryBracket(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	_, category := seedTournament(t, db, store)

	category.Bracket.Status = bracket.BracketInProgress
	category.Bracket.CurrentRound = 2
	category.Bracket.Config.ShuffleSeed = 42

	inTx(t, db, func(tx *sqlx.Tx) error {
		return store.UpdateCategoryBracket(context.Background(), tx, category)
	})

	cat, err := store.GetCategory(context.Background(), category.ID.String())
	require.NoError(t, err)
	assert.Equal(t, bracket.BracketInProgress, cat.Bracket.Status)
	assert.Equal(t, 2, cat.Bracket.CurrentRound)
	assert.Equal(t, int64(42), cat.Bracket.Config.ShuffleSeed)
}

func TestUpdateAndDeleteDupla(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	_, category := seedTournament(t, db, store)

	dupla := testDupla(category.ID, "Original")
	inTx(t, db, func(tx *sqlx.Tx) error {
		return store.CreateDuplas(context.Background(), tx, []bracket.Dupla{dupla})
	})

	dupla.Name = utils.StringOrNil("Renamed")
	dupla.Players[1] = bracket.GuestPlayer("New Partner")
	inTx(t, db, func(tx *sqlx.Tx) error {
		return store.UpdateDupla(context.Background(), tx, dupla)
	})

	cat, err := store.GetCategory(context.Background(), category.ID.String())
	require.NoError(t, err)
	require.Len(t, cat.Duplas, 1)
	require.NotNil(t, cat.Duplas[0].Name)
	assert.Equal(t, "Renamed", *cat.Duplas[0].Name)
	assert.Equal(t, "New Partner", cat.Duplas[0].Players[1].Name)

	inTx(t, db, func(tx *sqlx.Tx) error {
		return store.DeleteDupla(context.Background(), tx, dupla.ID)
	})

	cat, err = store.GetCategory(context.Background(), category.ID.String())
	require.NoError(t, err)
	assert.Empty(t, cat.Duplas)
}

func TestListTournaments(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)

	older := bracket.Tournament{ID: uuid.New(), Name: "Older", Status: bracket.TournamentDraft, CreatedAt: time.Now().UTC().Add(-time.Hour)}
	newer := bracket.Tournament{ID: uuid.New(), Name: "Newer", Status: bracket.TournamentStarted, CreatedAt: time.Now().UTC()}

	inTx(t, db, func(tx *sqlx.Tx) error {
		if err := store.CreateTournament(context.Background(), tx, &older); err != nil {
			return err
		}
		return store.CreateTournament(context.Background(), tx, &newer)
	})

	tournaments, err := store.ListTournaments(context.Background())
	require.NoError(t, err)
	require.Len(t, tournaments, 2)
	assert.Equal(t, "Newer", tournaments[0].Name)
	assert.Equal(t, "Older", tournaments[1].Name)
	assert.Empty(t, tournaments[0].Categories, "listing stays shallow")
}

func TestGetTournamentNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)

	_, err := store.GetTournament(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
