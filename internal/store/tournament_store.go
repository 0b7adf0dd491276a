package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/opencourt/bracket-engine/internal/bracket"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, name, status, created_at)
		VALUES (:id, :name, :status, :created_at)`, rowFromTournament(*tournament))
	return err
}

func (s *TournamentStore) CreateCategories(ctx context.Context, tx *sqlx.Tx, categories []bracket.Category) error {
	if len(categories) == 0 {
		return nil
	}
	rows := make([]categoryRow, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, rowFromCategory(c))
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO categories (id, tournament_id, name, format, max_duplas, best_of_semifinal, best_of_final, bracket_status, current_round, shuffle_seed)
		VALUES (:id, :tournament_id, :name, :format, :max_duplas, :best_of_semifinal, :best_of_final, :bracket_status, :current_round, :shuffle_seed)`, rows)
	return err
}

func (s *TournamentStore) CreateDuplas(ctx context.Context, tx *sqlx.Tx, duplas []bracket.Dupla) error {
	if len(duplas) == 0 {
		return nil
	}
	rows := make([]duplaRow, 0, len(duplas))
	for _, d := range duplas {
		rows = append(rows, rowFromDupla(d))
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO duplas (id, category_id, name, player1_kind, player1_roster_id, player1_name, player2_kind, player2_roster_id, player2_name, registered_at)
		VALUES (:id, :category_id, :name, :player1_kind, :player1_roster_id, :player1_name, :player2_kind, :player2_roster_id, :player2_name, :registered_at)`, rows)
	return err
}

func (s *TournamentStore) UpdateDupla(ctx context.Context, tx *sqlx.Tx, dupla bracket.Dupla) error {
	_, err := tx.NamedExecContext(ctx, `UPDATE duplas SET name = :name,
		player1_kind = :player1_kind, player1_roster_id = :player1_roster_id, player1_name = :player1_name,
		player2_kind = :player2_kind, player2_roster_id = :player2_roster_id, player2_name = :player2_name
		WHERE id = :id`, rowFromDupla(dupla))
	return err
}

func (s *TournamentStore) DeleteDupla(ctx context.Context, tx *sqlx.Tx, duplaID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM duplas WHERE id = ?", duplaID)
	return err
}

func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	rows := make([]matchRow, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, rowFromMatch(m))
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (id, category_id, phase, round, a_source_kind, a_source_ref, b_source_kind, b_source_ref, dupla_a_id, dupla_b_id, best_of, wins_to_advance, score_a, score_b, status, next_match_id, next_match_slot)
		VALUES (:id, :category_id, :phase, :round, :a_source_kind, :a_source_ref, :b_source_kind, :b_source_ref, :dupla_a_id, :dupla_b_id, :best_of, :wins_to_advance, :score_a, :score_b, :status, :next_match_id, :next_match_slot)`, rows)
	return err
}

// UpdateMatches rewrites the mutable columns of every given match. Matches
// are never added or removed after generation, only patched.
func (s *TournamentStore) UpdateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	for _, m := range matches {
		_, err := tx.NamedExecContext(ctx, `UPDATE matches SET dupla_a_id = :dupla_a_id, dupla_b_id = :dupla_b_id,
			score_a = :score_a, score_b = :score_b, status = :status WHERE id = :id`, rowFromMatch(m))
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *TournamentStore) UpdateCategoryBracket(ctx context.Context, tx *sqlx.Tx, category bracket.Category) error {
	_, err := tx.NamedExecContext(ctx, `UPDATE categories SET bracket_status = :bracket_status,
		current_round = :current_round, shuffle_seed = :shuffle_seed WHERE id = :id`, rowFromCategory(category))
	return err
}

// GetTournament assembles the full aggregate: tournament, categories, duplas
// and matches.
func (s *TournamentStore) GetTournament(ctx context.Context, id string) (*bracket.Tournament, error) {
	var tr tournamentRow
	if err := s.db.GetContext(ctx, &tr, "SELECT * FROM tournaments WHERE id = ?", id); err != nil {
		return nil, err
	}
	tournament := tr.toTournament()

	var catRows []categoryRow
	if err := s.db.SelectContext(ctx, &catRows, "SELECT * FROM categories WHERE tournament_id = ? ORDER BY name ASC", id); err != nil {
		return nil, err
	}

	for _, cr := range catRows {
		cat, err := s.hydrateCategory(ctx, cr)
		if err != nil {
			return nil, err
		}
		tournament.Categories = append(tournament.Categories, *cat)
	}

	return &tournament, nil
}

func (s *TournamentStore) GetCategory(ctx context.Context, id string) (*bracket.Category, error) {
	var cr categoryRow
	if err := s.db.GetContext(ctx, &cr, "SELECT * FROM categories WHERE id = ?", id); err != nil {
		return nil, err
	}
	return s.hydrateCategory(ctx, cr)
}

func (s *TournamentStore) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	var rows []tournamentRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM tournaments ORDER BY created_at DESC"); err != nil {
		return nil, err
	}
	tournaments := make([]bracket.Tournament, 0, len(rows))
	for _, r := range rows {
		tournaments = append(tournaments, r.toTournament())
	}
	return tournaments, nil
}

func (s *TournamentStore) hydrateCategory(ctx context.Context, cr categoryRow) (*bracket.Category, error) {
	cat := cr.toCategory()

	var duplaRows []duplaRow
	if err := s.db.SelectContext(ctx, &duplaRows, "SELECT * FROM duplas WHERE category_id = ? ORDER BY registered_at ASC, id ASC", cr.ID); err != nil {
		return nil, err
	}
	for _, dr := range duplaRows {
		cat.Duplas = append(cat.Duplas, dr.toDupla())
	}

	var matchRows []matchRow
	if err := s.db.SelectContext(ctx, &matchRows, "SELECT * FROM matches WHERE category_id = ? ORDER BY round ASC, id ASC", cr.ID); err != nil {
		return nil, err
	}
	for _, mr := range matchRows {
		cat.Bracket.Matches = append(cat.Bracket.Matches, mr.toMatch())
	}

	return &cat, nil
}
