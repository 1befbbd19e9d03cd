package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AdamBeresnev/bracket-master/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

const createTournamentQuery = `INSERT INTO tournaments (id, owner_id, name, state, created_at, updated_at)
	VALUES (:id, :owner_id, :name, :state, :created_at, :updated_at)`

const (
	getTournamentQuery    = "SELECT * FROM tournaments WHERE id = ?"
	listTournamentsQuery  = "SELECT * FROM tournaments WHERE owner_id = ? ORDER BY updated_at DESC, id"
	updateStateQuery      = "UPDATE tournaments SET state = ?, updated_at = ? WHERE id = ?"
	renameTournamentQuery = "UPDATE tournaments SET name = ?, updated_at = ? WHERE id = ? AND owner_id = ?"
	deleteTournamentQuery = "DELETE FROM tournaments WHERE id = ? AND owner_id = ?"
)

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	now := time.Now().UTC()
	if tournament.CreatedAt.IsZero() {
		tournament.CreatedAt = now
	}
	tournament.UpdatedAt = now
	_, err := tx.NamedExecContext(ctx, createTournamentQuery, tournament)
	return err
}

// GetTournament loads a save and refuses snapshots that fail validation
func (s *TournamentStore) GetTournament(ctx context.Context, id string) (*bracket.Tournament, error) {
	return getTournament(ctx, s.db, id)
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id string) (*bracket.Tournament, error) {
	return getTournament(ctx, tx, id)
}

func getTournament(ctx context.Context, q sqlx.QueryerContext, id string) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := sqlx.GetContext(ctx, q, &tournament, getTournamentQuery, id); err != nil {
		return nil, err
	}
	if err := tournament.State.Validate(); err != nil {
		return nil, fmt.Errorf("tournament %s: %w", id, err)
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentsByOwner(ctx context.Context, ownerID uuid.UUID) ([]bracket.Tournament, error) {
	tournaments := []bracket.Tournament{}
	err := s.db.SelectContext(ctx, &tournaments, listTournamentsQuery, ownerID)
	return tournaments, err
}

// UpdateStateTx replaces the stored snapshot, last write wins
func (s *TournamentStore) UpdateStateTx(ctx context.Context, tx *sqlx.Tx, id string, state bracket.State) error {
	res, err := tx.ExecContext(ctx, updateStateQuery, state, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (s *TournamentStore) RenameTournament(ctx context.Context, id string, ownerID uuid.UUID, name string) error {
	res, err := s.db.ExecContext(ctx, renameTournamentQuery, name, time.Now().UTC(), id, ownerID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (s *TournamentStore) DeleteTournament(ctx context.Context, id string, ownerID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, deleteTournamentQuery, id, ownerID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
