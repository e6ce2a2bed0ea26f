package problems

import (
	"context"
	"database/sql"
	"errors"

	"dsa-tracker/pkg/utils"
)

// PostgresRepo stores problems in a single table.
//
// NOTE: This repository assumes the schema created by EnsureSchema:
// - problems (id BIGSERIAL primary key)
//
// BIGSERIAL gives the never-reused id counter; ORDER BY id gives insertion order
// because ids only grow.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const createTableSQL = `
CREATE TABLE IF NOT EXISTS problems (
  id         BIGSERIAL PRIMARY KEY,
  name       TEXT NOT NULL,
  url        TEXT NOT NULL,
  difficulty TEXT NOT NULL,
  status     TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)
`

// EnsureSchema creates the table and seeds it once.
// Seeding is keyed on the sequence never having been used, so deleted seed rows
// are not resurrected on restart.
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return err
	}
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		// Serialize concurrent starters.
		if _, err := tx.ExecContext(ctx, `LOCK TABLE problems IN EXCLUSIVE MODE`); err != nil {
			return err
		}
		var used bool
		if err := tx.QueryRowContext(ctx, `SELECT is_called FROM problems_id_seq`).Scan(&used); err != nil {
			return err
		}
		if used {
			return nil
		}
		const q = `
INSERT INTO problems (id, name, url, difficulty, status)
VALUES ($1,$2,$3,$4,$5)
`
		for _, p := range SeedProblems() {
			if _, err := tx.ExecContext(ctx, q, p.ID, p.Name, p.URL, p.Difficulty, p.Status); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `SELECT setval('problems_id_seq', $1, true)`, firstFreeID-1)
		return err
	})
}

func (r *PostgresRepo) List(ctx context.Context) ([]Problem, error) {
	const q = `
SELECT id, name, url, difficulty, status
FROM problems
ORDER BY id
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Problem, 0)
	for rows.Next() {
		var p Problem
		if err := rows.Scan(&p.ID, &p.Name, &p.URL, &p.Difficulty, &p.Status); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Create(ctx context.Context, req CreateProblemRequest) (Problem, error) {
	const q = `
INSERT INTO problems (name, url, difficulty, status)
VALUES ($1,$2,$3,$4)
RETURNING id, name, url, difficulty, status
`
	var p Problem
	if err := r.db.QueryRowContext(ctx, q, req.Name, req.URL, req.Difficulty, req.Status).Scan(
		&p.ID,
		&p.Name,
		&p.URL,
		&p.Difficulty,
		&p.Status,
	); err != nil {
		return Problem{}, err
	}
	return p, nil
}

func (r *PostgresRepo) Get(ctx context.Context, id int) (Problem, error) {
	const q = `
SELECT id, name, url, difficulty, status
FROM problems
WHERE id = $1
`
	var p Problem
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID,
		&p.Name,
		&p.URL,
		&p.Difficulty,
		&p.Status,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Problem{}, ErrNotFound
		}
		return Problem{}, err
	}
	return p, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM problems WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
