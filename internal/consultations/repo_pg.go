package consultations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres. Inputs and output live in jsonb
// columns.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, owner_id, is_guest, catalog_version, budget_range_id, total_price_krw, inputs, output, created_at`

// Create inserts a consultation.
func (r *PGRepo) Create(ctx context.Context, consultation Consultation) error {
	const query = `
INSERT INTO consultations (
	id, owner_id, is_guest, catalog_version, budget_range_id, total_price_krw, inputs, output, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	inputs, err := json.Marshal(consultation.Inputs)
	if err != nil {
		return fmt.Errorf("marshal inputs: %w", err)
	}
	output, err := json.Marshal(consultation.Output)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		consultation.ID,
		consultation.OwnerID,
		consultation.IsGuest,
		consultation.CatalogVersion,
		consultation.BudgetRangeID,
		consultation.TotalPriceKRW,
		inputs,
		output,
		consultation.CreatedAt,
	)
	return err
}

// GetByID returns the owner's consultation.
func (r *PGRepo) GetByID(ctx context.Context, ownerID, id string) (Consultation, error) {
	query := `SELECT ` + selectColumns + `
FROM consultations
WHERE id = $1 AND owner_id = $2
LIMIT 1`
	consultation, err := scanConsultation(r.DB.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Consultation{}, ErrNotFound
		}
		return Consultation{}, err
	}
	return consultation, nil
}

// ListByOwner returns the owner's consultations, newest first. A limit of
// zero or less returns every row.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Consultation, error) {
	query := `SELECT ` + selectColumns + `
FROM consultations
WHERE owner_id = $1
ORDER BY created_at DESC
OFFSET $2`
	args := []any{ownerID, offset}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Consultation{}
	for rows.Next() {
		consultation, err := scanConsultation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, consultation)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConsultation(row rowScanner) (Consultation, error) {
	var (
		c      Consultation
		inputs []byte
		output []byte
	)
	if err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.IsGuest,
		&c.CatalogVersion,
		&c.BudgetRangeID,
		&c.TotalPriceKRW,
		&inputs,
		&output,
		&c.CreatedAt,
	); err != nil {
		return Consultation{}, err
	}
	if len(inputs) > 0 {
		if err := json.Unmarshal(inputs, &c.Inputs); err != nil {
			return Consultation{}, fmt.Errorf("decode inputs: %w", err)
		}
	}
	if len(output) > 0 {
		if err := json.Unmarshal(output, &c.Output); err != nil {
			return Consultation{}, fmt.Errorf("decode output: %w", err)
		}
	}
	return c, nil
}
