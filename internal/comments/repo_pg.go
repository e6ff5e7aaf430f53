package comments

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts an audit record.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO filing_comments (
    id,
    business_identifier,
    filing_id,
    comment_text,
    submitter_id,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.BusinessID,
		rec.FilingID,
		rec.Text,
		rec.SubmitterID,
		rec.CreatedAt,
	)
	return err
}

// ListByBusiness returns a business's audit records, newest first.
func (r *PGRepo) ListByBusiness(ctx context.Context, businessID string) ([]Record, error) {
	const query = `
SELECT id, business_identifier, filing_id, comment_text, submitter_id, created_at
FROM filing_comments
WHERE business_identifier = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var submitter sql.NullString
		if err := rows.Scan(
			&rec.ID,
			&rec.BusinessID,
			&rec.FilingID,
			&rec.Text,
			&submitter,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.SubmitterID = submitter.String
		out = append(out, rec)
	}
	return out, rows.Err()
}
