package calllog

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresRepo persists call logs in the call_logs table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const callLogColumns = `
id, patient_id, call_type, status, message_text, provider, provider_call_id, scheduled_time, completed_time, created_at, updated_at
`

func (r *PostgresRepo) Create(ctx context.Context, l CallLog) error {
	const q = `
INSERT INTO call_logs (
  id, patient_id, call_type, status, message_text, provider, provider_call_id, scheduled_time, completed_time, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
`
	_, err := r.db.ExecContext(ctx, q,
		l.ID,
		l.PatientID,
		l.CallType,
		string(l.Status),
		l.MessageText,
		l.Provider,
		l.ProviderCallID,
		l.ScheduledTime,
		l.CompletedTime,
		l.CreatedAt,
		l.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (CallLog, error) {
	const q = `SELECT ` + callLogColumns + ` FROM call_logs WHERE id = $1`
	l, err := scanCallLog(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return CallLog{}, ErrNotFound
	}
	return l, err
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, id string, u StatusUpdate, now time.Time) error {
	const q = `
UPDATE call_logs
SET status = $2,
    provider = COALESCE(NULLIF($3, ''), provider),
    provider_call_id = COALESCE(NULLIF($4, ''), provider_call_id),
    completed_time = COALESCE($5, completed_time),
    updated_at = $6
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, id, string(u.Status), u.Provider, u.ProviderCallID, u.CompletedTime, now)
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

func (r *PostgresRepo) ListByPatient(ctx context.Context, patientID string) ([]CallLog, error) {
	const q = `SELECT ` + callLogColumns + ` FROM call_logs WHERE patient_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, patientID)
}

func (r *PostgresRepo) ListBetween(ctx context.Context, from, to time.Time) ([]CallLog, error) {
	const q = `SELECT ` + callLogColumns + ` FROM call_logs WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at`
	return r.list(ctx, q, from, to)
}

func (r *PostgresRepo) list(ctx context.Context, q string, args ...any) ([]CallLog, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CallLog
	for rows.Next() {
		l, err := scanCallLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCallLog(row rowScanner) (CallLog, error) {
	var l CallLog
	var provider, providerCallID sql.NullString
	var completed sql.NullTime
	if err := row.Scan(
		&l.ID,
		&l.PatientID,
		&l.CallType,
		&l.Status,
		&l.MessageText,
		&provider,
		&providerCallID,
		&l.ScheduledTime,
		&completed,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return CallLog{}, err
	}
	l.Provider = provider.String
	l.ProviderCallID = providerCallID.String
	if completed.Valid {
		t := completed.Time
		l.CompletedTime = &t
	}
	return l, nil
}
