package patients

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"carecall-platform/pkg/utils"
)

// PostgresRepo persists patients in the patients table.
//
// NOTE: risk_factors and medications are stored as JSON text columns; the
// call_schedule column is stored verbatim and parsed tolerantly on read.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const patientColumns = `
id, name, phone, gestational_age_weeks, risk_factors, medications, risk_category, call_schedule, created_at, updated_at
`

// Create inserts a patient. The phone column is the inbound-caller lookup
// key, so the uniqueness check and the insert run in one transaction; a
// second intake for the same number gets ErrDuplicatePhone.
func (r *PostgresRepo) Create(ctx context.Context, p Patient) error {
	const q = `
INSERT INTO patients (
  id, name, phone, gestational_age_weeks, risk_factors, medications, risk_category, call_schedule, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
`
	riskFactors, err := marshalStrings(p.RiskFactors)
	if err != nil {
		return err
	}
	medications, err := marshalStrings(p.Medications)
	if err != nil {
		return err
	}
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		var existing string
		err := tx.QueryRowContext(ctx, `SELECT id FROM patients WHERE phone = $1`, p.Phone).Scan(&existing)
		switch {
		case err == nil:
			return ErrDuplicatePhone
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}
		_, err = tx.ExecContext(ctx, q,
			p.ID,
			p.Name,
			p.Phone,
			p.GestationalAgeWeeks,
			riskFactors,
			medications,
			p.RiskCategory,
			p.CallSchedule,
			p.CreatedAt,
			p.UpdatedAt,
		)
		return err
	})
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Patient, error) {
	const q = `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	return scanPatient(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) GetByPhone(ctx context.Context, phone string) (Patient, error) {
	const q = `SELECT ` + patientColumns + ` FROM patients WHERE phone = $1`
	return scanPatient(r.db.QueryRowContext(ctx, q, phone))
}

func (r *PostgresRepo) List(ctx context.Context) ([]Patient, error) {
	const q = `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Patient
	for rows.Next() {
		p, err := scanPatientRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) UpdateCallSchedule(ctx context.Context, id, schedule string) error {
	const q = `UPDATE patients SET call_schedule = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, schedule, time.Now().UTC())
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row *sql.Row) (Patient, error) {
	p, err := scanPatientRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Patient{}, ErrNotFound
	}
	return p, err
}

func scanPatientRow(row rowScanner) (Patient, error) {
	var p Patient
	var riskFactors, medications, callSchedule sql.NullString
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Phone,
		&p.GestationalAgeWeeks,
		&riskFactors,
		&medications,
		&p.RiskCategory,
		&callSchedule,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return Patient{}, err
	}
	p.RiskFactors = unmarshalStrings(riskFactors.String)
	p.Medications = unmarshalStrings(medications.String)
	p.CallSchedule = callSchedule.String
	return p, nil
}

func marshalStrings(in []string) (string, error) {
	if in == nil {
		in = []string{}
	}
	b, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
