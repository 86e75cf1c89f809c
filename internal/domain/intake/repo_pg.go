package intake

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medminder/medminder/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const recordCols = `id, patient_id, medicine_name, day, taken, frequency, created_at, updated_at`

// Apply is a single upsert keyed on (patient_id, medicine_name, day), so
// concurrent answers for the same day cannot create duplicate rows.
func (r *repoPG) Apply(ctx context.Context, patientID uuid.UUID, medicineName string, day time.Time, taken bool) (*Record, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx, `
		INSERT INTO intake_record (id, patient_id, medicine_name, day, taken, frequency)
		VALUES ($1, $2, $3, $4, $5, CASE WHEN $5 THEN 1 ELSE 0 END)
		ON CONFLICT (patient_id, medicine_name, day) DO UPDATE SET
			taken      = EXCLUDED.taken,
			frequency  = GREATEST(0, intake_record.frequency + CASE WHEN EXCLUDED.taken THEN 1 ELSE -1 END),
			updated_at = NOW()
		RETURNING `+recordCols,
		uuid.New(), patientID, medicineName, day, taken))
}

func (r *repoPG) GetForDay(ctx context.Context, patientID uuid.UUID, medicineName string, day time.Time) (*Record, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx, `
		SELECT `+recordCols+` FROM intake_record
		WHERE patient_id = $1 AND medicine_name = $2 AND day = $3`,
		patientID, medicineName, day))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*Record, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+recordCols+` FROM intake_record
		WHERE patient_id = $1 AND day >= $2
		ORDER BY day DESC, medicine_name`,
		patientID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.PatientID, &rec.MedicineName, &rec.Day,
			&rec.Taken, &rec.Frequency, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.MedicineName, &rec.Day,
		&rec.Taken, &rec.Frequency, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
