package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pomotrack/apiserver/types"
)

// RecordRepository appends and reads completed-interval records.
type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Create(ctx context.Context, record types.Record) (types.Record, error) {
	if record.ID == "" {
		record.ID = NewID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	const query = `
		INSERT INTO records (id, user_id, created_at)
		VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, record.ID, record.UserID, record.CreatedAt); err != nil {
		return types.Record{}, err
	}
	return record, nil
}

// CreatedSince returns the creation times of the user's records at or after since.
func (r *RecordRepository) CreatedSince(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	const query = `
		SELECT created_at
		FROM records
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stamps []time.Time
	for rows.Next() {
		var createdAt time.Time
		if err := rows.Scan(&createdAt); err != nil {
			return nil, err
		}
		stamps = append(stamps, createdAt)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stamps, nil
}
