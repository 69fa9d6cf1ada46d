package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when no report matches the lookup.
var ErrNotFound = errors.New("reports: not found")

// Report is the metadata row for one uploaded file. ObjectKey locates the
// bytes in S3 and is not exposed to clients.
type Report struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patientId"`
	FileName   string    `json:"fileName"`
	ObjectKey  string    `json:"-"`
	Type       string    `json:"type"`
	FileSize   int64     `json:"fileSize"`
	MimeType   string    `json:"mimeType"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Repository defines the interface for report metadata storage.
type Repository interface {
	Create(ctx context.Context, report *Report) error
	GetByID(ctx context.Context, id string) (*Report, error)
	ListForPatient(ctx context.Context, patientID string) ([]*Report, error)
	ListAll(ctx context.Context) ([]*Report, error)
	Delete(ctx context.Context, id string) error
}

// PgxPool is the subset of pgxpool.Pool the repository uses.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores report metadata in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("reports: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

var _ Repository = (*PostgresRepository)(nil)

const reportColumns = `id, patient_id, file_name, object_key, type, file_size, mime_type, uploaded_at`

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, report *Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	query := `
		INSERT INTO reports (id, patient_id, file_name, object_key, type, file_size, mime_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING uploaded_at
	`
	if err := r.pool.QueryRow(ctx, query,
		report.ID,
		report.PatientID,
		report.FileName,
		report.ObjectKey,
		report.Type,
		report.FileSize,
		report.MimeType,
	).Scan(&report.UploadedAt); err != nil {
		return fmt.Errorf("reports: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches a report by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Report, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	var rep Report
	if err := row.Scan(&rep.ID, &rep.PatientID, &rep.FileName, &rep.ObjectKey, &rep.Type, &rep.FileSize, &rep.MimeType, &rep.UploadedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reports: select failed: %w", err)
	}
	return &rep, nil
}

// ListForPatient returns the patient's reports, newest first.
func (r *PostgresRepository) ListForPatient(ctx context.Context, patientID string) ([]*Report, error) {
	return r.list(ctx, `SELECT `+reportColumns+` FROM reports WHERE patient_id = $1 ORDER BY uploaded_at DESC`, patientID)
}

// ListAll returns every report, newest first. Used by doctors during
// consultations.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*Report, error) {
	return r.list(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY uploaded_at DESC`)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*Report, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reports: select failed: %w", err)
	}
	defer rows.Close()

	var out []*Report
	for rows.Next() {
		var rep Report
		if err := rows.Scan(&rep.ID, &rep.PatientID, &rep.FileName, &rep.ObjectKey, &rep.Type, &rep.FileSize, &rep.MimeType, &rep.UploadedAt); err != nil {
			return nil, fmt.Errorf("reports: scan failed: %w", err)
		}
		out = append(out, &rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports: iterate failed: %w", err)
	}
	return out, nil
}

// Delete removes the metadata row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("reports: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
