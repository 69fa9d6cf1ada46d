package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository defines the interface for appointment storage.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	ListForPatient(ctx context.Context, patientID string) ([]*Appointment, error)
	ListForDoctor(ctx context.Context, doctorID string) ([]*Appointment, error)
	UpdateStatus(ctx context.Context, id, status string) (*Appointment, error)
}

// PgxPool is the subset of pgxpool.Pool the repository uses.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

var _ Repository = (*PostgresRepository)(nil)

const appointmentColumns = `id, patient_id, doctor_id, status, scheduled_at, reason, video_room, booked_via, created_at, updated_at`

// Create inserts a new row. The video room name is derived from the id so
// both SMS and web bookings land on the same conference URL scheme.
func (r *PostgresRepository) Create(ctx context.Context, appt *Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if appt.Status == "" {
		appt.Status = StatusPending
	}
	if appt.VideoRoom == "" {
		appt.VideoRoom = fmt.Sprintf("appointment-%s", appt.ID)
	}
	query := `
		INSERT INTO appointments (id, patient_id, doctor_id, status, scheduled_at, reason, video_room, booked_via)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		appt.ID,
		appt.PatientID,
		appt.DoctorID,
		appt.Status,
		appt.ScheduledAt,
		appt.Reason,
		appt.VideoRoom,
		appt.BookedVia,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt); err != nil {
		return fmt.Errorf("appointments: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches an appointment by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	return scanAppointment(row)
}

// ListForPatient returns the patient's appointments, newest first.
func (r *PostgresRepository) ListForPatient(ctx context.Context, patientID string) ([]*Appointment, error) {
	return r.list(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE patient_id = $1 ORDER BY scheduled_at DESC`, patientID)
}

// ListForDoctor returns the doctor's appointments, newest first.
func (r *PostgresRepository) ListForDoctor(ctx context.Context, doctorID string) ([]*Appointment, error) {
	return r.list(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE doctor_id = $1 ORDER BY scheduled_at DESC`, doctorID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Status, &a.ScheduledAt, &a.Reason, &a.VideoRoom, &a.BookedVia, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate failed: %w", err)
	}
	return out, nil
}

// UpdateStatus sets the status and returns the refreshed row.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) (*Appointment, error) {
	query := `
		UPDATE appointments SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + appointmentColumns + `
	`
	return scanAppointment(r.pool.QueryRow(ctx, query, id, status))
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	if err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Status, &a.ScheduledAt, &a.Reason, &a.VideoRoom, &a.BookedVia, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return &a, nil
}
