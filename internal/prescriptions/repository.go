// Package prescriptions stores and serves prescriptions written by doctors
// after consultations.
package prescriptions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrNotFound is returned when no prescription matches the lookup.
var ErrNotFound = errors.New("prescriptions: not found")

// Prescription is one issued prescription. Drugs is the ordered medication
// list as the doctor entered it.
type Prescription struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointmentId"`
	DoctorID      string    `json:"doctorId"`
	PatientID     string    `json:"patientId"`
	Drugs         []string  `json:"drugs"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Repository defines the interface for prescription storage.
type Repository interface {
	Create(ctx context.Context, rx *Prescription) error
	GetByID(ctx context.Context, id string) (*Prescription, error)
	ListForDoctor(ctx context.Context, doctorID string) ([]*Prescription, error)
	ListForPatient(ctx context.Context, patientID string) ([]*Prescription, error)
}

// SQLRepository stores prescriptions through database/sql. The drugs column
// is a Postgres text array handled with pq.Array.
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository initializes the repository.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	if db == nil {
		panic("prescriptions: db required")
	}
	return &SQLRepository{db: db}
}

var _ Repository = (*SQLRepository)(nil)

// Create inserts a new row.
func (r *SQLRepository) Create(ctx context.Context, rx *Prescription) error {
	if rx.ID == "" {
		rx.ID = uuid.NewString()
	}
	if rx.Drugs == nil {
		rx.Drugs = []string{}
	}
	query := `
		INSERT INTO prescriptions (id, appointment_id, doctor_id, patient_id, drugs, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	if err := r.db.QueryRowContext(ctx, query,
		rx.ID,
		rx.AppointmentID,
		rx.DoctorID,
		rx.PatientID,
		pq.Array(rx.Drugs),
		rx.Notes,
	).Scan(&rx.CreatedAt); err != nil {
		return fmt.Errorf("prescriptions: insert failed: %w", err)
	}
	return nil
}

const prescriptionColumns = `id, appointment_id, doctor_id, patient_id, drugs, notes, created_at`

// GetByID fetches a prescription by primary key.
func (r *SQLRepository) GetByID(ctx context.Context, id string) (*Prescription, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+prescriptionColumns+` FROM prescriptions WHERE id = $1`, id)

	var rx Prescription
	if err := row.Scan(&rx.ID, &rx.AppointmentID, &rx.DoctorID, &rx.PatientID, pq.Array(&rx.Drugs), &rx.Notes, &rx.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("prescriptions: select failed: %w", err)
	}
	return &rx, nil
}

// ListForDoctor returns prescriptions the doctor issued, newest first.
func (r *SQLRepository) ListForDoctor(ctx context.Context, doctorID string) ([]*Prescription, error) {
	return r.list(ctx, `SELECT `+prescriptionColumns+` FROM prescriptions WHERE doctor_id = $1 ORDER BY created_at DESC`, doctorID)
}

// ListForPatient returns prescriptions issued to the patient, newest first.
func (r *SQLRepository) ListForPatient(ctx context.Context, patientID string) ([]*Prescription, error) {
	return r.list(ctx, `SELECT `+prescriptionColumns+` FROM prescriptions WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
}

func (r *SQLRepository) list(ctx context.Context, query string, arg any) ([]*Prescription, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("prescriptions: select failed: %w", err)
	}
	defer rows.Close()

	var out []*Prescription
	for rows.Next() {
		var rx Prescription
		if err := rows.Scan(&rx.ID, &rx.AppointmentID, &rx.DoctorID, &rx.PatientID, pq.Array(&rx.Drugs), &rx.Notes, &rx.CreatedAt); err != nil {
			return nil, fmt.Errorf("prescriptions: scan failed: %w", err)
		}
		out = append(out, &rx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("prescriptions: iterate failed: %w", err)
	}
	return out, nil
}
