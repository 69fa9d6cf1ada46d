// Package sos records emergency alerts and serves the local emergency
// services directory for the Nabha area.
package sos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no SOS record matches the lookup.
var ErrNotFound = errors.New("sos: not found")

// Event statuses.
const (
	StatusActive     = "active"
	StatusResponded  = "responded"
	StatusResolved   = "resolved"
	StatusFalseAlarm = "false_alarm"
)

var validStatuses = map[string]bool{
	StatusActive:     true,
	StatusResponded:  true,
	StatusResolved:   true,
	StatusFalseAlarm: true,
}

// ValidStatus reports whether s is a known SOS status.
func ValidStatus(s string) bool { return validStatuses[s] }

// Event is one emergency alert raised by a user.
type Event struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	EmergencyType  string     `json:"emergencyType"`
	Status         string     `json:"status"`
	ResponderNotes string     `json:"responderNotes,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	ResponseAt     *time.Time `json:"responseAt,omitempty"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
}

// Repository defines the interface for SOS event storage.
type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]*Event, error)
	MarkResponded(ctx context.Context, id string, at time.Time) error
	UpdateStatus(ctx context.Context, id, status, responderNotes string, resolvedAt *time.Time) error
}

// SQLRepository stores SOS events in the relational database.
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository initializes a repo backed by database/sql.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	if db == nil {
		panic("sos: database handle required")
	}
	return &SQLRepository{db: db}
}

var _ Repository = (*SQLRepository)(nil)

const eventColumns = `id, user_id, latitude, longitude, emergency_type, status, responder_notes, created_at, response_at, resolved_at`

// Create inserts a new active event.
func (r *SQLRepository) Create(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Status == "" {
		event.Status = StatusActive
	}
	query := `
		INSERT INTO sos_logs (id, user_id, latitude, longitude, emergency_type, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	if err := r.db.QueryRowContext(ctx, query,
		event.ID,
		event.UserID,
		event.Latitude,
		event.Longitude,
		event.EmergencyType,
		event.Status,
	).Scan(&event.CreatedAt); err != nil {
		return fmt.Errorf("sos: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches an event by primary key.
func (r *SQLRepository) GetByID(ctx context.Context, id string) (*Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM sos_logs WHERE id = $1`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sos: select failed: %w", err)
	}
	return event, nil
}

// ListForUser returns the user's most recent events, newest first.
func (r *SQLRepository) ListForUser(ctx context.Context, userID string, limit int) ([]*Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM sos_logs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sos: select failed: %w", err)
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("sos: scan failed: %w", err)
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sos: iterate failed: %w", err)
	}
	return out, nil
}

// MarkResponded records the time the emergency response was dispatched.
func (r *SQLRepository) MarkResponded(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sos_logs SET response_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("sos: update failed: %w", err)
	}
	return checkAffected(res)
}

// UpdateStatus sets the responder-facing status fields. resolvedAt is
// written only when non-nil.
func (r *SQLRepository) UpdateStatus(ctx context.Context, id, status, responderNotes string, resolvedAt *time.Time) error {
	notes := sql.NullString{String: responderNotes, Valid: responderNotes != ""}
	resolved := sql.NullTime{}
	if resolvedAt != nil {
		resolved = sql.NullTime{Time: *resolvedAt, Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE sos_logs SET status = $1, responder_notes = COALESCE($2, responder_notes), resolved_at = COALESCE($3, resolved_at) WHERE id = $4`,
		status, notes, resolved, id,
	)
	if err != nil {
		return fmt.Errorf("sos: update failed: %w", err)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sos: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var (
		event      Event
		notes      sql.NullString
		responseAt sql.NullTime
		resolvedAt sql.NullTime
	)
	if err := row.Scan(
		&event.ID,
		&event.UserID,
		&event.Latitude,
		&event.Longitude,
		&event.EmergencyType,
		&event.Status,
		&notes,
		&event.CreatedAt,
		&responseAt,
		&resolvedAt,
	); err != nil {
		return nil, err
	}
	event.ResponderNotes = notes.String
	if responseAt.Valid {
		t := responseAt.Time
		event.ResponseAt = &t
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		event.ResolvedAt = &t
	}
	return &event, nil
}
