package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository defines the interface for user storage.
type Repository interface {
	Create(ctx context.Context, user *User) error
	Upsert(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindOneDoctor(ctx context.Context) (*User, error)
	ListDoctors(ctx context.Context) ([]*User, error)
}

// PgxPool is the subset of pgxpool.Pool the repository uses.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores users in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

var _ Repository = (*PostgresRepository)(nil)

const userColumns = `id, name, phone, aadhaar, role, registered_via, created_at, updated_at`

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	query := `
		INSERT INTO users (id, name, phone, aadhaar, role, registered_via)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Phone,
		user.Aadhaar,
		user.Role,
		user.RegisteredVia,
	).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		return fmt.Errorf("users: insert failed: %w", err)
	}
	return nil
}

// Upsert inserts the user or refreshes the profile fields for an existing id.
func (r *PostgresRepository) Upsert(ctx context.Context, user *User) (*User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	query := `
		INSERT INTO users (id, name, phone, aadhaar, role, registered_via)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			aadhaar = EXCLUDED.aadhaar,
			updated_at = now()
		RETURNING ` + userColumns + `
	`
	row := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Phone,
		user.Aadhaar,
		user.Role,
		user.RegisteredVia,
	)
	return scanUser(row)
}

// GetByID fetches a user by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByPhone fetches the user registered with the given phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1 LIMIT 1`, phone)
	return scanUser(row)
}

// FindOneDoctor returns an arbitrary doctor account. Selection is the
// oldest registration; no fairness is implied.
func (r *PostgresRepository) FindOneDoctor(ctx context.Context) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at LIMIT 1`, RoleDoctor)
	return scanUser(row)
}

// ListDoctors returns all doctor accounts.
func (r *PostgresRepository) ListDoctors(ctx context.Context) ([]*User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY name`, RoleDoctor)
	if err != nil {
		return nil, fmt.Errorf("users: select doctors failed: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		var u User
		var aadhaar *string
		if err := rows.Scan(&u.ID, &u.Name, &u.Phone, &aadhaar, &u.Role, &u.RegisteredVia, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("users: scan doctor failed: %w", err)
		}
		if aadhaar != nil {
			u.Aadhaar = *aadhaar
		}
		out = append(out, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: iterate doctors failed: %w", err)
	}
	return out, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var aadhaar *string
	if err := row.Scan(&u.ID, &u.Name, &u.Phone, &aadhaar, &u.Role, &u.RegisteredVia, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	if aadhaar != nil {
		u.Aadhaar = *aadhaar
	}
	return &u, nil
}
