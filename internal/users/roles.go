package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/sehatnabha/telecare/internal/auth"
)

// RoleResolver adapts the user repository to the auth role gate.
type RoleResolver struct {
	repo Repository
}

// NewRoleResolver wraps the repository for auth.CheckRole.
func NewRoleResolver(repo Repository) *RoleResolver {
	if repo == nil {
		panic("users: repository required")
	}
	return &RoleResolver{repo: repo}
}

var _ auth.RoleResolver = (*RoleResolver)(nil)

// RoleOf returns the stored role for the user id.
func (r *RoleResolver) RoleOf(ctx context.Context, userID string) (string, error) {
	user, err := r.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", auth.ErrUnknownUser
		}
		return "", fmt.Errorf("users: resolve role: %w", err)
	}
	return user.Role, nil
}
