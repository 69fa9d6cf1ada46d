package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisionFromPhone(t *testing.T) {
	repo := newMemoryRepo()
	policy := NewSMSProvisioningPolicy(repo, nil)

	user, err := policy.ProvisionFromPhone(context.Background(), "+919876543210")
	require.NoError(t, err)

	assert.Equal(t, "SMS User 3210", user.Name)
	assert.Equal(t, "+919876543210", user.Phone)
	assert.Equal(t, RolePatient, user.Role)
	assert.Equal(t, RegisteredViaSMS, user.RegisteredVia)
	assert.Empty(t, user.Aadhaar)
	require.Len(t, repo.created, 1)
}

func TestProvisionFromShortPhone(t *testing.T) {
	repo := newMemoryRepo()
	policy := NewSMSProvisioningPolicy(repo, nil)

	user, err := policy.ProvisionFromPhone(context.Background(), "911")
	require.NoError(t, err)
	assert.Equal(t, "SMS User 911", user.Name)
}
