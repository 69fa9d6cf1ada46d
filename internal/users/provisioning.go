package users

import (
	"context"
	"fmt"

	"github.com/sehatnabha/telecare/pkg/logging"
)

// IdentityProvisioningPolicy decides how an unknown phone number becomes a
// user account. Creating accounts from bare caller IDs is a trust boundary:
// anyone who can text the service can mint a patient record, so policies
// must never grant elevated roles.
type IdentityProvisioningPolicy interface {
	ProvisionFromPhone(ctx context.Context, phone string) (*User, error)
}

// SMSProvisioningPolicy auto-creates patient accounts for first-time SMS
// senders. The display name is derived from the last digits of the phone
// number so staff can tell provisional accounts apart.
type SMSProvisioningPolicy struct {
	repo   Repository
	logger *logging.Logger
}

// NewSMSProvisioningPolicy creates the policy.
func NewSMSProvisioningPolicy(repo Repository, logger *logging.Logger) *SMSProvisioningPolicy {
	if repo == nil {
		panic("users: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SMSProvisioningPolicy{repo: repo, logger: logger}
}

var _ IdentityProvisioningPolicy = (*SMSProvisioningPolicy)(nil)

// ProvisionFromPhone creates a patient account for the phone number.
func (p *SMSProvisioningPolicy) ProvisionFromPhone(ctx context.Context, phone string) (*User, error) {
	user := &User{
		Name:          fmt.Sprintf("SMS User %s", lastFourDigits(phone)),
		Phone:         phone,
		Role:          RolePatient,
		RegisteredVia: RegisteredViaSMS,
	}
	if err := p.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("users: provision from phone: %w", err)
	}
	p.logger.Info("provisioned sms patient", "user_id", user.ID)
	return user, nil
}

func lastFourDigits(phone string) string {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) <= 4 {
		return string(digits)
	}
	return string(digits[len(digits)-4:])
}
