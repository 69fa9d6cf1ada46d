package users

import (
	"errors"
	"regexp"
	"time"
)

// Roles a user account can hold.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// Registration channels.
const (
	RegisteredViaWeb = "web"
	RegisteredViaSMS = "sms"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("users: not found")

// User is one registered account. Aadhaar is the national ID; it is stored
// but never serialized in API responses.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Aadhaar       string    `json:"-"`
	Role          string    `json:"role"`
	RegisteredVia string    `json:"registeredVia"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

var (
	aadhaarPattern = regexp.MustCompile(`^\d{12}$`)
	phonePattern   = regexp.MustCompile(`^\+?[1-9]\d{9,14}$`)
)

// ValidAadhaar reports whether the value is a well-formed 12-digit Aadhaar number.
func ValidAadhaar(value string) bool {
	return aadhaarPattern.MatchString(value)
}

// ValidPhone reports whether the value looks like an E.164 phone number.
func ValidPhone(value string) bool {
	return phonePattern.MatchString(value)
}

// ValidRole reports whether the value is a known account role.
func ValidRole(value string) bool {
	return value == RolePatient || value == RoleDoctor
}
