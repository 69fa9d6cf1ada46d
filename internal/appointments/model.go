package appointments

import (
	"errors"
	"time"
)

// Appointment statuses. Pending is the initial state; only the assigned
// doctor moves it forward.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

// Booking channels.
const (
	BookedViaWeb = "web"
	BookedViaSMS = "sms"
)

var (
	// ErrNotFound is returned when no appointment matches the lookup.
	ErrNotFound = errors.New("appointments: not found")
	// ErrInvalidStatus is returned for a status outside the enum.
	ErrInvalidStatus = errors.New("appointments: invalid status")
	// ErrNotAssignedDoctor is returned when a status change comes from
	// anyone but the assigned doctor.
	ErrNotAssignedDoctor = errors.New("appointments: only the assigned doctor may update status")
	// ErrNotParticipant is returned when a reader is neither the patient
	// nor the doctor on the appointment.
	ErrNotParticipant = errors.New("appointments: not a participant")
	// ErrDoctorUnavailable is returned when the requested doctor does not
	// exist or is not a doctor account.
	ErrDoctorUnavailable = errors.New("appointments: doctor unavailable")
)

// Appointment is one scheduled consultation.
type Appointment struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patientId"`
	DoctorID    string    `json:"doctorId"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Reason      string    `json:"reason"`
	VideoRoom   string    `json:"videoRoom"`
	BookedVia   string    `json:"bookedVia"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ValidStatus reports whether the value is a known appointment status.
func ValidStatus(value string) bool {
	switch value {
	case StatusPending, StatusAccepted, StatusRejected, StatusCompleted:
		return true
	}
	return false
}
