package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sehatnabha/telecare/internal/users"
	"github.com/sehatnabha/telecare/pkg/logging"
)

// Service applies the booking and ownership rules on top of the repository.
type Service struct {
	repo   Repository
	users  users.Repository
	logger *logging.Logger
}

// NewService creates the appointments service.
func NewService(repo Repository, userRepo users.Repository, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository cannot be nil")
	}
	if userRepo == nil {
		panic("appointments: users repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, users: userRepo, logger: logger}
}

// Book creates a pending web appointment after confirming the target is a
// real doctor account.
func (s *Service) Book(ctx context.Context, patientID, doctorID string, scheduledAt time.Time, reason string) (*Appointment, error) {
	doctor, err := s.users.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrDoctorUnavailable
		}
		return nil, fmt.Errorf("appointments: verify doctor: %w", err)
	}
	if doctor.Role != users.RoleDoctor {
		return nil, ErrDoctorUnavailable
	}

	appt := &Appointment{
		PatientID:   patientID,
		DoctorID:    doctorID,
		Status:      StatusPending,
		ScheduledAt: scheduledAt,
		Reason:      reason,
		BookedVia:   BookedViaWeb,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}
	s.logger.Info("appointment booked", "appointment_id", appt.ID, "doctor_id", doctorID)
	return appt, nil
}

// ListForUser returns the appointments where the user is the doctor or the
// patient, depending on their role.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Appointment, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("appointments: resolve user: %w", err)
	}
	if user.Role == users.RoleDoctor {
		return s.repo.ListForDoctor(ctx, userID)
	}
	return s.repo.ListForPatient(ctx, userID)
}

// GetForParticipant fetches an appointment, allowing only the patient or
// the doctor on it to read.
func (s *Service) GetForParticipant(ctx context.Context, id, userID string) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != userID && appt.DoctorID != userID {
		return nil, ErrNotParticipant
	}
	return appt, nil
}

// UpdateStatus moves an appointment through its lifecycle. Only the
// assigned doctor may do this, and pending is not a valid target.
func (s *Service) UpdateStatus(ctx context.Context, id, doctorID, status string) (*Appointment, error) {
	if !ValidStatus(status) || status == StatusPending {
		return nil, ErrInvalidStatus
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != doctorID {
		return nil, ErrNotAssignedDoctor
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info("appointment status updated", "appointment_id", id, "status", status)
	return updated, nil
}
