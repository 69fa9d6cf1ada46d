package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sehatnabha/telecare/internal/appointments"
	"github.com/sehatnabha/telecare/internal/observability/metrics"
	"github.com/sehatnabha/telecare/internal/users"
	"github.com/sehatnabha/telecare/pkg/logging"
)

var workflowTracer = otel.Tracer("telecare.internal.messaging.workflow")

// Reply templates. The parenthesized example in the usage replies matches
// the grammar exactly so users can copy it.
const (
	usageReply = "Invalid format. Please use: BOOK DD/MM/YYYY HH:MM REASON\nExample: BOOK 25/12/2023 10:30 Fever and cough"

	pastDateReply = "Invalid date/time format. Please use DD/MM/YYYY HH:MM format.\nExample: BOOK 25/12/2023 10:30 Fever and cough"

	noDoctorsReply = "Sorry, no doctors are available at this time. Please try again later or visit our website."

	errorReply = "Sorry, there was an error processing your request. Please try again later."

	confirmationTemplate = "✅ Appointment booked successfully!\n📅 Date: %s at %s\n🩺 Reason: %s\n📋 ID: %s\n\nYou will receive updates via SMS. For video consultation, please visit our website."
)

// userDirectory is the slice of the users repository the workflow needs.
type userDirectory interface {
	FindByPhone(ctx context.Context, phone string) (*users.User, error)
	FindOneDoctor(ctx context.Context) (*users.User, error)
}

// appointmentWriter persists new appointments.
type appointmentWriter interface {
	Create(ctx context.Context, appt *appointments.Appointment) error
}

// Outcome labels recorded against metrics and returned to the webhook.
const (
	OutcomeBooked      = "booked"
	OutcomeMalformed   = "malformed"
	OutcomePastDate    = "past_date"
	OutcomeNoDoctors   = "no_doctors"
	OutcomeSystemError = "system_error"
)

// BookingWorkflow turns inbound booking texts into pending appointments.
// Every inbound message produces exactly one reply, whatever path it takes.
type BookingWorkflow struct {
	directory    userDirectory
	provisioner  users.IdentityProvisioningPolicy
	appointments appointmentWriter
	messenger    Messenger
	metrics      *metrics.MessagingMetrics
	logger       *logging.Logger
	callTimeout  time.Duration
}

// NewBookingWorkflow wires the workflow's collaborators.
func NewBookingWorkflow(
	directory userDirectory,
	provisioner users.IdentityProvisioningPolicy,
	appts appointmentWriter,
	messenger Messenger,
	m *metrics.MessagingMetrics,
	logger *logging.Logger,
) *BookingWorkflow {
	if directory == nil {
		panic("messaging: user directory cannot be nil")
	}
	if provisioner == nil {
		panic("messaging: provisioning policy cannot be nil")
	}
	if appts == nil {
		panic("messaging: appointment writer cannot be nil")
	}
	if messenger == nil {
		panic("messaging: messenger cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingWorkflow{
		directory:    directory,
		provisioner:  provisioner,
		appointments: appts,
		messenger:    messenger,
		metrics:      m,
		logger:       logger,
		callTimeout:  5 * time.Second,
	}
}

// HandleInbound processes one inbound SMS body from the given phone number.
// It returns the reply that was sent and an outcome label. Parse failures
// and missing doctors are handled conversationally, not surfaced as errors;
// collaborator failures produce one best-effort error reply and are logged,
// never retried.
func (w *BookingWorkflow) HandleInbound(ctx context.Context, body, from string, now time.Time) (reply string, outcome string) {
	ctx, span := workflowTracer.Start(ctx, "messaging.booking.handle_inbound")
	defer span.End()

	cmd, err := ParseBookingCommand(body, now)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) && parseErr.Kind == PastDateTime {
			w.reply(ctx, from, pastDateReply)
			return pastDateReply, w.finish(span, OutcomePastDate)
		}
		w.reply(ctx, from, usageReply)
		return usageReply, w.finish(span, OutcomeMalformed)
	}

	patient, err := w.resolvePatient(ctx, from)
	if err != nil {
		w.logger.Error("booking workflow: resolve patient failed", "error", err)
		span.RecordError(err)
		w.reply(ctx, from, errorReply)
		return errorReply, w.finish(span, OutcomeSystemError)
	}

	doctor, err := w.findDoctor(ctx)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			w.reply(ctx, from, noDoctorsReply)
			return noDoctorsReply, w.finish(span, OutcomeNoDoctors)
		}
		w.logger.Error("booking workflow: find doctor failed", "error", err)
		span.RecordError(err)
		w.reply(ctx, from, errorReply)
		return errorReply, w.finish(span, OutcomeSystemError)
	}

	appt := &appointments.Appointment{
		PatientID:   patient.ID,
		DoctorID:    doctor.ID,
		Status:      appointments.StatusPending,
		ScheduledAt: cmd.DateTime,
		Reason:      cmd.Reason,
		BookedVia:   appointments.BookedViaSMS,
	}
	callCtx, cancel := context.WithTimeout(ctx, w.callTimeout)
	err = w.appointments.Create(callCtx, appt)
	cancel()
	if err != nil {
		w.logger.Error("booking workflow: create appointment failed", "error", err, "patient_id", patient.ID)
		span.RecordError(err)
		w.reply(ctx, from, errorReply)
		return errorReply, w.finish(span, OutcomeSystemError)
	}

	confirmation := fmt.Sprintf(confirmationTemplate, cmd.DateString(), cmd.TimeString(), cmd.Reason, appt.ID[:8])
	w.reply(ctx, from, confirmation)
	w.logger.Info("sms appointment booked",
		"appointment_id", appt.ID,
		"patient_id", patient.ID,
		"doctor_id", doctor.ID,
		"scheduled_at", cmd.DateTime,
	)
	span.SetAttributes(attribute.String("telecare.appointment_id", appt.ID))
	return confirmation, w.finish(span, OutcomeBooked)
}

// resolvePatient finds the account registered with the phone number, or
// provisions one through the policy when none exists.
func (w *BookingWorkflow) resolvePatient(ctx context.Context, phone string) (*users.User, error) {
	callCtx, cancel := context.WithTimeout(ctx, w.callTimeout)
	defer cancel()

	patient, err := w.directory.FindByPhone(callCtx, phone)
	if err == nil {
		return patient, nil
	}
	if !errors.Is(err, users.ErrNotFound) {
		return nil, err
	}

	provCtx, cancelProv := context.WithTimeout(ctx, w.callTimeout)
	defer cancelProv()
	return w.provisioner.ProvisionFromPhone(provCtx, phone)
}

func (w *BookingWorkflow) findDoctor(ctx context.Context) (*users.User, error) {
	callCtx, cancel := context.WithTimeout(ctx, w.callTimeout)
	defer cancel()
	return w.directory.FindOneDoctor(callCtx)
}

// reply sends a single outbound SMS. Delivery failure is logged but does
// not alter the workflow outcome: the inbound message was already handled.
func (w *BookingWorkflow) reply(ctx context.Context, to, body string) {
	callCtx, cancel := context.WithTimeout(ctx, w.callTimeout)
	defer cancel()
	if err := w.messenger.Send(callCtx, OutboundSMS{To: to, Body: body}); err != nil {
		w.logger.Error("booking workflow: send reply failed", "error", err, "to", to)
		w.metrics.ObserveOutbound("error")
		return
	}
	w.metrics.ObserveOutbound("sent")
}

func (w *BookingWorkflow) finish(span trace.Span, outcome string) string {
	span.SetAttributes(attribute.String("telecare.sms.outcome", outcome))
	return outcome
}
