package messaging

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sehatnabha/telecare/internal/observability/metrics"
	"github.com/sehatnabha/telecare/pkg/logging"
)

var webhookTracer = otel.Tracer("telecare.internal.messaging.webhook")

// Handler handles SMS webhook and notification requests.
type Handler struct {
	webhookSecret string
	workflow      *BookingWorkflow
	messenger     Messenger
	transcripts   *TranscriptStore
	metrics       *metrics.MessagingMetrics
	logger        *logging.Logger
	now           func() time.Time
}

// NewHandler creates a new messaging handler. webhookSecret enables Twilio
// signature validation when non-empty; transcripts may be nil.
func NewHandler(webhookSecret string, workflow *BookingWorkflow, messenger Messenger, transcripts *TranscriptStore, m *metrics.MessagingMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if workflow == nil {
		panic("messaging: workflow cannot be nil")
	}
	if messenger == nil {
		panic("messaging: messenger cannot be nil")
	}
	return &Handler{
		webhookSecret: webhookSecret,
		workflow:      workflow,
		messenger:     messenger,
		transcripts:   transcripts,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

// Webhook handles POST /api/sms/webhook. The response is 400 only when the
// provider payload is unusable; every interpreted message gets a 200 no
// matter how the booking turned out, so the provider does not retry.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	ctx, span := webhookTracer.Start(r.Context(), "messaging.webhook")
	defer span.End()

	if h.webhookSecret != "" {
		if !ValidateTwilioSignature(r, h.webhookSecret, buildAbsoluteURL(r)) {
			h.logger.Warn("invalid twilio signature")
			span.RecordError(errors.New("invalid twilio signature"))
			h.metrics.ObserveInbound("unauthorized")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	inbound, err := ParseInboundSMS(r)
	if err != nil {
		h.logger.Error("failed to parse sms webhook", "error", err)
		span.RecordError(err)
		h.metrics.ObserveInbound("bad_request")
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	// A blank Body is still a message and earns the usage reply; only an
	// absent field means the payload is malformed.
	if !r.Form.Has("Body") || strings.TrimSpace(inbound.From) == "" {
		h.metrics.ObserveInbound("bad_request")
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	from := NormalizeE164(inbound.From)
	span.SetAttributes(attribute.String("telecare.sms.from", from))

	if err := h.transcripts.Append(ctx, from, TranscriptMessage{
		Direction: "inbound",
		Body:      inbound.Body,
	}); err != nil {
		h.logger.Warn("failed to append inbound transcript", "error", err)
	}

	reply, outcome := h.workflow.HandleInbound(ctx, inbound.Body, from, h.now())

	if err := h.transcripts.Append(ctx, from, TranscriptMessage{
		Direction: "outbound",
		Body:      reply,
		Outcome:   outcome,
	}); err != nil {
		h.logger.Warn("failed to append outbound transcript", "error", err)
	}

	h.metrics.ObserveInbound(outcome)
	h.metrics.ObserveWebhookLatency(outcome, time.Since(started).Seconds())
	h.logger.Info("sms webhook handled", "outcome", outcome, "from", from)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NotifyRequest is the body for POST /api/sms/notify.
type NotifyRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Notify handles POST /api/sms/notify, an internal endpoint for sending
// one-off SMS notifications. The route is admin-token guarded.
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	ctx, span := webhookTracer.Start(r.Context(), "messaging.notify")
	defer span.End()

	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Phone number and message are required"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Message) == "" {
		http.Error(w, `{"error": "Phone number and message are required"}`, http.StatusBadRequest)
		return
	}

	to := NormalizeE164(req.To)
	if err := h.messenger.Send(ctx, OutboundSMS{To: to, Body: req.Message}); err != nil {
		h.logger.Error("notify send failed", "error", err, "to", to)
		span.RecordError(err)
		h.metrics.ObserveOutbound("error")
		http.Error(w, `{"error": "Failed to send SMS"}`, http.StatusInternalServerError)
		return
	}
	h.metrics.ObserveOutbound("sent")

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "SMS sent successfully"})
}

// Transcript handles GET /admin/sms/{phone}, returning the stored SMS
// history for a phone number.
func (h *Handler) Transcript(w http.ResponseWriter, r *http.Request) {
	phone := NormalizeE164(chi.URLParam(r, "phone"))
	if phone == "" {
		http.Error(w, `{"error": "Phone number is required"}`, http.StatusBadRequest)
		return
	}

	messages, err := h.transcripts.List(r.Context(), phone, 0)
	if err != nil {
		h.logger.Error("failed to list transcript", "error", err, "phone", phone)
		http.Error(w, `{"error": "Failed to load transcript"}`, http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []TranscriptMessage{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"phone": phone, "messages": messages})
}
