package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sehatnabha/telecare/internal/auth"
	"github.com/sehatnabha/telecare/pkg/logging"
)

// Handler exposes appointment booking and lifecycle endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new appointments handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("appointments: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// BookRequest is the body for POST /api/appointments/book.
type BookRequest struct {
	DoctorID    string    `json:"doctorId"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Reason      string    `json:"reason"`
}

// Book handles POST /api/appointments/book. Patient role is enforced by
// middleware; the handler owns payload validation.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Missing required fields"}`, http.StatusBadRequest)
		return
	}
	if req.DoctorID == "" || req.ScheduledAt.IsZero() || strings.TrimSpace(req.Reason) == "" {
		http.Error(w, `{"error": "Missing required fields"}`, http.StatusBadRequest)
		return
	}

	appt, err := h.service.Book(r.Context(), userID, req.DoctorID, req.ScheduledAt, strings.TrimSpace(req.Reason))
	if err != nil {
		if errors.Is(err, ErrDoctorUnavailable) {
			http.Error(w, `{"error": "Doctor not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("appointment booking failed", "error", err)
		http.Error(w, `{"error": "Failed to book appointment"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message":       "Appointment booked successfully",
		"appointmentId": appt.ID,
		"appointment":   appt,
	})
}

// My handles GET /api/appointments/my.
func (h *Handler) My(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
		return
	}

	appts, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("appointments fetch failed", "error", err, "user_id", userID)
		http.Error(w, `{"error": "Failed to fetch appointments"}`, http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []*Appointment{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"appointments": appts})
}

// Get handles GET /api/appointments/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
		return
	}

	appt, err := h.service.GetForParticipant(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, `{"error": "Appointment not found"}`, http.StatusNotFound)
		case errors.Is(err, ErrNotParticipant):
			http.Error(w, `{"error": "Not authorized to view this appointment"}`, http.StatusForbidden)
		default:
			h.logger.Error("appointment fetch failed", "error", err)
			http.Error(w, `{"error": "Failed to fetch appointment"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(appt)
}

// UpdateStatusRequest is the body for PATCH /api/appointments/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/appointments/{id}/status. Doctor role is
// enforced by middleware; assignment is enforced by the service.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid status"}`, http.StatusBadRequest)
		return
	}

	if _, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), userID, req.Status); err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			http.Error(w, `{"error": "Invalid status"}`, http.StatusBadRequest)
		case errors.Is(err, ErrNotFound):
			http.Error(w, `{"error": "Appointment not found"}`, http.StatusNotFound)
		case errors.Is(err, ErrNotAssignedDoctor):
			http.Error(w, `{"error": "Not authorized to update this appointment"}`, http.StatusForbidden)
		default:
			h.logger.Error("appointment update failed", "error", err)
			http.Error(w, `{"error": "Failed to update appointment"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Appointment status updated successfully"})
}
