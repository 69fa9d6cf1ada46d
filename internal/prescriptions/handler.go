package prescriptions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sehatnabha/telecare/internal/appointments"
	"github.com/sehatnabha/telecare/internal/auth"
	"github.com/sehatnabha/telecare/internal/users"
	"github.com/sehatnabha/telecare/pkg/logging"
)

// Handler exposes prescription endpoints.
type Handler struct {
	repo   Repository
	appts  appointments.Repository
	users  users.Repository
	logger *logging.Logger
}

// NewHandler creates a new prescriptions handler.
func NewHandler(repo Repository, appts appointments.Repository, userRepo users.Repository, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("prescriptions: repository cannot be nil")
	}
	if appts == nil {
		panic("prescriptions: appointments repository cannot be nil")
	}
	if userRepo == nil {
		panic("prescriptions: users repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, appts: appts, users: userRepo, logger: logger}
}

// CreateRequest is the body for POST /api/prescriptions.
type CreateRequest struct {
	AppointmentID string   `json:"appointmentId"`
	Drugs         []string `json:"drugs"`
	Notes         string   `json:"notes"`
}

// Create handles POST /api/prescriptions. Doctor role is enforced by
// middleware; the prescription is tied to one of the doctor's own
// appointments and inherits its patient.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.AppointmentID) == "" {
		http.Error(w, `{"error": "Appointment ID is required"}`, http.StatusBadRequest)
		return
	}

	appt, err := h.appts.GetByID(r.Context(), req.AppointmentID)
	if err != nil {
		if errors.Is(err, appointments.ErrNotFound) {
			http.Error(w, `{"error": "Appointment not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("prescription appointment lookup failed", "error", err)
		http.Error(w, `{"error": "Failed to create prescription"}`, http.StatusInternalServerError)
		return
	}
	if appt.DoctorID != doctorID {
		http.Error(w, `{"error": "Not authorized for this appointment"}`, http.StatusForbidden)
		return
	}

	rx := &Prescription{
		AppointmentID: appt.ID,
		DoctorID:      doctorID,
		PatientID:     appt.PatientID,
		Drugs:         req.Drugs,
		Notes:         req.Notes,
	}
	if err := h.repo.Create(r.Context(), rx); err != nil {
		h.logger.Error("prescription creation failed", "error", err)
		http.Error(w, `{"error": "Failed to create prescription"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message":        "Prescription created successfully",
		"prescriptionId": rx.ID,
		"prescription":   rx,
	})
}

// My handles GET /api/prescriptions/my.
func (h *Handler) My(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("prescription user lookup failed", "error", err, "user_id", userID)
		http.Error(w, `{"error": "Failed to fetch prescriptions"}`, http.StatusInternalServerError)
		return
	}

	var list []*Prescription
	if user.Role == users.RoleDoctor {
		list, err = h.repo.ListForDoctor(r.Context(), userID)
	} else {
		list, err = h.repo.ListForPatient(r.Context(), userID)
	}
	if err != nil {
		h.logger.Error("prescriptions fetch failed", "error", err, "user_id", userID)
		http.Error(w, `{"error": "Failed to fetch prescriptions"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Prescription{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"prescriptions": list})
}

// Get handles GET /api/prescriptions/{id}. Only the prescribing doctor or
// the patient may read.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
		return
	}

	rx, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error": "Prescription not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("prescription fetch failed", "error", err)
		http.Error(w, `{"error": "Failed to fetch prescription"}`, http.StatusInternalServerError)
		return
	}
	if rx.PatientID != userID && rx.DoctorID != userID {
		http.Error(w, `{"error": "Not authorized to view this prescription"}`, http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rx)
}
