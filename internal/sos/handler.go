package sos

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sehatnabha/telecare/internal/auth"
	"github.com/sehatnabha/telecare/pkg/logging"
)

const historyLimit = 10

// Handler exposes the emergency SOS endpoints.
type Handler struct {
	repo   Repository
	logger *logging.Logger
	now    func() time.Time
}

// NewHandler creates a new SOS handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("sos: repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger, now: time.Now}
}

// EmergencyRequest is the POST /api/sos/emergency body. Coordinates are
// pointers so a missing field is distinguishable from 0.
type EmergencyRequest struct {
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	EmergencyType string   `json:"emergencyType"`
}

// Emergency handles POST /api/sos/emergency.
func (h *Handler) Emergency(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
		return
	}

	var req EmergencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		http.Error(w, `{"error": "Location coordinates are required"}`, http.StatusBadRequest)
		return
	}
	if math.Abs(*req.Latitude) > 90 || math.Abs(*req.Longitude) > 180 {
		http.Error(w, `{"error": "Invalid coordinates"}`, http.StatusBadRequest)
		return
	}
	if req.EmergencyType == "" {
		req.EmergencyType = "general"
	}

	event := &Event{
		UserID:        userID,
		Latitude:      *req.Latitude,
		Longitude:     *req.Longitude,
		EmergencyType: req.EmergencyType,
		Status:        StatusActive,
	}
	if err := h.repo.Create(r.Context(), event); err != nil {
		h.logger.Error("sos create failed", "error", err, "user_id", userID)
		http.Error(w, `{"error": "Failed to activate emergency SOS"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Warn("emergency sos activated",
		"sos_id", event.ID,
		"user_id", userID,
		"emergency_type", event.EmergencyType,
	)

	response := EmergencyResponse(event.ID)
	if err := h.repo.MarkResponded(r.Context(), event.ID, h.now()); err != nil {
		// The alert is already recorded; a missing response timestamp
		// must not block the payload the caller needs.
		h.logger.Error("sos response timestamp failed", "error", err, "sos_id", event.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message":  "Emergency SOS activated successfully",
		"sosId":    event.ID,
		"response": response,
	})
}

// History handles GET /api/sos/history: the caller's ten most recent
// alerts, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
		return
	}

	events, err := h.repo.ListForUser(r.Context(), userID, historyLimit)
	if err != nil {
		h.logger.Error("sos history fetch failed", "error", err, "user_id", userID)
		http.Error(w, `{"error": "Failed to fetch SOS history"}`, http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []*Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"sosHistory": events})
}

// UpdateStatusRequest is the PATCH /api/sos/{id}/status body.
type UpdateStatusRequest struct {
	Status         string `json:"status"`
	ResponderNotes string `json:"responderNotes"`
}

// UpdateStatus handles PATCH /api/sos/{id}/status. Used by responders to
// close the loop on an alert.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !ValidStatus(req.Status) {
		http.Error(w, `{"error": "Invalid status"}`, http.StatusBadRequest)
		return
	}

	var resolvedAt *time.Time
	if req.Status == StatusResolved {
		t := h.now()
		resolvedAt = &t
	}

	if err := h.repo.UpdateStatus(r.Context(), id, req.Status, req.ResponderNotes, resolvedAt); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error": "SOS record not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("sos status update failed", "error", err, "sos_id", id)
		http.Error(w, `{"error": "Failed to update SOS status"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "SOS status updated successfully"})
}

// Nearby handles GET /api/sos/nearby. Public: someone in an emergency may
// not be logged in.
func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("latitude") == "" || q.Get("longitude") == "" {
		http.Error(w, `{"error": "Location coordinates are required"}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"nearbyServices": NearbyServices()})
}
