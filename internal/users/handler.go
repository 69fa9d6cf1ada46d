package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sehatnabha/telecare/internal/auth"
	"github.com/sehatnabha/telecare/pkg/logging"
)

// Handler exposes account registration and lookup endpoints.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new users handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("users: repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// RegisterRequest is the body for POST /api/auth/register.
type RegisterRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Aadhaar string `json:"aadhaar"`
	Role    string `json:"role"`
}

// Register handles POST /api/auth/register. It creates or updates the
// profile for the authenticated user id.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if req.Aadhaar != "" && !ValidAadhaar(req.Aadhaar) {
		http.Error(w, `{"error": "Invalid Aadhaar format"}`, http.StatusBadRequest)
		return
	}
	if !ValidPhone(req.Phone) {
		http.Error(w, `{"error": "Invalid phone format"}`, http.StatusBadRequest)
		return
	}
	role := req.Role
	if role == "" {
		role = RolePatient
	}
	if !ValidRole(role) {
		http.Error(w, `{"error": "Invalid role"}`, http.StatusBadRequest)
		return
	}

	user, err := h.repo.Upsert(r.Context(), &User{
		ID:            userID,
		Name:          strings.TrimSpace(req.Name),
		Phone:         req.Phone,
		Aadhaar:       req.Aadhaar,
		Role:          role,
		RegisteredVia: RegisteredViaWeb,
	})
	if err != nil {
		h.logger.Error("registration failed", "error", err, "user_id", userID)
		http.Error(w, `{"error": "Registration failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": "User registered successfully",
		"user":    user,
	})
}

// Profile handles GET /api/auth/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
		return
	}

	user, err := h.repo.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error": "User not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("profile fetch failed", "error", err, "user_id", userID)
		http.Error(w, `{"error": "Failed to fetch profile"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"user": user})
}

// Doctors handles GET /api/auth/doctors. Public: patients browse this list
// before booking.
func (h *Handler) Doctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.repo.ListDoctors(r.Context())
	if err != nil {
		h.logger.Error("doctors fetch failed", "error", err)
		http.Error(w, `{"error": "Failed to fetch doctors"}`, http.StatusInternalServerError)
		return
	}
	if doctors == nil {
		doctors = []*User{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"doctors": doctors})
}
