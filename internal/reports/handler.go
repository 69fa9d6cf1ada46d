package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sehatnabha/telecare/internal/auth"
	"github.com/sehatnabha/telecare/internal/users"
	"github.com/sehatnabha/telecare/pkg/logging"
)

// DefaultMaxUploadBytes caps report uploads at 10 MB.
const DefaultMaxUploadBytes = 10 << 20

var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"application/pdf": true,
}

// Handler exposes report upload and retrieval endpoints.
type Handler struct {
	repo     Repository
	store    *ObjectStore
	users    users.Repository
	logger   *logging.Logger
	maxBytes int64
}

// NewHandler creates a new reports handler. maxBytes <= 0 uses the default
// 10 MB cap.
func NewHandler(repo Repository, store *ObjectStore, userRepo users.Repository, maxBytes int64, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("reports: repository cannot be nil")
	}
	if store == nil {
		panic("reports: object store cannot be nil")
	}
	if userRepo == nil {
		panic("reports: users repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Handler{repo: repo, store: store, users: userRepo, logger: logger, maxBytes: maxBytes}
}

// Upload handles POST /api/reports/upload: multipart form with a "file"
// part and an optional "type" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	patientID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		http.Error(w, `{"error": "File too large or invalid upload"}`, http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, `{"error": "No file uploaded"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		h.logger.Error("report read failed", "error", err)
		http.Error(w, `{"error": "Failed to upload report"}`, http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > h.maxBytes {
		http.Error(w, `{"error": "File too large or invalid upload"}`, http.StatusBadRequest)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !allowedMimeTypes[mimeType] {
		http.Error(w, `{"error": "Invalid file type. Only JPEG, PNG, and PDF files are allowed."}`, http.StatusBadRequest)
		return
	}

	reportType := r.FormValue("type")
	if reportType == "" {
		reportType = "medical_report"
	}

	id := uuid.NewString()
	fileName := path.Base(header.Filename)
	objectKey := fmt.Sprintf("reports/%s/%s-%s", patientID, id, fileName)

	if err := h.store.Put(r.Context(), objectKey, data, mimeType); err != nil {
		h.logger.Error("report upload failed", "error", err)
		http.Error(w, `{"error": "Failed to upload report"}`, http.StatusInternalServerError)
		return
	}

	report := &Report{
		ID:        id,
		PatientID: patientID,
		FileName:  fileName,
		ObjectKey: objectKey,
		Type:      reportType,
		FileSize:  int64(len(data)),
		MimeType:  mimeType,
	}
	if err := h.repo.Create(r.Context(), report); err != nil {
		h.logger.Error("report metadata insert failed", "error", err)
		// Best effort: don't leave an orphaned object behind.
		if delErr := h.store.Delete(r.Context(), objectKey); delErr != nil {
			h.logger.Warn("orphaned report object cleanup failed", "error", delErr, "s3_key", objectKey)
		}
		http.Error(w, `{"error": "Failed to upload report"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message":  "Report uploaded successfully",
		"reportId": report.ID,
		"report":   report,
	})
}

// My handles GET /api/reports/my. Doctors see every report; patients see
// only their own.
func (h *Handler) My(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("report user lookup failed", "error", err, "user_id", userID)
		http.Error(w, `{"error": "Failed to fetch reports"}`, http.StatusInternalServerError)
		return
	}

	var list []*Report
	if user.Role == users.RoleDoctor {
		list, err = h.repo.ListAll(r.Context())
	} else {
		list, err = h.repo.ListForPatient(r.Context(), userID)
	}
	if err != nil {
		h.logger.Error("reports fetch failed", "error", err, "user_id", userID)
		http.Error(w, `{"error": "Failed to fetch reports"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Report{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"reports": list})
}

// Get handles GET /api/reports/{id}. Doctors may read any report; patients
// only their own.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
		return
	}

	report, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error": "Report not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("report fetch failed", "error", err)
		http.Error(w, `{"error": "Failed to fetch report"}`, http.StatusInternalServerError)
		return
	}

	if report.PatientID != userID {
		user, err := h.users.GetByID(r.Context(), userID)
		if err != nil || user.Role != users.RoleDoctor {
			http.Error(w, `{"error": "Not authorized to view this report"}`, http.StatusForbidden)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}

// Delete handles DELETE /api/reports/{id}. Only the owning patient may
// delete; the object is removed from S3 after the row.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, `{"error": "No token provided"}`, http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	report, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error": "Report not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("report fetch failed", "error", err)
		http.Error(w, `{"error": "Failed to delete report"}`, http.StatusInternalServerError)
		return
	}
	if report.PatientID != userID {
		http.Error(w, `{"error": "Not authorized to delete this report"}`, http.StatusForbidden)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil && !errors.Is(err, ErrNotFound) {
		h.logger.Error("report delete failed", "error", err)
		http.Error(w, `{"error": "Failed to delete report"}`, http.StatusInternalServerError)
		return
	}
	if err := h.store.Delete(r.Context(), report.ObjectKey); err != nil {
		h.logger.Warn("report object delete failed", "error", err, "s3_key", report.ObjectKey)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Report deleted successfully"})
}
