package sos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sehatnabha/telecare/internal/auth"
)

type fakeRepo struct {
	byID      map[string]*Event
	responded map[string]time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[string]*Event{}, responded: map[string]time.Time{}}
}

func (f *fakeRepo) Create(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = "sos-" + event.UserID
	}
	event.CreatedAt = time.Now()
	f.byID[event.ID] = event
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) ListForUser(ctx context.Context, userID string, limit int) ([]*Event, error) {
	var out []*Event
	for _, e := range f.byID {
		if e.UserID == userID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkResponded(ctx context.Context, id string, at time.Time) error {
	if _, ok := f.byID[id]; !ok {
		return ErrNotFound
	}
	f.responded[id] = at
	return nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id, status, responderNotes string, resolvedAt *time.Time) error {
	e, ok := f.byID[id]
	if !ok {
		return ErrNotFound
	}
	e.Status = status
	if responderNotes != "" {
		e.ResponderNotes = responderNotes
	}
	if resolvedAt != nil {
		e.ResolvedAt = resolvedAt
	}
	return nil
}

func newTestHandler() (*Handler, *fakeRepo) {
	repo := newFakeRepo()
	h := NewHandler(repo, nil)
	h.now = func() time.Time { return time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC) }
	return h, repo
}

func postJSON(userID, target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	return req
}

func TestEmergencyActivation(t *testing.T) {
	h, repo := newTestHandler()

	req := postJSON("user-1", "/api/sos/emergency", `{"latitude": 30.3752, "longitude": 76.1496, "emergencyType": "medical"}`)
	rec := httptest.NewRecorder()
	h.Emergency(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Message  string   `json:"message"`
		SOSID    string   `json:"sosId"`
		Response Response `json:"response"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Emergency SOS activated successfully", resp.Message)
	assert.Equal(t, "received", resp.Response.Status)
	assert.Equal(t, "Civil Hospital Nabha", resp.Response.NearestHospital.Name)
	assert.Equal(t, "108", resp.Response.AmbulanceService.Phone)
	require.Len(t, resp.Response.EmergencyContacts, 3)

	event := repo.byID[resp.SOSID]
	require.NotNil(t, event)
	assert.Equal(t, StatusActive, event.Status)
	assert.Equal(t, "medical", event.EmergencyType)
	assert.Contains(t, repo.responded, resp.SOSID)
}

func TestEmergencyDefaultsType(t *testing.T) {
	h, repo := newTestHandler()

	req := postJSON("user-1", "/api/sos/emergency", `{"latitude": 0, "longitude": 76.1496}`)
	rec := httptest.NewRecorder()
	h.Emergency(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "zero latitude is a valid coordinate")
	for _, e := range repo.byID {
		assert.Equal(t, "general", e.EmergencyType)
	}
}

func TestEmergencyValidation(t *testing.T) {
	h, _ := newTestHandler()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing latitude", `{"longitude": 76.1}`, "Location coordinates are required"},
		{"missing longitude", `{"latitude": 30.3}`, "Location coordinates are required"},
		{"not json", `lat=30`, "Location coordinates are required"},
		{"latitude out of range", `{"latitude": 91, "longitude": 76.1}`, "Invalid coordinates"},
		{"longitude out of range", `{"latitude": 30.3, "longitude": -181}`, "Invalid coordinates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Emergency(rec, postJSON("user-1", "/api/sos/emergency", tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestHistoryScopedToCaller(t *testing.T) {
	h, repo := newTestHandler()
	repo.byID["sos-a"] = &Event{ID: "sos-a", UserID: "user-1", Status: StatusActive}
	repo.byID["sos-b"] = &Event{ID: "sos-b", UserID: "user-2", Status: StatusActive}

	req := httptest.NewRequest(http.MethodGet, "/api/sos/history", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), "user-1"))
	rec := httptest.NewRecorder()
	h.History(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sos-a")
	assert.NotContains(t, rec.Body.String(), "sos-b")
}

func patchStatus(t *testing.T, h *Handler, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/api/sos/"+id+"/status", strings.NewReader(body))
	req = req.WithContext(auth.WithUserID(req.Context(), "responder-1"))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)
	return rec
}

func TestUpdateStatusEndpoint(t *testing.T) {
	h, repo := newTestHandler()
	repo.byID["sos-1"] = &Event{ID: "sos-1", UserID: "user-1", Status: StatusActive}

	rec := patchStatus(t, h, "sos-1", `{"status": "resolved", "responderNotes": "patient stable"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SOS status updated successfully")

	event := repo.byID["sos-1"]
	assert.Equal(t, StatusResolved, event.Status)
	assert.Equal(t, "patient stable", event.ResponderNotes)
	require.NotNil(t, event.ResolvedAt)
	assert.Equal(t, time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC), *event.ResolvedAt)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	h, repo := newTestHandler()
	repo.byID["sos-1"] = &Event{ID: "sos-1", UserID: "user-1", Status: StatusActive}

	rec := patchStatus(t, h, "sos-1", `{"status": "escalated"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid status")
	assert.Equal(t, StatusActive, repo.byID["sos-1"].Status)
}

func TestUpdateStatusNotFoundRecord(t *testing.T) {
	h, _ := newTestHandler()

	rec := patchStatus(t, h, "ghost", `{"status": "responded"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "SOS record not found")
}

func TestNearbyIsPublic(t *testing.T) {
	h, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/sos/nearby?latitude=30.37&longitude=76.14", nil)
	rec := httptest.NewRecorder()
	h.Nearby(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Civil Hospital Nabha")
	assert.Contains(t, rec.Body.String(), "Apollo Pharmacy")

	rec = httptest.NewRecorder()
	h.Nearby(rec, httptest.NewRequest(http.MethodGet, "/api/sos/nearby", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Location coordinates are required")
}
