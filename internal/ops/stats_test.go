package ops

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sehatnabha/telecare/internal/observability/metrics"
)

func countRow(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func TestStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.NewMessagingMetrics(reg)
	m.ObserveWebhookLatency("booked", 0.2)
	m.ObserveWebhookLatency("booked", 0.4)
	m.ObserveWebhookLatency("malformed_command", 0.1)

	h := NewHandler(db, reg, nil)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users$`).WillReturnRows(countRow(42))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role = 'doctor'`).WillReturnRows(countRow(5))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role = 'patient'`).WillReturnRows(countRow(37))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments$`).WillReturnRows(countRow(120))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments WHERE status = 'pending'`).WillReturnRows(countRow(9))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments WHERE status = 'accepted'`).WillReturnRows(countRow(80))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments WHERE booked_via = 'sms'`).WillReturnRows(countRow(33))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reports`).WillReturnRows(countRow(14))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM sos_logs WHERE status = 'active'`).WillReturnRows(countRow(2))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	rec := httptest.NewRecorder()
	h.Stats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stats Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(42), stats.Users.Total)
	assert.Equal(t, int64(5), stats.Users.Doctors)
	assert.Equal(t, int64(120), stats.Appointments.Total)
	assert.Equal(t, int64(33), stats.Appointments.SMS)
	assert.Equal(t, int64(14), stats.Reports)
	assert.Equal(t, int64(2), stats.ActiveSOS)

	byOutcome := map[string]WebhookLatency{}
	for _, l := range stats.SMSWebhook {
		byOutcome[l.Outcome] = l
	}
	require.Contains(t, byOutcome, "booked")
	assert.Equal(t, uint64(2), byOutcome["booked"].Count)
	assert.InDelta(t, 300, byOutcome["booked"].AvgLatencyMs, 0.01)
	assert.Equal(t, uint64(1), byOutcome["malformed_command"].Count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsQueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	h := NewHandler(db, prometheus.NewRegistry(), nil)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users$`).WillReturnError(assert.AnError)

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to fetch stats")
}

func TestStatsWithoutWebhookTraffic(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	h := NewHandler(db, prometheus.NewRegistry(), nil)

	for i := 0; i < 9; i++ {
		mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(countRow(0))
	}

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var stats Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.NotNil(t, stats.SMSWebhook)
	assert.Empty(t, stats.SMSWebhook)
}
