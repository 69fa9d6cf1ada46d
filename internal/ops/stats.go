// Package ops serves the admin operations dashboard data.
package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/sehatnabha/telecare/pkg/logging"
)

const webhookLatencyMetric = "telecare_sms_webhook_latency_seconds"

// Stats is the GET /admin/stats payload.
type Stats struct {
	Users        UserCounts        `json:"users"`
	Appointments AppointmentCounts `json:"appointments"`
	Reports      int64             `json:"reports"`
	ActiveSOS    int64             `json:"activeSos"`
	SMSWebhook   []WebhookLatency  `json:"smsWebhook"`
}

// UserCounts breaks the user table down by role.
type UserCounts struct {
	Total    int64 `json:"total"`
	Doctors  int64 `json:"doctors"`
	Patients int64 `json:"patients"`
}

// AppointmentCounts breaks appointments down by status.
type AppointmentCounts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Accepted int64 `json:"accepted"`
	SMS      int64 `json:"bookedViaSms"`
}

// WebhookLatency is one outcome's latency summary, read from the
// in-process Prometheus registry rather than a separate metrics backend.
type WebhookLatency struct {
	Outcome      string  `json:"outcome"`
	Count        uint64  `json:"count"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
}

// Handler serves the admin stats endpoint.
type Handler struct {
	db       *sql.DB
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

// NewHandler creates the ops handler. gatherer nil falls back to the
// default registry.
func NewHandler(db *sql.DB, gatherer prometheus.Gatherer, logger *logging.Logger) *Handler {
	if db == nil {
		panic("ops: database handle required")
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{db: db, gatherer: gatherer, logger: logger}
}

// Stats handles GET /admin/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.collect(r.Context())
	if err != nil {
		h.logger.Error("stats collection failed", "error", err)
		http.Error(w, `{"error": "Failed to fetch stats"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}

func (h *Handler) collect(ctx context.Context) (*Stats, error) {
	var stats Stats

	counts := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM users`, &stats.Users.Total},
		{`SELECT COUNT(*) FROM users WHERE role = 'doctor'`, &stats.Users.Doctors},
		{`SELECT COUNT(*) FROM users WHERE role = 'patient'`, &stats.Users.Patients},
		{`SELECT COUNT(*) FROM appointments`, &stats.Appointments.Total},
		{`SELECT COUNT(*) FROM appointments WHERE status = 'pending'`, &stats.Appointments.Pending},
		{`SELECT COUNT(*) FROM appointments WHERE status = 'accepted'`, &stats.Appointments.Accepted},
		{`SELECT COUNT(*) FROM appointments WHERE booked_via = 'sms'`, &stats.Appointments.SMS},
		{`SELECT COUNT(*) FROM reports`, &stats.Reports},
		{`SELECT COUNT(*) FROM sos_logs WHERE status = 'active'`, &stats.ActiveSOS},
	}
	for _, c := range counts {
		if err := h.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("ops: count query failed: %w", err)
		}
	}

	latencies, err := h.webhookLatencies()
	if err != nil {
		// The dashboard is still useful without the latency panel.
		h.logger.Warn("webhook latency snapshot failed", "error", err)
		latencies = nil
	}
	if latencies == nil {
		latencies = []WebhookLatency{}
	}
	stats.SMSWebhook = latencies

	return &stats, nil
}

// webhookLatencies walks the gathered metric families for the SMS webhook
// histogram and summarizes sample count and mean latency per outcome.
func (h *Handler) webhookLatencies() ([]WebhookLatency, error) {
	families, err := h.gatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("ops: gather metrics: %w", err)
	}

	var out []WebhookLatency
	for _, mf := range families {
		if mf.GetName() != webhookLatencyMetric || mf.GetType() != dto.MetricType_HISTOGRAM {
			continue
		}
		for _, m := range mf.GetMetric() {
			hist := m.GetHistogram()
			entry := WebhookLatency{Outcome: labelValue(m, "outcome"), Count: hist.GetSampleCount()}
			if entry.Count > 0 {
				entry.AvgLatencyMs = hist.GetSampleSum() / float64(entry.Count) * 1000
			}
			out = append(out, entry)
		}
	}
	return out, nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
