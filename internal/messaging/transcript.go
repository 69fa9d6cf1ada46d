package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	transcriptKeyPrefix = "sms_transcript:"
	transcriptTTL       = 30 * 24 * time.Hour
)

// TranscriptMessage is one entry in a phone number's SMS history.
type TranscriptMessage struct {
	ID        string    `json:"id"`
	Direction string    `json:"direction"` // "inbound" or "outbound"
	Body      string    `json:"body"`
	Outcome   string    `json:"outcome,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptStore keeps a capped per-phone SMS transcript in Redis. A nil
// store is valid and drops writes, so the webhook path works without Redis.
type TranscriptStore struct {
	redis       *redis.Client
	tracer      trace.Tracer
	maxMessages int64
}

// NewTranscriptStore creates the store. Returns nil when redisClient is nil.
func NewTranscriptStore(redisClient *redis.Client) *TranscriptStore {
	if redisClient == nil {
		return nil
	}
	return &TranscriptStore{
		redis:       redisClient,
		tracer:      otel.Tracer("telecare.internal.messaging.transcript"),
		maxMessages: 250,
	}
}

// Append records one message against the phone number.
func (s *TranscriptStore) Append(ctx context.Context, phone string, msg TranscriptMessage) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if phone == "" {
		return errors.New("messaging: transcript phone required")
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("messaging: marshal transcript message: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "messaging.transcript.append")
	defer span.End()

	key := transcriptKey(phone)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, transcriptTTL)
	if s.maxMessages > 0 {
		pipe.LTrim(ctx, key, -s.maxMessages, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("messaging: append transcript message: %w", err)
	}
	return nil
}

// List returns up to limit most recent messages for the phone number, in
// chronological order. limit <= 0 returns the full transcript.
func (s *TranscriptStore) List(ctx context.Context, phone string, limit int64) ([]TranscriptMessage, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	if phone == "" {
		return nil, errors.New("messaging: transcript phone required")
	}

	ctx, span := s.tracer.Start(ctx, "messaging.transcript.list")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -limit
	}

	raw, err := s.redis.LRange(ctx, transcriptKey(phone), start, -1).Result()
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, redis.Nil) {
			return []TranscriptMessage{}, nil
		}
		return nil, fmt.Errorf("messaging: list transcript: %w", err)
	}

	out := make([]TranscriptMessage, 0, len(raw))
	for _, item := range raw {
		var msg TranscriptMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func transcriptKey(phone string) string {
	return transcriptKeyPrefix + phone
}
