package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/sehatnabha/telecare/pkg/logging"
)

// OutboundSMS is a single text message to deliver.
type OutboundSMS struct {
	To   string
	From string
	Body string
}

// Messenger sends outbound SMS replies.
type Messenger interface {
	Send(ctx context.Context, msg OutboundSMS) error
}

// ConsoleMessenger logs messages instead of delivering them. Used in
// development and whenever Twilio credentials are absent.
type ConsoleMessenger struct {
	logger *logging.Logger
}

// NewConsoleMessenger creates a messenger that only logs.
func NewConsoleMessenger(logger *logging.Logger) *ConsoleMessenger {
	if logger == nil {
		logger = logging.Default()
	}
	return &ConsoleMessenger{logger: logger}
}

var _ Messenger = (*ConsoleMessenger)(nil)

// Send logs the message and reports success.
func (m *ConsoleMessenger) Send(ctx context.Context, msg OutboundSMS) error {
	m.logger.Info("mock sms", "to", msg.To, "from", msg.From, "body", msg.Body)
	return nil
}

// MessengerConfig carries the credentials needed to pick an SMS provider.
type MessengerConfig struct {
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	SendTimeout      time.Duration
}

// BuildMessenger selects the outbound SMS provider. Twilio is used when a
// real account SID and auth token are configured; otherwise it falls back
// to the console messenger. Returns the messenger and the provider name.
func BuildMessenger(cfg MessengerConfig, logger *logging.Logger) (Messenger, string) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.HasPrefix(cfg.TwilioAccountSID, "AC") && cfg.TwilioAuthToken != "" {
		return NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.SendTimeout, logger), "twilio"
	}
	logger.Warn("twilio credentials missing, sms replies will be logged only")
	return NewConsoleMessenger(logger), "console"
}
