package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTwilioSenderTimeout(t *testing.T) {
	s := NewTwilioSender("ACxxx", "token", "+15550001111", 3*time.Second, nil)
	assert.Equal(t, 3*time.Second, s.httpClient.Timeout)
}

func TestNewTwilioSenderTimeoutDefault(t *testing.T) {
	s := NewTwilioSender("ACxxx", "token", "+15550001111", 0, nil)
	assert.Equal(t, 10*time.Second, s.httpClient.Timeout)
}

func TestBuildMessengerPropagatesSendTimeout(t *testing.T) {
	msgr, provider := BuildMessenger(MessengerConfig{
		TwilioAccountSID: "ACxxx",
		TwilioAuthToken:  "token",
		TwilioFromNumber: "+15550001111",
		SendTimeout:      5 * time.Second,
	}, nil)

	assert.Equal(t, "twilio", provider)
	sender, ok := msgr.(*TwilioSender)
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, sender.httpClient.Timeout)
}

func TestBuildMessengerFallsBackToConsole(t *testing.T) {
	msgr, provider := BuildMessenger(MessengerConfig{}, nil)

	assert.Equal(t, "console", provider)
	assert.NoError(t, msgr.Send(context.Background(), OutboundSMS{To: "+15551234567", Body: "hi"}))
}

func TestTwilioSendValidatesMessage(t *testing.T) {
	s := NewTwilioSender("ACxxx", "token", "", time.Second, nil)

	err := s.Send(context.Background(), OutboundSMS{Body: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "to required")

	err = s.Send(context.Background(), OutboundSMS{To: "+15551234567", Body: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from required")

	err = s.Send(context.Background(), OutboundSMS{To: "+15551234567", From: "+15550001111", Body: "   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "body required")
}
