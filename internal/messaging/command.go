package messaging

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseErrorKind classifies why an SMS command could not be interpreted.
type ParseErrorKind string

const (
	// MalformedCommand means the text did not match the booking grammar.
	MalformedCommand ParseErrorKind = "malformed_command"
	// PastDateTime means the grammar matched but the requested slot is not
	// in the future.
	PastDateTime ParseErrorKind = "past_date_time"
)

// ParseError is a recoverable interpretation failure. It always results in
// a user-facing reply, never a server error.
type ParseError struct {
	Kind   ParseErrorKind
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("messaging: parse booking command: %s: %s", e.Kind, e.Detail)
}

// BookingCommand is the parsed form of a "BOOK DD/MM/YYYY HH:MM REASON"
// text message. DateTime carries the requested slot at minute precision;
// Reason keeps the sender's original casing.
type BookingCommand struct {
	DateTime time.Time
	Reason   string
}

// DateString renders the slot back in the DD/MM/YYYY form used in replies.
func (c BookingCommand) DateString() string {
	return fmt.Sprintf("%02d/%02d/%04d", c.DateTime.Day(), int(c.DateTime.Month()), c.DateTime.Year())
}

// TimeString renders the slot time in the HH:MM form used in replies.
func (c BookingCommand) TimeString() string {
	return fmt.Sprintf("%02d:%02d", c.DateTime.Hour(), c.DateTime.Minute())
}

var bookingPattern = regexp.MustCompile(`^(?i:BOOK)\s+(\d{1,2})/(\d{1,2})/(\d{4})\s+(\d{1,2}):(\d{2})\s+(.+)$`)

// ParseBookingCommand interprets one inbound SMS body against the booking
// grammar. It is a pure function: the future check compares against the
// supplied now, and the reason text is returned exactly as typed.
func ParseBookingCommand(raw string, now time.Time) (BookingCommand, error) {
	m := bookingPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return BookingCommand{}, &ParseError{Kind: MalformedCommand, Detail: "text does not match BOOK DD/MM/YYYY HH:MM REASON"}
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	reason := strings.TrimSpace(m[6])

	if month < 1 || month > 12 || hour > 23 || minute > 59 {
		return BookingCommand{}, &ParseError{Kind: MalformedCommand, Detail: "date or time out of range"}
	}
	dt := time.Date(year, time.Month(month), day, hour, minute, 0, 0, now.Location())
	// time.Date normalizes overflow (31/04 becomes 01/05); reject anything
	// that did not round-trip.
	if dt.Day() != day || int(dt.Month()) != month || dt.Year() != year {
		return BookingCommand{}, &ParseError{Kind: MalformedCommand, Detail: "no such calendar day"}
	}
	if !dt.After(now) {
		return BookingCommand{}, &ParseError{Kind: PastDateTime, Detail: "requested slot is not in the future"}
	}

	return BookingCommand{DateTime: dt, Reason: reason}, nil
}
