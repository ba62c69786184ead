package services

import "time"

// Event names published to realtime displays.
const (
	EventSessionOpened   = "session_opened"
	EventSessionClosed   = "session_closed"
	EventSessionsExpired = "sessions_expired"
	EventDuplicatesFixed = "duplicates_fixed"
	EventOrderCreated    = "order_created"
)

// Notifier receives domain events after they are committed. Implementations
// must not block.
type Notifier interface {
	Publish(event string, data interface{})
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, interface{}) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// Clock returns the current time. Services default to UTC wall time.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now().UTC() }

func clockOrSystem(c Clock) Clock {
	if c == nil {
		return SystemClock
	}
	return c
}
