package wizard

import "github.com/mark3labs/stepwise/internal/page"

// EventType identifies what happened in a transition.
type EventType string

const (
	EventStarted          EventType = "started"
	EventAdvanced         EventType = "advanced"
	EventRetreated        EventType = "retreated"
	EventValidationFailed EventType = "validation_failed"
	EventCancelled        EventType = "cancelled"
	EventFinished         EventType = "finished"
)

// Event is emitted after every transition and every rejected forward move.
// It carries the action set so a renderer can enable, disable and relabel
// its controls without touching the wizard.
type Event struct {
	Type    EventType `json:"type"`
	RunID   string    `json:"run_id"`
	From    int       `json:"from"`
	To      int       `json:"to"`
	Page    page.ID   `json:"page"`
	Length  int       `json:"length"`
	State   State     `json:"state"`
	Actions ActionSet `json:"actions"`
	Message string    `json:"message,omitempty"` // Failure message for EventValidationFailed
}

// Listener receives events. Listeners run synchronously after the wizard
// releases its lock, in subscription order.
type Listener func(Event)
