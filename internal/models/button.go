// Package models defines the data structures for button events.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Event types published for button sessions.
const (
	EventSessionStarted     = "operator.session.started"
	EventOneButtonReleased  = "operator.button.released.one"
	EventTwoButtonsReleased = "operator.button.released.two"
)

// ButtonEvent is emitted when an operator's session starts or ends.
type ButtonEvent struct {
	EventID     string `json:"eventId"`
	EventType   string `json:"eventType"`
	OperatorID  string `json:"operatorId"`
	SessionID   string `json:"sessionId"`
	Timestamp   int64  `json:"timestamp"`
	Release     string `json:"release,omitempty"`
	ReachedBoth bool   `json:"reachedBoth,omitempty"`
	DurationMs  int64  `json:"durationMs,omitempty"`
}

// NewButtonEvent stamps a new event with a random ID and the current time.
func NewButtonEvent(eventType, operatorId, sessionId string) ButtonEvent {
	return ButtonEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OperatorID: operatorId,
		SessionID:  sessionId,
		Timestamp:  time.Now().UnixMilli(),
	}
}

// IsRelease reports whether the event ends a session.
func (e ButtonEvent) IsRelease() bool {
	return e.EventType == EventOneButtonReleased || e.EventType == EventTwoButtonsReleased
}

// OperatorStatus is the externally visible state of one operator.
type OperatorStatus struct {
	OperatorID     string `json:"operatorId"`
	Phase          string `json:"phase"`
	Button1        bool   `json:"btn1"`
	Button2        bool   `json:"btn2"`
	SessionID      string `json:"sessionId,omitempty"`
	Sessions       uint64 `json:"sessions"`
	OneUpReleases  uint64 `json:"oneUpReleases"`
	TwoUpReleases  uint64 `json:"twoUpReleases"`
	LastSnapshotAt int64  `json:"lastSnapshotAt,omitempty"`
}
