// Package ingress turns transport-level inputs (HTTP modes, device
// datagrams, Kafka records) into button snapshots for the operator registry.
package ingress

import (
	"errors"
	"fmt"
	"strings"

	"operator-button-service/internal/service/buttons"
)

var (
	// ErrUnknownMode is returned for a mode other than btn1, btn2, both or none.
	ErrUnknownMode = errors.New("unknown button mode")

	// ErrMalformedMessage is returned for a buttons message that cannot be read.
	ErrMalformedMessage = errors.New("malformed buttons message")
)

const buttonsPrefix = "buttons:"

// ParseMode maps a synthetic mode to a snapshot. An empty mode means none.
func ParseMode(mode string) (buttons.Snapshot, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "none":
		return buttons.Snapshot{}, nil
	case "btn1":
		return buttons.Snapshot{Button1: true}, nil
	case "btn2":
		return buttons.Snapshot{Button2: true}, nil
	case "both":
		return buttons.Snapshot{Button1: true, Button2: true}, nil
	default:
		return buttons.Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// ParseMessage reads a device message of the form "buttons:<on|off>,<on|off>".
// ok is false for messages that are not about buttons (probe:, operator: ...),
// which callers ignore.
func ParseMessage(msg string) (s buttons.Snapshot, ok bool, err error) {
	msg = strings.TrimSpace(msg)
	if !strings.HasPrefix(msg, buttonsPrefix) {
		return buttons.Snapshot{}, false, nil
	}

	parts := strings.Split(strings.TrimPrefix(msg, buttonsPrefix), ",")
	if len(parts) != 2 {
		return buttons.Snapshot{}, true, fmt.Errorf("%w: %q", ErrMalformedMessage, msg)
	}

	b1, err := parseSwitch(parts[0])
	if err != nil {
		return buttons.Snapshot{}, true, fmt.Errorf("%w: %q", ErrMalformedMessage, msg)
	}
	b2, err := parseSwitch(parts[1])
	if err != nil {
		return buttons.Snapshot{}, true, fmt.Errorf("%w: %q", ErrMalformedMessage, msg)
	}
	return buttons.Snapshot{Button1: b1, Button2: b2}, true, nil
}

func parseSwitch(v string) (bool, error) {
	switch strings.TrimSpace(v) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, ErrMalformedMessage
}
