// Package schema validates outgoing button events against a JSON schema
// derived from models.ButtonEvent.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"operator-button-service/internal/models"
)

// ErrInvalidEvent wraps every validation failure.
var ErrInvalidEvent = errors.New("invalid event")

type Validator struct {
	resolved *jsonschema.Resolved
}

// New builds the event schema. It only fails if the model cannot be reflected.
func New() (*Validator, error) {
	s, err := jsonschema.For[models.ButtonEvent](nil)
	if err != nil {
		return nil, fmt.Errorf("build event schema: %w", err)
	}

	minLen := 1
	for _, name := range []string{"eventId", "operatorId", "sessionId"} {
		if p, ok := s.Properties[name]; ok {
			p.MinLength = &minLen
		}
	}
	if p, ok := s.Properties["eventType"]; ok {
		p.Enum = []any{
			models.EventSessionStarted,
			models.EventOneButtonReleased,
			models.EventTwoButtonsReleased,
		}
	}
	if p, ok := s.Properties["release"]; ok {
		p.Enum = []any{"ONE_UP", "TWO_UP"}
	}

	resolved, err := s.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve event schema: %w", err)
	}
	return &Validator{resolved: resolved}, nil
}

// Validate checks ev against the schema and the release rules.
func (v *Validator) Validate(ev models.ButtonEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	var instance map[string]any
	if err := json.Unmarshal(payload, &instance); err != nil {
		return err
	}

	if err := v.resolved.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	switch {
	case ev.IsRelease() && ev.Release == "":
		return fmt.Errorf("%w: %s without release kind", ErrInvalidEvent, ev.EventType)
	case !ev.IsRelease() && ev.Release != "":
		return fmt.Errorf("%w: %s must not carry a release kind", ErrInvalidEvent, ev.EventType)
	}
	return nil
}
