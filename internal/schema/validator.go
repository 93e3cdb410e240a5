// Package schema validates event payloads before they are published.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidEvent is returned when a payload is missing a required field.
var ErrInvalidEvent = errors.New("invalid event payload")

// requiredFields must be present and non-empty in every published event.
var requiredFields = []string{"eventType", "sessionId"}

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Validate checks the required envelope fields of an event payload.
// TODO: plug a real JSON Schema validator once the event contracts are
// published to the schema registry.
func (v *Validator) Validate(event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: not serializable: %v", ErrInvalidEvent, err)
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return fmt.Errorf("%w: not an object", ErrInvalidEvent)
	}

	for _, name := range requiredFields {
		value, ok := fields[name]
		if !ok {
			return fmt.Errorf("%w: missing field %q", ErrInvalidEvent, name)
		}
		if s, isString := value.(string); isString && s == "" {
			return fmt.Errorf("%w: empty field %q", ErrInvalidEvent, name)
		}
	}
	return nil
}
