package message

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/c360/uploadguard/errors"
	"github.com/c360/uploadguard/pkg/timestamp"
)

// Envelope is the versioned wire contract wrapping every cross-boundary
// exchange. The payload stays raw until the envelope itself has been
// validated; invalid messages are rejected wholesale, never partially
// processed.
type Envelope struct {
	ID        string          `json:"id"`
	Type      Type            `json:"type"`
	Timestamp int64           `json:"timestamp"` // Unix milliseconds
	Source    string          `json:"source"`
	Target    string          `json:"target"`
	Payload   json.RawMessage `json:"payload"`
}

// Payload is implemented by every typed message payload
type Payload interface {
	// MessageType returns the envelope type this payload belongs to
	MessageType() Type
	// Validate checks the payload shape
	Validate() error
}

// NewEnvelope wraps a typed payload in a validated envelope. Because the
// payload carries its own message type, producers cannot emit an envelope
// whose type disagrees with its payload.
func NewEnvelope(payload Payload, source, target string) (*Envelope, error) {
	if payload == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidMessage, "Envelope", "NewEnvelope", "payload cannot be nil")
	}
	if err := payload.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "Envelope", "NewEnvelope", "invalid payload")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Envelope", "NewEnvelope", "marshal payload")
	}

	return &Envelope{
		ID:        uuid.New().String(),
		Type:      payload.MessageType(),
		Timestamp: timestamp.Now(),
		Source:    source,
		Target:    target,
		Payload:   data,
	}, nil
}

// Reply builds a response envelope correlated to a request: the reply
// reuses the request ID and swaps source and target.
func (e *Envelope) Reply(payload Payload) (*Envelope, error) {
	resp, err := NewEnvelope(payload, e.Target, e.Source)
	if err != nil {
		return nil, err
	}
	resp.ID = e.ID
	return resp, nil
}

// Validate checks the envelope fields and decodes the payload against the
// registered schema for its type. It returns the decoded payload so
// callers act only on fully validated messages.
func (e *Envelope) Validate() (Payload, error) {
	if e.ID == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidMessage, "Envelope", "Validate", "missing id")
	}
	if !e.Type.IsValid() {
		return nil, errors.WrapInvalid(errors.ErrInvalidMessage, "Envelope", "Validate",
			fmt.Sprintf("unknown message type %q", e.Type))
	}
	if e.Timestamp <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidMessage, "Envelope", "Validate", "missing timestamp")
	}
	if e.Source == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidMessage, "Envelope", "Validate", "missing source")
	}
	if len(e.Payload) == 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidMessage, "Envelope", "Validate", "missing payload")
	}

	payload, err := decodePayload(e.Type, e.Payload)
	if err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "Envelope", "Validate",
			fmt.Sprintf("invalid %s payload", e.Type))
	}
	return payload, nil
}

// Parse unmarshals raw bytes into a validated envelope plus its typed
// payload. This is the single entry point transports use; nothing acts on
// a message that did not come through here.
func Parse(data []byte) (*Envelope, Payload, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, errors.WrapInvalid(err, "Envelope", "Parse", "unmarshal envelope")
	}

	payload, err := env.Validate()
	if err != nil {
		return nil, nil, err
	}
	return &env, payload, nil
}
