// Package protocol defines the versioned envelope exchanged between the
// device and the controller, and a Client that sends and tracks it over a
// transport.Link.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the envelope version this build writes and the highest
// it accepts.
const SchemaVersion = 1

var (
	// ErrUnknownMessageType means the envelope is valid but its type is not
	// known to this build. Receivers treat it as a no-op.
	ErrUnknownMessageType = errors.New("unknown message type")
	// ErrUnsupportedSchema means the envelope was written by a newer schema.
	ErrUnsupportedSchema = errors.New("unsupported schema version")
	// ErrMalformed means the bytes are not a valid envelope.
	ErrMalformed = errors.New("malformed envelope")
)

// Envelope wraps every message on the wire.
type Envelope struct {
	SchemaVersion int
	MessageID     uuid.UUID
	SentAt        time.Time
	Type          MessageType
	Payload       Payload
}

// NewEnvelope wraps p with a fresh message ID.
func NewEnvelope(p Payload, now time.Time) Envelope {
	return Envelope{
		SchemaVersion: SchemaVersion,
		MessageID:     uuid.New(),
		SentAt:        now.UTC().Truncate(time.Second),
		Type:          p.MessageType(),
		Payload:       p,
	}
}

type wireEnvelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	MessageID     uuid.UUID       `json:"messageId"`
	SentAt        Timestamp       `json:"sentAt"`
	Type          MessageType     `json:"type"`
	Payload       json.RawMessage `json:"payload"`
}

// Encode serialises the envelope.
func Encode(env Envelope) ([]byte, error) {
	if env.Payload == nil {
		return nil, fmt.Errorf("%w: missing payload", ErrMalformed)
	}
	payload, err := json.Marshal(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", env.Type, err)
	}
	typ := env.Type
	if typ == "" {
		typ = env.Payload.MessageType()
	}
	return json.Marshal(wireEnvelope{
		SchemaVersion: env.SchemaVersion,
		MessageID:     env.MessageID,
		SentAt:        At(env.SentAt),
		Type:          typ,
		Payload:       payload,
	})
}

// Decode reads the discriminant first and then decodes the payload into
// its concrete type. For ErrUnknownMessageType and for a payload that fails
// to decode the returned envelope still carries the header fields.
func Decode(data []byte) (Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if w.SchemaVersion < 1 {
		return Envelope{}, fmt.Errorf("%w: schema version %d", ErrMalformed, w.SchemaVersion)
	}
	if w.SchemaVersion > SchemaVersion {
		return Envelope{}, fmt.Errorf("%w: %d > %d", ErrUnsupportedSchema, w.SchemaVersion, SchemaVersion)
	}

	env := Envelope{
		SchemaVersion: w.SchemaVersion,
		MessageID:     w.MessageID,
		SentAt:        w.SentAt.Time(),
		Type:          w.Type,
	}

	payload, err := newPayload(w.Type)
	if err != nil {
		return env, err
	}
	if len(w.Payload) == 0 || string(w.Payload) == "null" {
		return env, fmt.Errorf("%w: %s without payload", ErrMalformed, w.Type)
	}
	if err := json.Unmarshal(w.Payload, payload); err != nil {
		return env, fmt.Errorf("%w: %s payload: %v", ErrMalformed, w.Type, err)
	}
	env.Payload = deref(payload)
	return env, nil
}

func newPayload(t MessageType) (Payload, error) {
	switch t {
	case TypeUpdateSchedule:
		return &UpdateSchedule{}, nil
	case TypeCancelSchedule:
		return &CancelSchedule{}, nil
	case TypePing:
		return &Ping{}, nil
	case TypeSessionState:
		return &SessionState{}, nil
	case TypeAlarmFired:
		return &AlarmFired{}, nil
	case TypeSessionSummary:
		return &SessionSummary{}, nil
	case TypeError:
		return &Error{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, t)
}

// deref returns payloads by value so callers can type-switch on the
// concrete struct types.
func deref(p Payload) Payload {
	switch v := p.(type) {
	case *UpdateSchedule:
		return *v
	case *CancelSchedule:
		return *v
	case *Ping:
		return *v
	case *SessionState:
		return *v
	case *AlarmFired:
		return *v
	case *SessionSummary:
		return *v
	case *Error:
		return *v
	}
	return p
}
