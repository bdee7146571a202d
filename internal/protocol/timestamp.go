package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is a time encoded as RFC 3339 in UTC with whole seconds.
// Sub-second precision does not survive the wire.
type Timestamp time.Time

// At converts t to a Timestamp truncated to the second.
func At(t time.Time) Timestamp {
	return Timestamp(t.UTC().Truncate(time.Second))
}

// Time returns the underlying time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(time.RFC3339))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	*t = At(parsed)
	return nil
}

// optionalAt converts a nullable time.
func optionalAt(t *time.Time) *Timestamp {
	if t == nil {
		return nil
	}
	ts := At(*t)
	return &ts
}

func (t *Timestamp) optionalTime() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time()
	return &v
}
