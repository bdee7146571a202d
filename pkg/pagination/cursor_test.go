package pagination

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCursorRoundTrip(t *testing.T) {
	firedAt := time.Date(2026, 1, 20, 7, 12, 30, 123456789, time.FixedZone("CET", 3600))
	cursor := NewCursor(uuid.New(), firedAt)

	decoded, err := DecodeCursor(cursor.Encode())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.ID != cursor.ID {
		t.Fatalf("id mismatch: got %s want %s", decoded.ID, cursor.ID)
	}
	if !decoded.FiredAt.Equal(firedAt.Truncate(time.Microsecond)) {
		t.Fatalf("fired_at mismatch: got %v", decoded.FiredAt)
	}
	if decoded.FiredAt.Location() != time.UTC {
		t.Fatalf("fired_at should be UTC, got %v", decoded.FiredAt.Location())
	}
}

func TestDecodeCursorInvalid(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"not base64", "bad!=base64"},
		{"not json", base64.RawURLEncoding.EncodeToString([]byte("fired_at"))},
		{"empty object", base64.RawURLEncoding.EncodeToString([]byte("{}"))},
		{"missing id", base64.RawURLEncoding.EncodeToString([]byte(`{"fired_at":"2026-01-20T07:00:00Z"}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor, err := DecodeCursor(tt.encoded)
			if !errors.Is(err, ErrInvalidCursor) {
				t.Fatalf("expected ErrInvalidCursor, got %v", err)
			}
			if cursor != nil {
				t.Fatalf("expected nil cursor, got %+v", cursor)
			}
		})
	}
}

func TestDecodeCursorEmpty(t *testing.T) {
	cursor, err := DecodeCursor("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cursor != nil {
		t.Fatalf("expected nil cursor, got %+v", cursor)
	}
}

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-10, DefaultLimit},
		{1, 1},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
	}

	for _, tt := range tests {
		if got := NormalizeLimit(tt.in); got != tt.want {
			t.Errorf("NormalizeLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
