package cache

import (
	"testing"
	"time"
)

func TestDecode(t *testing.T) {
	exp := time.Date(2026, 3, 2, 9, 32, 0, 0, time.UTC)

	t.Run("Valid", func(t *testing.T) {
		// Arrange
		fields := map[string]string{
			"id":         "42",
			"code_hash":  "abc",
			"address":    "alice@example.com",
			"channel":    "email",
			"expires_at": "1772443920000",
			"created_at": "1772443800000",
			"used":       "0",
		}

		// Act
		rec, err := decode("alice", fields)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.ID != 42 || rec.Principal != "alice" || rec.Used || !rec.ExpiresAt.Equal(exp) {
			t.Fatalf("unexpected record %+v", rec)
		}
		if rec.ExpiresAt.Sub(rec.CreatedAt) != 2*time.Minute {
			t.Fatalf("unexpected created_at %s", rec.CreatedAt)
		}
	})

	t.Run("BadID", func(t *testing.T) {
		_, err := decode("alice", map[string]string{"id": "x", "expires_at": "1", "created_at": "1"})
		if err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestKey(t *testing.T) {
	if got := key("alice"); got != "identity:otp:alice" {
		t.Fatalf("unexpected key %q", got)
	}
}
