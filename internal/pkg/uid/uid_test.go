package uid

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUID_Generate(t *testing.T) {
	// Arrange
	g := NewUUID()

	// Act
	a, b := g.Generate(), g.Generate()

	// Assert
	if a == b {
		t.Fatal("expected unique ids")
	}
	parsed, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("parse uuid: %v", err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("expected version 7, got %d", parsed.Version())
	}
}

func TestSnowflake(t *testing.T) {
	t.Run("InvalidNode", func(t *testing.T) {
		if _, err := NewSnowflake(4096); err == nil {
			t.Fatal("expected error for out of range node")
		}
	})

	t.Run("Monotonic", func(t *testing.T) {
		// Arrange
		g, err := NewSnowflake(1)
		if err != nil {
			t.Fatalf("new snowflake: %v", err)
		}

		// Act
		prev := g.Generate()
		for range 100 {
			next := g.Generate()

			// Assert
			if next <= prev {
				t.Fatalf("expected increasing ids, got %d after %d", next, prev)
			}
			prev = next
		}
	})
}
