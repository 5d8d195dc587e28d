package instrument

import (
	"context"
	"testing"
)

func TestCorrelationID(t *testing.T) {
	t.Run("Missing", func(t *testing.T) {
		if got := GetCorrelationID(context.Background()); got != "" {
			t.Fatalf("expected empty correlation id, got %q", got)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		// Arrange
		ctx := SetCorrelationID(context.Background(), "cid-1")

		// Act
		got := GetCorrelationID(ctx)

		// Assert
		if got != "cid-1" {
			t.Fatalf("expected cid-1, got %q", got)
		}
	})
}
