package entity

import "testing"

func TestChannel(t *testing.T) {
	tests := []struct {
		raw  string
		want Channel
	}{
		{raw: "email", want: ChannelEmail},
		{raw: " SMS ", want: ChannelSMS},
		{raw: "console", want: ChannelConsole},
		{raw: "push", want: ChannelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ChannelFromString(tt.raw)
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if tt.want != ChannelUnknown && got.String() != ChannelFromString(got.String()).String() {
				t.Fatalf("round trip mismatch for %q", tt.raw)
			}
		})
	}
}
