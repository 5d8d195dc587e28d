package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shandysiswandi/riskguard/internal/notification/entity"
)

func TestConsole_SendCode(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	err := c.SendCode(context.Background(), entity.CodeDelivery{
		Address: "alice@example.com",
		Code:    "482913",
		Subject: "Your MFA Login Code",
		Body:    "Your Security Code is: 482913. It expires in 2 minutes.",
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "482913") || !strings.Contains(buf.String(), "channel=console") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
