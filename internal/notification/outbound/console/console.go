// Package console is the local delivery surface used when no outbound
// provider is configured for a channel.
package console

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shandysiswandi/riskguard/internal/notification/entity"
)

// Console writes deliveries to its own text logger. It bypasses the
// application log handler, which masks the body.
type Console struct {
	logger *slog.Logger
}

func New(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{logger: slog.New(slog.NewTextHandler(w, nil))}
}

func (c *Console) SendCode(ctx context.Context, d entity.CodeDelivery) error {
	c.logger.InfoContext(ctx, "one-time code issued",
		"channel", entity.ChannelConsole.String(),
		"address", d.Address,
		"subject", d.Subject,
		"body", d.Body,
	)
	return nil
}
