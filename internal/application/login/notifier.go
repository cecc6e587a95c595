package login

import (
	"context"
	"log/slog"
)

// Delivery channels reported back to the client.
const (
	ChannelSMTP    = "smtp"
	ChannelConsole = "console"
)

// Notifier hands an issued code to the identity out of band.
// A returned error is recoverable: the code stays valid.
type Notifier interface {
	Deliver(ctx context.Context, identity, code string) error
}

// channeler is implemented by notifiers that name their own delivery channel.
type channeler interface {
	Channel() string
}

func channelOf(n Notifier) string {
	if c, ok := n.(channeler); ok {
		return c.Channel()
	}
	return ChannelSMTP
}

// ConsoleNotifier writes codes to the process log. It is the fallback when
// the primary notifier fails and the sole notifier in local development.
type ConsoleNotifier struct {
	logger *slog.Logger
}

func NewConsoleNotifier(logger *slog.Logger) *ConsoleNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleNotifier{logger: logger}
}

func (*ConsoleNotifier) Channel() string { return ChannelConsole }

func (c *ConsoleNotifier) Deliver(ctx context.Context, identity, code string) error {
	c.logger.WarnContext(ctx, "login code delivered to console", "email", identity, "code", code)
	return nil
}
