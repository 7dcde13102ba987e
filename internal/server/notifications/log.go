package notifications

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
)

// LogSender writes notifications to the log instead of delivering them.
// Tokens are logged, so it is meant for local development only.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(log logging.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, purpose auth.Purpose, destinations []string, params map[string]string) error {
	kind, err := notificationType(purpose)
	if err != nil {
		return err
	}
	s.log.Info(ctx, "notification", "type", kind, "destinations", destinations, "params", params)
	return nil
}
