// Package notifications delivers reset and invitation messages to users.
// The services only hand over a purpose, the destinations and the claims to
// include (the token); how the message reaches the user is up to the Sender.
package notifications

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
)

// Params keys understood by every sender.
const ParamToken = "token"

type Sender interface {
	Send(ctx context.Context, purpose auth.Purpose, destinations []string, params map[string]string) error
}

// notificationType maps a token purpose to the template name used by the
// notifications service.
func notificationType(purpose auth.Purpose) (string, error) {
	switch purpose {
	case auth.PurposePasswordReset:
		return "reset-password", nil
	case auth.PurposeInvitation:
		return "admin-invitation", nil
	default:
		return "", fmt.Errorf("no notification template for %q tokens", purpose)
	}
}
