package notifications

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"net/url"

	"gopkg.in/gomail.v2"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
)

type dialer interface {
	Dial() (gomail.SendCloser, error)
}

// SMTPSender mails reset and invitation links directly.
type SMTPSender struct {
	dialer        dialer
	from          string
	resetURL      string
	invitationURL string
}

func NewSMTPSender(host string, port int, username, password, from, resetURL, invitationURL string) *SMTPSender {
	return &SMTPSender{
		dialer:        gomail.NewDialer(host, port, username, password),
		from:          from,
		resetURL:      resetURL,
		invitationURL: invitationURL,
	}
}

func (s *SMTPSender) Send(ctx context.Context, purpose auth.Purpose, destinations []string, params map[string]string) error {
	if len(destinations) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	subject, body, err := s.render(purpose, params[ParamToken])
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return timedOut(err)
	}

	sender, err := s.dialer.Dial()
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return timedOut(err)
		}
		return unavailable(err)
	}
	defer sender.Close()

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", destinations...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := gomail.Send(sender, msg); err != nil {
		var tpErr *textproto.Error
		if errors.As(err, &tpErr) {
			return rejected(tpErr.Code, err)
		}
		return rejected(0, err)
	}
	return nil
}

func (s *SMTPSender) render(purpose auth.Purpose, token string) (subject, body string, err error) {
	switch purpose {
	case auth.PurposePasswordReset:
		return "Reset your password",
			"Someone asked to reset the password of your account.\n" +
				"Open the link below to choose a new one. If it was not you, ignore this message.\n\n" +
				withToken(s.resetURL, token) + "\n", nil
	case auth.PurposeInvitation:
		return "You have been invited",
			"You have been invited to create an administrator account.\n" +
				"Open the link below to finish the registration.\n\n" +
				withToken(s.invitationURL, token) + "\n", nil
	default:
		_, err := notificationType(purpose)
		return "", "", err
	}
}

func withToken(base, token string) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		return token
	}
	q := u.Query()
	q.Set(ParamToken, token)
	u.RawQuery = q.Encode()
	return u.String()
}
