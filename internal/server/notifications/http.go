package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
)

type payload struct {
	Type          string            `json:"type"`
	Params        map[string]string `json:"params"`
	Notifications channel           `json:"notifications"`
}

type channel struct {
	Type         string   `json:"type"`
	Destinations []string `json:"destinations"`
	Sender       string   `json:"sender"`
}

// HTTPSender posts notifications to the notifications microservice.
type HTTPSender struct {
	url    string
	from   string
	client *http.Client
}

func NewHTTPSender(baseURI, path, from string, timeout time.Duration) *HTTPSender {
	return &HTTPSender{
		url:    strings.TrimRight(baseURI, "/") + path,
		from:   from,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSender) Send(ctx context.Context, purpose auth.Purpose, destinations []string, params map[string]string) error {
	kind, err := notificationType(purpose)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload{
		Type:   kind,
		Params: params,
		Notifications: channel{
			Type:         "email",
			Destinations: destinations,
			Sender:       s.from,
		},
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return unavailable(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rejected(resp.StatusCode, nil)
	}
	return nil
}

// classifyTransportError reports failures before a connection exists as
// unavailable, even when the dial itself timed out; only a request that
// reached the server and got no reply in time is a timeout.
func classifyTransportError(err error) error {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return unavailable(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return timedOut(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return timedOut(err)
	}
	return unavailable(err)
}
