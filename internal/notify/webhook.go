package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnexpectedStatus is returned when a webhook answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected webhook status")

// NewHTTPClient returns a client for a single run's notifications. A zero
// timeout disables the client timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("too many redirects")
			}
			return nil
		},
	}
}

// WebhookNotifier POSTs an empty request to a URL.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a webhook notifier. A nil client gets a default
// one with a 30 second timeout.
func NewWebhookNotifier(url string, client *http.Client) *WebhookNotifier {
	if client == nil {
		client = NewHTTPClient(30 * time.Second)
	}
	return &WebhookNotifier{url: url, client: client}
}

// Name implements Notifier.
func (w *WebhookNotifier) Name() string { return "webhook" }

// Notify implements Notifier. The request carries no body and is sent once.
func (w *WebhookNotifier) Notify(ctx context.Context, _ Event) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, http.NoBody)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	req.Header.Set("User-Agent", "docgen")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", w.url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, w.url, resp.StatusCode)
	}
	return nil
}
