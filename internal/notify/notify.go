// Package notify signals downstream systems that a generation run finished.
package notify

import (
	"context"
	"errors"
	"net/http"
	"time"

	"git.home.luguber.info/inful/docgen/internal/config"
)

// Event describes a completed run.
type Event struct {
	RunID       string    `json:"runId"`
	Version     string    `json:"version"`
	CompletedAt time.Time `json:"completedAt"`
	Nodes       int       `json:"nodes"`
	Files       int       `json:"files"`
	Versions    []string  `json:"versions,omitempty"`
}

// Notifier delivers completion events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
	Name() string
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Name implements Notifier.
func (m Multi) Name() string { return "multi" }

// FromConfig builds the notifiers enabled in cfg. client is used for
// webhooks and should be owned by the caller's run.
func FromConfig(cfg config.NotifyConfig, client *http.Client) Multi {
	var out Multi
	if cfg.WebhookURL != "" {
		out = append(out, NewWebhookNotifier(cfg.WebhookURL, client))
	}
	if cfg.NATSURL != "" {
		out = append(out, NewNATSNotifier(cfg.NATSURL, cfg.NATSSubject, cfg.Timeout))
	}
	return out
}
