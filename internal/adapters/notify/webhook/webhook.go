// Package webhook entrega recordatorios haciendo POST JSON a un endpoint
// externo (gateway de SMS/WhatsApp, n8n, etc.).
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-vaccination-tracker/internal/domain/reminders"
	"pet-vaccination-tracker/internal/platform/httpclient"
)

const (
	Channel   = "webhook"
	EventType = "vaccination.reminder"
)

var (
	ErrNotConfigured = errors.New("webhook not configured")
	// ErrRejected: el endpoint respondió 4xx (payload o credenciales).
	ErrRejected = errors.New("webhook rejected reminder")
	// ErrUpstream: transporte o 5xx/429.
	ErrUpstream = errors.New("webhook upstream error")
)

type Config struct {
	URL    string
	APIKey string

	// Opcional: header de la API key. Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration

	Transport http.RoundTripper // tests
}

type Notifier struct {
	url    string
	client *httpclient.Client
	now    func() time.Time
}

func New(cfg Config) (*Notifier, error) {
	u := strings.TrimSpace(cfg.URL)
	if u == "" {
		return nil, ErrNotConfigured
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return nil, fmt.Errorf("%w: url must be absolute", ErrNotConfigured)
	}

	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	c, err := httpclient.New(httpclient.Config{
		Timeout:   timeout,
		Headers:   map[string]string{h: strings.TrimSpace(cfg.APIKey)},
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, err
	}
	return &Notifier{url: u, client: c, now: time.Now}, nil
}

var _ reminders.Notifier = (*Notifier)(nil)

type payload struct {
	Event    string             `json:"event"`
	SentAt   time.Time          `json:"sent_at"`
	Reminder reminders.Reminder `json:"reminder"`
}

// Send hace el POST. 2xx = entregado.
func (n *Notifier) Send(ctx context.Context, r reminders.Reminder) error {
	err := n.client.DoJSON(ctx, http.MethodPost, n.url, payload{
		Event:    EventType,
		SentAt:   n.now().UTC(),
		Reminder: r,
	}, nil)
	if err == nil {
		return nil
	}

	var he *httpclient.HTTPError
	if errors.As(err, &he) && !he.Temporary() {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
