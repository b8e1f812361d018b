// Package transport holds the outbound delivery channels. Both senders are
// synchronous: a call either completes, times out inside the underlying
// client, or errors. Retry policy lives in the delivery services, not here.
package transport

import (
	"context"
	"errors"

	"vitacoach/adherence-app/internal/domain"
)

// ErrEndpointGone reports a push endpoint the provider says no longer exists
// (HTTP 404/410). The caller should delete the subscription; retrying is
// pointless.
var ErrEndpointGone = errors.New("push endpoint permanently gone")

// EmailSender delivers one plain-text email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// PushPayload is the JSON document delivered to the service worker.
type PushPayload struct {
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
}

// PushSender delivers one web-push message to a single subscription.
type PushSender interface {
	Send(ctx context.Context, sub domain.PushSubscription, payload PushPayload) error
}
