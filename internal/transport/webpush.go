// internal/transport/webpush.go
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"vitacoach/adherence-app/internal/config"
	"vitacoach/adherence-app/internal/domain"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// webPushSender implements PushSender using the Web Push protocol with VAPID.
type webPushSender struct {
	publicKey  string
	privateKey string
	subject    string // mailto: or https: contact for the push service
	ttlSeconds int
}

// NewWebPushSender creates the web-push transport. As with SMTP, missing VAPID
// keys make every send fail deterministically rather than panicking at startup.
func NewWebPushSender(cfg config.PushConfig) PushSender {
	ttl := cfg.TTLSeconds
	if ttl <= 0 {
		ttl = 3600
	}
	return &webPushSender{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subject:    cfg.Subject,
		ttlSeconds: ttl,
	}
}

func (s *webPushSender) Send(ctx context.Context, sub domain.PushSubscription, payload PushPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, target, &webpush.Options{
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             s.ttlSeconds,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		// The subscription no longer exists at the push service.
		return ErrEndpointGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}
	return nil
}
