package push

import (
	"context"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"crewplanner/internal/domain"
)

// VAPIDConfig holds the Web Push signing configuration.
type VAPIDConfig struct {
	PublicKey  string
	PrivateKey string
	// Subject is the VAPID contact, e.g. "mailto:admin@example.com".
	Subject string
	// TTLSeconds is how long the push service may queue the message.
	TTLSeconds int
}

type webPushTransport struct {
	config VAPIDConfig
}

// NewWebPushTransport returns a PushTransport that delivers VAPID-signed
// encrypted payloads. Missing keys yield a disabled transport, which makes
// the whole push channel a silent no-op rather than an error.
func NewWebPushTransport(config VAPIDConfig) domain.PushTransport {
	if config.TTLSeconds <= 0 {
		config.TTLSeconds = 3600
	}
	return &webPushTransport{config: config}
}

func (t *webPushTransport) Enabled() bool {
	return t.config.PublicKey != "" && t.config.PrivateKey != ""
}

func (t *webPushTransport) Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      t.config.Subject,
		VAPIDPublicKey:  t.config.PublicKey,
		VAPIDPrivateKey: t.config.PrivateKey,
		TTL:             t.config.TTLSeconds,
	})
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("endpoint %s: %w", sub.Endpoint, domain.ErrEndpointGone)
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned status: %d", resp.StatusCode)
	}
	return nil
}
