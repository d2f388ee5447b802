// Package push wraps the Web Push delivery provider. The dispatcher only
// sees the Delivery interface so fan-out can be tested without network
// access.
package push

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/resultshub/chat-server-go/internal/model"
)

// ErrSubscriptionGone indicates the endpoint reported the subscription as
// permanently invalid (HTTP 404/410). Callers should drop the subscription.
var ErrSubscriptionGone = errors.New("push subscription gone")

// ErrNotConfigured indicates VAPID keys are missing.
var ErrNotConfigured = errors.New("push provider not configured")

type Delivery interface {
	// Send delivers one payload to one subscription. A nil error means the
	// push service accepted the message; delivery to the device remains
	// best-effort.
	Send(ctx context.Context, sub model.PushSubscription, payload []byte) error
	PublicKey() string
	PrivateKey() string
	Configured() bool
}

type WebPushDelivery struct {
	publicKey  string
	privateKey string
	subscriber string
	timeout    time.Duration
}

func NewWebPushDelivery(publicKey, privateKey, subscriber string, timeout time.Duration) *WebPushDelivery {
	return &WebPushDelivery{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
		timeout:    timeout,
	}
}

func (d *WebPushDelivery) PublicKey() string {
	return d.publicKey
}

func (d *WebPushDelivery) PrivateKey() string {
	return d.privateKey
}

func (d *WebPushDelivery) Configured() bool {
	return d.publicKey != "" && d.privateKey != ""
}

func (d *WebPushDelivery) Send(ctx context.Context, sub model.PushSubscription, payload []byte) error {
	if !d.Configured() {
		return ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	s := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, s, &webpush.Options{
		Subscriber:      d.subscriber,
		VAPIDPublicKey:  d.publicKey,
		VAPIDPrivateKey: d.privateKey,
		TTL:             int((24 * time.Hour).Seconds()),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrSubscriptionGone
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	default:
		return errors.New("push service returned status " + resp.Status)
	}
}
