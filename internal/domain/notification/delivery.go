package notification

import (
	"context"
	"errors"
	"log"

	"dailyspend/internal/shared/retry"
)

// DeliveryService sends push messages with bounded retry. A token the
// provider reports as permanently invalid is never retried.
type DeliveryService struct {
	messenger Messenger
	retryCfg  retry.Config
}

// NewDeliveryService creates a delivery service using the default retry
// policy of three attempts with a doubling one-second base delay.
func NewDeliveryService(messenger Messenger) *DeliveryService {
	return &DeliveryService{messenger: messenger, retryCfg: retry.DefaultConfig()}
}

// Deliver sends one message to one token and reports whether it got through.
// Transient failures are retried with exponential backoff; a permanently
// invalid token fails fast.
func (s *DeliveryService) Deliver(ctx context.Context, token, title, body string, data map[string]string) bool {
	err := retry.Do(ctx, s.retryCfg, func(ctx context.Context, attempt int) error {
		sendErr := s.messenger.Send(ctx, token, title, body, data)
		if errors.Is(sendErr, ErrUnregisteredToken) {
			return retry.Stop(sendErr)
		}
		return sendErr
	})
	if err != nil {
		log.Printf("Push delivery failed: %v", err)
		return false
	}
	return true
}

// Probe checks whether a token is still registered, returning
// ErrUnregisteredToken when the provider says it is permanently dead.
// Probe failures are not retried; a transient fault just means the token
// survives until the next sweep.
func (s *DeliveryService) Probe(ctx context.Context, token string) error {
	return s.messenger.SendProbe(ctx, token)
}
