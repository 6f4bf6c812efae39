package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"dailyspend/internal/shared/retry"
)

type mockMessenger struct {
	send      func(ctx context.Context, token, title, body string, data map[string]string) error
	sendProbe func(ctx context.Context, token string) error
}

func (m *mockMessenger) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	return m.send(ctx, token, title, body, data)
}

func (m *mockMessenger) SendProbe(ctx context.Context, token string) error {
	return m.sendProbe(ctx, token)
}

func fastDelivery(m Messenger) *DeliveryService {
	s := NewDeliveryService(m)
	s.retryCfg = retry.Config{Attempts: 3, BaseDelay: time.Millisecond, Multiplier: 2}
	return s
}

func TestDeliver_Success(t *testing.T) {
	calls := 0
	svc := fastDelivery(&mockMessenger{
		send: func(ctx context.Context, token, title, body string, data map[string]string) error {
			calls++
			return nil
		},
	})

	if !svc.Deliver(context.Background(), "tok", "title", "body", nil) {
		t.Error("Deliver() = false, want true")
	}
	if calls != 1 {
		t.Errorf("send calls = %d, want 1", calls)
	}
}

func TestDeliver_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	svc := fastDelivery(&mockMessenger{
		send: func(ctx context.Context, token, title, body string, data map[string]string) error {
			calls++
			if calls < 3 {
				return errors.New("temporarily unavailable")
			}
			return nil
		},
	})

	if !svc.Deliver(context.Background(), "tok", "title", "body", nil) {
		t.Error("Deliver() = false, want true after retries")
	}
	if calls != 3 {
		t.Errorf("send calls = %d, want 3", calls)
	}
}

func TestDeliver_GivesUpAfterThreeAttempts(t *testing.T) {
	calls := 0
	svc := fastDelivery(&mockMessenger{
		send: func(ctx context.Context, token, title, body string, data map[string]string) error {
			calls++
			return errors.New("temporarily unavailable")
		},
	})

	if svc.Deliver(context.Background(), "tok", "title", "body", nil) {
		t.Error("Deliver() = true, want false after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("send calls = %d, want exactly 3", calls)
	}
}

func TestDeliver_UnregisteredTokenNotRetried(t *testing.T) {
	calls := 0
	svc := fastDelivery(&mockMessenger{
		send: func(ctx context.Context, token, title, body string, data map[string]string) error {
			calls++
			return ErrUnregisteredToken
		},
	})

	if svc.Deliver(context.Background(), "tok", "title", "body", nil) {
		t.Error("Deliver() = true, want false for dead token")
	}
	if calls != 1 {
		t.Errorf("send calls = %d, want 1 (no retry on permanent failure)", calls)
	}
}
