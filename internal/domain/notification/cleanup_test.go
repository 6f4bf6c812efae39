package notification

import (
	"context"
	"errors"
	"testing"
)

type mockDeviceRepo struct {
	devices []Device
	deleted []string
}

func (m *mockDeviceRepo) Upsert(ctx context.Context, d *Device) error {
	m.devices = append(m.devices, *d)
	return nil
}

func (m *mockDeviceRepo) ListByUserID(ctx context.Context, userID int64) ([]Device, error) {
	var out []Device
	for _, d := range m.devices {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDeviceRepo) ListAll(ctx context.Context) ([]Device, error) {
	return m.devices, nil
}

func (m *mockDeviceRepo) DeleteByToken(ctx context.Context, token string) error {
	m.deleted = append(m.deleted, token)
	kept := m.devices[:0]
	for _, d := range m.devices {
		if d.Token != token {
			kept = append(kept, d)
		}
	}
	m.devices = kept
	return nil
}

func TestCleanup_RemovesDeadTokensOnly(t *testing.T) {
	repo := &mockDeviceRepo{devices: []Device{
		{UserID: 1, Token: "alive"},
		{UserID: 2, Token: "dead"},
		{UserID: 3, Token: "flaky"},
	}}
	delivery := fastDelivery(&mockMessenger{
		sendProbe: func(ctx context.Context, token string) error {
			switch token {
			case "dead":
				return ErrUnregisteredToken
			case "flaky":
				return errors.New("timeout")
			}
			return nil
		},
	})

	svc := NewCleanupService(repo, delivery)
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(repo.deleted) != 1 || repo.deleted[0] != "dead" {
		t.Errorf("deleted = %v, want only the dead token", repo.deleted)
	}
	if len(repo.devices) != 2 {
		t.Errorf("remaining devices = %d, want 2", len(repo.devices))
	}
}
