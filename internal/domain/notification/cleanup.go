package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// CleanupService sweeps registered devices and removes those whose tokens
// the push provider reports as permanently invalid.
type CleanupService struct {
	devices  Repository
	delivery *DeliveryService
}

// NewCleanupService creates a cleanup service.
func NewCleanupService(devices Repository, delivery *DeliveryService) *CleanupService {
	return &CleanupService{devices: devices, delivery: delivery}
}

// Run probes every registered device once. Only a definitive unregistered
// classification removes a device; transient probe failures leave it in
// place for the next sweep.
func (s *CleanupService) Run(ctx context.Context) error {
	devices, err := s.devices.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	removed := 0
	for i := range devices {
		d := &devices[i]
		err := s.delivery.Probe(ctx, d.Token)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrUnregisteredToken) {
			if derr := s.devices.DeleteByToken(ctx, d.Token); derr != nil {
				log.Printf("Device cleanup: failed to remove dead token for user %d: %v", d.UserID, derr)
				continue
			}
			removed++
			continue
		}
		log.Printf("Device cleanup: probe failed for user %d, keeping device: %v", d.UserID, err)
	}

	if removed > 0 {
		log.Printf("Device cleanup: removed %d dead device(s) of %d", removed, len(devices))
	}
	return nil
}
