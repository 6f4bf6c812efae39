// Package syncer drives transaction and balance ingestion from the provider.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"dailyspend/internal/domain/item"
	"dailyspend/internal/infrastructure/crypto"
	"dailyspend/internal/infrastructure/provider"
)

// ErrCredentialNotFound means none of the user's usable items exposes the
// requested account.
var ErrCredentialNotFound = errors.New("no credential found for account")

// Resolver maps a selected account ID to the linked item that owns it,
// yielding the decrypted access credential.
type Resolver struct {
	items  item.Repository
	client provider.ClientInterface
	vault  *crypto.Encryptor
}

// NewResolver creates a resolver.
func NewResolver(items item.Repository, client provider.ClientInterface, vault *crypto.Encryptor) *Resolver {
	return &Resolver{items: items, client: client, vault: vault}
}

// ResolveCredential probes the user's items in order and returns the first
// one whose account set contains accountID, along with its decrypted
// credential. Items with expired or revoked status are never probed. A probe
// that fails with a credential-expired classification marks that item
// expired and moves on; any other probe failure skips the item for this
// attempt only. Returns ErrCredentialNotFound when no item matches.
func (r *Resolver) ResolveCredential(ctx context.Context, userID int64, accountID string) (*item.LinkedItem, string, error) {
	items, err := r.items.ListByUserID(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list items for user %d: %w", userID, err)
	}

	for i := range items {
		it := &items[i]
		if !it.Usable() {
			continue
		}

		token, err := r.vault.Decrypt(it.AccessCredential)
		if err != nil {
			log.Printf("Item %s: stored credential is unreadable: %v", it.ID, err)
			continue
		}

		accounts, err := r.client.ListAccounts(ctx, token)
		if err != nil {
			if provider.IsCredentialExpired(err) {
				log.Printf("Item %s: credential expired during probe (%s)", it.ID, provider.ErrorCode(err))
				if uerr := r.items.UpdateStatus(ctx, it.ID, item.StatusExpired, provider.ErrorCode(err)); uerr != nil {
					log.Printf("Item %s: failed to mark expired: %v", it.ID, uerr)
				}
			} else {
				log.Printf("Item %s: probe failed, skipping this attempt: %v", it.ID, err)
			}
			continue
		}

		for _, acc := range accounts {
			if acc.ID == accountID {
				return it, token, nil
			}
		}
	}

	return nil, "", ErrCredentialNotFound
}
