// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package cache

import "context"

// StorageManager is the read/write surface of a credential cache store.
// Implementations must treat WriteRecord as a single logical unit: either the
// whole record is applied or an error is returned.
//
// The engine performs no locking of its own. A StorageManager shared across
// goroutines must be safe for concurrent use; stronger consistency (for
// example serializing a read-check-write window) is the job of a
// PersistencePlugin wrapped around the store.
type StorageManager interface {
	ReadAccount(ctx context.Context, homeAccountID, environment, realm string) (*Account, error)
	WriteAccount(ctx context.Context, account Account) error
	DeleteAccount(ctx context.Context, homeAccountID, environment, realm string) error

	ReadIDToken(ctx context.Context, homeAccountID, environment, clientID, realm string) (*IDToken, error)
	ReadAccessToken(ctx context.Context, homeAccountID, environment, clientID, realm string, scopes []string) (*AccessToken, error)
	ReadRefreshToken(ctx context.Context, homeAccountID, environment, clientID, familyID string) (*RefreshToken, error)
	ReadAppMetadata(ctx context.Context, environment, clientID string) (*AppMetadata, error)

	WriteRecord(ctx context.Context, record Record) error

	Serialize() ([]byte, error)
	Deserialize(data []byte) error
}
