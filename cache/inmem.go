// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jballar/msalgo/sdk/strutils"
)

// serializationContract is the persisted JSON shape of the cache: five
// partitions keyed by entity cache key.
type serializationContract struct {
	AccessTokens  map[string]AccessToken  `json:"AccessToken,omitempty"`
	RefreshTokens map[string]RefreshToken `json:"RefreshToken,omitempty"`
	IDTokens      map[string]IDToken      `json:"IdToken,omitempty"`
	Accounts      map[string]Account      `json:"Account,omitempty"`
	AppMetadata   map[string]AppMetadata  `json:"AppMetadata,omitempty"`
}

// InMemoryStorage is a map-backed StorageManager, safe for concurrent use.
// It is the default store when no external cache is plugged in, and the
// staging area a PersistencePlugin serializes from and deserializes into.
type InMemoryStorage struct {
	mu       sync.RWMutex
	contract serializationContract
}

var _ StorageManager = (*InMemoryStorage)(nil)

// NewInMemoryStorage creates an empty in-memory store.
func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		contract: serializationContract{
			AccessTokens:  map[string]AccessToken{},
			RefreshTokens: map[string]RefreshToken{},
			IDTokens:      map[string]IDToken{},
			Accounts:      map[string]Account{},
			AppMetadata:   map[string]AppMetadata{},
		},
	}
}

// ReadAccount returns the account stored under the derived key, or nil when
// no such account exists.
func (s *InMemoryStorage) ReadAccount(_ context.Context, homeAccountID, environment, realm string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := Account{HomeAccountID: homeAccountID, Environment: environment, Realm: realm}.Key()
	if a, ok := s.contract.Accounts[key]; ok {
		return &a, nil
	}
	return nil, nil
}

// WriteAccount stores the account under its derived key.
func (s *InMemoryStorage) WriteAccount(_ context.Context, account Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contract.Accounts[account.Key()] = account
	return nil
}

// DeleteAccount removes the account stored under the derived key. Removing a
// missing account is not an error.
func (s *InMemoryStorage) DeleteAccount(_ context.Context, homeAccountID, environment, realm string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := Account{HomeAccountID: homeAccountID, Environment: environment, Realm: realm}.Key()
	delete(s.contract.Accounts, key)
	return nil
}

// ReadIDToken returns the cached id token for the composite key, or nil.
func (s *InMemoryStorage) ReadIDToken(_ context.Context, homeAccountID, environment, clientID, realm string) (*IDToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := IDToken{
		HomeAccountID:  homeAccountID,
		Environment:    environment,
		CredentialType: CredentialTypeIDToken,
		ClientID:       clientID,
		Realm:          realm,
	}.Key()
	if t, ok := s.contract.IDTokens[key]; ok {
		return &t, nil
	}
	return nil, nil
}

// ReadAccessToken returns an access token matching the composite key whose
// target covers every requested scope (case-insensitive), or nil.
func (s *InMemoryStorage) ReadAccessToken(_ context.Context, homeAccountID, environment, clientID, realm string, scopes []string) (*AccessToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.contract.AccessTokens {
		if !strings.EqualFold(t.HomeAccountID, homeAccountID) ||
			!strings.EqualFold(t.Environment, environment) ||
			!strings.EqualFold(t.ClientID, clientID) ||
			!strings.EqualFold(t.Realm, realm) {
			continue
		}
		if scopesMatch(t.Scopes(), scopes) {
			match := t
			return &match, nil
		}
	}
	return nil, nil
}

// ReadRefreshToken returns the cached refresh token for the client, looking
// up the family entry when familyID is non-empty, or nil.
func (s *InMemoryStorage) ReadRefreshToken(_ context.Context, homeAccountID, environment, clientID, familyID string) (*RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := RefreshToken{
		HomeAccountID:  homeAccountID,
		Environment:    environment,
		CredentialType: CredentialTypeRefreshToken,
		ClientID:       clientID,
		FamilyID:       familyID,
	}.Key()
	if t, ok := s.contract.RefreshTokens[key]; ok {
		return &t, nil
	}
	return nil, nil
}

// ReadAppMetadata returns the app metadata for the client/environment, or nil.
func (s *InMemoryStorage) ReadAppMetadata(_ context.Context, environment, clientID string) (*AppMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := AppMetadata{Environment: environment, ClientID: clientID}.Key()
	if m, ok := s.contract.AppMetadata[key]; ok {
		return &m, nil
	}
	return nil, nil
}

// WriteRecord applies every populated slot of the record under a single lock
// acquisition.
func (s *InMemoryStorage) WriteRecord(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.Account != nil {
		s.contract.Accounts[record.Account.Key()] = *record.Account
	}
	if record.IDToken != nil {
		s.contract.IDTokens[record.IDToken.Key()] = *record.IDToken
	}
	if record.AccessToken != nil {
		s.contract.AccessTokens[record.AccessToken.Key()] = *record.AccessToken
	}
	if record.RefreshToken != nil {
		s.contract.RefreshTokens[record.RefreshToken.Key()] = *record.RefreshToken
	}
	if record.AppMetadata != nil {
		s.contract.AppMetadata[record.AppMetadata.Key()] = *record.AppMetadata
	}
	return nil
}

// Serialize renders the cache as the five-partition JSON contract.
func (s *InMemoryStorage) Serialize() ([]byte, error) {
	const op = "cache.InMemoryStorage.Serialize"
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := json.Marshal(s.contract)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to serialize cache: %w", op, err)
	}
	return data, nil
}

// Deserialize replaces the cache contents with the given contract JSON.
func (s *InMemoryStorage) Deserialize(data []byte) error {
	const op = "cache.InMemoryStorage.Deserialize"
	var contract serializationContract
	if err := json.Unmarshal(data, &contract); err != nil {
		return fmt.Errorf("%s: unable to deserialize cache: %w", op, err)
	}
	if contract.AccessTokens == nil {
		contract.AccessTokens = map[string]AccessToken{}
	}
	if contract.RefreshTokens == nil {
		contract.RefreshTokens = map[string]RefreshToken{}
	}
	if contract.IDTokens == nil {
		contract.IDTokens = map[string]IDToken{}
	}
	if contract.Accounts == nil {
		contract.Accounts = map[string]Account{}
	}
	if contract.AppMetadata == nil {
		contract.AppMetadata = map[string]AppMetadata{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contract = contract
	return nil
}

// scopesMatch reports whether cached covers every requested scope. An empty
// request matches any cached target.
func scopesMatch(cached, requested []string) bool {
	lowered := make([]string, 0, len(cached))
	for _, c := range cached {
		lowered = append(lowered, strings.ToLower(c))
	}
	for _, r := range requested {
		if !strutils.StrListContains(lowered, strings.ToLower(r)) {
			return false
		}
	}
	return true
}
