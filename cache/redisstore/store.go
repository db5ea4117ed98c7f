// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

// Package redisstore provides a Redis-backed cache.StorageManager, for
// clients that share a credential cache across processes. Each entity
// partition is a Redis hash keyed by the entity cache key.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/jballar/msalgo/cache"
	"github.com/jballar/msalgo/sdk/strutils"
)

const (
	accessTokenHash  = "AccessToken"
	refreshTokenHash = "RefreshToken"
	idTokenHash      = "IdToken"
	accountHash      = "Account"
	appMetadataHash  = "AppMetadata"
)

// Store implements cache.StorageManager over a Redis client. All entries
// live under the configured key prefix so multiple caches can share one
// Redis database.
type Store struct {
	client *redis.Client
	prefix string
}

var _ cache.StorageManager = (*Store)(nil)

// New creates a Store using the given Redis client. The prefix namespaces
// the cache's hashes; an empty prefix defaults to "msalgo".
func New(client *redis.Client, prefix string) (*Store, error) {
	const op = "redisstore.New"
	if client == nil {
		return nil, fmt.Errorf("%s: redis client is nil: %w", op, cache.ErrNilParameter)
	}
	if prefix == "" {
		prefix = "msalgo"
	}
	return &Store{client: client, prefix: prefix}, nil
}

func (s *Store) hashKey(partition string) string {
	return s.prefix + ":" + partition
}

func (s *Store) read(ctx context.Context, partition, field string, entity interface{}) (bool, error) {
	data, err := s.client.HGet(ctx, s.hashKey(partition), field).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), entity); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) write(ctx context.Context, pipe redis.Pipeliner, partition, field string, entity interface{}) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return err
	}
	if pipe != nil {
		pipe.HSet(ctx, s.hashKey(partition), field, data)
		return nil
	}
	return s.client.HSet(ctx, s.hashKey(partition), field, data).Err()
}

// ReadAccount returns the account stored under the derived key, or nil.
func (s *Store) ReadAccount(ctx context.Context, homeAccountID, environment, realm string) (*cache.Account, error) {
	const op = "redisstore.Store.ReadAccount"
	key := cache.Account{HomeAccountID: homeAccountID, Environment: environment, Realm: realm}.Key()
	var account cache.Account
	ok, err := s.read(ctx, accountHash, key, &account)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, nil
	}
	return &account, nil
}

// WriteAccount stores the account under its derived key.
func (s *Store) WriteAccount(ctx context.Context, account cache.Account) error {
	const op = "redisstore.Store.WriteAccount"
	if err := s.write(ctx, nil, accountHash, account.Key(), account); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteAccount removes the account stored under the derived key.
func (s *Store) DeleteAccount(ctx context.Context, homeAccountID, environment, realm string) error {
	const op = "redisstore.Store.DeleteAccount"
	key := cache.Account{HomeAccountID: homeAccountID, Environment: environment, Realm: realm}.Key()
	if err := s.client.HDel(ctx, s.hashKey(accountHash), key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ReadIDToken returns the cached id token for the composite key, or nil.
func (s *Store) ReadIDToken(ctx context.Context, homeAccountID, environment, clientID, realm string) (*cache.IDToken, error) {
	const op = "redisstore.Store.ReadIDToken"
	key := cache.IDToken{
		HomeAccountID:  homeAccountID,
		Environment:    environment,
		CredentialType: cache.CredentialTypeIDToken,
		ClientID:       clientID,
		Realm:          realm,
	}.Key()
	var token cache.IDToken
	ok, err := s.read(ctx, idTokenHash, key, &token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, nil
	}
	return &token, nil
}

// ReadAccessToken scans the access token partition for a token matching the
// composite key whose target covers every requested scope, or nil.
func (s *Store) ReadAccessToken(ctx context.Context, homeAccountID, environment, clientID, realm string, scopes []string) (*cache.AccessToken, error) {
	const op = "redisstore.Store.ReadAccessToken"
	entries, err := s.client.HGetAll(ctx, s.hashKey(accessTokenHash)).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, data := range entries {
		var token cache.AccessToken
		if err := json.Unmarshal([]byte(data), &token); err != nil {
			return nil, fmt.Errorf("%s: corrupt access token entry: %w", op, err)
		}
		if !strings.EqualFold(token.HomeAccountID, homeAccountID) ||
			!strings.EqualFold(token.Environment, environment) ||
			!strings.EqualFold(token.ClientID, clientID) ||
			!strings.EqualFold(token.Realm, realm) {
			continue
		}
		if coversScopes(token.Scopes(), scopes) {
			return &token, nil
		}
	}
	return nil, nil
}

// ReadRefreshToken returns the cached refresh token for the client, looking
// up the family entry when familyID is non-empty, or nil.
func (s *Store) ReadRefreshToken(ctx context.Context, homeAccountID, environment, clientID, familyID string) (*cache.RefreshToken, error) {
	const op = "redisstore.Store.ReadRefreshToken"
	key := cache.RefreshToken{
		HomeAccountID:  homeAccountID,
		Environment:    environment,
		CredentialType: cache.CredentialTypeRefreshToken,
		ClientID:       clientID,
		FamilyID:       familyID,
	}.Key()
	var token cache.RefreshToken
	ok, err := s.read(ctx, refreshTokenHash, key, &token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, nil
	}
	return &token, nil
}

// ReadAppMetadata returns the app metadata for the client/environment, or nil.
func (s *Store) ReadAppMetadata(ctx context.Context, environment, clientID string) (*cache.AppMetadata, error) {
	const op = "redisstore.Store.ReadAppMetadata"
	key := cache.AppMetadata{Environment: environment, ClientID: clientID}.Key()
	var metadata cache.AppMetadata
	ok, err := s.read(ctx, appMetadataHash, key, &metadata)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, nil
	}
	return &metadata, nil
}

// WriteRecord applies every populated slot of the record in one pipelined
// round trip.
func (s *Store) WriteRecord(ctx context.Context, record cache.Record) error {
	const op = "redisstore.Store.WriteRecord"
	pipe := s.client.TxPipeline()
	if record.Account != nil {
		if err := s.write(ctx, pipe, accountHash, record.Account.Key(), record.Account); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if record.IDToken != nil {
		if err := s.write(ctx, pipe, idTokenHash, record.IDToken.Key(), record.IDToken); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if record.AccessToken != nil {
		if err := s.write(ctx, pipe, accessTokenHash, record.AccessToken.Key(), record.AccessToken); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if record.RefreshToken != nil {
		if err := s.write(ctx, pipe, refreshTokenHash, record.RefreshToken.Key(), record.RefreshToken); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if record.AppMetadata != nil {
		if err := s.write(ctx, pipe, appMetadataHash, record.AppMetadata.Key(), record.AppMetadata); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Serialize renders the Redis-held cache as the five-partition JSON contract
// used by in-memory stores, so the two are interchangeable behind a
// persistence plugin.
func (s *Store) Serialize() ([]byte, error) {
	const op = "redisstore.Store.Serialize"
	ctx := context.Background()
	staging := cache.NewInMemoryStorage()
	partitions := []string{accessTokenHash, refreshTokenHash, idTokenHash, accountHash, appMetadataHash}
	for _, partition := range partitions {
		entries, err := s.client.HGetAll(ctx, s.hashKey(partition)).Result()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for _, data := range entries {
			record, err := recordForPartition(partition, []byte(data))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			if err := staging.WriteRecord(ctx, record); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
	}
	return staging.Serialize()
}

// Deserialize replaces the Redis-held cache with the given contract JSON.
func (s *Store) Deserialize(data []byte) error {
	const op = "redisstore.Store.Deserialize"
	ctx := context.Background()
	staging := cache.NewInMemoryStorage()
	if err := staging.Deserialize(data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	// replace wholesale: drop the current hashes, then re-write from staging
	pipe := s.client.TxPipeline()
	for _, partition := range []string{accessTokenHash, refreshTokenHash, idTokenHash, accountHash, appMetadataHash} {
		pipe.Del(ctx, s.hashKey(partition))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	var contract struct {
		AccessTokens  map[string]cache.AccessToken  `json:"AccessToken"`
		RefreshTokens map[string]cache.RefreshToken `json:"RefreshToken"`
		IDTokens      map[string]cache.IDToken      `json:"IdToken"`
		Accounts      map[string]cache.Account      `json:"Account"`
		AppMetadata   map[string]cache.AppMetadata  `json:"AppMetadata"`
	}
	if err := json.Unmarshal(data, &contract); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	pipe = s.client.TxPipeline()
	for key, entity := range contract.AccessTokens {
		if err := s.write(ctx, pipe, accessTokenHash, key, entity); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	for key, entity := range contract.RefreshTokens {
		if err := s.write(ctx, pipe, refreshTokenHash, key, entity); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	for key, entity := range contract.IDTokens {
		if err := s.write(ctx, pipe, idTokenHash, key, entity); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	for key, entity := range contract.Accounts {
		if err := s.write(ctx, pipe, accountHash, key, entity); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	for key, entity := range contract.AppMetadata {
		if err := s.write(ctx, pipe, appMetadataHash, key, entity); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func recordForPartition(partition string, data []byte) (cache.Record, error) {
	var record cache.Record
	switch partition {
	case accessTokenHash:
		var entity cache.AccessToken
		if err := json.Unmarshal(data, &entity); err != nil {
			return record, err
		}
		record.AccessToken = &entity
	case refreshTokenHash:
		var entity cache.RefreshToken
		if err := json.Unmarshal(data, &entity); err != nil {
			return record, err
		}
		record.RefreshToken = &entity
	case idTokenHash:
		var entity cache.IDToken
		if err := json.Unmarshal(data, &entity); err != nil {
			return record, err
		}
		record.IDToken = &entity
	case accountHash:
		var entity cache.Account
		if err := json.Unmarshal(data, &entity); err != nil {
			return record, err
		}
		record.Account = &entity
	case appMetadataHash:
		var entity cache.AppMetadata
		if err := json.Unmarshal(data, &entity); err != nil {
			return record, err
		}
		record.AppMetadata = &entity
	}
	return record, nil
}

func coversScopes(cached, requested []string) bool {
	lowered := make([]string, 0, len(cached))
	for _, scope := range cached {
		lowered = append(lowered, strings.ToLower(scope))
	}
	for _, scope := range requested {
		if !strutils.StrListContains(lowered, strings.ToLower(scope)) {
			return false
		}
	}
	return true
}
