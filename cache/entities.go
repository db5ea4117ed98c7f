// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

// Package cache defines the credential cache entities produced from a token
// response, the composite keys they are stored under, the StorageManager
// interface a pluggable store must implement, and the persistence-plugin
// lifecycle used to guard access to an external store.
package cache

import (
	"strings"
)

// CredentialType discriminates the secret-bearing entities in the cache.
type CredentialType string

const (
	CredentialTypeIDToken      CredentialType = "IdToken"
	CredentialTypeAccessToken  CredentialType = "AccessToken"
	CredentialTypeRefreshToken CredentialType = "RefreshToken"
)

// Authority type markers recorded on cached accounts.
const (
	AuthorityTypeMSSTS   = "MSSTS"
	AuthorityTypeADFS    = "ADFS"
	AuthorityTypeGeneric = "Generic"
)

const keySeparator = "-"

// Account binds an identity to an authority realm. It is keyed by
// (homeAccountID, environment, realm) and is created on the first successful
// token response for an identity.
type Account struct {
	HomeAccountID  string `json:"home_account_id,omitempty"`
	Environment    string `json:"environment,omitempty"`
	Realm          string `json:"realm,omitempty"`
	LocalAccountID string `json:"local_account_id,omitempty"`
	AuthorityType  string `json:"authority_type,omitempty"`
	Username       string `json:"username,omitempty"`
	Name           string `json:"name,omitempty"`
	ClientInfo     string `json:"client_info,omitempty"`
	OBOAssertion   string `json:"user_assertion,omitempty"`
}

// Key returns the cache partition key for the account.
func (a Account) Key() string {
	return joinKey(a.HomeAccountID, a.Environment, a.Realm)
}

// IDToken is the cached id_token credential for an account/client/realm.
type IDToken struct {
	HomeAccountID  string         `json:"home_account_id,omitempty"`
	Environment    string         `json:"environment,omitempty"`
	CredentialType CredentialType `json:"credential_type,omitempty"`
	ClientID       string         `json:"client_id,omitempty"`
	Realm          string         `json:"realm,omitempty"`
	Secret         string         `json:"secret,omitempty"`
}

// Key returns the cache partition key for the id token.
func (t IDToken) Key() string {
	return joinKey(t.HomeAccountID, t.Environment, string(t.CredentialType), t.ClientID, t.Realm, "")
}

// AccessToken is the cached access_token credential. ExpiresOn and
// ExtendedExpiresOn are epoch seconds.
type AccessToken struct {
	HomeAccountID     string         `json:"home_account_id,omitempty"`
	Environment       string         `json:"environment,omitempty"`
	CredentialType    CredentialType `json:"credential_type,omitempty"`
	ClientID          string         `json:"client_id,omitempty"`
	Realm             string         `json:"realm,omitempty"`
	Target            string         `json:"target,omitempty"`
	Secret            string         `json:"secret,omitempty"`
	TokenType         string         `json:"token_type,omitempty"`
	CachedAt          int64          `json:"cached_at,omitempty,string"`
	ExpiresOn         int64          `json:"expires_on,omitempty,string"`
	ExtendedExpiresOn int64          `json:"extended_expires_on,omitempty,string"`
}

// Key returns the cache partition key for the access token.
func (t AccessToken) Key() string {
	return joinKey(t.HomeAccountID, t.Environment, string(t.CredentialType), t.ClientID, t.Realm, t.Target)
}

// Scopes returns the token's target as a scope list.
func (t AccessToken) Scopes() []string {
	return strings.Fields(t.Target)
}

// ExpiredAt reports whether the token is expired at the given epoch seconds.
func (t AccessToken) ExpiredAt(epoch int64) bool {
	return t.ExpiresOn <= epoch
}

// RefreshToken is the cached refresh_token credential. FamilyID is non-empty
// when the token is shared across a family of client ids (FOCI).
type RefreshToken struct {
	HomeAccountID  string         `json:"home_account_id,omitempty"`
	Environment    string         `json:"environment,omitempty"`
	CredentialType CredentialType `json:"credential_type,omitempty"`
	ClientID       string         `json:"client_id,omitempty"`
	Secret         string         `json:"secret,omitempty"`
	FamilyID       string         `json:"family_id,omitempty"`
	OBOAssertion   string         `json:"user_assertion,omitempty"`
}

// Key returns the cache partition key for the refresh token. Family refresh
// tokens are keyed under the family id rather than the client id so every
// family member resolves the same entry.
func (t RefreshToken) Key() string {
	clientID := t.ClientID
	if t.FamilyID != "" {
		clientID = t.FamilyID
	}
	return joinKey(t.HomeAccountID, t.Environment, string(t.CredentialType), clientID, "", "")
}

// AppMetadata records FOCI membership for a client in an environment.
type AppMetadata struct {
	ClientID    string `json:"client_id,omitempty"`
	Environment string `json:"environment,omitempty"`
	FamilyID    string `json:"family_id,omitempty"`
}

// Key returns the cache partition key for the app metadata.
func (m AppMetadata) Key() string {
	return joinKey("appmetadata", m.Environment, m.ClientID)
}

func joinKey(parts ...string) string {
	return strings.ToLower(strings.Join(parts, keySeparator))
}
