// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"fmt"
	"strings"
	"time"

	"github.com/jballar/msalgo/authority"
	"github.com/jballar/msalgo/cache"
	"github.com/jballar/msalgo/sdk/strutils"
)

// TokenTypeBearer is the default access token type when the response does
// not declare one.
const TokenTypeBearer = "Bearer"

// TokenTypePoP marks an access token that must be presented bound to a
// request via a fresh proof-of-possession signature.
const TokenTypePoP = "pop"

// recordInputs gathers everything buildRecord needs; the build itself is a
// pure transformation with no I/O.
type recordInputs struct {
	response      *TokenResponse
	idToken       *IDToken
	authority     *authority.Authority
	clientID      string
	homeAccountID string
	baseline      time.Time
	cachedAt      time.Time
	requestScopes []string
	oboAssertion  string
}

// buildAccount constructs the account entity for a token response carrying
// an id_token. ADFS responses carry no client_info, so the account comes
// straight from the token claims. For everything else client_info is
// preferred; its absence is fatal on AAD-protocol authorities (such accounts
// would be unaddressable) and degrades to a claims-built generic account on
// generic OIDC authorities.
func buildAccount(resp *TokenResponse, idToken *IDToken, auth *authority.Authority, oboAssertion string) (*cache.Account, error) {
	const op = "oauth.buildAccount"
	if resp == nil || idToken == nil {
		return nil, fmt.Errorf("%s: response or id token is nil: %w", op, ErrNilParameter)
	}
	if auth == nil {
		return nil, fmt.Errorf("%s: authority is nil: %w", op, ErrNilParameter)
	}

	claims := idToken.Claims
	realm := claims.TenantID
	if realm == "" {
		realm = auth.Tenant()
	}
	account := cache.Account{
		Environment:    auth.CacheEnvironment(),
		Realm:          realm,
		LocalAccountID: claims.LocalAccountID(),
		Username:       claims.DisplayableUsername(),
		Name:           claims.Name,
		OBOAssertion:   oboAssertion,
	}

	if auth.Type() == authority.ADFS {
		account.HomeAccountID = claims.Subject
		account.AuthorityType = cache.AuthorityTypeADFS
		return &account, nil
	}

	var rawInfo string
	if resp.ClientInfo != nil {
		rawInfo = *resp.ClientInfo
	}
	if rawInfo == "" {
		if auth.Protocol() == authority.ProtocolAAD {
			return nil, fmt.Errorf("%s: %w", op, ErrClientInfoEmpty)
		}
		account.HomeAccountID = claims.Subject
		account.AuthorityType = cache.AuthorityTypeGeneric
		return &account, nil
	}

	info, err := DecodeClientInfo(rawInfo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	account.HomeAccountID = info.HomeAccountID()
	account.ClientInfo = rawInfo
	account.AuthorityType = cache.AuthorityTypeMSSTS
	return &account, nil
}

// buildRecord maps a validated token response into a cache record. Every
// slot is optional: only the credentials the response actually carries are
// built, so a refresh-token-only response yields a record with a single
// populated slot.
func buildRecord(in recordInputs) (*cache.Record, error) {
	const op = "oauth.buildRecord"
	if in.response == nil {
		return nil, fmt.Errorf("%s: response is nil: %w", op, ErrNilParameter)
	}
	if in.authority == nil {
		return nil, fmt.Errorf("%s: authority is nil: %w", op, ErrNilParameter)
	}
	environment := in.authority.CacheEnvironment()
	if environment == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCacheEnvironment)
	}

	realm := in.authority.Tenant()
	if in.idToken != nil && in.idToken.Claims.TenantID != "" {
		realm = in.idToken.Claims.TenantID
	}

	var record cache.Record
	if in.idToken != nil {
		record.IDToken = &cache.IDToken{
			HomeAccountID:  in.homeAccountID,
			Environment:    environment,
			CredentialType: cache.CredentialTypeIDToken,
			ClientID:       in.clientID,
			Realm:          realm,
			Secret:         in.idToken.Raw,
		}
		account, err := buildAccount(in.response, in.idToken, in.authority, in.oboAssertion)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		record.Account = account
	}

	if in.response.AccessToken != nil {
		scopes := in.requestScopes
		if in.response.Scope != nil && *in.response.Scope != "" {
			scopes = strings.Fields(*in.response.Scope)
		}
		scopes = strutils.RemoveDuplicatesStable(scopes, true)

		var expiresIn, extExpiresIn int64
		if in.response.ExpiresIn != nil {
			expiresIn = int64(*in.response.ExpiresIn)
		}
		if in.response.ExtExpiresIn != nil {
			extExpiresIn = int64(*in.response.ExtExpiresIn)
		}
		expiresOn := in.baseline.Unix() + expiresIn
		extendedExpiresOn := expiresOn + extExpiresIn

		tokenType := TokenTypeBearer
		if in.response.TokenType != nil && *in.response.TokenType != "" {
			tokenType = *in.response.TokenType
		}
		record.AccessToken = &cache.AccessToken{
			HomeAccountID:     in.homeAccountID,
			Environment:       environment,
			CredentialType:    cache.CredentialTypeAccessToken,
			ClientID:          in.clientID,
			Realm:             realm,
			Target:            strings.Join(scopes, " "),
			Secret:            *in.response.AccessToken,
			TokenType:         tokenType,
			CachedAt:          in.cachedAt.Unix(),
			ExpiresOn:         expiresOn,
			ExtendedExpiresOn: extendedExpiresOn,
		}
	}

	if in.response.RefreshToken != nil {
		refreshToken := &cache.RefreshToken{
			HomeAccountID:  in.homeAccountID,
			Environment:    environment,
			CredentialType: cache.CredentialTypeRefreshToken,
			ClientID:       in.clientID,
			Secret:         *in.response.RefreshToken,
			OBOAssertion:   in.oboAssertion,
		}
		if in.response.FamilyID != nil {
			refreshToken.FamilyID = *in.response.FamilyID
		}
		record.RefreshToken = refreshToken
	}

	if in.response.FamilyID != nil && *in.response.FamilyID != "" {
		record.AppMetadata = &cache.AppMetadata{
			ClientID:    in.clientID,
			Environment: environment,
			FamilyID:    *in.response.FamilyID,
		}
	}
	return &record, nil
}
