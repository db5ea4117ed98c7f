// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jballar/msalgo/cache"
)

// AccountInfo is the caller-visible projection of a cached account.
type AccountInfo struct {
	HomeAccountID  string
	Environment    string
	TenantID       string
	Username       string
	LocalAccountID string
	Name           string
}

// AuthenticationResult is the read-only, caller-facing projection of a cache
// record plus decoded id_token claims and the request's echoed state.
// Account is nil when the record carries no account entity, which is
// legitimate for ADFS and on-behalf-of flows.
type AuthenticationResult struct {
	UniqueID      string
	TenantID      string
	Scopes        []string
	Account       *AccountInfo
	IDToken       string
	IDTokenClaims IDTokenClaims
	AccessToken   string
	FromCache     bool
	ExpiresOn     time.Time
	ExtExpiresOn  time.Time
	FamilyID      string
	TokenType     string
	State         string
}

// resultInputs gathers what newAuthenticationResult needs beyond the record.
type resultInputs struct {
	record                *cache.Record
	idToken               *IDToken
	fromCache             bool
	requestState          string
	resourceRequestMethod string
	resourceRequestURI    string
	popSigner             PoPSigner
}

// newAuthenticationResult builds the caller-facing result from a cache
// record. A pop-type access token is handed to the signer to bind it to the
// next resource request's method and URI; the signature is fresh per result,
// never cached. Bearer secrets surface unchanged.
func newAuthenticationResult(ctx context.Context, in resultInputs) (*AuthenticationResult, error) {
	const op = "oauth.newAuthenticationResult"
	if in.record == nil {
		return nil, fmt.Errorf("%s: cache record is nil: %w", op, ErrNilParameter)
	}

	result := AuthenticationResult{
		FromCache: in.fromCache,
		State:     in.requestState,
	}
	if in.idToken != nil {
		result.IDToken = in.idToken.Raw
		result.IDTokenClaims = in.idToken.Claims
		result.UniqueID = in.idToken.Claims.LocalAccountID()
		result.TenantID = in.idToken.Claims.TenantID
	}
	if in.record.Account != nil {
		result.Account = &AccountInfo{
			HomeAccountID:  in.record.Account.HomeAccountID,
			Environment:    in.record.Account.Environment,
			TenantID:       in.record.Account.Realm,
			Username:       in.record.Account.Username,
			LocalAccountID: in.record.Account.LocalAccountID,
			Name:           in.record.Account.Name,
		}
	}
	if accessToken := in.record.AccessToken; accessToken != nil {
		result.Scopes = accessToken.Scopes()
		result.ExpiresOn = time.Unix(accessToken.ExpiresOn, 0)
		result.ExtExpiresOn = time.Unix(accessToken.ExtendedExpiresOn, 0)
		result.TokenType = accessToken.TokenType

		if strings.EqualFold(accessToken.TokenType, TokenTypePoP) {
			if in.popSigner == nil {
				return nil, fmt.Errorf("%s: response carries a pop token but no pop signer is configured: %w", op, ErrNilParameter)
			}
			signed, err := in.popSigner.SignPoPToken(ctx, in.resourceRequestMethod, in.resourceRequestURI, accessToken.Secret)
			if err != nil {
				return nil, fmt.Errorf("%s: unable to sign pop token: %w", op, err)
			}
			result.AccessToken = signed
		} else {
			result.AccessToken = accessToken.Secret
		}
	}
	if in.record.RefreshToken != nil {
		result.FamilyID = in.record.RefreshToken.FamilyID
	}
	return &result, nil
}
