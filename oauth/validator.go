// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"fmt"
	"net/url"
)

// ValidateAuthCodeResponse performs the stateless checks on an
// authorization-code response: the CSRF state comparison against the cached
// state, classification of any server error triple, and an eager decode of
// client_info so a tampered value fails here instead of deep in cache
// mapping. It never mutates the cache.
func ValidateAuthCodeResponse(resp *AuthCodeResponse, cachedState string) error {
	const op = "oauth.ValidateAuthCodeResponse"
	if resp == nil {
		return fmt.Errorf("%s: response is nil: %w", op, ErrNilParameter)
	}
	if cachedState == "" {
		return fmt.Errorf("%s: cached state is empty: %w", op, ErrStateNotFound)
	}
	if decodeURLValue(resp.State) != decodeURLValue(cachedState) {
		return fmt.Errorf("%s: %w", op, ErrStateMismatch)
	}
	if err := checkServerError(resp.Error, resp.ErrorDescription, resp.SubError, ""); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.ClientInfo != "" {
		if _, err := DecodeClientInfo(resp.ClientInfo); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// ValidateTokenResponse performs the stateless checks on a token endpoint
// response. Token endpoint responses carry no state parameter, so only the
// server error triple is classified; a clean response is a no-op.
func ValidateTokenResponse(resp *TokenResponse) error {
	const op = "oauth.ValidateTokenResponse"
	if resp == nil {
		return fmt.Errorf("%s: response is nil: %w", op, ErrNilParameter)
	}
	if err := checkServerError(resp.Error, resp.ErrorDescription, resp.SubError, resp.CorrelationID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// decodeURLValue percent-decodes v for comparison. A value that fails to
// decode is compared raw: it was never percent-encoded to begin with.
func decodeURLValue(v string) string {
	decoded, err := url.QueryUnescape(v)
	if err != nil {
		return v
	}
	return decoded
}
