// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"encoding/json"
	"fmt"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// RedactedIDToken is the redacted string or json for an oidc id_token
const RedactedIDToken = "[REDACTED: id_token]"

// IDTokenClaims are the identity claims this engine consumes from a decoded
// id_token. Signature verification is an external collaborator's job; these
// claims come from an unverified decode.
type IDTokenClaims struct {
	Issuer            string `json:"iss,omitempty"`
	Subject           string `json:"sub,omitempty"`
	ObjectID          string `json:"oid,omitempty"`
	TenantID          string `json:"tid,omitempty"`
	Nonce             string `json:"nonce,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	UPN               string `json:"upn,omitempty"`
	Name              string `json:"name,omitempty"`
	Expiry            int64  `json:"exp,omitempty"`
	IssuedAt          int64  `json:"iat,omitempty"`
}

// LocalAccountID is the claim used as the account's local id: oid when
// present, sub otherwise.
func (c IDTokenClaims) LocalAccountID() string {
	if c.ObjectID != "" {
		return c.ObjectID
	}
	return c.Subject
}

// DisplayableUsername picks the best available username claim.
func (c IDTokenClaims) DisplayableUsername() string {
	switch {
	case c.PreferredUsername != "":
		return c.PreferredUsername
	case c.UPN != "":
		return c.UPN
	default:
		return ""
	}
}

// IDToken pairs the raw compact token string with its decoded claims.
type IDToken struct {
	Raw    string
	Claims IDTokenClaims
}

// String will redact the token
func (t *IDToken) String() string {
	return RedactedIDToken
}

// MarshalJSON will redact the token
func (t *IDToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedIDToken)
}

// TokenDecoder is the capability that turns a raw compact JWT into claims.
// The engine does not verify signatures; a decoder may.
type TokenDecoder interface {
	DecodeIDToken(raw string) (*IDToken, error)
}

// JoseTokenDecoder decodes compact JWTs with go-jose without verifying
// signatures.
type JoseTokenDecoder struct {
	allowedAlgs []jose.SignatureAlgorithm
}

var _ TokenDecoder = (*JoseTokenDecoder)(nil)

// NewJoseTokenDecoder creates a decoder accepting the usual asymmetric
// algorithms plus HS256.
func NewJoseTokenDecoder() *JoseTokenDecoder {
	return &JoseTokenDecoder{
		allowedAlgs: []jose.SignatureAlgorithm{
			jose.RS256, jose.RS384, jose.RS512,
			jose.ES256, jose.ES384, jose.ES512,
			jose.PS256, jose.PS384, jose.PS512,
			jose.HS256,
		},
	}
}

// DecodeIDToken implements TokenDecoder.
func (d *JoseTokenDecoder) DecodeIDToken(raw string) (*IDToken, error) {
	const op = "oauth.JoseTokenDecoder.DecodeIDToken"
	if raw == "" {
		return nil, fmt.Errorf("%s: id_token is empty: %w", op, ErrInvalidParameter)
	}
	parsed, err := jwt.ParseSigned(raw, d.allowedAlgs)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to parse id_token: %w", op, err)
	}
	var claims IDTokenClaims
	if err := parsed.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return nil, fmt.Errorf("%s: unable to decode id_token claims: %w", op, err)
	}
	return &IDToken{Raw: raw, Claims: claims}, nil
}
