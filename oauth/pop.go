// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-uuid"
)

// PoPSigner binds an access token secret to the HTTP method and URI of the
// resource request it will be presented on. Implementations produce a fresh
// signature per call.
type PoPSigner interface {
	SignPoPToken(ctx context.Context, method, uri, token string) (string, error)
}

// JWTPoPSigner is a PoPSigner producing a signed-http-request style JWT over
// an RSA key: the access token, method, host and path are carried as claims
// along with a timestamp and a per-signature nonce.
type JWTPoPSigner struct {
	key   *rsa.PrivateKey
	keyID string
	now   func() time.Time
}

var _ PoPSigner = (*JWTPoPSigner)(nil)

// NewJWTPoPSigner creates a signer over the given RSA key. keyID is placed in
// the JWT header so the resource can resolve the public key.
func NewJWTPoPSigner(key *rsa.PrivateKey, keyID string, opt ...Option) (*JWTPoPSigner, error) {
	const op = "oauth.NewJWTPoPSigner"
	if key == nil {
		return nil, fmt.Errorf("%s: signing key is nil: %w", op, ErrNilParameter)
	}
	opts := getStateOpts(opt...)
	return &JWTPoPSigner{
		key:   key,
		keyID: keyID,
		now:   opts.withNow,
	}, nil
}

// SignPoPToken implements PoPSigner.
func (s *JWTPoPSigner) SignPoPToken(_ context.Context, method, uri, token string) (string, error) {
	const op = "oauth.JWTPoPSigner.SignPoPToken"
	if method == "" || uri == "" {
		return "", fmt.Errorf("%s: resource request method and uri are required for pop signing: %w", op, ErrInvalidParameter)
	}
	if token == "" {
		return "", fmt.Errorf("%s: token is empty: %w", op, ErrInvalidParameter)
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%s: resource request uri %s is invalid: %w", op, uri, err)
	}
	nonce, err := uuid.GenerateUUID()
	if err != nil {
		return "", fmt.Errorf("%s: unable to generate signature nonce: %w", op, err)
	}

	claims := jwt.MapClaims{
		"at":    token,
		"ts":    s.now().Unix(),
		"m":     method,
		"u":     u.Host,
		"p":     u.Path,
		"nonce": nonce,
	}
	signed := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if s.keyID != "" {
		signed.Header["kid"] = s.keyID
	}
	presentation, err := signed.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("%s: unable to sign pop token: %w", op, err)
	}
	return presentation, nil
}
