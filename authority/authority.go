// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

// Package authority models the issuing identity provider for a token request:
// its type (AAD, ADFS, B2C), the host used as the credential cache
// environment, and the tenant (realm) the request is bound to. It also holds
// the process-wide trusted host registry.
package authority

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrNilParameter       = errors.New("nil parameter")
	ErrInvalidAuthority   = errors.New("invalid authority")
	ErrAlreadyInitialized = errors.New("trusted host registry already initialized")
)

// Type identifies the kind of authority.
type Type string

const (
	AAD  Type = "AAD"
	ADFS Type = "ADFS"
	B2C  Type = "B2C"
)

// Protocol identifies the wire protocol the authority speaks. AAD-protocol
// authorities return the client_info parameter and cannot address accounts
// without it; generic OIDC authorities never return it.
type Protocol string

const (
	ProtocolAAD  Protocol = "AAD"
	ProtocolOIDC Protocol = "OIDC"
)

// Authority represents a validated identity provider endpoint. It is
// immutable once constructed with New.
type Authority struct {
	authorityType Type
	protocol      Protocol
	host          string
	tenant        string
	canonical     string
}

// New validates rawURL and returns an Authority of the given type. The URL
// must be https with a non-empty host; the first path segment, if any, is the
// tenant (for ADFS authorities the first segment is the literal "adfs" and
// the realm is taken from token claims instead).
//
// AAD and B2C authorities default to the AAD protocol and ADFS to generic
// OIDC; WithProtocol overrides the default.
func New(rawURL string, authorityType Type, opt ...Option) (*Authority, error) {
	const op = "authority.New"
	if rawURL == "" {
		return nil, fmt.Errorf("%s: authority url is empty: %w", op, ErrInvalidParameter)
	}
	switch authorityType {
	case AAD, ADFS, B2C:
	default:
		return nil, fmt.Errorf("%s: unsupported authority type %q: %w", op, authorityType, ErrInvalidParameter)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: authority url %s is invalid: %w", op, rawURL, err)
	}
	if u.Scheme != "https" {
		return nil, fmt.Errorf("%s: authority url %s scheme is not https: %w", op, rawURL, ErrInvalidAuthority)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%s: authority url %s has no host: %w", op, rawURL, ErrInvalidAuthority)
	}

	var tenant string
	if segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' }); len(segments) > 0 {
		tenant = segments[0]
	}

	canonical := "https://" + u.Host
	if tenant != "" {
		canonical += "/" + tenant
	}

	opts := getOpts(opt...)
	protocol := opts.withProtocol
	if protocol == "" {
		protocol = ProtocolAAD
		if authorityType == ADFS {
			protocol = ProtocolOIDC
		}
	}
	return &Authority{
		authorityType: authorityType,
		protocol:      protocol,
		host:          strings.ToLower(u.Host),
		tenant:        tenant,
		canonical:     canonical,
	}, nil
}

// Type returns the authority's kind.
func (a *Authority) Type() Type { return a.authorityType }

// Protocol returns the wire protocol the authority speaks.
func (a *Authority) Protocol() Protocol { return a.protocol }

// Tenant returns the tenant segment of the authority URL, which may be empty.
func (a *Authority) Tenant() string { return a.tenant }

// CanonicalURI returns the normalized authority URI without a trailing slash.
func (a *Authority) CanonicalURI() string { return a.canonical }

// CacheEnvironment returns the environment string used to key cache entities
// for this authority. It is the lower-cased authority host.
func (a *Authority) CacheEnvironment() string {
	if a == nil {
		return ""
	}
	return a.host
}

// TokenEndpoint returns the token endpoint for the authority.
func (a *Authority) TokenEndpoint() string {
	if a.authorityType == ADFS {
		return a.canonical + "/oauth2/token"
	}
	return a.canonical + "/oauth2/v2.0/token"
}

// UsesClientInfo reports whether responses from this authority are expected
// to carry the client_info parameter.
func (a *Authority) UsesClientInfo() bool {
	return a.protocol == ProtocolAAD
}
