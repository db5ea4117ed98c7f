// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jballar/msalgo/authority"
	"github.com/jballar/msalgo/cache"
)

// Handler sequences the whole server-response-to-cache path: identifier
// derivation, nonce verification, cache-record construction, the pluggable
// store's lifecycle hooks with the refresh-overwrite guard, and assembly of
// the caller-facing result. Collaborators are injected at construction; the
// handler itself holds no locks and keeps no per-call state.
type Handler struct {
	clientID  string
	authority *authority.Authority
	storage   cache.StorageManager
	plugin    cache.PersistencePlugin
	decoder   TokenDecoder
	popSigner PoPSigner
	logger    hclog.Logger
	now       func() time.Time
}

// NewHandler creates a Handler for the given client and authority, writing
// through the given store.
//
// Supported options: WithPersistencePlugin, WithTokenDecoder, WithPoPSigner,
// WithLogger, WithNow.
func NewHandler(clientID string, auth *authority.Authority, storage cache.StorageManager, opt ...Option) (*Handler, error) {
	const op = "oauth.NewHandler"
	if clientID == "" {
		return nil, fmt.Errorf("%s: client id is empty: %w", op, ErrInvalidParameter)
	}
	if auth == nil {
		return nil, fmt.Errorf("%s: authority is nil: %w", op, ErrNilParameter)
	}
	if storage == nil {
		return nil, fmt.Errorf("%s: storage manager is nil: %w", op, ErrNilParameter)
	}
	opts := getHandlerOpts(opt...)
	return &Handler{
		clientID:  clientID,
		authority: auth,
		storage:   storage,
		plugin:    opts.withPlugin,
		decoder:   opts.withDecoder,
		popSigner: opts.withPoPSigner,
		logger:    opts.withLogger,
		now:       opts.withNow,
	}, nil
}

// TokenRequestParams carries the request-side context a response is
// processed against.
type TokenRequestParams struct {
	// CachedNonce, when non-empty, is compared against the id_token's nonce
	// claim.
	CachedNonce string

	// State is the opaque state value sent on the original request, used to
	// baseline token expirations and echoed back on the result.
	State string

	// Scopes are the originally requested scopes, used when the response
	// does not declare its own.
	Scopes []string

	// OBOAssertion is the user assertion of an on-behalf-of request.
	OBOAssertion string

	// HandlingRefreshTokenResponse marks the response as coming from a
	// refresh-token grant, which must not resurrect an account another
	// caller removed.
	HandlingRefreshTokenResponse bool

	// ResourceRequestMethod and ResourceRequestURI describe the next
	// resource request a pop-type token will be bound to.
	ResourceRequestMethod string
	ResourceRequestURI    string
}

// HandleTokenResponse turns a validated token response into cached
// credential material and a caller-facing result.
//
// All validation happens before any cache mutation. When a persistence
// plugin is configured, the refresh-guard read and the record write execute
// inside a single before/after hook window, and the after hook fires on
// every exit path. A refresh response naming an account that is no longer in
// the store writes nothing and returns a nil result with a nil error.
func (h *Handler) HandleTokenResponse(ctx context.Context, resp *TokenResponse, params TokenRequestParams) (*AuthenticationResult, error) {
	const op = "oauth.Handler.HandleTokenResponse"
	if resp == nil {
		return nil, fmt.Errorf("%s: response is nil: %w", op, ErrNilParameter)
	}

	var idToken *IDToken
	if resp.IDToken != nil && *resp.IDToken != "" {
		var err error
		idToken, err = h.decoder.DecodeIDToken(*resp.IDToken)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	homeAccountID := h.deriveHomeAccountID(resp, idToken)

	if idToken != nil && params.CachedNonce != "" && idToken.Claims.Nonce != params.CachedNonce {
		return nil, fmt.Errorf("%s: %w", op, ErrNonceMismatch)
	}

	var requestState *RequestState
	if params.State != "" {
		var err error
		requestState, err = ParseRequestState(params.State)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	now := h.now()
	record, err := buildRecord(recordInputs{
		response:      resp,
		idToken:       idToken,
		authority:     h.authority,
		clientID:      h.clientID,
		homeAccountID: homeAccountID,
		baseline:      requestState.BaselineTime(now),
		cachedAt:      now,
		requestScopes: params.Scopes,
		oboAssertion:  params.OBOAssertion,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// The guard read and the record write share one hook window so a plugin
	// can serialize or snapshot access across them.
	serializable := &cache.SerializableCache{Storage: h.storage}
	var aborted bool
	err = cache.WithCacheAccess(ctx, h.plugin, serializable, func() error {
		if params.HandlingRefreshTokenResponse && record.Account != nil {
			existing, err := h.storage.ReadAccount(ctx, record.Account.HomeAccountID, record.Account.Environment, record.Account.Realm)
			if err != nil {
				return fmt.Errorf("unable to read account for refresh guard: %w", err)
			}
			if existing == nil {
				h.logger.Debug("refresh response names an account no longer in the cache, skipping write",
					"home_account_id", record.Account.HomeAccountID)
				aborted = true
				return nil
			}
		}
		if err := h.storage.WriteRecord(ctx, *record); err != nil {
			return fmt.Errorf("unable to write cache record: %w", err)
		}
		serializable.HasChanged = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if aborted {
		return nil, nil
	}

	var userState string
	if requestState != nil {
		userState = requestState.UserState
	}
	result, err := newAuthenticationResult(ctx, resultInputs{
		record:                record,
		idToken:               idToken,
		fromCache:             false,
		requestState:          userState,
		resourceRequestMethod: params.ResourceRequestMethod,
		resourceRequestURI:    params.ResourceRequestURI,
		popSigner:             h.popSigner,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// deriveHomeAccountID resolves the cache partition identifier for the
// response's identity. client_info is the primary source; a response without
// a usable one degrades to the id_token's sub claim, which is tolerated but
// logged since sub is only stable per client. A missing identifier is not an
// error.
func (h *Handler) deriveHomeAccountID(resp *TokenResponse, idToken *IDToken) string {
	if resp.ClientInfo != nil && *resp.ClientInfo != "" {
		info, err := DecodeClientInfo(*resp.ClientInfo)
		if err != nil {
			h.logger.Warn("unable to decode client_info, falling back to sub claim", "error", err)
		} else if id := info.HomeAccountID(); id != "" {
			return id
		}
	}
	if idToken != nil && idToken.Claims.Subject != "" {
		h.logger.Debug("no usable client_info on response, using degraded sub-claim home account identifier")
		return idToken.Claims.Subject
	}
	return ""
}
