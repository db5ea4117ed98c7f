// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jballar/msalgo/authority"
	"github.com/jballar/msalgo/cache"
)

// recordingPlugin captures persistence hook invocations in order.
type recordingPlugin struct {
	calls []string
}

func (p *recordingPlugin) BeforeCacheAccess(_ context.Context, _ *cache.SerializableCache) error {
	p.calls = append(p.calls, "before")
	return nil
}

func (p *recordingPlugin) AfterCacheAccess(_ context.Context, c *cache.SerializableCache) error {
	p.calls = append(p.calls, "after")
	if c.HasChanged {
		p.calls = append(p.calls, "changed")
	}
	return nil
}

func TestNewHandler(t *testing.T) {
	t.Parallel()
	auth := testAuthority(t, authority.AAD)
	storage := cache.NewInMemoryStorage()
	tests := []struct {
		name      string
		clientID  string
		authority *authority.Authority
		storage   cache.StorageManager
		wantErr   bool
		wantIsErr error
	}{
		{
			name:      "valid",
			clientID:  "client-1",
			authority: auth,
			storage:   storage,
		},
		{
			name:      "empty-client-id",
			authority: auth,
			storage:   storage,
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name:      "nil-authority",
			clientID:  "client-1",
			storage:   storage,
			wantErr:   true,
			wantIsErr: ErrNilParameter,
		},
		{
			name:      "nil-storage",
			clientID:  "client-1",
			authority: auth,
			wantErr:   true,
			wantIsErr: ErrNilParameter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := NewHandler(tt.clientID, tt.authority, tt.storage)
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
			require.NotNil(got)
		})
	}
}

func TestHandler_HandleTokenResponse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	testNow := func() time.Time { return time.Unix(1700000000, 0) }

	t.Run("full-response", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		storage := cache.NewInMemoryStorage()
		plugin := &recordingPlugin{}
		handler, err := NewHandler("client-1", testAuthority(t, authority.AAD), storage,
			WithPersistencePlugin(plugin), WithNow(testNow))
		require.NoError(err)

		rawIDToken := TestIDToken(t, map[string]interface{}{
			"sub":                "sub-1",
			"oid":                "oid-1",
			"tid":                "tid-1",
			"nonce":              "nonce-1",
			"preferred_username": "user@contoso.com",
		})
		info := TestClientInfo(t, "uid-1", "utid-1")
		resp := &TokenResponse{
			AccessToken:  strPtr("AT1"),
			RefreshToken: strPtr("RT1"),
			IDToken:      strPtr(rawIDToken),
			ClientInfo:   &info,
			Scope:        strPtr("User.Read openid"),
			ExpiresIn:    secPtr(3600),
			ExtExpiresIn: secPtr(7200),
			FamilyID:     strPtr("1"),
		}

		result, err := handler.HandleTokenResponse(ctx, resp, TokenRequestParams{CachedNonce: "nonce-1"})
		require.NoError(err)
		require.NotNil(result)

		assert.Equal("AT1", result.AccessToken)
		assert.Equal([]string{"User.Read", "openid"}, result.Scopes)
		assert.Equal("Bearer", result.TokenType)
		assert.Equal(time.Unix(1700000000+3600, 0), result.ExpiresOn)
		assert.Equal(time.Unix(1700000000+3600+7200, 0), result.ExtExpiresOn)
		assert.Equal("oid-1", result.UniqueID)
		assert.Equal("tid-1", result.TenantID)
		assert.Equal("1", result.FamilyID)
		assert.False(result.FromCache)
		require.NotNil(result.Account)
		assert.Equal("uid-1.utid-1", result.Account.HomeAccountID)
		assert.Equal("user@contoso.com", result.Account.Username)

		// the store saw the whole record inside one hook window
		assert.Equal([]string{"before", "after", "changed"}, plugin.calls)
		account, err := storage.ReadAccount(ctx, "uid-1.utid-1", "login.microsoftonline.com", "tid-1")
		require.NoError(err)
		require.NotNil(account)
		refreshToken, err := storage.ReadRefreshToken(ctx, "uid-1.utid-1", "login.microsoftonline.com", "client-1", "1")
		require.NoError(err)
		require.NotNil(refreshToken)
		assert.Equal("RT1", refreshToken.Secret)
	})

	t.Run("access-token-only", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		storage := cache.NewInMemoryStorage()
		handler, err := NewHandler("client-1", testAuthority(t, authority.AAD), storage, WithNow(testNow))
		require.NoError(err)

		resp := &TokenResponse{
			AccessToken:  strPtr("AT1"),
			ExpiresIn:    secPtr(3600),
			ExtExpiresIn: secPtr(7200),
			Scope:        strPtr("User.Read"),
			TokenType:    strPtr("Bearer"),
		}
		result, err := handler.HandleTokenResponse(ctx, resp, TokenRequestParams{})
		require.NoError(err)
		require.NotNil(result)
		assert.Nil(result.Account)
		assert.Equal([]string{"User.Read"}, result.Scopes)
		assert.Equal("AT1", result.AccessToken)
		assert.Empty(result.IDToken)
	})

	t.Run("round-trip-matches-response", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		handler, err := NewHandler("client-1", testAuthority(t, authority.AAD), cache.NewInMemoryStorage(), WithNow(testNow))
		require.NoError(err)

		resp := &TokenResponse{
			AccessToken:  strPtr("AT1"),
			ExpiresIn:    secPtr(600),
			ExtExpiresIn: secPtr(60),
			Scope:        strPtr("openid profile"),
			TokenType:    strPtr("Bearer"),
		}
		result, err := handler.HandleTokenResponse(ctx, resp, TokenRequestParams{})
		require.NoError(err)
		require.NotNil(result)
		assert.Equal([]string{"openid", "profile"}, result.Scopes)
		assert.Equal("Bearer", result.TokenType)
		assert.Equal(testNow().Add(600*time.Second), result.ExpiresOn)
		assert.Equal(testNow().Add(660*time.Second), result.ExtExpiresOn)
	})

	t.Run("nonce-mismatch", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		storage := cache.NewInMemoryStorage()
		handler, err := NewHandler("client-1", testAuthority(t, authority.AAD), storage)
		require.NoError(err)

		rawIDToken := TestIDToken(t, map[string]interface{}{"nonce": "nonce-1", "tid": "tid-1"})
		info := TestClientInfo(t, "uid-1", "utid-1")
		resp := &TokenResponse{
			IDToken:    strPtr(rawIDToken),
			ClientInfo: &info,
		}
		_, err = handler.HandleTokenResponse(ctx, resp, TokenRequestParams{CachedNonce: "other-nonce"})
		require.Error(err)
		assert.True(errors.Is(err, ErrNonceMismatch))

		// validation failed before any cache mutation
		account, err := storage.ReadAccount(ctx, "uid-1.utid-1", "login.microsoftonline.com", "tid-1")
		require.NoError(err)
		assert.Nil(account)
	})

	t.Run("refresh-guard-absent-account", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		storage := cache.NewInMemoryStorage()
		plugin := &recordingPlugin{}
		handler, err := NewHandler("client-1", testAuthority(t, authority.AAD), storage,
			WithPersistencePlugin(plugin))
		require.NoError(err)

		rawIDToken := TestIDToken(t, map[string]interface{}{"tid": "tid-1", "sub": "sub-1"})
		info := TestClientInfo(t, "uid-1", "utid-1")
		resp := &TokenResponse{
			AccessToken:  strPtr("AT1"),
			RefreshToken: strPtr("RT2"),
			IDToken:      strPtr(rawIDToken),
			ClientInfo:   &info,
			Scope:        strPtr("User.Read"),
		}

		result, err := handler.HandleTokenResponse(ctx, resp, TokenRequestParams{
			HandlingRefreshTokenResponse: true,
		})
		require.NoError(err)
		assert.Nil(result)

		// nothing was written, but the hook pair still fired
		assert.Equal([]string{"before", "after"}, plugin.calls)
		accessToken, err := storage.ReadAccessToken(ctx, "uid-1.utid-1", "login.microsoftonline.com", "client-1", "tid-1", nil)
		require.NoError(err)
		assert.Nil(accessToken)
	})

	t.Run("refresh-guard-account-present", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		storage := cache.NewInMemoryStorage()
		handler, err := NewHandler("client-1", testAuthority(t, authority.AAD), storage)
		require.NoError(err)

		require.NoError(storage.WriteAccount(ctx, cache.Account{
			HomeAccountID: "uid-1.utid-1",
			Environment:   "login.microsoftonline.com",
			Realm:         "tid-1",
		}))

		rawIDToken := TestIDToken(t, map[string]interface{}{"tid": "tid-1", "sub": "sub-1"})
		info := TestClientInfo(t, "uid-1", "utid-1")
		resp := &TokenResponse{
			AccessToken: strPtr("AT1"),
			IDToken:     strPtr(rawIDToken),
			ClientInfo:  &info,
			Scope:       strPtr("User.Read"),
		}
		result, err := handler.HandleTokenResponse(ctx, resp, TokenRequestParams{
			HandlingRefreshTokenResponse: true,
		})
		require.NoError(err)
		require.NotNil(result)
		assert.Equal("AT1", result.AccessToken)
	})

	t.Run("degraded-sub-claim-identifier", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		storage := cache.NewInMemoryStorage()
		auth := testAuthority(t, authority.AAD, authority.WithProtocol(authority.ProtocolOIDC))
		handler, err := NewHandler("client-1", auth, storage)
		require.NoError(err)

		rawIDToken := TestIDToken(t, map[string]interface{}{"sub": "sub-1", "tid": "tid-1"})
		resp := &TokenResponse{
			AccessToken: strPtr("AT1"),
			IDToken:     strPtr(rawIDToken),
			Scope:       strPtr("User.Read"),
		}
		result, err := handler.HandleTokenResponse(ctx, resp, TokenRequestParams{})
		require.NoError(err)
		require.NotNil(result)

		accessToken, err := storage.ReadAccessToken(ctx, "sub-1", "login.microsoftonline.com", "client-1", "tid-1", nil)
		require.NoError(err)
		require.NotNil(accessToken)
		assert.Equal("AT1", accessToken.Secret)
	})

	t.Run("state-baselines-expiry-and-echoes", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		handler, err := NewHandler("client-1", testAuthority(t, authority.AAD), cache.NewInMemoryStorage(), WithNow(testNow))
		require.NoError(err)

		stateNow := func() time.Time { return time.Unix(1600000000, 0) }
		state, err := NewRequestState("caller-state", WithNow(stateNow))
		require.NoError(err)
		encoded, err := state.Encode()
		require.NoError(err)

		resp := &TokenResponse{
			AccessToken: strPtr("AT1"),
			ExpiresIn:   secPtr(100),
			Scope:       strPtr("User.Read"),
		}
		result, err := handler.HandleTokenResponse(ctx, resp, TokenRequestParams{State: encoded})
		require.NoError(err)
		require.NotNil(result)
		assert.Equal("caller-state", result.State)
		assert.Equal(time.Unix(1600000000+100, 0), result.ExpiresOn)
	})

	t.Run("nil-response", func(t *testing.T) {
		require := require.New(t)
		handler, err := NewHandler("client-1", testAuthority(t, authority.AAD), cache.NewInMemoryStorage())
		require.NoError(err)
		_, err = handler.HandleTokenResponse(ctx, nil, TokenRequestParams{})
		require.Error(err)
		require.True(errors.Is(err, ErrNilParameter))
	})
}
