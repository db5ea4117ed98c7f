// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAuthCodeResponse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		resp        *AuthCodeResponse
		cachedState string
		wantErr     bool
		wantIsErr   error
	}{
		{
			name:        "valid",
			resp:        &AuthCodeResponse{Code: "auth-code", State: "abc"},
			cachedState: "abc",
		},
		{
			name:        "valid-encoded-state",
			resp:        &AuthCodeResponse{Code: "auth-code", State: "a%20b"},
			cachedState: "a b",
		},
		{
			name:        "state-mismatch",
			resp:        &AuthCodeResponse{Code: "auth-code", State: "abc"},
			cachedState: "xyz",
			wantErr:     true,
			wantIsErr:   ErrStateMismatch,
		},
		{
			name:        "missing-cached-state",
			resp:        &AuthCodeResponse{Code: "auth-code", State: "abc"},
			cachedState: "",
			wantErr:     true,
			wantIsErr:   ErrStateNotFound,
		},
		{
			name:        "nil-response",
			resp:        nil,
			cachedState: "abc",
			wantErr:     true,
			wantIsErr:   ErrNilParameter,
		},
		{
			name: "malformed-client-info",
			resp: &AuthCodeResponse{
				Code:       "auth-code",
				State:      "abc",
				ClientInfo: "****",
			},
			cachedState: "abc",
			wantErr:     true,
			wantIsErr:   ErrClientInfoDecoding,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			err := ValidateAuthCodeResponse(tt.resp, tt.cachedState)
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
		})
	}
}

func TestValidateAuthCodeResponse_StateCheckedFirst(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	// a mismatched state fails before the server error triple is classified
	resp := &AuthCodeResponse{
		State: "abc",
		Error: "interaction_required",
	}
	err := ValidateAuthCodeResponse(resp, "xyz")
	require.Error(err)
	assert.True(errors.Is(err, ErrStateMismatch))
	var interactionErr *InteractionRequiredError
	assert.False(errors.As(err, &interactionErr))
}

func TestValidateTokenResponse(t *testing.T) {
	t.Parallel()

	t.Run("clean-response-is-noop", func(t *testing.T) {
		require := require.New(t)
		accessToken := "token"
		require.NoError(ValidateTokenResponse(&TokenResponse{AccessToken: &accessToken}))
		// idempotent
		require.NoError(ValidateTokenResponse(&TokenResponse{AccessToken: &accessToken}))
	})

	t.Run("server-error", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		err := ValidateTokenResponse(&TokenResponse{
			Error:            "invalid_grant",
			ErrorDescription: "the grant is expired",
			CorrelationID:    "corr-1",
		})
		require.Error(err)
		var serverErr *ServerError
		require.True(errors.As(err, &serverErr))
		assert.Equal("invalid_grant", serverErr.Code)
		assert.Equal("the grant is expired", serverErr.Description)
		assert.Equal("corr-1", serverErr.CorrelationID)
		var interactionErr *InteractionRequiredError
		assert.False(errors.As(err, &interactionErr))
	})

	t.Run("interaction-required-code", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		err := ValidateTokenResponse(&TokenResponse{Error: "interaction_required"})
		require.Error(err)
		var interactionErr *InteractionRequiredError
		require.True(errors.As(err, &interactionErr))
		assert.Equal("interaction_required", interactionErr.Code)
		// interaction-required failures still match generic server error handling
		var serverErr *ServerError
		assert.True(errors.As(err, &serverErr))
	})

	t.Run("interaction-required-suberror", func(t *testing.T) {
		require := require.New(t)
		err := ValidateTokenResponse(&TokenResponse{
			Error:    "invalid_grant",
			SubError: "basic_action",
		})
		require.Error(err)
		var interactionErr *InteractionRequiredError
		require.True(errors.As(err, &interactionErr))
	})

	t.Run("nil-response", func(t *testing.T) {
		require := require.New(t)
		err := ValidateTokenResponse(nil)
		require.Error(err)
		require.True(errors.Is(err, ErrNilParameter))
	})
}
