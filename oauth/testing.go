// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// TestIDToken creates a signed (HS256, throwaway key) id_token carrying the
// given claims, suitable for the unverified decode path under test.
func TestIDToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	mapClaims := jwt.MapClaims{
		"iss": "https://login.microsoftonline.com/tenant/v2.0",
		"aud": "test-client",
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	for k, v := range claims {
		mapClaims[k] = v
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims).SignedString([]byte("test-signing-secret"))
	require.NoError(t, err)
	return raw
}

// TestClientInfo encodes a client_info value for the given uid/utid pair.
func TestClientInfo(t *testing.T, uid, utid string) string {
	t.Helper()
	data, err := json.Marshal(ClientInfo{UID: uid, UTID: utid})
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(data)
}
