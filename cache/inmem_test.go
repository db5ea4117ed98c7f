// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() Record {
	return Record{
		Account: &Account{
			HomeAccountID: "uid.utid",
			Environment:   "login.microsoftonline.com",
			Realm:         "contoso",
			Username:      "user@contoso.com",
		},
		IDToken: &IDToken{
			HomeAccountID:  "uid.utid",
			Environment:    "login.microsoftonline.com",
			CredentialType: CredentialTypeIDToken,
			ClientID:       "client-1",
			Realm:          "contoso",
			Secret:         "id-token-secret",
		},
		AccessToken: &AccessToken{
			HomeAccountID:  "uid.utid",
			Environment:    "login.microsoftonline.com",
			CredentialType: CredentialTypeAccessToken,
			ClientID:       "client-1",
			Realm:          "contoso",
			Target:         "User.Read openid",
			Secret:         "access-token-secret",
			TokenType:      "Bearer",
			ExpiresOn:      1000,
		},
		RefreshToken: &RefreshToken{
			HomeAccountID:  "uid.utid",
			Environment:    "login.microsoftonline.com",
			CredentialType: CredentialTypeRefreshToken,
			ClientID:       "client-1",
			Secret:         "refresh-token-secret",
			FamilyID:       "1",
		},
		AppMetadata: &AppMetadata{
			ClientID:    "client-1",
			Environment: "login.microsoftonline.com",
			FamilyID:    "1",
		},
	}
}

func TestInMemoryStorage_WriteRecordReadBack(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	storage := NewInMemoryStorage()

	require.NoError(storage.WriteRecord(ctx, testRecord()))

	account, err := storage.ReadAccount(ctx, "uid.utid", "login.microsoftonline.com", "contoso")
	require.NoError(err)
	require.NotNil(account)
	assert.Equal("user@contoso.com", account.Username)

	idToken, err := storage.ReadIDToken(ctx, "uid.utid", "login.microsoftonline.com", "client-1", "contoso")
	require.NoError(err)
	require.NotNil(idToken)
	assert.Equal("id-token-secret", idToken.Secret)

	accessToken, err := storage.ReadAccessToken(ctx, "uid.utid", "login.microsoftonline.com", "client-1", "contoso", []string{"user.read"})
	require.NoError(err)
	require.NotNil(accessToken)
	assert.Equal("access-token-secret", accessToken.Secret)

	// a scope the target does not cover misses
	missed, err := storage.ReadAccessToken(ctx, "uid.utid", "login.microsoftonline.com", "client-1", "contoso", []string{"Mail.Send"})
	require.NoError(err)
	assert.Nil(missed)

	refreshToken, err := storage.ReadRefreshToken(ctx, "uid.utid", "login.microsoftonline.com", "client-1", "1")
	require.NoError(err)
	require.NotNil(refreshToken)
	assert.Equal("refresh-token-secret", refreshToken.Secret)

	metadata, err := storage.ReadAppMetadata(ctx, "login.microsoftonline.com", "client-1")
	require.NoError(err)
	require.NotNil(metadata)
	assert.Equal("1", metadata.FamilyID)
}

func TestInMemoryStorage_ReadAccount_Missing(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	storage := NewInMemoryStorage()
	account, err := storage.ReadAccount(context.Background(), "nope", "env", "realm")
	require.NoError(err)
	assert.Nil(account)
}

func TestInMemoryStorage_DeleteAccount(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	storage := NewInMemoryStorage()
	require.NoError(storage.WriteRecord(ctx, testRecord()))

	require.NoError(storage.DeleteAccount(ctx, "uid.utid", "login.microsoftonline.com", "contoso"))
	account, err := storage.ReadAccount(ctx, "uid.utid", "login.microsoftonline.com", "contoso")
	require.NoError(err)
	assert.Nil(account)

	// deleting again is not an error
	require.NoError(storage.DeleteAccount(ctx, "uid.utid", "login.microsoftonline.com", "contoso"))
}

func TestInMemoryStorage_SerializeRoundTrip(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()
	storage := NewInMemoryStorage()
	require.NoError(storage.WriteRecord(ctx, testRecord()))

	data, err := storage.Serialize()
	require.NoError(err)
	assert.Contains(string(data), "AccessToken")
	assert.Contains(string(data), "Account")

	restored := NewInMemoryStorage()
	require.NoError(restored.Deserialize(data))

	account, err := restored.ReadAccount(ctx, "uid.utid", "login.microsoftonline.com", "contoso")
	require.NoError(err)
	require.NotNil(account)
	assert.Equal("user@contoso.com", account.Username)

	accessToken, err := restored.ReadAccessToken(ctx, "uid.utid", "login.microsoftonline.com", "client-1", "contoso", nil)
	require.NoError(err)
	require.NotNil(accessToken)
	assert.Equal(int64(1000), accessToken.ExpiresOn)
}

func TestInMemoryStorage_Deserialize_Invalid(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	storage := NewInMemoryStorage()
	require.Error(storage.Deserialize([]byte("not json")))
}
