package scheme

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-badge/badge/internal/credential"
	"github.com/go-badge/badge/internal/provider"
)

func newTokenScheme(t *testing.T, cfg TokenConfig, api ProviderAPI) *Token {
	t.Helper()
	token, err := NewToken(cfg, api, newOutcomeCache(t), nil)
	require.NoError(t, err)
	return token
}

func TestTokenAuthenticateSuccess(t *testing.T) {
	api := &fakeProvider{
		ownerStatus: http.StatusOK,
		owner: provider.TokenOwner{
			Token: "deadbeef",
			User:  provider.Identity{Login: "octocat"},
		},
	}
	token := newTokenScheme(t, TokenConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}, api)

	outcome := token.Authenticate(context.Background(), "token deadbeef")

	assert.True(t, outcome.Authenticated())
	assert.Equal(t, "octocat", outcome.Credentials.Username)
	assert.Equal(t, "deadbeef", api.ownerToken)
	// Token lookup authenticates as the client, not the end user.
	assert.Equal(
		t,
		credential.BasicAuthorization("client-id", "client-secret"),
		api.ownerAuth,
	)
}

func TestTokenAuthenticateInvalidToken(t *testing.T) {
	api := &fakeProvider{ownerStatus: http.StatusNotFound}
	token := newTokenScheme(t, TokenConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}, api)

	outcome := token.Authenticate(context.Background(), "token deadbeef")

	assert.False(t, outcome.Authenticated())
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, "invalid token", outcome.Failure.Message)
	assert.Empty(t, outcome.Credentials.Username)
	assert.Equal(t, "token", outcome.Challenge())
}

func TestTokenAuthenticateForbidden(t *testing.T) {
	api := &fakeProvider{ownerStatus: http.StatusOK}
	token := newTokenScheme(t, TokenConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}, api)

	for _, header := range []string{"", "Basic b2N0b2NhdDpzZWtyZXQ=", "token "} {
		outcome := token.Authenticate(context.Background(), header)

		assert.False(t, outcome.Authenticated())
		require.NotNil(t, outcome.Failure)
		assert.Equal(t, "forbidden", outcome.Failure.Message)
		assert.Equal(t, "token", outcome.Challenge())
	}

	assert.Equal(t, 0, api.ownerCalls)
}

func TestTokenOrganizationMember(t *testing.T) {
	api := &fakeProvider{
		ownerStatus:      http.StatusOK,
		owner:            provider.TokenOwner{User: provider.Identity{Login: "octocat"}},
		membershipStatus: http.StatusNoContent,
	}
	token := newTokenScheme(t, TokenConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Organization: "acme",
	}, api)

	outcome := token.Authenticate(context.Background(), "token deadbeef")

	assert.True(t, outcome.Authenticated())
	assert.Equal(t, "acme", outcome.Credentials.Organization)
	// The membership check presents the token as a basic credential with
	// the x-oauth-basic placeholder password.
	assert.Equal(
		t,
		credential.BasicAuthorization("deadbeef", "x-oauth-basic"),
		api.membershipAuth,
	)
	assert.Equal(t, "octocat", api.membershipUser)
}

func TestTokenOrganizationDenied(t *testing.T) {
	api := &fakeProvider{
		ownerStatus:      http.StatusOK,
		owner:            provider.TokenOwner{User: provider.Identity{Login: "octocat"}},
		membershipStatus: http.StatusNotFound,
	}
	token := newTokenScheme(t, TokenConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Organization: "acme",
		Realm:        "example",
	}, api)

	outcome := token.Authenticate(context.Background(), "token deadbeef")

	assert.False(t, outcome.Authenticated())
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, "not authorized", outcome.Failure.Message)
	assert.Equal(t, "octocat", outcome.Credentials.Username)
	assert.Equal(t, `token realm="example"`, outcome.Challenge())
}

func TestTokenCachesSettledOutcomes(t *testing.T) {
	api := &fakeProvider{
		ownerStatus: http.StatusOK,
		owner:       provider.TokenOwner{User: provider.Identity{Login: "octocat"}},
	}
	token := newTokenScheme(t, TokenConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}, api)

	first := token.Authenticate(context.Background(), "token deadbeef")
	second := token.Authenticate(context.Background(), "token deadbeef")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, api.ownerCalls)
}

func TestTokenTransportFaultNotCached(t *testing.T) {
	api := &fakeProvider{ownerErr: errors.New("connection refused")}
	token := newTokenScheme(t, TokenConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}, api)

	outcome := token.Authenticate(context.Background(), "token deadbeef")

	assert.False(t, outcome.Authenticated())
	require.NotNil(t, outcome.Failure)
	assert.True(t, outcome.Failure.Internal)
	assert.Empty(t, outcome.Challenge())

	token.Authenticate(context.Background(), "token deadbeef")
	assert.Equal(t, 2, api.ownerCalls)
}

func TestNewTokenInvalidConfig(t *testing.T) {
	_, err := NewToken(TokenConfig{}, &fakeProvider{}, newOutcomeCache(t), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "clientId is required")
	assert.Contains(t, err.Error(), "clientSecret is required")
}
