package auth

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffee-env/internal/environment"
)

func TestNew_RefusesInvalidAuth(t *testing.T) {
	env := environment.Development()
	env.Auth.ClientID = ""
	env.Auth.CallbackURL = "localhost:8100"

	_, err := New(env)
	require.Error(t, err)
	assert.True(t, errors.Is(err, environment.ErrMissingField))
	assert.True(t, errors.Is(err, environment.ErrInvalidURL))
	assert.Contains(t, err.Error(), "auth.clientId")
	assert.Contains(t, err.Error(), "auth.callbackUrl")
}

func TestNew_IgnoresAPIServerURL(t *testing.T) {
	env := environment.Development()
	env.APIServerURL = ""
	_, err := New(env)
	assert.NoError(t, err)
}

func TestIssuer(t *testing.T) {
	testCases := []struct {
		description string
		domain      string
		expect      string
	}{
		{description: "bare tenant", domain: "dev-m-guru", expect: "https://dev-m-guru.auth0.com/"},
		{description: "regional host", domain: "dev-m-guru.eu.auth0.com", expect: "https://dev-m-guru.eu.auth0.com/"},
		{description: "scheme and slash", domain: "https://login.example.com/", expect: "https://login.example.com/"},
		{description: "host with port", domain: "localhost:8080", expect: "https://localhost:8080/"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			env := environment.Development()
			env.Auth.ProviderDomain = tc.domain
			c, err := New(env)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, c.Issuer())
		})
	}
}

func TestNew_RefusesMalformedProviderDomain(t *testing.T) {
	for _, domain := range []string{"tenant/x", "tenant.example.com/path", "user@tenant.example.com", "tenant?x=1", "host:", "-tenant", "ten ant"} {
		env := environment.Development()
		env.Auth.ProviderDomain = domain
		_, err := New(env)
		require.Error(t, err, domain)
		assert.True(t, errors.Is(err, environment.ErrInvalidURL), domain)
	}
}

func TestLoginURL(t *testing.T) {
	c, err := New(environment.Development())
	require.NoError(t, err)

	u, err := url.Parse(c.LoginURL())
	require.NoError(t, err)
	assert.Equal(t, "dev-m-guru.auth0.com", u.Host)
	assert.Equal(t, "/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, "http://localhost:5000", q.Get("audience"))
	assert.Equal(t, "token", q.Get("response_type"))
	assert.Equal(t, "6z07X9iEwo5w73wU1YCurK0S1Ni2L7iR", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8100", q.Get("redirect_uri"))
}

func TestLogoutURL(t *testing.T) {
	c, err := New(environment.Development())
	require.NoError(t, err)

	u, err := url.Parse(c.LogoutURL())
	require.NoError(t, err)
	assert.Equal(t, "/v2/logout", u.Path)
	assert.Equal(t, "6z07X9iEwo5w73wU1YCurK0S1Ni2L7iR", u.Query().Get("client_id"))
	assert.Equal(t, "http://localhost:8100", u.Query().Get("returnTo"))
}
