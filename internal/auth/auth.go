// Package auth derives identity provider URLs from the environment's auth
// settings. It does not talk to the provider.
package auth

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/multierr"

	"coffee-env/internal/environment"
)

// tenantSuffix completes a bare tenant name such as "dev-m-guru".
const tenantSuffix = ".auth0.com"

var dnsLabel = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?$`)

type Client struct {
	host        string
	audience    string
	clientID    string
	callbackURL string
}

// New refuses to build a client unless every auth field is usable.
func New(env environment.Environment) (*Client, error) {
	a := env.Auth
	var err error
	err = multierr.Append(err, environment.CheckRequired("auth.providerDomain", a.ProviderDomain))
	err = multierr.Append(err, environment.CheckURL("auth.audience", a.Audience))
	err = multierr.Append(err, environment.CheckRequired("auth.clientId", a.ClientID))
	err = multierr.Append(err, environment.CheckURL("auth.callbackUrl", a.CallbackURL))
	if err != nil {
		return nil, fmt.Errorf("auth client: %w", err)
	}
	host, err := providerHost(a.ProviderDomain)
	if err != nil {
		return nil, fmt.Errorf("auth client: %w", err)
	}
	return &Client{
		host:        host,
		audience:    a.Audience,
		clientID:    a.ClientID,
		callbackURL: a.CallbackURL,
	}, nil
}

// providerHost accepts a bare tenant name or a host[:port], optionally with a
// scheme and trailing slash. Anything carrying a path, query or user info is
// rejected.
func providerHost(domain string) (string, error) {
	d := strings.TrimSpace(domain)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimSuffix(d, "/")
	if dnsLabel.MatchString(d) {
		return d + tenantSuffix, nil
	}
	u, err := url.Parse("https://" + d)
	if err != nil || u.Host != d || u.Hostname() == "" || u.User != nil {
		return "", fmt.Errorf("auth.providerDomain %q: %w", domain, environment.ErrInvalidURL)
	}
	if u.Port() == "" && strings.HasSuffix(d, ":") {
		return "", fmt.Errorf("auth.providerDomain %q: %w", domain, environment.ErrInvalidURL)
	}
	for _, label := range strings.Split(u.Hostname(), ".") {
		if !dnsLabel.MatchString(label) {
			return "", fmt.Errorf("auth.providerDomain %q: %w", domain, environment.ErrInvalidURL)
		}
	}
	return d, nil
}

func (c *Client) Issuer() string {
	return "https://" + c.host + "/"
}

// LoginURL is the implicit-flow authorize URL the app redirects to.
func (c *Client) LoginURL() string {
	q := url.Values{}
	q.Set("audience", c.audience)
	q.Set("response_type", "token")
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.callbackURL)
	return c.Issuer() + "authorize?" + q.Encode()
}

func (c *Client) LogoutURL() string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("returnTo", c.callbackURL)
	return c.Issuer() + "v2/logout?" + q.Encode()
}
