package environment

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/multierr"
)

var (
	ErrMissingField = errors.New("missing field")
	ErrInvalidURL   = errors.New("not an absolute url")
)

// Auth carries the identity provider parameters.
type Auth struct {
	ProviderDomain string `json:"providerDomain" yaml:"providerDomain"`
	Audience       string `json:"audience" yaml:"audience"`
	ClientID       string `json:"clientId" yaml:"clientId"`
	CallbackURL    string `json:"callbackUrl" yaml:"callbackUrl"`
}

// Environment is the record exposed to the front-end. It holds only value
// types so a copy never aliases the holder's state.
type Environment struct {
	Production   bool   `json:"production" yaml:"production"`
	APIServerURL string `json:"apiServerUrl" yaml:"apiServerUrl"`
	Auth         Auth   `json:"auth" yaml:"auth"`
}

type Holder struct {
	env Environment
}

func New(env Environment) *Holder {
	return &Holder{env: env}
}

// Environment returns a copy of the held value.
func (h *Holder) Environment() Environment {
	return h.env
}

// Validate reports every empty field and every URL field that does not parse
// as an absolute URL. The holder never calls it; consumers do at their own
// initialization.
func (e Environment) Validate() error {
	var err error
	err = multierr.Append(err, CheckURL("apiServerUrl", e.APIServerURL))
	err = multierr.Append(err, CheckRequired("auth.providerDomain", e.Auth.ProviderDomain))
	err = multierr.Append(err, CheckURL("auth.audience", e.Auth.Audience))
	err = multierr.Append(err, CheckRequired("auth.clientId", e.Auth.ClientID))
	err = multierr.Append(err, CheckURL("auth.callbackUrl", e.Auth.CallbackURL))
	return err
}

func CheckRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s: %w", field, ErrMissingField)
	}
	return nil
}

func CheckURL(field, value string) error {
	if err := CheckRequired(field, value); err != nil {
		return err
	}
	u, err := url.Parse(value)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%s %q: %w", field, value, ErrInvalidURL)
	}
	return nil
}
