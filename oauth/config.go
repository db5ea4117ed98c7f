// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jballar/msalgo/authority"
)

// Configuration assembles everything needed to construct the engine's
// collaborators from a config file: the client identity, its authority, and
// the optional client-identification metadata attached to token requests.
type Configuration struct {
	// ClientID is the application (client) id registered with the authority.
	ClientID string `yaml:"client_id"`

	// Authority is the authority URL, e.g.
	// https://login.example.com/tenant-id
	Authority string `yaml:"authority"`

	// AuthorityType is one of AAD, ADFS or B2C. Defaults to AAD.
	AuthorityType string `yaml:"authority_type"`

	// RedirectURI is the redirect the authorization code flow returns to.
	RedirectURI string `yaml:"redirect_uri"`

	// TrustedHosts seeds the process-wide trusted host registry.
	TrustedHosts []string `yaml:"trusted_hosts"`

	// Telemetry toggles the client-identification headers individually; an
	// empty value leaves its header off the wire.
	Telemetry struct {
		SKU     string `yaml:"sku"`
		Version string `yaml:"version"`
		OS      string `yaml:"os"`
		CPU     string `yaml:"cpu"`
	} `yaml:"telemetry"`
}

// LoadConfiguration reads and validates a YAML configuration file.
func LoadConfiguration(path string) (*Configuration, error) {
	const op = "oauth.LoadConfiguration"
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read config file %s: %w", op, path, err)
	}
	var config Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%s: unable to parse config file %s: %w", op, path, err)
	}
	if config.AuthorityType == "" {
		config.AuthorityType = string(authority.AAD)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &config, nil
}

// Validate checks the configuration for the fields the engine cannot run
// without.
func (c *Configuration) Validate() error {
	const op = "oauth.Configuration.Validate"
	if c == nil {
		return fmt.Errorf("%s: configuration is nil: %w", op, ErrNilParameter)
	}
	if c.ClientID == "" {
		return fmt.Errorf("%s: client id is empty: %w", op, ErrInvalidParameter)
	}
	if c.Authority == "" {
		return fmt.Errorf("%s: authority is empty: %w", op, ErrInvalidParameter)
	}
	switch authority.Type(c.AuthorityType) {
	case authority.AAD, authority.ADFS, authority.B2C:
	default:
		return fmt.Errorf("%s: unsupported authority type %q: %w", op, c.AuthorityType, ErrInvalidParameter)
	}
	return nil
}

// NewAuthority constructs the configured authority.
func (c *Configuration) NewAuthority(opt ...authority.Option) (*authority.Authority, error) {
	return authority.New(c.Authority, authority.Type(c.AuthorityType), opt...)
}

// ClientHeaders renders the configured client-identification headers,
// omitting the ones without a value.
func (c *Configuration) ClientHeaders() map[string]string {
	headers := map[string]string{}
	if c.Telemetry.SKU != "" {
		headers[HeaderClientSKU] = c.Telemetry.SKU
	}
	if c.Telemetry.Version != "" {
		headers[HeaderClientVersion] = c.Telemetry.Version
	}
	if c.Telemetry.OS != "" {
		headers[HeaderClientOS] = c.Telemetry.OS
	}
	if c.Telemetry.CPU != "" {
		headers[HeaderClientCPU] = c.Telemetry.CPU
	}
	return headers
}
