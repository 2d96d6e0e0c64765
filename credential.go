package ycd

import (
	"errors"
	"strings"
)

//////////////////////////////////////////////////

const DefaultBaseURL = "https://api.youtubecommentsdownloader.com"

// Credential is what the host's credential store hands to the client.
type Credential struct {
	APIKey  string `json:"apiKey" mapstructure:"api-key"`
	BaseURL string `json:"baseUrl" mapstructure:"base-url"`

	// Skip TLS certificate verification (self-signed test deployments).
	IgnoreSSLIssues bool `json:"ignoreSslIssues" mapstructure:"ignore-ssl-issues"`
}

var (
	NilCredential  = errors.New("credential is nil")
	MissingAPIKey  = errors.New("API key is empty")
	InvalidBaseURL = errors.New("invalid API base URL")
)

func (c *Credential) Validate() error {
	if c == nil {
		return NilCredential
	}

	if strings.TrimSpace(c.APIKey) == "" {
		return MissingAPIKey
	}

	if c.BaseURL != "" && !isValidHTTPURL(c.BaseURL) {
		return InvalidBaseURL
	}

	return nil
}

func (c Credential) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}

	return c.BaseURL
}
