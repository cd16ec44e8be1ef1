// Package manifest loads, validates, and serves the extension manifest:
// the JSON descriptor telling the host platform where to load the
// extension's UI from and how to present it.
package manifest

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the extension descriptor consumed by the host platform.
// Title, URL, Description, and Enabled are required; the platform
// rejects manifests not served over HTTPS.
type Manifest struct {
	Title         string `json:"title" yaml:"title"`
	URL           string `json:"url" yaml:"url"`
	Description   string `json:"description" yaml:"description"`
	Enabled       *bool  `json:"enabled" yaml:"enabled"`
	Icon          string `json:"icon,omitempty" yaml:"icon,omitempty"`
	InfoURL       string `json:"infoUrl,omitempty" yaml:"infoUrl,omitempty"`
	ConfigCommand string `json:"configCommand,omitempty" yaml:"configCommand,omitempty"`
}

// ConfigError reports a malformed manifest.
type ConfigError struct {
	// Field is the manifest field that is invalid.
	Field string

	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("manifest field %q: %s", e.Field, e.Message)
}

// IsEnabled reports whether the manifest marks the extension enabled.
func (m *Manifest) IsEnabled() bool {
	return m.Enabled != nil && *m.Enabled
}

// Validate checks the required fields and the HTTPS constraint.
// The first violation is returned as a ConfigError.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return &ConfigError{Field: "title", Message: "required"}
	}
	if strings.TrimSpace(m.Description) == "" {
		return &ConfigError{Field: "description", Message: "required"}
	}
	if m.Enabled == nil {
		return &ConfigError{Field: "enabled", Message: "required"}
	}

	if strings.TrimSpace(m.URL) == "" {
		return &ConfigError{Field: "url", Message: "required"}
	}
	u, err := url.Parse(m.URL)
	if err != nil {
		return &ConfigError{Field: "url", Message: fmt.Sprintf("not a valid URL: %v", err)}
	}
	if u.Scheme != "https" {
		return &ConfigError{Field: "url", Message: "must use https"}
	}
	if u.Host == "" {
		return &ConfigError{Field: "url", Message: "must be absolute"}
	}

	if m.InfoURL != "" {
		iu, err := url.Parse(m.InfoURL)
		if err != nil || (iu.Scheme != "http" && iu.Scheme != "https") || iu.Host == "" {
			return &ConfigError{Field: "infoUrl", Message: "must be an absolute http(s) URL"}
		}
	}

	return nil
}

// Load reads and validates a manifest file. JSON documents parse as a
// YAML subset, so both .json and .yaml manifests work.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Field: "file", Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &ConfigError{Field: "file", Message: fmt.Sprintf("parsing %s: %v", path, err)}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
