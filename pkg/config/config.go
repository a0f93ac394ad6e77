// Package config loads the YAML binding configuration consumed by the CLI
// and the convenience API.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Header is one ordered default header pair merged into every request.
type Header struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Config is the complete binding configuration.
type Config struct {
	// Spec is the OpenAPI document path or HTTP(S) URL.
	Spec string `yaml:"spec"`
	// BaseURL overrides the base address derived from the document.
	BaseURL string `yaml:"baseURL"`
	// Headers are default headers applied to every request, in order.
	Headers []Header `yaml:"headers"`
	// IncludeTags and ExcludeTags are regex patterns selecting which
	// operation groups are compiled.
	IncludeTags []string `yaml:"includeTags"`
	ExcludeTags []string `yaml:"excludeTags"`
}

// Load reads and validates a configuration file. A relative spec path is
// absolutized against the working directory; spec URLs are kept as-is.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Spec == "" {
		return nil, errors.New("config.spec is required")
	}
	for i, h := range cfg.Headers {
		if h.Name == "" {
			return nil, fmt.Errorf("headers[%d] missing name", i)
		}
	}
	if u, err := url.Parse(cfg.Spec); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		// keep URLs as-is
	} else if !filepath.IsAbs(cfg.Spec) {
		abs, _ := filepath.Abs(cfg.Spec)
		cfg.Spec = abs
	}
	return &cfg, nil
}
