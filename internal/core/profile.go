package core

import (
	"fmt"
	"strings"
)

// ProfileDefaults holds environment-specific default configuration values.
// Profiles provide defaults only; explicit settings always override.
type ProfileDefaults struct {
	Name               string
	LogLevel           string
	LogFormat          string
	ReadOnly           bool
	HTTPTimeoutSeconds int
}

var profiles = map[string]*ProfileDefaults{
	"dev": {
		Name:               "dev",
		LogLevel:           "debug",
		LogFormat:          "text",
		ReadOnly:           false,
		HTTPTimeoutSeconds: 30,
	},
	"prod": {
		Name:               "prod",
		LogLevel:           "info",
		LogFormat:          "json",
		ReadOnly:           false,
		HTTPTimeoutSeconds: 30,
	},
	"readonly": {
		Name:               "readonly",
		LogLevel:           "info",
		LogFormat:          "json",
		ReadOnly:           true,
		HTTPTimeoutSeconds: 30,
	},
}

// LoadProfile returns profile defaults for the given name.
// Empty name defaults to "dev". Unknown names return an error.
func LoadProfile(name string) (*ProfileDefaults, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		name = "dev"
	}
	p, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (valid: dev, prod, readonly)", name)
	}
	copy := *p
	return &copy, nil
}
