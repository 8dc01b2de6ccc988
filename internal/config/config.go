// Package config loads runtime settings that must not live in source code.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// EnvAPIKey names the variable holding the API key.
	EnvAPIKey = "API_KEY"

	// MissingKeyPlaceholder is returned by Secrets.APIKey when EnvAPIKey is unset or blank.
	MissingKeyPlaceholder = "NO_KEY_FOUND"
)

// Secrets holds values read once at startup.
type Secrets struct {
	apiKey     string
	configured bool
}

// LoadDotEnv reads .env files into the process environment.
// Variables already present in the environment win. A missing file is not an error.
func LoadDotEnv(files ...string) {
	godotenv.Load(files...)
}

// LoadSecrets reads secrets from the process environment.
func LoadSecrets() Secrets {
	return secretsFrom(os.LookupEnv)
}

func secretsFrom(lookup func(string) (string, bool)) Secrets {
	v, ok := lookup(EnvAPIKey)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return Secrets{apiKey: MissingKeyPlaceholder}
	}
	return Secrets{apiKey: v, configured: true}
}

// APIKey returns the configured key or MissingKeyPlaceholder.
func (s Secrets) APIKey() string {
	if s.apiKey == "" {
		return MissingKeyPlaceholder
	}
	return s.apiKey
}

func (s Secrets) Configured() bool {
	return s.configured
}
