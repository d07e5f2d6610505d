package config

import "errors"

// Environment is the deployment environment the server runs in. Bypass
// authentication and the fallback session secret are only available outside
// of production.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// fallbackSessionSecret matches the development default the admin UI was
// originally deployed with. It must never be used to sign tokens in
// production.
const fallbackSessionSecret = "default-secret-change-me"

// ErrMissingSessionSecret is returned when no session secret is configured
// and the environment is production.
var ErrMissingSessionSecret = errors.New("session secret is required in production")

// Config carries the security-relevant server configuration. It is built
// once at startup from flags/env and passed explicitly; nothing in this
// package reads ambient process state.
type Config struct {
	// Environment selects production vs development behaviour.
	Environment Environment

	// SessionSecret signs admin session tokens. Optional outside production.
	SessionSecret string

	// AdminPassword is the single admin credential. Login is rejected with a
	// misconfiguration error when unset.
	AdminPassword string
}

// IsProduction reports whether the config targets production.
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// ResolveSecret returns the secret used to sign and verify session tokens.
// In production an operator-supplied secret is mandatory; outside production
// a fixed fallback keeps local development working without configuration.
func ResolveSecret(cfg Config) ([]byte, error) {
	if cfg.SessionSecret != "" {
		return []byte(cfg.SessionSecret), nil
	}
	if cfg.IsProduction() {
		return nil, ErrMissingSessionSecret
	}
	return []byte(fallbackSessionSecret), nil
}
