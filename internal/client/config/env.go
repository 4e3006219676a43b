package config

import "github.com/caarlos0/env/v11"

const envPrefix = "GOPHAUTH_CLIENT_"

// parseEnv overlays GOPHAUTH_CLIENT_* variables; malformed values panic.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		panic(err)
	}
}
