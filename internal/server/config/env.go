package config

import "github.com/caarlos0/env/v11"

const envPrefix = "GOPHAUTH_"

// parseEnv overlays GOPHAUTH_* variables. Unset variables leave the current
// value alone; malformed ones panic like the other stages.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		panic(err)
	}
}
