package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Env returns the APP_ENV deployment name, defaulting to local.
func Env() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return "local"
}

// PathForEnv returns the YAML config path for a deployment name.
func PathForEnv(env string) string {
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

// LoadDotEnv loads .env overrides before the YAML config is read.
// .env.local wins over .env, and OS environment variables always win
// because godotenv.Load never overwrites a variable that is already
// set. Returns the files actually loaded.
func LoadDotEnv() []string {
	var loaded []string
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		loaded = append(loaded, f)
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
