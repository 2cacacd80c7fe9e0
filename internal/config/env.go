package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// envFiles are loaded in order; godotenv never overrides a variable that is already set,
// so the process environment wins over .env.local, which wins over .env.
var envFiles = []string{".env.local", ".env"}

// loadEnvFiles loads the env files that exist next to the configuration file.
func loadEnvFiles(dir string) error {
	for _, name := range envFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "load environment file").
				WithContext("path", p).Build()
		}
	}
	return nil
}
