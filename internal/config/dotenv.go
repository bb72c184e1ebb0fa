package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// DefaultEnvFiles are read in order; earlier files win.
var DefaultEnvFiles = []string{".env.local", ".env"}

// LoadDotEnv exports variables from the given .env files into the process
// environment. Variables already set are left untouched and missing files
// are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = DefaultEnvFiles
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}

	return nil
}
