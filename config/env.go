package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env and then .env.<APP_ENV> into the process environment.
// Missing files are not an error; values already exported win over .env but
// the per-environment file overrides both.
func LoadEnv() error {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		return nil
	}

	envFile := ".env." + appEnv
	if err := godotenv.Overload(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	return nil
}
