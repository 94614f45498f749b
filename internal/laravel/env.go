package laravel

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrNoTemplate is returned by SeedEnv when no template candidate
// exists. Callers treat it as a recoverable condition: Laravel can boot
// without a .env, just not usefully.
var ErrNoTemplate = errors.New("no .env template found")

// SeedEnv creates envPath from the first existing template candidate.
//
// Returns the template that was used, or "" with a nil error when
// envPath already exists (seeding is idempotent, the existing file is
// never touched). Returns ErrNoTemplate when no candidate exists.
func SeedEnv(envPath string, candidates ...string) (string, error) {
	if _, err := os.Stat(envPath); err == nil {
		return "", nil
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		// 0600: the seeded file will hold APP_KEY and DB credentials.
		if err := os.WriteFile(envPath, data, 0o600); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", envPath, err)
		}
		return candidate, nil
	}
	return "", ErrNoTemplate
}

// ReadEnv parses the environment file at path into a map.
func ReadEnv(path string) (map[string]string, error) {
	return godotenv.Read(path)
}

// AppURL derives the application access URL from a parsed environment.
// APP_URL wins when set; otherwise a localhost URL is built from
// APP_PORT (default 8000). The URL is derived rather than hardcoded so
// the final hints stay truthful when the operator edits the stack.
func AppURL(env map[string]string) string {
	if url := env["APP_URL"]; url != "" {
		return url
	}

	port := 8000
	if p, err := strconv.Atoi(env["APP_PORT"]); err == nil && p > 0 {
		port = p
	}
	return fmt.Sprintf("http://localhost:%d", port)
}
