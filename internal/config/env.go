package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/docgen/internal/logfields"
)

// envFiles are loaded in order. Variables already set are never overwritten,
// so .env.local wins over .env and the process environment wins over both.
var envFiles = []string{".env.local", ".env"}

// loadEnvFiles loads .env files found in dir.
func loadEnvFiles(dir string) error {
	for _, name := range envFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		slog.Debug("Loaded environment file", logfields.Path(p))
	}
	return nil
}
