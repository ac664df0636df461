package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for the server
	Addr string
	// Port is the binding port for the server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where soleshop stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Secret signs session tokens
	Secret string
	// Version is the current version of the server
	Version string

	// AI configuration
	AIEnabled   bool   // SOLESHOP_AI_ENABLED
	AIBaseURL   string // SOLESHOP_AI_BASE_URL (default: https://api.openai.com/v1)
	AIAPIKey    string // SOLESHOP_AI_API_KEY
	AIChatModel string // SOLESHOP_AI_CHAT_MODEL (default: gpt-4o-mini)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from SOLESHOP_* environment variables.
func (p *Profile) FromEnv() {
	p.AIEnabled = os.Getenv("SOLESHOP_AI_ENABLED") == "true"
	p.AIBaseURL = getEnvOrDefault("SOLESHOP_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIAPIKey = os.Getenv("SOLESHOP_AI_API_KEY")
	p.AIChatModel = getEnvOrDefault("SOLESHOP_AI_CHAT_MODEL", "gpt-4o-mini")

	if p.Secret == "" {
		p.Secret = os.Getenv("SOLESHOP_SECRET")
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if a relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case the user supplies one.
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("soleshop_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for the postgres driver")
	}

	if p.Secret == "" {
		if p.Mode == "prod" {
			return errors.New("secret is required in prod mode, set SOLESHOP_SECRET")
		}
		p.Secret = "soleshop-dev-secret"
	}

	return nil
}
