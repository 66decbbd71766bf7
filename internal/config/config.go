package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP Server
	Port string

	// Transaction storage
	DocstoreBackend string
	SQLiteDBPath    string

	// Identity
	IdentityBackend      string
	GoogleAPIKey         string
	IdentityEmulatorHost string

	// AMQP (optional; empty URL disables event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	AuditDBPath string

	// Report export
	ExportDir string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DocstoreBackend: getEnv("DOCSTORE_BACKEND", "memory"),
		SQLiteDBPath:    getEnv("SQLITE_DB_PATH", "./data/catatuang.db"),

		IdentityBackend:      getEnv("IDENTITY_BACKEND", "memory"),
		GoogleAPIKey:         getEnv("GOOGLE_API_KEY", ""),
		IdentityEmulatorHost: getEnv("IDENTITY_EMULATOR_HOST", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "catatuang"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transaction_events"),

		AuditDBPath: getEnv("AUDIT_DB_PATH", "./data/audit.db"),

		ExportDir: getEnv("EXPORT_DIR", "./exports"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DocstoreBackend {
	case "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if err := ensureDir(filepath.Dir(c.SQLiteDBPath)); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create SQLite database directory: %v", err))
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid docstore backend '%s': must be one of [memory sqlite]", c.DocstoreBackend))
	}

	switch c.IdentityBackend {
	case "memory":
	case "google":
		if c.GoogleAPIKey == "" {
			errors = append(errors, "GOOGLE_API_KEY is required when using google identity backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid identity backend '%s': must be one of [memory google]", c.IdentityBackend))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.AuditDBPath == "" {
		errors = append(errors, "audit database path cannot be empty")
	}

	if c.ExportDir != "" {
		if err := ensureDir(c.ExportDir); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create export directory: %v", err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func ensureDir(dir string) error {
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
