package gateway

import "os"

// Config is a configuration for the gateway application
type Config struct {
	HTTPAddr string
	// BankURL is the base URL of the acquiring bank backend.
	BankURL string
	// LedgerBackend selects payment storage: mem, pg or redis.
	LedgerBackend string
	// PostgresDSN is required when LedgerBackend is pg.
	PostgresDSN string
	// RedisAddr is required when LedgerBackend is redis.
	RedisAddr string
	// ExpiryTZ is an IANA timezone name for expiry comparisons.
	ExpiryTZ string
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:      "localhost:8090",
		BankURL:       "http://localhost:8080",
		LedgerBackend: "mem",
	}
}

// ConfigFromEnv builds a Config from the environment, falling back to
// defaults for anything unset.
func ConfigFromEnv() *Config {
	def := DefaultConfig()
	return &Config{
		HTTPAddr:      getenv("HTTP_ADDR", def.HTTPAddr),
		BankURL:       getenv("BANK_URL", def.BankURL),
		LedgerBackend: getenv("LEDGER_BACKEND", def.LedgerBackend),
		PostgresDSN:   getenv("DB_DSN", ""),
		RedisAddr:     getenv("REDIS_ADDR", ""),
		ExpiryTZ:      getenv("EXPIRY_TZ", ""),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
