package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	pkgRetry "github.com/rsmnext/assistant-backend/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Credentials file (credentials.users.<name> -> {name, password})
	CredentialsPath string `env:"CREDENTIALS_FILE" envDefault:"credentials.yaml"`

	// Session configuration
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"8h"`
	MaxContextMessages int           `env:"MAX_CONTEXT_MESSAGES" envDefault:"12"`
	MaxHistoryPairs    int           `env:"MAX_HISTORY_PAIRS" envDefault:"6"`

	// External service configurations
	LLMCfg       LLMConfig       `envPrefix:"LLM_"`
	EmbeddingCfg EmbeddingConfig `envPrefix:"EMBEDDING_"`
	VIESCfg      VIESConfig      `envPrefix:"VIES_"`

	// Audit pipeline defaults (operator-overridable per run)
	AuditCfg AuditConfig `envPrefix:"AUDIT_"`

	// Embed targets for the UI shell
	EmbedCfg EmbedConfig `envPrefix:"EMBED_"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// EnableMocks swaps the external connectors for canned in-process
	// implementations (local development without live endpoints).
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// LLMConfig points at the hosted chat-completion endpoint. Endpoint and key
// may be empty at startup; their absence is an error at call time only.
type LLMConfig struct {
	Endpoint string        `env:"ENDPOINT"`
	APIKey   string        `env:"API_KEY"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"60s"`

	// DisableDefaultFilter turns off placeholder-response rejection.
	DisableDefaultFilter bool `env:"DISABLE_DEFAULT_FILTER" envDefault:"false"`
	// SignatureStrategy selects the placeholder heuristic: "any" or "combo".
	SignatureStrategy string `env:"SIGNATURE_STRATEGY" envDefault:"any"`
}

// EmbeddingConfig points at the hosted embedding endpoint. The key falls
// back to the LLM key when unset.
type EmbeddingConfig struct {
	Endpoint string        `env:"ENDPOINT"`
	APIKey   string        `env:"API_KEY"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"90s"`
}

// VIESConfig configures the EU VAT registry client.
type VIESConfig struct {
	Endpoint         string               `env:"ENDPOINT" envDefault:"https://ec.europa.eu/taxation_customs/vies/services/checkVatService"`
	RequesterCountry string               `env:"REQUESTER_COUNTRY" envDefault:"NL"`
	RequesterVAT     string               `env:"REQUESTER_VAT" envDefault:"NL009444452B01"`
	Timeout          time.Duration        `env:"TIMEOUT" envDefault:"30s"`
	Retry            pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// AuditConfig holds pipeline defaults. Overlap must stay below chunk size;
// per-run overrides are validated by the usecase.
type AuditConfig struct {
	ChunkSize    int `env:"CHUNK_SIZE" envDefault:"200"`
	ChunkOverlap int `env:"CHUNK_OVERLAP" envDefault:"50"`
	TopK         int `env:"TOP_K" envDefault:"5"`
	// PageMargin is the per-page crop in PDF points applied on every side
	// to drop headers and footers before chunking.
	PageMargin float64 `env:"PAGE_MARGIN" envDefault:"50"`
}

// EmbedConfig lists the iframe targets served to the UI shell.
type EmbedConfig struct {
	DashboardURL   string `env:"DASHBOARD_URL"`
	IntakeFormURL  string `env:"INTAKE_FORM_URL"`
	ValueChainURL  string `env:"VALUE_CHAIN_URL"`
	SupportContact string `env:"SUPPORT_CONTACT"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"26214400"`  // 25 MiB
	MaxTotalSize  int64 `env:"MAX_TOTAL_SIZE" envDefault:"104857600"` // 100 MiB
	MaxFileCount  int   `env:"MAX_FILE_COUNT" envDefault:"16"`
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"134217728"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.MaxContextMessages < 1 {
		return fmt.Errorf("MAX_CONTEXT_MESSAGES must be positive, got %d", cfg.MaxContextMessages)
	}
	if cfg.MaxHistoryPairs < 1 {
		return fmt.Errorf("MAX_HISTORY_PAIRS must be positive, got %d", cfg.MaxHistoryPairs)
	}
	if cfg.AuditCfg.ChunkSize < 1 {
		return fmt.Errorf("AUDIT_CHUNK_SIZE must be positive, got %d", cfg.AuditCfg.ChunkSize)
	}
	if cfg.AuditCfg.ChunkOverlap < 0 || cfg.AuditCfg.ChunkOverlap >= cfg.AuditCfg.ChunkSize {
		return fmt.Errorf("AUDIT_CHUNK_OVERLAP must be in [0, AUDIT_CHUNK_SIZE), got %d", cfg.AuditCfg.ChunkOverlap)
	}
	if s := cfg.LLMCfg.SignatureStrategy; s != "any" && s != "combo" {
		return fmt.Errorf("LLM_SIGNATURE_STRATEGY must be \"any\" or \"combo\", got %q", s)
	}
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
