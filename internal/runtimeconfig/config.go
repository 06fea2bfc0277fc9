package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrVaultPathRequired indicates no vault root was configured.
var ErrVaultPathRequired = errors.New("vaultmedia config: vault base path is required")

// ErrGenerationKeyRequired ensures generation only runs with credentials.
var ErrGenerationKeyRequired = errors.New("vaultmedia config: generation api key is required when generation is enabled")

// ErrSearchKeyRequired ensures search only runs with credentials.
var ErrSearchKeyRequired = errors.New("vaultmedia config: search api key is required when search is enabled")

// ErrUploadEndpointRequired ensures migration has a CDN upload target.
var ErrUploadEndpointRequired = errors.New("vaultmedia config: upload endpoint is required when migration is enabled")

// ErrURLEndpointRequired ensures already-on-CDN detection has a prefix to match.
var ErrURLEndpointRequired = errors.New("vaultmedia config: url endpoint is required when migration is enabled")

// ErrUploadKeyRequired ensures migration only runs with CDN credentials.
var ErrUploadKeyRequired = errors.New("vaultmedia config: upload private key is required when migration is enabled")

var ErrLedgerDSNRequired = errors.New("vaultmedia config: ledger dsn is required when the ledger is enabled")
var ErrRetryCountInvalid = errors.New("vaultmedia config: download retry count must be zero or positive")
var ErrCacheRetentionInvalid = errors.New("vaultmedia config: cache retention limits must be zero or positive")
var ErrLoggingProviderRequired = errors.New("vaultmedia config: logging provider is required when logging is enabled")
var ErrLoggingProviderUnknown = errors.New("vaultmedia config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("vaultmedia config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("vaultmedia config: logging format is invalid")

// Config aggregates feature flags and client settings for the media pipeline.
// It is passed explicitly through constructors; nothing reads ambient state.
type Config struct {
	Vault    VaultConfig
	Recraft  RecraftConfig
	Freepik  FreepikConfig
	ImageKit ImageKitConfig
	Cache    CacheConfig
	Ledger   LedgerConfig
	Presets  PresetsConfig
	Features Features
	Logging  LoggingConfig
}

// VaultConfig captures filesystem behaviour for document discovery.
type VaultConfig struct {
	// BasePath is the root directory of the note vault.
	BasePath string
	// AttachmentsFolder is searched when a referenced binary is not found
	// next to its document or at the vault root.
	AttachmentsFolder string
	// Pattern limits discovered documents (defaults to "*.md").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// RecraftConfig wires the image-generation client.
type RecraftConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Style          string
	StyleID        string
	Substyle       string
	ResponseFormat string
}

// FreepikConfig wires the stock-image search client.
type FreepikConfig struct {
	APIKey      string
	BaseURL     string
	PerPage     int
	CleanSearch bool
}

// ImageKitConfig wires the CDN upload client. URLEndpoint doubles as the
// already-on-CDN prefix for the path classifier.
type ImageKitConfig struct {
	PrivateKey     string
	UploadEndpoint string
	URLEndpoint    string
	Folder         string
	Tags           []string
	// DownloadRetries bounds transient-failure retries when fetching
	// generated or searched images. Uploads are never retried automatically.
	DownloadRetries int
}

// CacheConfig captures the generated-image cache folder and retention policy.
type CacheConfig struct {
	Folder     string
	MaxAge     time.Duration
	MaxEntries int
}

// LedgerConfig captures the optional upload ledger database.
type LedgerConfig struct {
	DSN string
}

// PresetsConfig points at user-editable preset documents.
type PresetsConfig struct {
	SizesPath  string
	StylesPath string
}

// Features toggles module functionality.
type Features struct {
	Generation        bool
	Search            bool
	Migration         bool
	Ledger            bool
	DeleteAfterUpload bool
	Logger            bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults; credentials stay empty.
func DefaultConfig() Config {
	return Config{
		Vault: VaultConfig{
			Pattern:           "*.md",
			Recursive:         true,
			AttachmentsFolder: "attachments",
		},
		Recraft: RecraftConfig{
			BaseURL:        "https://external.api.recraft.ai",
			Model:          "recraftv3",
			Style:          "digital_illustration",
			ResponseFormat: "url",
		},
		Freepik: FreepikConfig{
			BaseURL:     "https://api.freepik.com",
			PerPage:     20,
			CleanSearch: true,
		},
		ImageKit: ImageKitConfig{
			UploadEndpoint:  "https://upload.imagekit.io/api/v1/files/upload",
			Folder:          "vault",
			DownloadRetries: 3,
		},
		Cache: CacheConfig{
			Folder:     "_cache/images",
			MaxAge:     30 * 24 * time.Hour,
			MaxEntries: 500,
		},
		Features: Features{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Vault.BasePath) == "" {
		return ErrVaultPathRequired
	}
	if cfg.Features.Generation && strings.TrimSpace(cfg.Recraft.APIKey) == "" {
		return ErrGenerationKeyRequired
	}
	if cfg.Features.Search && strings.TrimSpace(cfg.Freepik.APIKey) == "" {
		return ErrSearchKeyRequired
	}
	if cfg.Features.Migration {
		if strings.TrimSpace(cfg.ImageKit.PrivateKey) == "" {
			return ErrUploadKeyRequired
		}
		if strings.TrimSpace(cfg.ImageKit.UploadEndpoint) == "" {
			return ErrUploadEndpointRequired
		}
		if strings.TrimSpace(cfg.ImageKit.URLEndpoint) == "" {
			return ErrURLEndpointRequired
		}
	}
	if cfg.Features.Ledger && strings.TrimSpace(cfg.Ledger.DSN) == "" {
		return ErrLedgerDSNRequired
	}
	if cfg.ImageKit.DownloadRetries < 0 {
		return ErrRetryCountInvalid
	}
	if cfg.Cache.MaxAge < 0 || cfg.Cache.MaxEntries < 0 {
		return ErrCacheRetentionInvalid
	}
	if cfg.Features.Logger {
		provider := strings.ToLower(strings.TrimSpace(cfg.Logging.Provider))
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
