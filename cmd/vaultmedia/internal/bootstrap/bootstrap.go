package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	vaultmedia "github.com/goliatone/go-vaultmedia"
	"github.com/goliatone/go-vaultmedia/internal/di"
	"github.com/goliatone/go-vaultmedia/internal/logging"
	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

// Options captures configuration for media CLI bootstraps.
type Options struct {
	// ConfigFile points at an explicit config document. When empty the
	// loader looks for vaultmedia.yaml next to the vault root and in the
	// working directory.
	ConfigFile string
	VaultPath  string
	// Features requested by the invoked subcommand; merged over the file.
	Generation     bool
	Search         bool
	Migration      bool
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the vaultmedia module and the logger configured for CLI runs.
type Module struct {
	Module *vaultmedia.Module
	Logger interfaces.Logger
}

// fileConfig mirrors the YAML document users keep alongside their vault.
type fileConfig struct {
	Vault struct {
		BasePath          string `mapstructure:"base_path"`
		AttachmentsFolder string `mapstructure:"attachments_folder"`
		Pattern           string `mapstructure:"pattern"`
	} `mapstructure:"vault"`
	Recraft struct {
		APIKey         string `mapstructure:"api_key"`
		BaseURL        string `mapstructure:"base_url"`
		Model          string `mapstructure:"model"`
		Style          string `mapstructure:"style"`
		StyleID        string `mapstructure:"style_id"`
		Substyle       string `mapstructure:"substyle"`
		ResponseFormat string `mapstructure:"response_format"`
	} `mapstructure:"recraft"`
	Freepik struct {
		APIKey      string `mapstructure:"api_key"`
		BaseURL     string `mapstructure:"base_url"`
		PerPage     int    `mapstructure:"per_page"`
		CleanSearch *bool  `mapstructure:"clean_search"`
	} `mapstructure:"freepik"`
	ImageKit struct {
		PrivateKey      string   `mapstructure:"private_key"`
		UploadEndpoint  string   `mapstructure:"upload_endpoint"`
		URLEndpoint     string   `mapstructure:"url_endpoint"`
		Folder          string   `mapstructure:"folder"`
		Tags            []string `mapstructure:"tags"`
		DownloadRetries *int     `mapstructure:"download_retries"`
	} `mapstructure:"imagekit"`
	Cache struct {
		Folder     string `mapstructure:"folder"`
		MaxAgeDays int    `mapstructure:"max_age_days"`
		MaxEntries int    `mapstructure:"max_entries"`
	} `mapstructure:"cache"`
	Ledger struct {
		Enabled bool   `mapstructure:"enabled"`
		DSN     string `mapstructure:"dsn"`
	} `mapstructure:"ledger"`
	Presets struct {
		SizesPath  string `mapstructure:"sizes_path"`
		StylesPath string `mapstructure:"styles_path"`
	} `mapstructure:"presets"`
	DeleteAfterUpload bool `mapstructure:"delete_after_upload"`
	Logging           struct {
		Provider string `mapstructure:"provider"`
		Level    string `mapstructure:"level"`
		Format   string `mapstructure:"format"`
	} `mapstructure:"logging"`
}

// LoadConfig reads the optional YAML document and environment overrides into
// a runtime configuration. Missing config files are not an error; flags and
// environment variables can carry everything.
func LoadConfig(opts Options) (vaultmedia.Config, error) {
	cfg := vaultmedia.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("VAULTMEDIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(opts.ConfigFile) != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("vaultmedia")
		v.AddConfigPath(".")
		if trimmed := strings.TrimSpace(opts.VaultPath); trimmed != "" {
			v.AddConfigPath(trimmed)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var file fileConfig
	if err := v.Unmarshal(&file); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	applyFileConfig(&cfg, file)

	if trimmed := strings.TrimSpace(opts.VaultPath); trimmed != "" {
		cfg.Vault.BasePath = trimmed
	}
	if key := v.GetString("recraft_api_key"); key != "" {
		cfg.Recraft.APIKey = key
	}
	if key := v.GetString("freepik_api_key"); key != "" {
		cfg.Freepik.APIKey = key
	}
	if key := v.GetString("imagekit_private_key"); key != "" {
		cfg.ImageKit.PrivateKey = key
	}

	cfg.Features.Generation = cfg.Features.Generation || opts.Generation
	cfg.Features.Search = cfg.Features.Search || opts.Search
	cfg.Features.Migration = cfg.Features.Migration || opts.Migration

	return cfg, nil
}

func applyFileConfig(cfg *vaultmedia.Config, file fileConfig) {
	if file.Vault.BasePath != "" {
		cfg.Vault.BasePath = file.Vault.BasePath
	}
	if file.Vault.AttachmentsFolder != "" {
		cfg.Vault.AttachmentsFolder = file.Vault.AttachmentsFolder
	}
	if file.Vault.Pattern != "" {
		cfg.Vault.Pattern = file.Vault.Pattern
	}

	if file.Recraft.APIKey != "" {
		cfg.Recraft.APIKey = file.Recraft.APIKey
	}
	if file.Recraft.BaseURL != "" {
		cfg.Recraft.BaseURL = file.Recraft.BaseURL
	}
	if file.Recraft.Model != "" {
		cfg.Recraft.Model = file.Recraft.Model
	}
	if file.Recraft.Style != "" {
		cfg.Recraft.Style = file.Recraft.Style
	}
	if file.Recraft.StyleID != "" {
		cfg.Recraft.StyleID = file.Recraft.StyleID
	}
	if file.Recraft.Substyle != "" {
		cfg.Recraft.Substyle = file.Recraft.Substyle
	}
	if file.Recraft.ResponseFormat != "" {
		cfg.Recraft.ResponseFormat = file.Recraft.ResponseFormat
	}

	if file.Freepik.APIKey != "" {
		cfg.Freepik.APIKey = file.Freepik.APIKey
	}
	if file.Freepik.BaseURL != "" {
		cfg.Freepik.BaseURL = file.Freepik.BaseURL
	}
	if file.Freepik.PerPage > 0 {
		cfg.Freepik.PerPage = file.Freepik.PerPage
	}
	if file.Freepik.CleanSearch != nil {
		cfg.Freepik.CleanSearch = *file.Freepik.CleanSearch
	}

	if file.ImageKit.PrivateKey != "" {
		cfg.ImageKit.PrivateKey = file.ImageKit.PrivateKey
	}
	if file.ImageKit.UploadEndpoint != "" {
		cfg.ImageKit.UploadEndpoint = file.ImageKit.UploadEndpoint
	}
	if file.ImageKit.URLEndpoint != "" {
		cfg.ImageKit.URLEndpoint = file.ImageKit.URLEndpoint
	}
	if file.ImageKit.Folder != "" {
		cfg.ImageKit.Folder = file.ImageKit.Folder
	}
	if len(file.ImageKit.Tags) > 0 {
		cfg.ImageKit.Tags = file.ImageKit.Tags
	}
	if file.ImageKit.DownloadRetries != nil {
		cfg.ImageKit.DownloadRetries = *file.ImageKit.DownloadRetries
	}

	if file.Cache.Folder != "" {
		cfg.Cache.Folder = file.Cache.Folder
	}
	if file.Cache.MaxAgeDays > 0 {
		cfg.Cache.MaxAge = time.Duration(file.Cache.MaxAgeDays) * 24 * time.Hour
	}
	if file.Cache.MaxEntries > 0 {
		cfg.Cache.MaxEntries = file.Cache.MaxEntries
	}

	if file.Ledger.Enabled {
		cfg.Features.Ledger = true
	}
	if file.Ledger.DSN != "" {
		cfg.Ledger.DSN = file.Ledger.DSN
	}

	if file.Presets.SizesPath != "" {
		cfg.Presets.SizesPath = file.Presets.SizesPath
	}
	if file.Presets.StylesPath != "" {
		cfg.Presets.StylesPath = file.Presets.StylesPath
	}

	if file.DeleteAfterUpload {
		cfg.Features.DeleteAfterUpload = true
	}

	if file.Logging.Provider != "" {
		cfg.Features.Logger = true
		cfg.Logging.Provider = file.Logging.Provider
	}
	if file.Logging.Level != "" {
		cfg.Logging.Level = file.Logging.Level
	}
	if file.Logging.Format != "" {
		cfg.Logging.Format = file.Logging.Format
	}
}

// BuildModule constructs a vaultmedia module configured for CLI operations.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := vaultmedia.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise vaultmedia module: %w", err)
	}

	logger := logging.ModuleLogger(module.Container().LoggerProvider(), "cli")

	return &Module{
		Module: module,
		Logger: logger,
	}, nil
}
