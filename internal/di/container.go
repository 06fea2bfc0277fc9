package di

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-vaultmedia/internal/cache"
	"github.com/goliatone/go-vaultmedia/internal/commands"
	convertcmd "github.com/goliatone/go-vaultmedia/internal/commands/convert"
	generatecmd "github.com/goliatone/go-vaultmedia/internal/commands/generate"
	searchcmd "github.com/goliatone/go-vaultmedia/internal/commands/search"
	"github.com/goliatone/go-vaultmedia/internal/convert"
	"github.com/goliatone/go-vaultmedia/internal/freepik"
	"github.com/goliatone/go-vaultmedia/internal/httpclient"
	"github.com/goliatone/go-vaultmedia/internal/imagekit"
	"github.com/goliatone/go-vaultmedia/internal/ledger"
	"github.com/goliatone/go-vaultmedia/internal/logging"
	"github.com/goliatone/go-vaultmedia/internal/logging/console"
	"github.com/goliatone/go-vaultmedia/internal/logging/gologger"
	"github.com/goliatone/go-vaultmedia/internal/pathclass"
	"github.com/goliatone/go-vaultmedia/internal/presets"
	"github.com/goliatone/go-vaultmedia/internal/recraft"
	"github.com/goliatone/go-vaultmedia/internal/runtimeconfig"
	"github.com/goliatone/go-vaultmedia/internal/scan"
	"github.com/goliatone/go-vaultmedia/internal/vault"
	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

// Container wires configuration into concrete services. Overrides injected
// via options replace the defaults built from configuration.
type Container struct {
	cfg runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	httpClient     *httpclient.Client
	vault          interfaces.Vault
	generator      interfaces.Generator
	searcher       interfaces.Searcher
	uploader       interfaces.Uploader
	downloader     interfaces.Downloader
	recorder       convert.Recorder
	bunDB          *bun.DB
	cacheService   repocache.CacheService
	keySerializer  repocache.KeySerializer

	classifier *pathclass.Classifier
	cacheStore *cache.Store
	scanner    *scan.Scanner
	converter  *convert.Service
	catalog    *presets.Catalog
	ledgerRepo *ledger.BunUploadLedger

	generateHandler *generatecmd.GenerateImageHandler
	importHandler   *searchcmd.ImportSearchResultHandler
	migrateHandler  *convertcmd.MigrateScopeHandler
	cleanupHandler  *convertcmd.CleanupCacheHandler
}

// Option overrides one of the container's collaborators.
type Option func(*Container)

// WithVault injects a vault implementation.
func WithVault(v interfaces.Vault) Option {
	return func(c *Container) { c.vault = v }
}

// WithGenerator injects a generation client.
func WithGenerator(g interfaces.Generator) Option {
	return func(c *Container) { c.generator = g }
}

// WithSearcher injects a search client.
func WithSearcher(s interfaces.Searcher) Option {
	return func(c *Container) { c.searcher = s }
}

// WithUploader injects an upload client.
func WithUploader(u interfaces.Uploader) Option {
	return func(c *Container) { c.uploader = u }
}

// WithDownloader injects a download client.
func WithDownloader(d interfaces.Downloader) Option {
	return func(c *Container) { c.downloader = d }
}

// WithLoggerProvider injects a logger provider.
func WithLoggerProvider(p interfaces.LoggerProvider) Option {
	return func(c *Container) { c.loggerProvider = p }
}

// WithBunDB injects a database handle for the upload ledger.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) { c.bunDB = db }
}

// WithRepositoryCache enables read caching on the upload ledger.
func WithRepositoryCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithRecorder injects a conversion recorder, replacing the ledger default.
func WithRecorder(r convert.Recorder) Option {
	return func(c *Container) { c.recorder = r }
}

// NewContainer validates cfg and builds the service graph.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.loggerProvider == nil {
		provider, err := buildLoggerProvider(cfg)
		if err != nil {
			return nil, err
		}
		c.loggerProvider = provider
	}

	// DownloadRetries of zero means a single attempt; httpclient.New would
	// otherwise read a zero Attempts as "use the default".
	attempts := cfg.ImageKit.DownloadRetries
	if attempts == 0 {
		attempts = 1
	}
	c.httpClient = httpclient.New(httpclient.Options{
		Attempts: attempts,
	})

	if c.vault == nil {
		c.vault = vault.New(vault.Config{
			BasePath:  cfg.Vault.BasePath,
			Pattern:   cfg.Vault.Pattern,
			Recursive: cfg.Vault.Recursive,
		})
	}

	c.classifier = pathclass.New(pathclass.Config{
		URLEndpoint: cfg.ImageKit.URLEndpoint,
	})

	if c.generator == nil {
		c.generator = recraft.New(recraft.Config{
			APIKey:  cfg.Recraft.APIKey,
			BaseURL: cfg.Recraft.BaseURL,
			HTTP:    c.httpClient,
			Logger:  logging.ClientLogger(c.loggerProvider, "recraft"),
		})
	}
	if c.searcher == nil {
		c.searcher = freepik.New(freepik.Config{
			APIKey:      cfg.Freepik.APIKey,
			BaseURL:     cfg.Freepik.BaseURL,
			PerPage:     cfg.Freepik.PerPage,
			CleanSearch: cfg.Freepik.CleanSearch,
			HTTP:        c.httpClient,
			Logger:      logging.ClientLogger(c.loggerProvider, "freepik"),
		})
	}
	if c.uploader == nil {
		c.uploader = imagekit.New(imagekit.Config{
			PrivateKey:     cfg.ImageKit.PrivateKey,
			UploadEndpoint: cfg.ImageKit.UploadEndpoint,
			HTTP:           c.httpClient,
			Logger:         logging.ClientLogger(c.loggerProvider, "imagekit"),
		})
	}
	if c.downloader == nil {
		c.downloader = c.httpClient
	}

	c.cacheStore = cache.New(cache.Config{
		Dir:        filepath.Join(cfg.Vault.BasePath, filepath.FromSlash(cfg.Cache.Folder)),
		MaxAge:     cfg.Cache.MaxAge,
		MaxEntries: cfg.Cache.MaxEntries,
		Logger:     logging.CacheLogger(c.loggerProvider),
	})

	catalog, err := presets.Load(cfg.Presets.SizesPath, cfg.Presets.StylesPath)
	if err != nil {
		return nil, err
	}
	c.catalog = catalog

	if err := c.buildLedger(); err != nil {
		return nil, err
	}

	c.scanner = scan.New(scan.Config{
		Vault:      c.vault,
		Classifier: c.classifier,
		Logger:     logging.ScanLogger(c.loggerProvider),
	})
	c.converter = convert.New(convert.Config{
		Vault:             c.vault,
		Uploader:          c.uploader,
		Logger:            logging.ConvertLogger(c.loggerProvider),
		Recorder:          c.recorder,
		AttachmentsFolder: cfg.Vault.AttachmentsFolder,
		UploadFolder:      cfg.ImageKit.Folder,
		Tags:              cfg.ImageKit.Tags,
		DeleteAfterUpload: cfg.Features.DeleteAfterUpload,
	})

	c.buildHandlers()
	return c, nil
}

func (c *Container) buildLedger() error {
	if c.recorder != nil || !c.cfg.Features.Ledger {
		return nil
	}
	if c.bunDB == nil {
		db, err := ledger.Open(c.cfg.Ledger.DSN)
		if err != nil {
			return err
		}
		c.bunDB = db
	}
	if err := ledger.EnsureSchema(context.Background(), c.bunDB); err != nil {
		return err
	}
	c.ledgerRepo = ledger.NewBunUploadLedgerWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.recorder = c.ledgerRepo
	return nil
}

func (c *Container) buildHandlers() {
	cfg := c.cfg
	features := cfg.Features

	c.generateHandler = generatecmd.NewGenerateImageHandler(
		c.generator,
		c.downloader,
		c.vault,
		c.cacheStore,
		generatecmd.Defaults{
			Model:             cfg.Recraft.Model,
			ResponseFormat:    cfg.Recraft.ResponseFormat,
			Style:             cfg.Recraft.Style,
			AttachmentsFolder: cfg.Vault.AttachmentsFolder,
		},
		commands.CommandLogger(c.loggerProvider, "generate"),
		generatecmd.FeatureGates{GenerationEnabled: func() bool { return features.Generation }},
	)
	c.importHandler = searchcmd.NewImportSearchResultHandler(
		c.downloader,
		c.vault,
		cfg.Vault.AttachmentsFolder,
		commands.CommandLogger(c.loggerProvider, "search"),
		searchcmd.FeatureGates{SearchEnabled: func() bool { return features.Search }},
	)
	c.migrateHandler = convertcmd.NewMigrateScopeHandler(
		c.scanner,
		c.converter,
		commands.CommandLogger(c.loggerProvider, "convert"),
		convertcmd.FeatureGates{MigrationEnabled: func() bool { return features.Migration }},
	)
	c.cleanupHandler = convertcmd.NewCleanupCacheHandler(
		c.cacheStore,
		commands.CommandLogger(c.loggerProvider, "convert"),
	)
}

func buildLoggerProvider(cfg runtimeconfig.Config) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Provider)) {
	case "", "console":
		level := consoleLevel(cfg.Logging.Level)
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
	default:
		return nil, fmt.Errorf("di: unsupported logging provider %q", cfg.Logging.Provider)
	}
}

func consoleLevel(level string) console.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return console.LevelTrace
	case "debug":
		return console.LevelDebug
	case "", "info":
		return console.LevelInfo
	case "warn", "warning":
		return console.LevelWarn
	case "error":
		return console.LevelError
	default:
		return console.LevelInfo
	}
}

// Vault returns the active vault implementation.
func (c *Container) Vault() interfaces.Vault { return c.vault }

// Generator returns the generation client.
func (c *Container) Generator() interfaces.Generator { return c.generator }

// Searcher returns the search client.
func (c *Container) Searcher() interfaces.Searcher { return c.searcher }

// Uploader returns the upload client.
func (c *Container) Uploader() interfaces.Uploader { return c.uploader }

// Downloader returns the download client.
func (c *Container) Downloader() interfaces.Downloader { return c.downloader }

// LoggerProvider returns the active logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// Scanner returns the reference scanner.
func (c *Container) Scanner() *scan.Scanner { return c.scanner }

// Converter returns the conversion service.
func (c *Container) Converter() *convert.Service { return c.converter }

// CacheStore returns the image cache store.
func (c *Container) CacheStore() *cache.Store { return c.cacheStore }

// Presets returns the loaded preset catalog.
func (c *Container) Presets() *presets.Catalog { return c.catalog }

// Ledger returns the upload ledger, nil when the feature is disabled.
func (c *Container) Ledger() *ledger.BunUploadLedger { return c.ledgerRepo }

// GenerateImageHandler returns the image generation command handler.
func (c *Container) GenerateImageHandler() *generatecmd.GenerateImageHandler {
	return c.generateHandler
}

// ImportSearchResultHandler returns the search import command handler.
func (c *Container) ImportSearchResultHandler() *searchcmd.ImportSearchResultHandler {
	return c.importHandler
}

// MigrateScopeHandler returns the migration command handler.
func (c *Container) MigrateScopeHandler() *convertcmd.MigrateScopeHandler {
	return c.migrateHandler
}

// CleanupCacheHandler returns the cache cleanup command handler.
func (c *Container) CleanupCacheHandler() *convertcmd.CleanupCacheHandler {
	return c.cleanupHandler
}
