package vaultmedia

import (
	"context"

	"github.com/goliatone/go-vaultmedia/internal/cache"
	convertcmd "github.com/goliatone/go-vaultmedia/internal/commands/convert"
	generatecmd "github.com/goliatone/go-vaultmedia/internal/commands/generate"
	searchcmd "github.com/goliatone/go-vaultmedia/internal/commands/search"
	convertsvc "github.com/goliatone/go-vaultmedia/internal/convert"
	"github.com/goliatone/go-vaultmedia/internal/di"
	"github.com/goliatone/go-vaultmedia/internal/ledger"
	"github.com/goliatone/go-vaultmedia/internal/presets"
	"github.com/goliatone/go-vaultmedia/internal/scan"
	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

// Vault exports the document and binary store contract for consumers of the
// vaultmedia package.
type Vault = interfaces.Vault

// Generator exports the image generation client contract.
type Generator = interfaces.Generator

// Searcher exports the stock image search client contract.
type Searcher = interfaces.Searcher

// Uploader exports the CDN upload client contract.
type Uploader = interfaces.Uploader

// Downloader exports the remote image download contract.
type Downloader = interfaces.Downloader

// Scanner exports the vault reference scanner.
type Scanner = *scan.Scanner

// Reference exports a discovered local-image reference.
type Reference = scan.Reference

// Selection exports the per-batch reference selection state.
type Selection = scan.Selection

// Converter exports the upload-and-rewrite service.
type Converter = *convertsvc.Service

// ConversionSummary exports the per-batch conversion outcome.
type ConversionSummary = convertsvc.Summary

// UploadLedger exports the optional upload history repository.
type UploadLedger = *ledger.BunUploadLedger

// PresetCatalog exports the size and style preset catalog.
type PresetCatalog = *presets.Catalog

// CacheStore exports the generated-image cache.
type CacheStore = *cache.Store

// SearchRequest exports the stock image query surface.
type SearchRequest = interfaces.SearchRequest

// SearchResult exports one page of stock image hits.
type SearchResult = interfaces.SearchResult

// GenerateImageCommand exports the image generation command message.
type GenerateImageCommand = generatecmd.GenerateImageCommand

// ImportSearchResultCommand exports the search import command message.
type ImportSearchResultCommand = searchcmd.ImportSearchResultCommand

// MigrateScopeCommand exports the migration command message.
type MigrateScopeCommand = convertcmd.MigrateScopeCommand

// CleanupCacheCommand exports the cache pruning command message.
type CleanupCacheCommand = convertcmd.CleanupCacheCommand

// Module represents the top level media pipeline runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a vaultmedia module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Vault returns the configured vault store.
func (m *Module) Vault() Vault {
	return m.container.Vault()
}

// Scanner returns the configured reference scanner.
func (m *Module) Scanner() Scanner {
	return m.container.Scanner()
}

// Converter returns the configured conversion service.
func (m *Module) Converter() Converter {
	return m.container.Converter()
}

// Presets returns the size and style preset catalog.
func (m *Module) Presets() PresetCatalog {
	return m.container.Presets()
}

// Cache returns the generated-image cache store.
func (m *Module) Cache() CacheStore {
	return m.container.CacheStore()
}

// Ledger returns the upload ledger, or nil when the feature is disabled.
func (m *Module) Ledger() UploadLedger {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Ledger()
}

// SearchImages queries the configured stock image catalogue. Results carry
// source URLs suitable for the import command.
func (m *Module) SearchImages(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	return m.container.Searcher().Search(ctx, req)
}

// GenerateImage returns the image generation command handler.
func (m *Module) GenerateImage() *generatecmd.GenerateImageHandler {
	return m.container.GenerateImageHandler()
}

// ImportSearchResult returns the search import command handler.
func (m *Module) ImportSearchResult() *searchcmd.ImportSearchResultHandler {
	return m.container.ImportSearchResultHandler()
}

// MigrateScope returns the migration command handler.
func (m *Module) MigrateScope() *convertcmd.MigrateScopeHandler {
	return m.container.MigrateScopeHandler()
}

// CleanupCache returns the cache pruning command handler.
func (m *Module) CleanupCache() *convertcmd.CleanupCacheHandler {
	return m.container.CleanupCacheHandler()
}
