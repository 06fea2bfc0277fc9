package convertcmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-vaultmedia/internal/cache"
	"github.com/goliatone/go-vaultmedia/internal/commands"
	"github.com/goliatone/go-vaultmedia/internal/convert"
	"github.com/goliatone/go-vaultmedia/internal/logging"
	"github.com/goliatone/go-vaultmedia/internal/scan"
	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

const (
	migrateScopeMessageType = "vaultmedia.convert.migrate"
	cleanupCacheMessageType = "vaultmedia.convert.cleanup_cache"
)

// ErrMigrationDisabled reports the migration feature gate being off.
var ErrMigrationDisabled = errors.New("convertcmd: image migration is disabled")

// MigrateScopeCommand scans a vault scope and migrates every discovered
// local-image reference. An empty scope covers the whole vault.
type MigrateScopeCommand struct {
	Scope string `json:"scope,omitempty"`
	// DryRun scans and reports without uploading or rewriting.
	DryRun bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (MigrateScopeCommand) Type() string { return migrateScopeMessageType }

// Validate implements command.Message. All fields are optional.
func (MigrateScopeCommand) Validate() error { return nil }

// CleanupCacheCommand prunes the image cache per the retention policy.
type CleanupCacheCommand struct{}

// Type implements command.Message.
func (CleanupCacheCommand) Type() string { return cleanupCacheMessageType }

// Validate implements command.Message.
func (CleanupCacheCommand) Validate() error { return nil }

// FeatureGates exposes the runtime toggles required by migration handlers.
type FeatureGates struct {
	MigrationEnabled func() bool
}

func (g FeatureGates) migrationEnabled() bool {
	if g.MigrationEnabled == nil {
		return true
	}
	return g.MigrationEnabled()
}

// MigrateScopeHandler runs scan plus convert over a scope.
type MigrateScopeHandler struct {
	inner *commands.Handler[MigrateScopeCommand]
}

// NewMigrateScopeHandler constructs a handler wired to the scanner and converter.
func NewMigrateScopeHandler(
	scanner *scan.Scanner,
	converter *convert.Service,
	logger interfaces.Logger,
	gates FeatureGates,
	opts ...commands.HandlerOption[MigrateScopeCommand],
) *MigrateScopeHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg MigrateScopeCommand) error {
		if !gates.migrationEnabled() {
			return ErrMigrationDisabled
		}

		refs, err := scanner.Scan(ctx, msg.Scope)
		if err != nil {
			return err
		}
		if msg.DryRun {
			logging.WithFields(baseLogger, map[string]any{
				"scope":      msg.Scope,
				"references": len(refs),
			}).Info("convert.migrate.dry_run")
			return nil
		}

		summary, err := converter.Convert(ctx, refs)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"scope":     msg.Scope,
			"succeeded": summary.Succeeded,
			"failed":    summary.Failed,
		}).Info("convert.migrate.completed")

		if summary.Failed > 0 && summary.Succeeded == 0 {
			return fmt.Errorf("convertcmd: all %d references failed, first error: %w",
				summary.Failed, summary.Errors[0].Err)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[MigrateScopeCommand]{
		commands.WithLogger[MigrateScopeCommand](baseLogger),
		commands.WithOperation[MigrateScopeCommand]("convert.migrate"),
		// Whole-vault batches routinely outlive the default command timeout.
		commands.WithTimeout[MigrateScopeCommand](0),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &MigrateScopeHandler{
		inner: commands.NewHandler[MigrateScopeCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[MigrateScopeCommand].
func (h *MigrateScopeHandler) Execute(ctx context.Context, msg MigrateScopeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanupCacheHandler prunes the image cache.
type CleanupCacheHandler struct {
	inner *commands.Handler[CleanupCacheCommand]
}

// NewCleanupCacheHandler constructs a handler wired to the cache store.
func NewCleanupCacheHandler(
	store *cache.Store,
	logger interfaces.Logger,
	opts ...commands.HandlerOption[CleanupCacheCommand],
) *CleanupCacheHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CleanupCacheCommand) error {
		removed, err := store.Prune(ctx)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"removed": removed,
		}).Info("convert.cleanup_cache.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[CleanupCacheCommand]{
		commands.WithLogger[CleanupCacheCommand](baseLogger),
		commands.WithOperation[CleanupCacheCommand]("convert.cleanup_cache"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanupCacheHandler{
		inner: commands.NewHandler[CleanupCacheCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CleanupCacheCommand].
func (h *CleanupCacheHandler) Execute(ctx context.Context, msg CleanupCacheCommand) error {
	return h.inner.Execute(ctx, msg)
}
