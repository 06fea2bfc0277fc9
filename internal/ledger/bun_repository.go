package ledger

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-vaultmedia/internal/convert"
	"github.com/goliatone/go-vaultmedia/internal/identity"
)

// BunUploadLedger persists migration records and answers lookups against
// them. It implements convert.Recorder.
type BunUploadLedger struct {
	repo repository.Repository[*UploadEntry]
}

var _ convert.Recorder = (*BunUploadLedger)(nil)

// NewBunUploadLedger constructs an uncached ledger.
func NewBunUploadLedger(db *bun.DB) *BunUploadLedger {
	return NewBunUploadLedgerWithCache(db, nil, nil)
}

// NewBunUploadLedgerWithCache constructs a ledger with optional read caching.
func NewBunUploadLedgerWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunUploadLedger {
	base := NewUploadEntryRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunUploadLedger{repo: wrapped}
}

// RecordUpload stores one completed migration. The entry ID is deterministic
// over (local path, remote URL), so re-recording the same migration is an
// upsert rather than a duplicate row.
func (l *BunUploadLedger) RecordUpload(ctx context.Context, rec convert.UploadRecord) error {
	entry := &UploadEntry{
		ID:             identity.UploadUUID(rec.LocalPath, rec.RemoteURL),
		DocumentPath:   rec.DocumentPath,
		LocalPath:      rec.LocalPath,
		RemoteURL:      rec.RemoteURL,
		FileID:         rec.FileID,
		Kind:           rec.Kind,
		FrontmatterKey: rec.Key,
		Size:           rec.Size,
	}
	if _, err := l.repo.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("ledger: record upload: %w", err)
	}
	return nil
}

// GetByRemoteURL returns the entry that produced url.
func (l *BunUploadLedger) GetByRemoteURL(ctx context.Context, url string) (*UploadEntry, error) {
	record, err := l.repo.GetByIdentifier(ctx, url)
	if err != nil {
		return nil, mapRepositoryError(err, "upload", url)
	}
	return record, nil
}

// ListByDocument returns every recorded migration for a document, newest first.
func (l *BunUploadLedger) ListByDocument(ctx context.Context, documentPath string) ([]*UploadEntry, error) {
	records, _, err := l.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.document_path = ?", documentPath).
				OrderExpr("?TableAlias.created_at DESC")
		}),
	)
	return records, err
}

// FindByLocalPath returns the most recent migration of a local file.
func (l *BunUploadLedger) FindByLocalPath(ctx context.Context, localPath string) (*UploadEntry, error) {
	records, _, err := l.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.local_path = ?", localPath).
				OrderExpr("?TableAlias.created_at DESC")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "upload", Key: localPath}
	}
	return records[0], nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
