package ledger

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewUploadEntryRepository creates a repository for UploadEntry records.
func NewUploadEntryRepository(db *bun.DB) repository.Repository[*UploadEntry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*UploadEntry]{
		NewRecord: func() *UploadEntry { return &UploadEntry{} },
		GetID: func(e *UploadEntry) uuid.UUID {
			return e.ID
		},
		SetID: func(e *UploadEntry, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier: func() string {
			return "remote_url"
		},
		GetIdentifierValue: func(e *UploadEntry) string {
			return e.RemoteURL
		},
	})
}
