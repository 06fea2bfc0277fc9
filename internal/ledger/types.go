package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UploadEntry is the persisted record of one migrated image reference.
type UploadEntry struct {
	bun.BaseModel `bun:"table:upload_ledger,alias:ul"`

	ID             uuid.UUID `bun:",pk,type:uuid" json:"id"`
	DocumentPath   string    `bun:"document_path,notnull" json:"document_path"`
	LocalPath      string    `bun:"local_path,notnull" json:"local_path"`
	RemoteURL      string    `bun:"remote_url,notnull" json:"remote_url"`
	FileID         string    `bun:"file_id" json:"file_id,omitempty"`
	Kind           string    `bun:"kind" json:"kind,omitempty"`
	FrontmatterKey string    `bun:"frontmatter_key" json:"frontmatter_key,omitempty"`
	Size           int64     `bun:"size" json:"size,omitempty"`
	CreatedAt      time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// NotFoundError reports a lookup miss against the ledger.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("ledger: %s %q not found", e.Resource, e.Key)
}
