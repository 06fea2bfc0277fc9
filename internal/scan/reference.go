package scan

import (
	"github.com/google/uuid"

	"github.com/goliatone/go-vaultmedia/internal/identity"
)

// RefKind distinguishes where in a document a reference was found.
type RefKind string

const (
	// KindFrontmatter marks an allow-listed image key in the header block.
	KindFrontmatter RefKind = "frontmatter"
	// KindEmbed marks a ![[...]] embed in the body.
	KindEmbed RefKind = "embed"
	// KindInline marks a standard markdown ![alt](path) image in the body.
	KindInline RefKind = "inline"
)

// Reference is one local-image occurrence discovered by the scanner. Each
// occurrence is a distinct unit of work; references pointing at the same file
// from different documents (or repeated within one) are never deduplicated.
// References live only for the duration of a scan/convert round trip.
type Reference struct {
	ID             uuid.UUID
	DocumentPath   string
	RawMatch       string
	ReferencedPath string
	Line           int
	Kind           RefKind
	// Key is the frontmatter key for KindFrontmatter references.
	Key string
	// Occurrence is the 0-based index of RawMatch within the document at
	// scan time, used to target a single occurrence during rewrite.
	Occurrence int
	Selected   bool
}

func newReference(documentPath, rawMatch, referencedPath string, line int, kind RefKind, key string, occurrence int) *Reference {
	return &Reference{
		ID:             identity.ReferenceUUID(documentPath, rawMatch, occurrence),
		DocumentPath:   documentPath,
		RawMatch:       rawMatch,
		ReferencedPath: referencedPath,
		Line:           line,
		Kind:           kind,
		Key:            key,
		Occurrence:     occurrence,
		Selected:       true,
	}
}
