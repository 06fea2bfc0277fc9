package interfaces

import "context"

// Vault abstracts the note store the pipeline operates on. Implementations
// translate document identifiers (vault-relative slash paths) into whatever
// storage backs the vault; the shipped implementation wraps a directory tree.
//
// Documents are UTF-8 markdown text; binaries are attachment payloads such as
// images. All paths are relative to the vault root and use forward slashes.
type Vault interface {
	// ReadDocument returns the current text of a document.
	ReadDocument(ctx context.Context, path string) (string, error)
	// WriteDocument replaces the text of a document, creating it if needed.
	WriteDocument(ctx context.Context, path string, text string) error
	// ListDocuments enumerates markdown documents under scope. An empty scope
	// or "." means the whole vault. Results are sorted for determinism.
	ListDocuments(ctx context.Context, scope string) ([]string, error)
	// ReadBinary returns the raw bytes of an attachment.
	ReadBinary(ctx context.Context, path string) ([]byte, error)
	// WriteBinary stores raw bytes at path, creating parent folders as needed.
	WriteBinary(ctx context.Context, path string, data []byte) error
	// DeleteFile removes a file from the vault.
	DeleteFile(ctx context.Context, path string) error
	// Exists reports whether path names an existing file.
	Exists(ctx context.Context, path string) (bool, error)
}
