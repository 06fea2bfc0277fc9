package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

// ErrPathEscapesVault reports an identifier that resolves outside the vault root.
var ErrPathEscapesVault = errors.New("vault: path escapes vault root")

// Config configures how documents are discovered within the vault root.
type Config struct {
	// BasePath is the root directory of the vault.
	BasePath string
	// Pattern limits discovered documents to the supplied glob (defaults to "*.md").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// DirVault implements interfaces.Vault over a directory tree. All document
// identifiers are vault-relative slash paths.
type DirVault struct {
	basePath  string
	pattern   string
	recursive bool
}

var _ interfaces.Vault = (*DirVault)(nil)

// New constructs a DirVault rooted at cfg.BasePath.
func New(cfg Config) *DirVault {
	pattern := cfg.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = "*.md"
	}
	return &DirVault{
		basePath:  filepath.Clean(cfg.BasePath),
		pattern:   pattern,
		recursive: cfg.Recursive,
	}
}

// ReadDocument returns the current text of the document at path.
func (v *DirVault) ReadDocument(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	abs, err := v.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("vault: read document %s: %w", path, err)
	}
	return string(data), nil
}

// WriteDocument replaces the text of the document at path.
func (v *DirVault) WriteDocument(ctx context.Context, path string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := v.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("vault: prepare folder for %s: %w", path, err)
	}
	if err := os.WriteFile(abs, []byte(text), 0o644); err != nil {
		return fmt.Errorf("vault: write document %s: %w", path, err)
	}
	return nil
}

// ListDocuments walks scope (empty or "." for the whole vault) and returns
// matching document paths sorted for determinism.
func (v *DirVault) ListDocuments(ctx context.Context, scope string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := filepath.ToSlash(filepath.Clean(strings.TrimSpace(scope)))
	if root == "" || root == "." || root == "/" {
		root = "."
	}
	if _, err := v.resolve(root); err != nil {
		return nil, err
	}

	fsys := os.DirFS(v.basePath)
	var results []string

	walkErr := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if !v.recursive && filepath.Clean(path) != filepath.Clean(root) {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !v.matchesPattern(filepath.ToSlash(path)) {
			return nil
		}
		results = append(results, filepath.ToSlash(path))
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("vault: list documents %s: %w", scope, walkErr)
	}

	sort.Strings(results)
	return results, nil
}

// ReadBinary returns the raw bytes of the attachment at path.
func (v *DirVault) ReadBinary(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := v.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: read binary %s: %w", path, err)
	}
	return data, nil
}

// WriteBinary stores raw bytes at path, creating parent folders as needed.
func (v *DirVault) WriteBinary(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := v.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("vault: prepare folder for %s: %w", path, err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("vault: write binary %s: %w", path, err)
	}
	return nil
}

// DeleteFile removes the file at path.
func (v *DirVault) DeleteFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := v.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("vault: delete %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path names an existing file.
func (v *DirVault) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	abs, err := v.resolve(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("vault: stat %s: %w", path, err)
	}
	return !info.IsDir(), nil
}

func (v *DirVault) resolve(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimSpace(path)))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesVault, path)
	}
	return filepath.Join(v.basePath, cleaned), nil
}

func (v *DirVault) matchesPattern(path string) bool {
	pattern := filepath.ToSlash(v.pattern)
	target := path
	if !strings.Contains(pattern, "/") {
		target = filepath.Base(path)
	}
	match, err := filepath.Match(pattern, target)
	if err != nil {
		return false
	}
	return match
}
