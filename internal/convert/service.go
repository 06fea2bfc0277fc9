package convert

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-vaultmedia/internal/frontmatter"
	"github.com/goliatone/go-vaultmedia/internal/logging"
	"github.com/goliatone/go-vaultmedia/internal/rewrite"
	"github.com/goliatone/go-vaultmedia/internal/scan"
	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

// ErrBinaryNotFound reports a referenced image that could not be located in
// any of the candidate folders.
var ErrBinaryNotFound = errors.New("convert: referenced image not found")

// ErrReferenceGone reports a reference whose raw match no longer appears in
// the document at conversion time.
var ErrReferenceGone = errors.New("convert: reference no longer present in document")

// UploadRecord captures one completed migration for an optional ledger.
type UploadRecord struct {
	DocumentPath string
	LocalPath    string
	RemoteURL    string
	FileID       string
	Kind         string
	Key          string
	Size         int64
}

// Recorder persists completed migrations. A nil Recorder disables recording.
type Recorder interface {
	RecordUpload(ctx context.Context, rec UploadRecord) error
}

// Config wires the conversion service.
type Config struct {
	Vault    interfaces.Vault
	Uploader interfaces.Uploader
	Logger   interfaces.Logger
	Recorder Recorder
	// AttachmentsFolder is the vault-relative folder searched last when
	// resolving a referenced image by bare name.
	AttachmentsFolder string
	// UploadFolder and Tags are forwarded to every upload.
	UploadFolder string
	Tags         []string
	// DeleteAfterUpload removes local copies once every selected reference to
	// them has been rewritten.
	DeleteAfterUpload bool
}

// Service migrates local image references to remote URLs. Items run strictly
// sequentially; each item re-reads the latest document text so earlier
// rewrites in the same batch are never clobbered.
type Service struct {
	vault             interfaces.Vault
	uploader          interfaces.Uploader
	logger            interfaces.Logger
	recorder          Recorder
	attachmentsFolder string
	uploadFolder      string
	tags              []string
	deleteAfterUpload bool
}

// ItemError ties a failed reference to its cause.
type ItemError struct {
	Reference *scan.Reference
	Err       error
}

// Summary reports batch totals. Item failures never abort sibling items.
type Summary struct {
	Succeeded int
	Failed    int
	Errors    []ItemError
}

// New constructs a Service.
func New(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Service{
		vault:             cfg.Vault,
		uploader:          cfg.Uploader,
		logger:            logger,
		recorder:          cfg.Recorder,
		attachmentsFolder: cfg.AttachmentsFolder,
		uploadFolder:      cfg.UploadFolder,
		tags:              cfg.Tags,
		deleteAfterUpload: cfg.DeleteAfterUpload,
	}
}

// Convert migrates every selected reference in refs. The returned Summary is
// always non-nil; the error is reserved for batch-level failures such as
// context cancellation.
func (s *Service) Convert(ctx context.Context, refs []*scan.Reference) (*Summary, error) {
	summary := &Summary{}
	// Earlier rewrites remove occurrences of the same raw match, shifting the
	// indexes computed at scan time. consumed tracks the shift per document.
	consumed := map[string]int{}
	uploaded := map[string]struct{}{}
	failed := map[string]struct{}{}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if !ref.Selected {
			continue
		}

		localPath, err := s.convertOne(ctx, ref, consumed)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, ItemError{Reference: ref, Err: err})
			if localPath != "" {
				failed[localPath] = struct{}{}
			}
			s.logger.Warn("convert.item.failed",
				"document_path", ref.DocumentPath,
				"referenced_path", ref.ReferencedPath,
				"error", err,
			)
			continue
		}
		summary.Succeeded++
		uploaded[localPath] = struct{}{}
	}

	if s.deleteAfterUpload {
		s.deleteLocals(ctx, uploaded, failed)
	}

	s.logger.Info("convert.complete", "succeeded", summary.Succeeded, "failed", summary.Failed)
	return summary, nil
}

func (s *Service) convertOne(ctx context.Context, ref *scan.Reference, consumed map[string]int) (string, error) {
	localPath, data, err := s.resolveBinary(ctx, ref.DocumentPath, ref.ReferencedPath)
	if err != nil {
		return "", err
	}

	result, err := s.uploader.Upload(ctx, interfaces.UploadRequest{
		FileName: uploadName(localPath),
		Folder:   s.uploadFolder,
		Tags:     s.tags,
		Data:     data,
	})
	if err != nil {
		return localPath, fmt.Errorf("upload %s: %w", localPath, err)
	}

	text, err := s.vault.ReadDocument(ctx, ref.DocumentPath)
	if err != nil {
		return localPath, err
	}

	updated, matchKey, err := s.rewriteReference(text, ref, localPath, result.RemoteURL, consumed)
	if err != nil {
		return localPath, err
	}

	if err := s.vault.WriteDocument(ctx, ref.DocumentPath, updated); err != nil {
		return localPath, err
	}
	// The occurrence shift is real only once the rewritten text is persisted;
	// a failed write leaves the document, and the indexes, unchanged.
	if matchKey != "" {
		consumed[matchKey]++
	}

	s.logger.Debug("convert.item.done",
		"document_path", ref.DocumentPath,
		"local_path", localPath,
		"remote_url", result.RemoteURL,
	)

	if s.recorder != nil {
		rec := UploadRecord{
			DocumentPath: ref.DocumentPath,
			LocalPath:    localPath,
			RemoteURL:    result.RemoteURL,
			FileID:       result.FileID,
			Kind:         string(ref.Kind),
			Key:          ref.Key,
			Size:         result.Size,
		}
		if err := s.recorder.RecordUpload(ctx, rec); err != nil {
			s.logger.Warn("convert.ledger.failed", "local_path", localPath, "error", err)
		}
	}

	return localPath, nil
}

// rewriteReference returns the updated document text plus the consumed-map
// key to bump once the text is persisted (empty for frontmatter rewrites,
// which never shift body occurrences).
func (s *Service) rewriteReference(text string, ref *scan.Reference, localPath, remoteURL string, consumed map[string]int) (string, string, error) {
	if ref.Kind == scan.KindFrontmatter {
		doc, err := frontmatter.Parse(text)
		if err != nil {
			return "", "", fmt.Errorf("parse frontmatter: %w", err)
		}
		current, ok := doc.Block.Get(ref.Key)
		if !ok || current != ref.RawMatch {
			return "", "", fmt.Errorf("%w: key %s", ErrReferenceGone, ref.Key)
		}
		doc.Block.Set(ref.Key, remoteURL)
		rendered, err := doc.Render()
		return rendered, "", err
	}

	matchKey := ref.DocumentPath + "\x00" + ref.RawMatch
	index := ref.Occurrence - consumed[matchKey]
	if index < 0 || index >= rewrite.CountOccurrences(text, ref.RawMatch) {
		return "", "", fmt.Errorf("%w: %s", ErrReferenceGone, ref.RawMatch)
	}

	replacement := rewrite.MarkdownImage(localPath, remoteURL)
	return rewrite.ReplaceOccurrence(text, ref.RawMatch, replacement, index), matchKey, nil
}

// resolveBinary locates the referenced image, trying the document's folder,
// the vault root, then the attachments folder.
func (s *Service) resolveBinary(ctx context.Context, documentPath, referencedPath string) (string, []byte, error) {
	cleaned := strings.TrimSpace(referencedPath)
	candidates := []string{
		path.Join(path.Dir(documentPath), cleaned),
		cleaned,
	}
	if s.attachmentsFolder != "" {
		candidates = append(candidates, path.Join(s.attachmentsFolder, path.Base(cleaned)))
	}

	for _, candidate := range candidates {
		exists, err := s.vault.Exists(ctx, candidate)
		if err != nil {
			return "", nil, err
		}
		if !exists {
			continue
		}
		data, err := s.vault.ReadBinary(ctx, candidate)
		if err != nil {
			return "", nil, err
		}
		return candidate, data, nil
	}
	return "", nil, fmt.Errorf("%w: %s", ErrBinaryNotFound, referencedPath)
}

// deleteLocals removes uploaded files, skipping any path that also carried a
// failed reference in this batch: its document may still point at the local
// copy.
func (s *Service) deleteLocals(ctx context.Context, uploaded, failed map[string]struct{}) {
	for localPath := range uploaded {
		if _, stillReferenced := failed[localPath]; stillReferenced {
			s.logger.Warn("convert.delete.skipped", "local_path", localPath)
			continue
		}
		if err := s.vault.DeleteFile(ctx, localPath); err != nil {
			s.logger.Warn("convert.delete.failed", "local_path", localPath, "error", err)
			continue
		}
		s.logger.Debug("convert.delete.done", "local_path", localPath)
	}
}

// uploadName derives a CDN-safe file name: slugged stem plus the original
// extension.
func uploadName(localPath string) string {
	base := path.Base(localPath)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if normalized, err := slug.Normalize(stem); err == nil && normalized != "" {
		stem = normalized
	}
	return stem + strings.ToLower(ext)
}
