package searchcmd

import (
	"context"
	"errors"
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-vaultmedia/internal/commands"
	"github.com/goliatone/go-vaultmedia/internal/logging"
	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

const importResultMessageType = "vaultmedia.search.import"

// ErrSearchDisabled reports the search feature gate being off.
var ErrSearchDisabled = errors.New("searchcmd: stock image search is disabled")

// ImportSearchResultCommand downloads a picked search hit into the vault's
// attachments folder.
type ImportSearchResultCommand struct {
	SourceURL string `json:"source_url"`
	Title     string `json:"title,omitempty"`
	FileName  string `json:"file_name,omitempty"`
}

// Type implements command.Message.
func (ImportSearchResultCommand) Type() string { return importResultMessageType }

// Validate ensures a downloadable source is present.
func (m ImportSearchResultCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.SourceURL) == "" {
		errs["source_url"] = validation.NewError("vaultmedia.search.source_required", "source_url must not be empty")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// FeatureGates exposes the runtime toggles required by search handlers.
type FeatureGates struct {
	SearchEnabled func() bool
}

func (g FeatureGates) searchEnabled() bool {
	if g.SearchEnabled == nil {
		return true
	}
	return g.SearchEnabled()
}

// ImportSearchResultHandler downloads a search hit and stores it.
type ImportSearchResultHandler struct {
	inner *commands.Handler[ImportSearchResultCommand]
}

// NewImportSearchResultHandler constructs a handler wired to the provided collaborators.
func NewImportSearchResultHandler(
	downloader interfaces.Downloader,
	vault interfaces.Vault,
	attachmentsFolder string,
	logger interfaces.Logger,
	gates FeatureGates,
	opts ...commands.HandlerOption[ImportSearchResultCommand],
) *ImportSearchResultHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ImportSearchResultCommand) error {
		if !gates.searchEnabled() {
			return ErrSearchDisabled
		}

		data, err := downloader.Download(ctx, msg.SourceURL)
		if err != nil {
			return err
		}

		localPath := path.Join(attachmentsFolder, importName(msg))
		if err := vault.WriteBinary(ctx, localPath, data); err != nil {
			return err
		}

		logging.WithFields(baseLogger, map[string]any{
			"local_path": localPath,
			"bytes":      len(data),
		}).Info("search.import.stored")
		return nil
	}

	handlerOpts := []commands.HandlerOption[ImportSearchResultCommand]{
		commands.WithLogger[ImportSearchResultCommand](baseLogger),
		commands.WithOperation[ImportSearchResultCommand]("search.import"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportSearchResultHandler{
		inner: commands.NewHandler[ImportSearchResultCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ImportSearchResultCommand].
func (h *ImportSearchResultHandler) Execute(ctx context.Context, msg ImportSearchResultCommand) error {
	return h.inner.Execute(ctx, msg)
}

// importName derives the stored file name: explicit FileName wins, then a
// slug of the title, then the URL's base name.
func importName(msg ImportSearchResultCommand) string {
	if name := strings.TrimSpace(msg.FileName); name != "" {
		return path.Base(name)
	}

	ext := path.Ext(urlBase(msg.SourceURL))
	if ext == "" {
		ext = ".jpg"
	}
	if title := strings.TrimSpace(msg.Title); title != "" {
		if normalized, err := slug.Normalize(title); err == nil && normalized != "" {
			return normalized + ext
		}
	}
	return urlBase(msg.SourceURL)
}

func urlBase(rawURL string) string {
	trimmed := rawURL
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return path.Base(trimmed)
}
