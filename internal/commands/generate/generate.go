package generatecmd

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-vaultmedia/internal/cache"
	"github.com/goliatone/go-vaultmedia/internal/commands"
	"github.com/goliatone/go-vaultmedia/internal/frontmatter"
	"github.com/goliatone/go-vaultmedia/internal/logging"
	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

const generateImageMessageType = "vaultmedia.generate.image"

// ErrGenerationDisabled reports the generation feature gate being off.
var ErrGenerationDisabled = errors.New("generatecmd: image generation is disabled")

// GenerateImageCommand produces one AI image and stores it in the vault's
// attachments folder. When TargetDocument and TargetKey are set, the
// document's frontmatter is pointed at the stored file.
type GenerateImageCommand struct {
	Prompt         string `json:"prompt"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	Style          string `json:"style,omitempty"`
	StyleID        string `json:"style_id,omitempty"`
	Substyle       string `json:"substyle,omitempty"`
	TargetDocument string `json:"target_document,omitempty"`
	TargetKey      string `json:"target_key,omitempty"`
}

// Type implements command.Message.
func (GenerateImageCommand) Type() string { return generateImageMessageType }

// Validate ensures the payload can produce an image.
func (m GenerateImageCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.Prompt) == "" {
		errs["prompt"] = validation.NewError("vaultmedia.generate.prompt_required", "prompt must not be empty")
	}
	if m.Width < 0 || m.Height < 0 {
		errs["size"] = validation.NewError("vaultmedia.generate.size_invalid", "width and height must not be negative")
	}
	if m.TargetKey != "" && m.TargetDocument == "" {
		errs["target_document"] = validation.NewError("vaultmedia.generate.target_document_required", "target_document is required when target_key is set")
	}
	if m.TargetKey != "" && !frontmatter.IsImageKey(m.TargetKey) {
		errs["target_key"] = validation.NewError("vaultmedia.generate.target_key_unknown", "target_key must be a recognized image key")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// FeatureGates exposes the runtime toggles required by generation handlers.
type FeatureGates struct {
	GenerationEnabled func() bool
}

func (g FeatureGates) generationEnabled() bool {
	if g.GenerationEnabled == nil {
		return true
	}
	return g.GenerationEnabled()
}

// Defaults carries the configured generation parameters applied when a
// command leaves them unset.
type Defaults struct {
	Model             string
	ResponseFormat    string
	Style             string
	AttachmentsFolder string
}

// GenerateImageHandler orchestrates generate, download, cache, and the
// optional frontmatter rewrite.
type GenerateImageHandler struct {
	inner *commands.Handler[GenerateImageCommand]
}

// NewGenerateImageHandler constructs a handler wired to the provided collaborators.
func NewGenerateImageHandler(
	generator interfaces.Generator,
	downloader interfaces.Downloader,
	vault interfaces.Vault,
	store *cache.Store,
	defaults Defaults,
	logger interfaces.Logger,
	gates FeatureGates,
	opts ...commands.HandlerOption[GenerateImageCommand],
) *GenerateImageHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg GenerateImageCommand) error {
		if !gates.generationEnabled() {
			return ErrGenerationDisabled
		}

		style := msg.Style
		if style == "" && msg.StyleID == "" {
			style = defaults.Style
		}
		result, err := generator.Generate(ctx, interfaces.GenerateRequest{
			Prompt:         msg.Prompt,
			Width:          msg.Width,
			Height:         msg.Height,
			Model:          defaults.Model,
			N:              1,
			ResponseFormat: defaults.ResponseFormat,
			Style:          style,
			StyleID:        msg.StyleID,
			Substyle:       msg.Substyle,
		})
		if err != nil {
			return err
		}

		if len(result.Images) == 0 {
			return errors.New("generatecmd: generator returned no images")
		}
		image := result.Images[0]
		data, err := imagePayload(ctx, downloader, image)
		if err != nil {
			return err
		}

		name := attachmentName(msg.Prompt)
		localPath := path.Join(defaults.AttachmentsFolder, name)
		if err := vault.WriteBinary(ctx, localPath, data); err != nil {
			return err
		}
		if store != nil {
			if _, err := store.Put(ctx, name, data); err != nil {
				baseLogger.Warn("generate.cache.failed", "entry", name, "error", err)
			}
		}

		logging.WithFields(baseLogger, map[string]any{
			"local_path": localPath,
			"credits":    result.Credits,
		}).Info("generate.image.stored")

		if msg.TargetKey == "" {
			return nil
		}
		return setFrontmatterKey(ctx, vault, msg.TargetDocument, msg.TargetKey, localPath)
	}

	handlerOpts := []commands.HandlerOption[GenerateImageCommand]{
		commands.WithLogger[GenerateImageCommand](baseLogger),
		commands.WithOperation[GenerateImageCommand]("generate.image"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &GenerateImageHandler{
		inner: commands.NewHandler[GenerateImageCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[GenerateImageCommand].
func (h *GenerateImageHandler) Execute(ctx context.Context, msg GenerateImageCommand) error {
	return h.inner.Execute(ctx, msg)
}

func imagePayload(ctx context.Context, downloader interfaces.Downloader, image interfaces.GeneratedImage) ([]byte, error) {
	if image.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(image.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("generatecmd: decode inline payload: %w", err)
		}
		return data, nil
	}
	if image.URL == "" {
		return nil, errors.New("generatecmd: generated image has no payload")
	}
	return downloader.Download(ctx, image.URL)
}

func setFrontmatterKey(ctx context.Context, vault interfaces.Vault, documentPath, key, value string) error {
	text, err := vault.ReadDocument(ctx, documentPath)
	if err != nil {
		return err
	}
	doc, err := frontmatter.Parse(text)
	if err != nil && !errors.Is(err, frontmatter.ErrNoFrontmatter) {
		return fmt.Errorf("generatecmd: parse frontmatter: %w", err)
	}
	if doc.Block == nil {
		return fmt.Errorf("generatecmd: document %s has no frontmatter block", documentPath)
	}
	doc.Block.Set(key, value)
	updated, err := doc.Render()
	if err != nil {
		return err
	}
	return vault.WriteDocument(ctx, documentPath, updated)
}

func attachmentName(prompt string) string {
	stem := strings.TrimSpace(prompt)
	if normalized, err := slug.Normalize(stem); err == nil && normalized != "" {
		stem = normalized
	}
	if len(stem) > 64 {
		stem = stem[:64]
	}
	return stem + ".png"
}
