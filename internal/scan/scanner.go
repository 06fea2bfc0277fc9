package scan

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-vaultmedia/internal/frontmatter"
	"github.com/goliatone/go-vaultmedia/internal/logging"
	"github.com/goliatone/go-vaultmedia/internal/pathclass"
	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

// embedPattern matches vault embeds. The inner path may carry an alias after
// a pipe; the alias is not part of the referenced path.
var embedPattern = regexp.MustCompile(`!\[\[([^\[\]]+)\]\]`)

// Scanner walks documents and extracts local-image references from
// frontmatter image keys, body embeds, and inline markdown images.
type Scanner struct {
	vault      interfaces.Vault
	classifier *pathclass.Classifier
	logger     interfaces.Logger
	markdown   goldmark.Markdown
}

// Config wires the scanner's collaborators.
type Config struct {
	Vault      interfaces.Vault
	Classifier *pathclass.Classifier
	Logger     interfaces.Logger
}

// New constructs a Scanner.
func New(cfg Config) *Scanner {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Scanner{
		vault:      cfg.Vault,
		classifier: cfg.Classifier,
		logger:     logger,
		markdown:   goldmark.New(),
	}
}

// Scan enumerates documents under scope and collects every reference whose
// path classifies as a local image. Documents that fail to read or parse are
// skipped with a warning; one bad document never aborts the walk.
func (s *Scanner) Scan(ctx context.Context, scope string) ([]*Reference, error) {
	if s.vault == nil {
		return nil, errors.New("scan: vault is required")
	}

	docs, err := s.vault.ListDocuments(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("scan: list documents: %w", err)
	}

	var refs []*Reference
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := s.ScanDocument(ctx, doc)
		if err != nil {
			s.logger.Warn("scan.document.skipped", "document_path", doc, "error", err)
			continue
		}
		refs = append(refs, found...)
	}

	s.logger.Info("scan.complete", "scope", scope, "documents", len(docs), "references", len(refs))
	return refs, nil
}

// ScanDocument extracts local-image references from a single document. Lines
// are scanned independently so reported line numbers stay accurate.
func (s *Scanner) ScanDocument(ctx context.Context, path string) ([]*Reference, error) {
	text, err := s.vault.ReadDocument(ctx, path)
	if err != nil {
		return nil, err
	}

	var refs []*Reference
	occurrences := map[string]int{}

	doc, fmErr := frontmatter.Parse(text)
	if fmErr == nil && doc.Block != nil {
		for _, entry := range doc.Block.ImageEntries() {
			if s.classifier.Classify(entry.Value) != pathclass.LocalImage {
				continue
			}
			occ := occurrences[entry.Value]
			occurrences[entry.Value]++
			refs = append(refs, newReference(path, entry.Value, entry.Value, entry.Line, KindFrontmatter, entry.Key, occ))
		}
	}

	bodyOffset := 0
	body := text
	if fmErr == nil && doc.Block != nil {
		body = doc.Body
		bodyOffset = strings.Count(text, "\n") - strings.Count(body, "\n")
	}

	refs = append(refs, s.scanEmbeds(path, body, bodyOffset, occurrences)...)
	refs = append(refs, s.scanInlineImages(path, body, bodyOffset, occurrences)...)
	return refs, nil
}

func (s *Scanner) scanEmbeds(path, body string, lineOffset int, occurrences map[string]int) []*Reference {
	var refs []*Reference
	for i, line := range strings.Split(body, "\n") {
		for _, match := range embedPattern.FindAllStringSubmatch(line, -1) {
			raw := match[0]
			target := embedTarget(match[1])
			if s.classifier.Classify(target) != pathclass.LocalImage {
				continue
			}
			occ := occurrences[raw]
			occurrences[raw]++
			refs = append(refs, newReference(path, raw, target, lineOffset+i+1, KindEmbed, "", occ))
		}
	}
	return refs
}

func (s *Scanner) scanInlineImages(path, body string, lineOffset int, occurrences map[string]int) []*Reference {
	source := []byte(body)
	root := s.markdown.Parser().Parse(text.NewReader(source))

	var refs []*Reference
	// Duplicate inline images share a raw match; each lookup resumes past the
	// previous hit so every duplicate reports its own position.
	searchFrom := map[string]int{}
	_ = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := node.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}
		dest := string(img.Destination)
		if s.classifier.Classify(dest) != pathclass.LocalImage {
			return ast.WalkContinue, nil
		}

		alt := string(img.Text(source))
		rawMatch := "![" + alt + "](" + dest + ")"
		idx := strings.Index(body[searchFrom[rawMatch]:], rawMatch)
		if idx < 0 {
			// Reference-style or decorated images are left alone; only plain
			// inline syntax is rewritable literally.
			return ast.WalkContinue, nil
		}
		idx += searchFrom[rawMatch]
		searchFrom[rawMatch] = idx + len(rawMatch)
		occ := occurrences[rawMatch]
		occurrences[rawMatch]++
		line := lineOffset + strings.Count(body[:idx], "\n") + 1
		refs = append(refs, newReference(path, rawMatch, dest, line, KindInline, "", occ))
		return ast.WalkContinue, nil
	})
	return refs
}

// embedTarget strips an optional display alias ("path|alias") from an embed body.
func embedTarget(inner string) string {
	if idx := strings.Index(inner, "|"); idx >= 0 {
		inner = inner[:idx]
	}
	return strings.TrimSpace(inner)
}
