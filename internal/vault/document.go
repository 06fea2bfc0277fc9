package vault

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// Meta is the typed frontmatter envelope read for display and filtering
// purposes. The ordered codec in internal/frontmatter owns mutation; this
// envelope is read-only.
type Meta struct {
	Title  string         `yaml:"title"`
	Tags   []string       `yaml:"tags"`
	Draft  bool           `yaml:"draft"`
	Custom map[string]any `yaml:",inline"`
}

// ParseMeta extracts the typed frontmatter envelope and the markdown body
// from the provided document text. Documents without a frontmatter block
// return an empty envelope and the full text as body.
func ParseMeta(text string) (Meta, string, error) {
	var meta Meta
	body, err := frontmatter.Parse(bytes.NewReader([]byte(text)), &meta)
	if err != nil {
		return Meta{}, text, fmt.Errorf("vault: parse frontmatter: %w", err)
	}
	if meta.Custom == nil {
		meta.Custom = map[string]any{}
	}
	return meta, string(body), nil
}
