package presets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrUnknownPreset reports a lookup for a preset id that is not loaded.
var ErrUnknownPreset = errors.New("presets: unknown preset")

// SizePreset maps a frontmatter image key to generation dimensions.
type SizePreset struct {
	ID      string `json:"id"`
	YAMLKey string `json:"yamlKey"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Label   string `json:"label"`
}

// StylePreset names a generation style the user can pick from.
type StylePreset struct {
	ID       string `json:"id"`
	Style    string `json:"style"`
	Substyle string `json:"substyle,omitempty"`
	StyleID  string `json:"styleId,omitempty"`
	Label    string `json:"label"`
}

// Catalog holds the loaded presets keyed for lookup.
type Catalog struct {
	sizes  []SizePreset
	styles []StylePreset
}

// DefaultSizes covers the frontmatter image keys the scanner recognizes.
func DefaultSizes() []SizePreset {
	return []SizePreset{
		{ID: "banner", YAMLKey: "banner_image", Width: 1820, Height: 1024, Label: "Banner"},
		{ID: "portrait", YAMLKey: "portrait_image", Width: 1024, Height: 1820, Label: "Portrait"},
		{ID: "square", YAMLKey: "square_image", Width: 1024, Height: 1024, Label: "Square"},
		{ID: "og", YAMLKey: "og_image", Width: 1280, Height: 1024, Label: "Open Graph"},
	}
}

// DefaultStyles is the built-in style list used when no styles file is
// configured.
func DefaultStyles() []StylePreset {
	return []StylePreset{
		{ID: "digital-illustration", Style: "digital_illustration", Label: "Digital illustration"},
		{ID: "realistic", Style: "realistic_image", Label: "Realistic image"},
		{ID: "vector", Style: "vector_illustration", Label: "Vector illustration"},
	}
}

// NewCatalog builds a catalog from explicit preset lists. Nil lists fall back
// to the defaults.
func NewCatalog(sizes []SizePreset, styles []StylePreset) *Catalog {
	if sizes == nil {
		sizes = DefaultSizes()
	}
	if styles == nil {
		styles = DefaultStyles()
	}
	return &Catalog{sizes: sizes, styles: styles}
}

// Load reads and validates preset files. Empty paths load defaults.
func Load(sizesPath, stylesPath string) (*Catalog, error) {
	var sizes []SizePreset
	if sizesPath != "" {
		if err := loadValidated(sizesPath, sizesSchema, &sizes); err != nil {
			return nil, err
		}
	}
	var styles []StylePreset
	if stylesPath != "" {
		if err := loadValidated(stylesPath, stylesSchema, &styles); err != nil {
			return nil, err
		}
	}
	return NewCatalog(sizes, styles), nil
}

// Sizes returns the size presets in declaration order.
func (c *Catalog) Sizes() []SizePreset {
	return c.sizes
}

// Styles returns the style presets in declaration order.
func (c *Catalog) Styles() []StylePreset {
	return c.styles
}

// SizeByID looks up a size preset.
func (c *Catalog) SizeByID(id string) (SizePreset, error) {
	for _, preset := range c.sizes {
		if preset.ID == id {
			return preset, nil
		}
	}
	return SizePreset{}, fmt.Errorf("%w: size %q", ErrUnknownPreset, id)
}

// SizeByKey looks up the size preset bound to a frontmatter key.
func (c *Catalog) SizeByKey(yamlKey string) (SizePreset, error) {
	for _, preset := range c.sizes {
		if preset.YAMLKey == yamlKey {
			return preset, nil
		}
	}
	return SizePreset{}, fmt.Errorf("%w: key %q", ErrUnknownPreset, yamlKey)
}

// StyleByID looks up a style preset.
func (c *Catalog) StyleByID(id string) (StylePreset, error) {
	for _, preset := range c.styles {
		if preset.ID == id {
			return preset, nil
		}
	}
	return StylePreset{}, fmt.Errorf("%w: style %q", ErrUnknownPreset, id)
}

func loadValidated(path string, schema []byte, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("presets: read %s: %w", path, err)
	}
	if err := validateDocument(schema, data); err != nil {
		return fmt.Errorf("presets: %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("presets: decode %s: %w", path, err)
	}
	return nil
}
