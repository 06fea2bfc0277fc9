package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrNoFrontmatter reports that the document does not open with a frontmatter block.
var ErrNoFrontmatter = errors.New("frontmatter: document has no frontmatter block")

// ErrUnterminatedBlock reports a frontmatter block without a closing delimiter.
var ErrUnterminatedBlock = errors.New("frontmatter: unterminated frontmatter block")

// ErrNotAMapping reports a frontmatter body that is not a key-value mapping.
var ErrNotAMapping = errors.New("frontmatter: block is not a key-value mapping")

// ImageKeys is the fixed allow-list of frontmatter keys treated as
// image-bearing fields. Only scalar string values under these keys are
// considered candidates for migration.
var ImageKeys = []string{
	"banner_image",
	"portrait_image",
	"square_image",
	"og_image",
	"featured_image",
	"thumbnail",
	"hero_image",
	"cover_image",
}

var imageKeySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(ImageKeys))
	for _, key := range ImageKeys {
		set[key] = struct{}{}
	}
	return set
}()

// IsImageKey reports whether key belongs to the image-bearing allow-list.
func IsImageKey(key string) bool {
	_, ok := imageKeySet[key]
	return ok
}

// Document is a markdown document split into its frontmatter block and body.
// Body is preserved byte-for-byte across Render; only the header is
// re-serialized.
type Document struct {
	Block *Block
	Body  string
}

// Block is the ordered key-value header of a document. It wraps the parsed
// YAML mapping node so key order and scalar styles survive round-trips.
type Block struct {
	node *yaml.Node
}

// Entry is one allow-listed image field found in a block.
type Entry struct {
	Key   string
	Value string
	// Line is the 1-based line number of the key within the whole document,
	// accounting for the opening delimiter line.
	Line int
}

// Parse splits text into frontmatter block and body. Documents without a
// leading delimiter return ErrNoFrontmatter with the full text as body.
func Parse(text string) (*Document, error) {
	lines := strings.SplitAfter(text, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r\n") != delimiter {
		return &Document{Body: text}, ErrNoFrontmatter
	}

	var header strings.Builder
	bodyStart := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r\n") == delimiter {
			bodyStart = i + 1
			break
		}
		header.WriteString(lines[i])
	}
	if bodyStart < 0 {
		return &Document{Body: text}, ErrUnterminatedBlock
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(header.String()), &root); err != nil {
		return &Document{Body: text}, fmt.Errorf("frontmatter: parse header: %w", err)
	}

	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if len(root.Content) > 0 {
		if root.Content[0].Kind != yaml.MappingNode {
			return &Document{Body: text}, ErrNotAMapping
		}
		mapping = root.Content[0]
	}

	return &Document{
		Block: &Block{node: mapping},
		Body:  strings.Join(lines[bodyStart:], ""),
	}, nil
}

// Render re-serializes the document: header block between delimiters, body
// appended untouched. Documents without a block render as their body.
func (d *Document) Render() (string, error) {
	if d.Block == nil || d.Block.node == nil || len(d.Block.node.Content) == 0 {
		return d.Body, nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(d.Block.node); err != nil {
		return "", fmt.Errorf("frontmatter: serialize header: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("frontmatter: serialize header: %w", err)
	}

	var out strings.Builder
	out.WriteString(delimiter)
	out.WriteByte('\n')
	out.Write(buf.Bytes())
	out.WriteString(delimiter)
	out.WriteByte('\n')
	out.WriteString(d.Body)
	return out.String(), nil
}

// Get returns the scalar string value stored under key.
func (b *Block) Get(key string) (string, bool) {
	_, value := b.find(key)
	if value == nil || value.Kind != yaml.ScalarNode {
		return "", false
	}
	return value.Value, true
}

// Set replaces the scalar value stored under key, appending the key when it
// is absent. Existing key order is preserved.
func (b *Block) Set(key, value string) {
	_, node := b.find(key)
	if node != nil {
		node.SetString(value)
		return
	}
	keyNode := &yaml.Node{}
	keyNode.SetString(key)
	valueNode := &yaml.Node{}
	valueNode.SetString(value)
	b.node.Content = append(b.node.Content, keyNode, valueNode)
}

// Keys returns the block's keys in document order.
func (b *Block) Keys() []string {
	if b == nil || b.node == nil {
		return nil
	}
	keys := make([]string, 0, len(b.node.Content)/2)
	for i := 0; i+1 < len(b.node.Content); i += 2 {
		keys = append(keys, b.node.Content[i].Value)
	}
	return keys
}

// ImageEntries returns the allow-listed image fields with scalar string
// values, in document order, with document-relative line numbers.
func (b *Block) ImageEntries() []Entry {
	if b == nil || b.node == nil {
		return nil
	}
	var entries []Entry
	for i := 0; i+1 < len(b.node.Content); i += 2 {
		keyNode := b.node.Content[i]
		valueNode := b.node.Content[i+1]
		if !IsImageKey(keyNode.Value) || valueNode.Kind != yaml.ScalarNode {
			continue
		}
		if strings.TrimSpace(valueNode.Value) == "" {
			continue
		}
		entries = append(entries, Entry{
			Key:   keyNode.Value,
			Value: valueNode.Value,
			// yaml lines are 1-based within the header; the opening
			// delimiter occupies document line 1.
			Line: keyNode.Line + 1,
		})
	}
	return entries
}

func (b *Block) find(key string) (*yaml.Node, *yaml.Node) {
	if b == nil || b.node == nil {
		return nil, nil
	}
	for i := 0; i+1 < len(b.node.Content); i += 2 {
		if b.node.Content[i].Value == key {
			return b.node.Content[i], b.node.Content[i+1]
		}
	}
	return nil, nil
}
