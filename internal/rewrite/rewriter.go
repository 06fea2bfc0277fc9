package rewrite

import (
	"fmt"
	"path"
	"strings"
)

// MarkdownImage renders the markdown image reference embedded into document
// text after conversion, e.g. MarkdownImage("img/b.png", "https://cdn/x") ->
// "![b.png](https://cdn/x)". The link text is the file's base name.
func MarkdownImage(localPath, url string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(localPath), "\\", "/"))
	return fmt.Sprintf("![%s](%s)", name, url)
}

// EmbedReference renders the vault embed syntax for a path.
func EmbedReference(localPath string) string {
	return "![[" + localPath + "]]"
}

// ReplaceAll substitutes every literal occurrence of match in text with
// replacement. The match is treated as a literal string, never a pattern, so
// embed syntax brackets and other metacharacters need no escaping.
func ReplaceAll(text, match, replacement string) string {
	if match == "" {
		return text
	}
	return strings.ReplaceAll(text, match, replacement)
}

// ReplaceOccurrence substitutes only the index-th (0-based) literal
// occurrence of match in text, leaving every other occurrence byte-for-byte
// intact. Out-of-range indexes return the text unchanged.
func ReplaceOccurrence(text, match, replacement string, index int) string {
	if match == "" || index < 0 {
		return text
	}

	offset := 0
	for n := 0; ; n++ {
		pos := strings.Index(text[offset:], match)
		if pos < 0 {
			return text
		}
		pos += offset
		if n == index {
			return text[:pos] + replacement + text[pos+len(match):]
		}
		offset = pos + len(match)
	}
}

// CountOccurrences reports how many literal occurrences of match exist in
// text. Callers use it to map a reference back to its occurrence index when
// the same embed appears several times in one document.
func CountOccurrences(text, match string) int {
	if match == "" {
		return 0
	}
	return strings.Count(text, match)
}
