package pathclass

import (
	"net/url"
	"path"
	"strings"
)

// Kind is the classification assigned to a candidate reference string.
type Kind int

const (
	// NotAnImage covers strings that are neither URLs nor local image paths.
	NotAnImage Kind = iota
	// Remote covers URLs pointing outside the configured CDN.
	Remote
	// AlreadyOnCDN covers URLs already served by the configured CDN.
	AlreadyOnCDN
	// LocalImage covers vault-relative paths with a recognized image extension.
	LocalImage
)

// String renders the classification for diagnostics.
func (k Kind) String() string {
	switch k {
	case Remote:
		return "remote"
	case AlreadyOnCDN:
		return "already_on_cdn"
	case LocalImage:
		return "local_image"
	default:
		return "not_an_image"
	}
}

// imageExtensions is the fixed allow-list of local image file extensions.
var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
	".gif":  {},
	".svg":  {},
}

// Classifier decides whether a candidate string found in a document is a
// remote URL, a URL already served by the CDN, or a local image reference.
type Classifier struct {
	cdnHost     string
	urlEndpoint string
}

// Config captures the CDN identity used for already-on-CDN detection.
type Config struct {
	// CDNHost is the bare host of the CDN (e.g. "ik.imagekit.io"). Optional
	// when URLEndpoint is set; it is derived from the endpoint otherwise.
	CDNHost string
	// URLEndpoint is the configured public URL prefix for uploaded files.
	URLEndpoint string
}

// New constructs a Classifier from the supplied CDN configuration.
func New(cfg Config) *Classifier {
	host := strings.ToLower(strings.TrimSpace(cfg.CDNHost))
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.URLEndpoint), "/")
	if host == "" && endpoint != "" {
		if parsed, err := url.Parse(endpoint); err == nil {
			host = strings.ToLower(parsed.Host)
		}
	}
	return &Classifier{cdnHost: host, urlEndpoint: endpoint}
}

// Classify applies the classification rules to candidate. Scheme-prefixed
// strings are Remote unless they match the CDN host or URL-endpoint prefix.
// Everything else is checked against the image extension allow-list; a path
// whose final segment carries no recognized extension (including paths with
// trailing query or fragment decorations) is NotAnImage.
func (c *Classifier) Classify(candidate string) Kind {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return NotAnImage
	}

	if hasScheme(candidate) {
		if c.isOnCDN(candidate) {
			return AlreadyOnCDN
		}
		return Remote
	}

	if hasImageExtension(candidate) {
		return LocalImage
	}
	return NotAnImage
}

// IsLocalImage is a convenience wrapper for the common scanner check.
func (c *Classifier) IsLocalImage(candidate string) bool {
	return c.Classify(candidate) == LocalImage
}

func (c *Classifier) isOnCDN(candidate string) bool {
	if c.urlEndpoint != "" && strings.HasPrefix(candidate, c.urlEndpoint) {
		return true
	}
	if c.cdnHost == "" {
		return false
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Host, c.cdnHost)
}

func hasScheme(candidate string) bool {
	idx := strings.Index(candidate, "://")
	if idx <= 0 {
		return false
	}
	scheme := candidate[:idx]
	for i, r := range scheme {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

func hasImageExtension(candidate string) bool {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(candidate, "\\", "/"))))
	_, ok := imageExtensions[ext]
	return ok
}
