package interfaces

import "context"

// Uploader pushes binary payloads to a CDN-style storage service and returns
// the canonical public URL for the stored file.
type Uploader interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
}

// UploadRequest carries the payload and metadata for a single upload.
type UploadRequest struct {
	FileName string
	Folder   string
	Tags     []string
	Data     []byte
}

// UploadResult mirrors the CDN upload response. Ownership transfers to the
// caller; the rewriter embeds RemoteURL into document text and discards the
// rest.
type UploadResult struct {
	FileID       string
	Name         string
	RemoteURL    string
	ThumbnailURL string
	FilePath     string
	FileType     string
	Width        int
	Height       int
	Size         int64
	Tags         []string
	IsPrivate    bool
}

// Generator produces AI images from a text prompt.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

// GenerateRequest models the generation payload. Style and StyleID are
// mutually exclusive; Substyle only applies alongside Style.
type GenerateRequest struct {
	Prompt         string
	Width          int
	Height         int
	Model          string
	N              int
	ResponseFormat string
	Style          string
	StyleID        string
	Substyle       string
}

// GeneratedImage is a single produced image. URL is set when the response
// format is "url"; B64JSON carries inline payloads otherwise.
type GeneratedImage struct {
	URL     string
	ImageID string
	B64JSON string
}

// GenerateResult reports produced images plus service accounting fields.
type GenerateResult struct {
	Created int64
	Credits int
	Images  []GeneratedImage
}

// Searcher queries a stock-image catalogue.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
}

// SearchRequest captures the supported query surface.
type SearchRequest struct {
	Term        string
	Page        int
	PerPage     int
	CleanSearch bool
}

// SearchItem is one catalogue hit with its downloadable source image.
type SearchItem struct {
	ID     string
	Title  string
	URL    string
	Author string
	Source ImageSource
}

// ImageSource points at the downloadable representation of a search hit.
type ImageSource struct {
	URL  string
	Size int64
}

// SearchMeta carries pagination state for a result page.
type SearchMeta struct {
	CurrentPage int
	LastPage    int
	PerPage     int
	Total       int
}

// SearchResult is one page of catalogue hits.
type SearchResult struct {
	Items []SearchItem
	Meta  SearchMeta
}

// Downloader fetches a remote image payload.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}
