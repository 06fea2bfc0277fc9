package imagekit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/goliatone/go-vaultmedia/internal/httpclient"
	"github.com/goliatone/go-vaultmedia/internal/logging"
	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

// ErrMissingPrivateKey reports a client built without credentials.
var ErrMissingPrivateKey = errors.New("imagekit: private key is required")

// ErrMissingFileName reports an upload without a target file name.
var ErrMissingFileName = errors.New("imagekit: file name is required")

// ErrEmptyPayload reports an upload with no bytes.
var ErrEmptyPayload = errors.New("imagekit: payload is empty")

// ServiceError carries a non-2xx response from the upload service.
type ServiceError struct {
	Status int
	Body   string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("imagekit: service error %d: %s", e.Status, e.Body)
}

// Config wires the upload client.
type Config struct {
	PrivateKey     string
	UploadEndpoint string
	HTTP           *httpclient.Client
	Logger         interfaces.Logger
}

// Client implements interfaces.Uploader against an ImageKit-style API. The
// private key authenticates via HTTP basic auth with an empty password.
type Client struct {
	privateKey     string
	uploadEndpoint string
	http           *httpclient.Client
	logger         interfaces.Logger
}

var _ interfaces.Uploader = (*Client)(nil)

// New constructs a Client.
func New(cfg Config) *Client {
	httpc := cfg.HTTP
	if httpc == nil {
		httpc = httpclient.New(httpclient.Options{})
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Client{
		privateKey:     strings.TrimSpace(cfg.PrivateKey),
		uploadEndpoint: cfg.UploadEndpoint,
		http:           httpc,
		logger:         logger,
	}
}

type uploadResponse struct {
	FileID       string   `json:"fileId"`
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	FilePath     string   `json:"filePath"`
	FileType     string   `json:"fileType"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Size         int64    `json:"size"`
	Tags         []string `json:"tags"`
	IsPrivate    bool     `json:"isPrivateFile"`
}

// Upload sends req.Data as a multipart form. The multipart writer handles
// boundary framing, so arbitrary binary payloads survive unmodified.
func (c *Client) Upload(ctx context.Context, req interfaces.UploadRequest) (*interfaces.UploadResult, error) {
	if c.privateKey == "" {
		return nil, ErrMissingPrivateKey
	}
	if strings.TrimSpace(req.FileName) == "" {
		return nil, ErrMissingFileName
	}
	if len(req.Data) == 0 {
		return nil, ErrEmptyPayload
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	if err := form.WriteField("fileName", req.FileName); err != nil {
		return nil, fmt.Errorf("imagekit: write field: %w", err)
	}
	if req.Folder != "" {
		if err := form.WriteField("folder", req.Folder); err != nil {
			return nil, fmt.Errorf("imagekit: write field: %w", err)
		}
	}
	if len(req.Tags) > 0 {
		if err := form.WriteField("tags", strings.Join(req.Tags, ",")); err != nil {
			return nil, fmt.Errorf("imagekit: write field: %w", err)
		}
	}
	part, err := form.CreateFormFile("file", req.FileName)
	if err != nil {
		return nil, fmt.Errorf("imagekit: create file part: %w", err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, fmt.Errorf("imagekit: write payload: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("imagekit: finalize form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadEndpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("imagekit: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.SetBasicAuth(c.privateKey, "")

	c.logger.Debug("imagekit.upload", "file_name", req.FileName, "folder", req.Folder, "bytes", len(req.Data))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("imagekit: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("imagekit: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServiceError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var decoded uploadResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("imagekit: decode response: %w", err)
	}

	return &interfaces.UploadResult{
		FileID:       decoded.FileID,
		Name:         decoded.Name,
		RemoteURL:    decoded.URL,
		ThumbnailURL: decoded.ThumbnailURL,
		FilePath:     decoded.FilePath,
		FileType:     decoded.FileType,
		Width:        decoded.Width,
		Height:       decoded.Height,
		Size:         decoded.Size,
		Tags:         decoded.Tags,
		IsPrivate:    decoded.IsPrivate,
	}, nil
}
