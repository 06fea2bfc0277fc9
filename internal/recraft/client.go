package recraft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-vaultmedia/internal/httpclient"
	"github.com/goliatone/go-vaultmedia/internal/logging"
	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

// ErrMissingAPIKey reports a client built without credentials.
var ErrMissingAPIKey = errors.New("recraft: api key is required")

// ErrEmptyResponse reports a success status with no generated images.
var ErrEmptyResponse = errors.New("recraft: response contained no images")

const generationsPath = "/v1/images/generations"

// ServiceError carries a non-2xx response from the generation service.
type ServiceError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("recraft: service error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("recraft: service error %d", e.Status)
}

// Config wires the generation client.
type Config struct {
	APIKey  string
	BaseURL string
	HTTP    *httpclient.Client
	Logger  interfaces.Logger
}

// Client implements interfaces.Generator against a Recraft-style API.
type Client struct {
	apiKey  string
	baseURL string
	http    *httpclient.Client
	logger  interfaces.Logger
}

var _ interfaces.Generator = (*Client)(nil)

// New constructs a Client. The API key is validated at call time so a
// disabled feature can still construct its wiring.
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
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpc,
		logger:  logger,
	}
}

type generateBody struct {
	Prompt         string `json:"prompt"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	Model          string `json:"model,omitempty"`
	N              int    `json:"n,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
	Style          string `json:"style,omitempty"`
	StyleID        string `json:"style_id,omitempty"`
	Substyle       string `json:"substyle,omitempty"`
}

type generateResponse struct {
	Created int64 `json:"created"`
	Credits int   `json:"credits"`
	Data    []struct {
		URL     string `json:"url"`
		ImageID string `json:"image_id"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate requests images for req.Prompt. A style ID wins over a named
// style when both are set.
func (c *Client) Generate(ctx context.Context, req interfaces.GenerateRequest) (*interfaces.GenerateResult, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body := generateBody{
		Prompt:         req.Prompt,
		Width:          req.Width,
		Height:         req.Height,
		Model:          req.Model,
		N:              req.N,
		ResponseFormat: req.ResponseFormat,
		Substyle:       req.Substyle,
	}
	if req.StyleID != "" {
		body.StyleID = req.StyleID
	} else {
		body.Style = req.Style
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("recraft: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generationsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("recraft: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug("recraft.generate", "model", body.Model, "width", body.Width, "height", body.Height, "n", body.N)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("recraft: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("recraft: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeServiceError(resp.StatusCode, raw)
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("recraft: decode response: %w", err)
	}
	if len(decoded.Data) == 0 {
		return nil, ErrEmptyResponse
	}

	result := &interfaces.GenerateResult{
		Created: decoded.Created,
		Credits: decoded.Credits,
	}
	for _, item := range decoded.Data {
		result.Images = append(result.Images, interfaces.GeneratedImage{
			URL:     item.URL,
			ImageID: item.ImageID,
			B64JSON: item.B64JSON,
		})
	}
	return result, nil
}

func decodeServiceError(status int, raw []byte) error {
	svcErr := &ServiceError{Status: status}
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil {
		svcErr.Code = envelope.Error.Code
		svcErr.Message = envelope.Error.Message
	}
	if svcErr.Message == "" {
		svcErr.Message = strings.TrimSpace(string(raw))
	}
	return svcErr
}
