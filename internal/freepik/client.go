package freepik

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-vaultmedia/internal/httpclient"
	"github.com/goliatone/go-vaultmedia/internal/logging"
	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

// ErrMissingAPIKey reports a client built without credentials.
var ErrMissingAPIKey = errors.New("freepik: api key is required")

// ErrEmptyTerm reports a search without a query term.
var ErrEmptyTerm = errors.New("freepik: search term is required")

const (
	resourcesPath = "/v1/resources"
	apiKeyHeader  = "x-freepik-api-key"
)

// ServiceError carries a non-2xx response from the search service.
type ServiceError struct {
	Status int
	Body   string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("freepik: service error %d: %s", e.Status, e.Body)
}

// Config wires the search client. PerPage and CleanSearch act as request
// defaults when the caller leaves them unset.
type Config struct {
	APIKey      string
	BaseURL     string
	PerPage     int
	CleanSearch bool
	HTTP        *httpclient.Client
	Logger      interfaces.Logger
}

// Client implements interfaces.Searcher against a Freepik-style API.
type Client struct {
	apiKey      string
	baseURL     string
	perPage     int
	cleanSearch bool
	http        *httpclient.Client
	logger      interfaces.Logger
}

var _ interfaces.Searcher = (*Client)(nil)

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
		apiKey:      strings.TrimSpace(cfg.APIKey),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		perPage:     cfg.PerPage,
		cleanSearch: cfg.CleanSearch,
		http:        httpc,
		logger:      logger,
	}
}

type searchResponse struct {
	Data []struct {
		ID    json.Number `json:"id"`
		Title string      `json:"title"`
		URL   string      `json:"url"`
		Image struct {
			Source struct {
				URL  string `json:"url"`
				Size int64  `json:"size"`
			} `json:"source"`
		} `json:"image"`
		Author struct {
			Name string `json:"name"`
		} `json:"author"`
	} `json:"data"`
	Meta struct {
		CurrentPage int `json:"current_page"`
		LastPage    int `json:"last_page"`
		PerPage     int `json:"per_page"`
		Total       int `json:"total"`
	} `json:"meta"`
}

// Search queries stock images for req.Term.
func (c *Client) Search(ctx context.Context, req interfaces.SearchRequest) (*interfaces.SearchResult, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(req.Term) == "" {
		return nil, ErrEmptyTerm
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = c.perPage
	}

	query := url.Values{}
	query.Set("term", req.Term)
	if req.Page > 0 {
		query.Set("page", strconv.Itoa(req.Page))
	}
	if perPage > 0 {
		query.Set("per_page", strconv.Itoa(perPage))
	}
	if req.CleanSearch || c.cleanSearch {
		query.Set("clean_search", "1")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+resourcesPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("freepik: build request: %w", err)
	}
	httpReq.Header.Set(apiKeyHeader, c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug("freepik.search", "term", req.Term, "page", req.Page, "per_page", req.PerPage)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("freepik: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("freepik: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServiceError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var decoded searchResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("freepik: decode response: %w", err)
	}

	result := &interfaces.SearchResult{
		Meta: interfaces.SearchMeta{
			CurrentPage: decoded.Meta.CurrentPage,
			LastPage:    decoded.Meta.LastPage,
			PerPage:     decoded.Meta.PerPage,
			Total:       decoded.Meta.Total,
		},
	}
	for _, item := range decoded.Data {
		result.Items = append(result.Items, interfaces.SearchItem{
			ID:     item.ID.String(),
			Title:  item.Title,
			URL:    item.URL,
			Author: item.Author.Name,
			Source: interfaces.ImageSource{
				URL:  item.Image.Source.URL,
				Size: item.Image.Source.Size,
			},
		})
	}
	return result, nil
}
