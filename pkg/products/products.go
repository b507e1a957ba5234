package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/weiheng-lim/kopibot/agent/contract"
)

const maxResponseSizeBytes = 2 << 20

type Config struct {
	URL     string        `split_words:"true" default:"http://localhost:8000"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

// Client talks to the product knowledge-base service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ contractx.ProductSearcher = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errors.New("products url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

type searchResponse struct {
	Query   string `json:"query"`
	Answer  string `json:"answer"`
	Success bool   `json:"success"`
}

func (c *Client) Search(ctx context.Context, query string) (contractx.ProductAnswer, error) {
	endpoint := c.baseURL + "/products?query=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return contractx.ProductAnswer{}, fmt.Errorf("build products request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return contractx.ProductAnswer{}, fmt.Errorf("execute products request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return contractx.ProductAnswer{}, fmt.Errorf("read products response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return contractx.ProductAnswer{}, fmt.Errorf("products http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return contractx.ProductAnswer{}, fmt.Errorf("decode products response: %w", err)
	}

	return contractx.ProductAnswer{
		Answer:  parsed.Answer,
		Success: parsed.Success,
	}, nil
}
