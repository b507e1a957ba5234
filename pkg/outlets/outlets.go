package outlets

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

// Client talks to the outlet directory service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ contractx.OutletLookup = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errors.New("outlets url is required")
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

type lookupResponse struct {
	Results []contractx.OutletRecord `json:"results"`
	Count   int                      `json:"count"`
	Success bool                     `json:"success"`
}

func (c *Client) Lookup(ctx context.Context, query string) ([]contractx.OutletRecord, error) {
	endpoint := c.baseURL + "/outlets?query=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build outlets request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute outlets request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read outlets response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("outlets http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed lookupResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode outlets response: %w", err)
	}
	if !parsed.Success {
		return nil, errors.New("outlet lookup reported failure")
	}

	return parsed.Results, nil
}
