package kundoluk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gokundoluk/internal"

	"github.com/PuerkitoBio/goquery"
)

// ClientConfig holds connection settings for the gradebook site
type ClientConfig struct {
	BaseURL   string
	Session   string
	UserAgent string
	Timeout   time.Duration
}

// Client talks to the Kundoluk journal pages. It is safe for concurrent use;
// the only state shared between calls is the underlying http.Client.
type Client struct {
	baseURL   *url.URL
	session   string
	userAgent string
	http      *http.Client
	logger    *internal.Logger
}

// NewClient creates a gradebook client
func NewClient(cfg ClientConfig, logger *internal.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", cfg.BaseURL)
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:   base,
		session:   cfg.Session,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
	}, nil
}

// resolve turns a possibly relative href into an absolute URL
func (c *Client) resolve(ref string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	return c.baseURL.ResolveReference(u).String(), nil
}

// document performs a GET and parses the response body as HTML
func (c *Client) document(ctx context.Context, rawURL string, query url.Values) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Cookie", fmt.Sprintf("language=ru; session=%s", c.session))
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Trace("GET %s -> %d in %s", req.URL.String(), resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL.Path)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
