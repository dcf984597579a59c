// Package engine talks to the external simulation engine over HTTP.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sarchlab/pipeviz/log"
	"github.com/sarchlab/pipeviz/snapshot"
)

// DefaultURL is the base URL of a locally running engine.
const DefaultURL = "http://localhost:8080/mips"

// invalidText is the error code the engine returns for unusable source.
const invalidText = "INVALID_TEXT"

// maxErrorBody bounds how much of a failed response is kept in a StatusError.
const maxErrorBody = 256

// Summary is the final state of one engine run.
type Summary struct {
	Clocks     int     `json:"clocks"`
	Throughput float64 `json:"throughput"`
}

// Comparison holds the results of running the same text without and with
// data forwarding.
type Comparison struct {
	Slower Summary
	Faster Summary
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds every request. Zero means no bound beyond the caller's
// context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// Client issues form-encoded requests to the engine.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	log     log.Logger
}

// NewClient creates a client for the engine rooted at baseURL. An empty
// baseURL selects DefaultURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}

	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{},
		log:  log.NewNullLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the engine base URL.
func (c *Client) BaseURL() string {
	return c.base
}

// Execute runs text on the engine and returns one snapshot per cycle.
func (c *Client) Execute(ctx context.Context, text string, forwarding bool) (snapshot.Sequence, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("data_forwarding", "0")
	if forwarding {
		form.Set("data_forwarding", "1")
	}

	var resp struct {
		Result json.RawMessage `json:"result"`
	}
	if err := c.post(ctx, "/execute", form, &resp); err != nil {
		return nil, err
	}

	if len(resp.Result) == 0 {
		return nil, fmt.Errorf("%w: /execute has no result", ErrMalformedResponse)
	}

	seq, err := snapshot.ParseSequence(resp.Result)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	c.log.Debugf("engine: /execute returned %d snapshots", len(seq))
	return seq, nil
}

// Compile asks the engine to assemble text and returns the assembled form.
func (c *Client) Compile(ctx context.Context, text string) (string, error) {
	form := url.Values{}
	form.Set("text", text)

	var resp struct {
		Result *string `json:"result"`
	}
	if err := c.post(ctx, "/compile", form, &resp); err != nil {
		return "", err
	}

	if resp.Result == nil {
		return "", fmt.Errorf("%w: /compile has no result", ErrMalformedResponse)
	}

	return *resp.Result, nil
}

// Compare runs text without and with data forwarding.
func (c *Client) Compare(ctx context.Context, text string) (*Comparison, error) {
	form := url.Values{}
	form.Set("text", text)

	var resp struct {
		SlowerMIPS *Summary `json:"slower_mips"`
		FasterMIPS *Summary `json:"faster_mips"`
		Slower     *Summary `json:"slower"`
		Faster     *Summary `json:"faster"`
	}
	if err := c.post(ctx, "/compare", form, &resp); err != nil {
		return nil, err
	}

	slower := firstSummary(resp.SlowerMIPS, resp.Slower)
	faster := firstSummary(resp.FasterMIPS, resp.Faster)
	if slower == nil || faster == nil {
		return nil, fmt.Errorf("%w: /compare needs two summaries", ErrMalformedResponse)
	}

	return &Comparison{Slower: *slower, Faster: *faster}, nil
}

func firstSummary(candidates ...*Summary) *Summary {
	for _, s := range candidates {
		if s != nil {
			return s
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	c.log.Debugf("engine: POST %s", req.URL)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach engine: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Path:   path,
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   truncate(string(bytes.TrimSpace(body)), maxErrorBody),
		}
	}

	var envelope struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if envelope.Error != nil {
		if *envelope.Error == invalidText {
			return ErrInvalidText
		}
		return fmt.Errorf("%w: %s", ErrEngine, *envelope.Error)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
