package stdict

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Upstream call outcomes reported to an Observer
const (
	OutcomeOK              = "ok"
	OutcomeUpstreamError   = "upstream_error"
	OutcomeTransportError  = "transport_error"
	OutcomeValidationError = "validation_error"
)

// ErrBodyTooLarge is the TransportError cause when a response exceeds ClientConfig.MaxBodyBytes.
var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// Observer receives one notification per Search or Detail call.
type Observer interface {
	ObserveUpstream(endpoint, outcome string, duration time.Duration)
}

// ClientConfig contains configuration for the dictionary client
type ClientConfig struct {
	SearchURL    string
	ViewURL      string
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
}

// DefaultClientConfig returns the production endpoints with a 10 second timeout.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		SearchURL:    DefaultSearchURL,
		ViewURL:      DefaultViewURL,
		Timeout:      10 * time.Second,
		MaxBodyBytes: 8 << 20,
		UserAgent:    "stdict-mcp",
	}
}

// Client performs search.do and view.do calls and relays the body unmodified.
type Client struct {
	http      *http.Client
	searchURL *url.URL
	viewURL   *url.URL
	maxBody   int64
	userAgent string
	observer  Observer
	logger    zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is left as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithObserver registers an Observer for upstream call outcomes.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger.With().Str("component", "stdict_client").Logger() }
}

// NewClient creates a dictionary client.
func NewClient(cfg ClientConfig, opts ...Option) (*Client, error) {
	searchURL, err := parseEndpoint(cfg.SearchURL)
	if err != nil {
		return nil, fmt.Errorf("search url: %w", err)
	}
	viewURL, err := parseEndpoint(cfg.ViewURL)
	if err != nil {
		return nil, fmt.Errorf("view url: %w", err)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultClientConfig().MaxBodyBytes
	}

	c := &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		searchURL: searchURL,
		viewURL:   viewURL,
		maxBody:   cfg.MaxBodyBytes,
		userAgent: cfg.UserAgent,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func parseEndpoint(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in %q", raw)
	}
	return u, nil
}

// Search validates req and returns the raw search.do body.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]byte, error) {
	params, err := ValidateSearch(req)
	if err != nil {
		c.observe("search", OutcomeValidationError, 0)
		return nil, err
	}
	return c.get(ctx, "search", c.searchURL, params.Encode(), params.ReqType)
}

// Detail validates req and returns the raw view.do body.
func (c *Client) Detail(ctx context.Context, req DetailRequest) ([]byte, error) {
	params, err := ValidateDetail(req)
	if err != nil {
		c.observe("detail", OutcomeValidationError, 0)
		return nil, err
	}
	return c.get(ctx, "detail", c.viewURL, params.Encode(), params.ReqType)
}

func (c *Client) get(ctx context.Context, name string, endpoint *url.URL, rawQuery, reqType string) ([]byte, error) {
	start := time.Now()

	target := *endpoint
	target.RawQuery = rawQuery

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, c.transportFailure(name, endpoint, err, start)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if reqType == ReqTypeJSON {
		req.Header.Set("Accept", "application/json")
	} else {
		req.Header.Set("Accept", "application/xml, text/xml")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportFailure(name, endpoint, redactURLError(err, endpoint), start)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, c.transportFailure(name, endpoint, redactURLError(err, endpoint), start)
	}
	if int64(len(body)) > c.maxBody {
		return nil, c.transportFailure(name, endpoint, ErrBodyTooLarge, start)
	}

	duration := time.Since(start)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observe(name, OutcomeUpstreamError, duration)
		c.logger.Debug().
			Str("endpoint", name).
			Int("status", resp.StatusCode).
			Dur("duration", duration).
			Msg("Upstream returned non-2xx status")
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: body}
	}

	if code, msg, ok := detectAPIError(body); ok {
		c.observe(name, OutcomeUpstreamError, duration)
		c.logger.Debug().
			Str("endpoint", name).
			Str("api_code", code).
			Dur("duration", duration).
			Msg("Upstream returned error payload")
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: body, APICode: code, APIMessage: msg}
	}

	c.observe(name, OutcomeOK, duration)
	c.logger.Debug().
		Str("endpoint", name).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", duration).
		Msg("Upstream request completed")

	return body, nil
}

func (c *Client) transportFailure(name string, endpoint *url.URL, cause error, start time.Time) error {
	c.observe(name, OutcomeTransportError, time.Since(start))
	c.logger.Debug().
		Err(cause).
		Str("endpoint", name).
		Msg("Upstream request failed")
	return &TransportError{Endpoint: endpoint.String(), Cause: cause}
}

func (c *Client) observe(name, outcome string, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstream(name, outcome, d)
	}
}

// redactURLError strips the query string (which carries the API key) from
// *url.Error messages.
func redactURLError(err error, endpoint *url.URL) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: endpoint.String(), Err: ue.Err}
	}
	return err
}

// apiErrorCode accepts both "020" and 20 encodings.
type apiErrorCode string

func (c *apiErrorCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = apiErrorCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = apiErrorCode(n.String())
	return nil
}

type jsonErrorEnvelope struct {
	Error *struct {
		Code    apiErrorCode `json:"error_code"`
		Message string       `json:"message"`
	} `json:"error"`
}

type xmlErrorEnvelope struct {
	Code    string `xml:"error_code"`
	Message string `xml:"message"`
}

// detectAPIError recognizes the upstream error envelope by its root element
// only. Other bodies are left alone.
func detectAPIError(body []byte) (code, message string, ok bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", "", false
	}

	switch trimmed[0] {
	case '{':
		var env jsonErrorEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil || env.Error == nil {
			return "", "", false
		}
		return string(env.Error.Code), env.Error.Message, true
	case '<':
		dec := xml.NewDecoder(bytes.NewReader(trimmed))
		for {
			tok, err := dec.Token()
			if err != nil {
				return "", "", false
			}
			start, isStart := tok.(xml.StartElement)
			if !isStart {
				continue
			}
			if start.Name.Local != "error" {
				return "", "", false
			}
			var env xmlErrorEnvelope
			if err := dec.DecodeElement(&env, &start); err != nil {
				return "", "", false
			}
			return env.Code, env.Message, true
		}
	}
	return "", "", false
}
