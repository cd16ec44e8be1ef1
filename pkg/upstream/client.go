package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"seamark-hq/meridian/pkg/region"
	"seamark-hq/meridian/pkg/token"
)

// Client forwards requests to the vendor REST surface. It resolves the
// target host from the request's region, attaches the bearer credential
// held by the Carrier, and classifies every outcome into the error
// taxonomy.
//
// Execute performs exactly one network call per invocation: no caching
// and no internal retry. Retrying is the WithRetry wrapper's job.
type Client struct {
	config  ClientConfig
	carrier *token.Carrier
	client  *http.Client
	hosts   map[region.Region]string
}

// NewClient creates an upstream client with a pooled transport.
// The carrier must not be nil; it is read on every call.
func NewClient(config ClientConfig, carrier *token.Carrier) *Client {
	if config.APIPrefix == "" {
		config.APIPrefix = "/v2"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,
	}

	hosts := make(map[region.Region]string, len(config.Hosts))
	for r, h := range config.Hosts {
		hosts[r] = strings.TrimRight(h, "/")
	}

	return &Client{
		config:  config,
		carrier: carrier,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		hosts: hosts,
	}
}

// ResolveHost returns the base host URL serving the given region,
// honoring config overrides before the built-in table.
func (c *Client) ResolveHost(r region.Region) string {
	if h, ok := c.hosts[r]; ok {
		return h
	}
	return r.Host()
}

// Execute forwards one request to the vendor host for its region.
//
// The call fails fast with NoCredentialError when the Carrier is empty,
// before any URL is built or network traffic is generated. A non-2xx
// response becomes a typed error per the taxonomy; a transport failure
// becomes NetworkError.
func (c *Client) Execute(ctx context.Context, req ProxyRequest) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	credential, ok := c.carrier.Get()
	if !ok {
		return nil, &NoCredentialError{}
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	url := c.buildURL(req.Region, req.ResourcePath)

	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, &ValidationError{Field: "resourcePath", Message: err.Error()}
	}

	httpReq.Header.Set("Authorization", "Bearer "+credential)
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("forwarding upstream request",
		"method", method,
		"path", req.ResourcePath,
		"region", req.Region,
	)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Cause: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Result{
			StatusCode: resp.StatusCode,
			Body:       body,
			Attempts:   1,
		}, nil
	}

	return nil, classifyStatus(resp, req.ResourcePath, body)
}

// buildURL joins the resolved host, the API prefix, and the resource
// path. Paths that already carry the prefix are not double-prefixed.
func (c *Client) buildURL(r region.Region, resourcePath string) string {
	host := c.ResolveHost(r)
	path := "/" + strings.TrimLeft(resourcePath, "/")
	prefix := "/" + strings.Trim(c.config.APIPrefix, "/")
	if path == prefix || strings.HasPrefix(path, prefix+"/") {
		return host + path
	}
	return host + prefix + path
}

// classifyStatus maps a non-2xx vendor response to its taxonomy error.
func classifyStatus(resp *http.Response, path string, body []byte) error {
	message := strings.TrimSpace(string(body))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{StatusCode: resp.StatusCode, Message: message}
	case http.StatusNotFound:
		return &NotFoundError{Path: path, Message: message}
	case http.StatusTooManyRequests:
		return &RateLimitError{
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    message,
		}
	default:
		return &HTTPError{StatusCode: resp.StatusCode, Message: message}
	}
}

// validateRequest rejects requests that cannot be forwarded. The
// resource path must be host-relative: absolute URLs would turn the
// proxy into an open relay.
func validateRequest(req ProxyRequest) error {
	path := req.ResourcePath
	if path == "" {
		return &ValidationError{Field: "resourcePath", Message: "must not be empty"}
	}
	if strings.Contains(path, "://") {
		return &ValidationError{Field: "resourcePath", Message: "must be a path, not a URL"}
	}
	if strings.Contains(path, "..") {
		return &ValidationError{Field: "resourcePath", Message: "must not contain path traversal"}
	}
	return nil
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
