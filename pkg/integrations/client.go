package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/blockmondrian/pkg/cache"
	"github.com/matzehuels/blockmondrian/pkg/httputil"
	"github.com/matzehuels/blockmondrian/pkg/observability"
)

// Client provides shared HTTP functionality for block data API clients.
// It handles caching, retry logic, and common request headers.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
}

// NewClient creates a Client that caches decoded responses in c under
// namespace for ttl. Headers are applied to all requests; nil is allowed.
// A nil cache disables caching.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
	}
}

// SetTimeout bounds each request. Non-positive values are ignored.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.http.Timeout = d
	}
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
// Cache failures are treated as misses.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	ck := c.keyer.HTTPKey(c.namespace, key)
	hooks := observability.Cache()

	if !refresh {
		if data, ok, err := c.cache.Get(ctx, ck); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				hooks.OnCacheHit(ctx, "http")
				return nil
			}
		}
		hooks.OnCacheMiss(ctx, "http")
	}

	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}

	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, ck, data, c.ttl) == nil {
			hooks.OnCacheSet(ctx, "http", len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, rawURL string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := hostPath(req.URL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func hostPath(u *url.URL) (string, string) {
	if u == nil {
		return "", ""
	}
	return u.Host, u.Path
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests, code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
