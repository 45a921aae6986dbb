package discourse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"forumdump/pkg/config"
	"forumdump/pkg/errors"
	"forumdump/pkg/logger"
	"forumdump/pkg/ratelimit"
	"forumdump/pkg/retry"
)

// Client talks to a single Discourse forum
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    *url.URL
	limiter    ratelimit.Limiter
	retry      retry.Policy
	logger     logger.Logger
}

// NewClient creates a client for the forum rooted at baseURL.
// Every network call waits on limiter first; a nil limiter never blocks.
func NewClient(baseURL string, cfg *config.Config, limiter ratelimit.Limiter, log logger.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", errors.ErrInvalidBaseURL, baseURL)
	}

	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited()
	}
	if log == nil {
		log = logger.GetLogger()
	}

	headers := map[string]string{
		"User-Agent": cfg.Forum.UserAgent,
	}
	if cfg.Forum.Accept != "" {
		headers["Accept"] = cfg.Forum.Accept
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Download.Timeout,
		},
		headers: headers,
		baseURL: base,
		limiter: limiter,
		retry: retry.Policy{
			MaxAttempts: cfg.RateLimit.MaxAttempts,
			Backoff:     retry.DefaultExponentialBackoff(cfg.RateLimit.RetryDelay),
			Logger:      log,
		},
		logger: log,
	}, nil
}

// BaseURL returns the forum root the client resolves paths against
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ResolveURL resolves ref against the forum base URL. Absolute URLs are returned unchanged.
func (c *Client) ResolveURL(ref string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("invalid URL reference: %v", err),
			URL:     ref,
			Err:     err,
		}
	}
	return c.baseURL.ResolveReference(u).String(), nil
}

// doRequest performs a single paced GET with the configured headers
func (c *Client) doRequest(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			URL:     rawURL,
			Err:     err,
		}
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    rawURL,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"url":      rawURL,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			URL:     rawURL,
			Err:     err,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      rawURL,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if err := checkResponseStatus(resp, rawURL); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp, nil
}

// checkResponseStatus maps non-2xx statuses onto typed errors
func checkResponseStatus(resp *http.Response, rawURL string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message := http.StatusText(resp.StatusCode)
	if message == "" {
		message = fmt.Sprintf("unexpected status code: %d", resp.StatusCode)
	}

	return &errors.Error{
		Type:    errors.TypeForStatus(resp.StatusCode),
		Message: strings.ToLower(message),
		Code:    resp.StatusCode,
		URL:     rawURL,
	}
}

// fetch resolves ref and reads its body, retrying transient failures
func (c *Client) fetch(ctx context.Context, ref string) ([]byte, error) {
	rawURL, err := c.ResolveURL(ref)
	if err != nil {
		return nil, err
	}

	return retry.DoWithResult(ctx, c.retry, func() ([]byte, error) {
		return c.fetchOnce(ctx, rawURL)
	})
}

func (c *Client) fetchOnce(ctx context.Context, rawURL string) ([]byte, error) {
	defer c.limiter.Done()

	resp, err := c.doRequest(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
			URL:     rawURL,
			Err:     err,
		}
	}

	return body, nil
}

// GetRaw fetches resourcePath and returns the body verbatim once it is known to be JSON
func (c *Client) GetRaw(ctx context.Context, resourcePath string) (json.RawMessage, error) {
	body, err := c.fetch(ctx, resourcePath)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.DebugWithFields("response is not JSON", map[string]interface{}{
			"resource":     resourcePath,
			"body_preview": preview,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: "response body is not valid JSON",
			Code:    http.StatusOK,
			URL:     resourcePath,
		}
	}

	return json.RawMessage(body), nil
}

// Download fetches the raw bytes behind rawURL
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	c.logger.DebugWithFields("downloading image", map[string]interface{}{
		"url": rawURL,
	})

	data, err := c.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	c.logger.DebugWithFields("downloaded image", map[string]interface{}{
		"url":  rawURL,
		"size": len(data),
	})

	return data, nil
}
