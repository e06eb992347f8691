package integration

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

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// HTTPClient is the shared outbound client for all vendor connectors. It
// applies a per-vendor rate limit before each attempt and retries retryable
// failures with exponential backoff.
type HTTPClient struct {
	vendor     string
	base       *http.Client
	limiter    *rate.Limiter
	maxRetries uint64
}

// NewHTTPClient builds a vendor-scoped client. rps caps outbound requests per
// second; maxRetries bounds retry attempts for retryable errors.
func NewHTTPClient(vendor string, rps float64, maxRetries int) *HTTPClient {
	if rps <= 0 {
		rps = 5
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &HTTPClient{
		vendor:     vendor,
		base:       &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		maxRetries: uint64(maxRetries),
	}
}

// Request describes one vendor API call.
type Request struct {
	Method  string
	URL     string
	Query   map[string]string
	Headers map[string]string
	// Body is JSON-encoded when non-nil. Form takes precedence when set.
	Body any
	Form  map[string]string
}

// DoJSON executes the request and returns the raw response body. Transient
// failures (429, 5xx, transport errors) are retried; other non-2xx statuses
// fail immediately with a fatal VendorError.
func (c *HTTPClient) DoJSON(ctx context.Context, op string, req Request) ([]byte, error) {
	var body []byte

	attempt := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		httpReq, err := c.buildRequest(ctx, req)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.base.Do(httpReq)
		if err != nil {
			// Transport-level failure, worth retrying.
			return &VendorError{Vendor: c.vendor, Operation: op, Message: err.Error(), Retryable: true}
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return &VendorError{Vendor: c.vendor, Operation: op, Message: err.Error(), Retryable: true}
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			body = b
			return nil
		}

		ve := &VendorError{
			Vendor:     c.vendor,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    truncate(string(b), 512),
			Retryable:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
		if !ve.Retryable {
			return backoff.Permanent(ve)
		}
		return ve
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries),
		ctx,
	)
	if err := backoff.Retry(attempt, bo); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *HTTPClient) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	var reader io.Reader
	contentType := ""

	switch {
	case req.Form != nil:
		form := url.Values{}
		for k, v := range req.Form {
			form.Set(k, v)
		}
		reader = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, reader)
	if err != nil {
		return nil, err
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
