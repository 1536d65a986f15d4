package vkontakte

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"
)

const (
	contentEncoding = "gzip"

	retryAttempts = 3
	retryDelay    = 300 * time.Millisecond
	retryJitter   = 100 * time.Millisecond
)

// VK error codes.
const (
	CodeUnknown         = 1
	CodeAuthFailed      = 5
	CodeTooManyRequests = 6
	CodeFlood           = 9
	CodeInternal        = 10
	CodeAccessDenied    = 15
	CodeUserDeleted     = 18
	CodePrivateProfile  = 30
)

// APIError is the "error" object of a VK response.
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
	Method  string `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vk %s: error %d: %s", e.Method, e.Code, e.Message)
}

// Temporary reports whether repeating the call may succeed.
func (e *APIError) Temporary() bool {
	switch e.Code {
	case CodeUnknown, CodeTooManyRequests, CodeFlood, CodeInternal:
		return true
	default:
		return false
	}
}

// HTTPError is a non-200 HTTP status from the API endpoint.
type HTTPError struct {
	Method     string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("vk %s: bad status %d", e.Method, e.StatusCode)
}

type envelope struct {
	Response json.RawMessage `json:"response"`
	Error    *APIError       `json:"error"`
}

// itemsResponse is the {"count", "items"} shape of list methods.
type itemsResponse[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

// call invokes a method, retrying transient failures, and decodes "response" into target.
func (c *Client) call(ctx context.Context, method string, q url.Values, target any) error {
	raw, err := c.callRaw(ctx, method, q)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decoding vk %s response: %w", method, err)
	}
	return nil
}

func (c *Client) callRaw(ctx context.Context, method string, q url.Values) (json.RawMessage, error) {
	return retry.DoWithData(
		func() (json.RawMessage, error) {
			return c.do(ctx, method, q)
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.MaxJitter(retryJitter),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying vk request",
				zap.String("method", method),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
}

// do performs one request.
func (c *Client) do(ctx context.Context, method string, q url.Values) (json.RawMessage, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", c.APIURL, method), nil)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	for k, v := range q {
		params[k] = v
	}
	params.Set("access_token", c.token)
	params.Set("v", c.version)
	req.URL.RawQuery = params.Encode()

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)

	// q has no token, so it is safe to log.
	c.logger.Debug("make request", zap.String("method", method), zap.String("params", q.Encode()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{Method: method, StatusCode: resp.StatusCode}
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	var env envelope
	if err := json.NewDecoder(reader).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding vk %s envelope: %w", method, err)
	}

	if env.Error != nil {
		env.Error.Method = method
		return nil, env.Error
	}
	if env.Response == nil {
		return nil, fmt.Errorf("vk %s: empty response", method)
	}

	return env.Response, nil
}

// isRetryable is true for transient API codes, 429/5xx and network errors.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}

	var syntaxErr *json.SyntaxError
	return !errors.As(err, &syntaxErr)
}
