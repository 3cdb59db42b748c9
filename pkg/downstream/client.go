/**
 * @description
 * This package provides the typed HTTP client used for every call to a
 * downstream service (wage, tax, finance). It encapsulates the logic for
 * making requests that carry the caller's credential forward, retrying
 * transient faults with a linear backoff, and converting wire responses
 * into typed values or classified errors.
 *
 * Every operation funnels its failure handling through one classify step so
 * the status/error-kind mapping stays identical across reads, writes, and
 * deletes:
 *   - 401 fails with apperr.KindUnauthorized and is never retried.
 *   - Any other non-2xx status with a parseable {message, details} body
 *     fails with apperr.KindUpstream.
 *   - An empty or unparseable error body fails with apperr.KindInternal.
 *
 * @dependencies
 * - github.com/goccy/go-json: Wire codec.
 * - internal/apperr: Error classification.
 */
package downstream

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/financeplanner/aggregator-service/internal/apperr"
)

type credentialKey struct{}

// WithCredential returns a context carrying the inbound credential that
// every outbound call must propagate unchanged.
func WithCredential(ctx context.Context, credential string) context.Context {
	return context.WithValue(ctx, credentialKey{}, credential)
}

// CredentialFromContext extracts the propagated credential, if any.
func CredentialFromContext(ctx context.Context) (string, bool) {
	credential, ok := ctx.Value(credentialKey{}).(string)
	return credential, ok && credential != ""
}

// Client is a client for one named downstream service.
type Client struct {
	name        string
	baseURL     string
	retryCount  int
	backoffUnit time.Duration
	httpClient  *http.Client
	logger      *slog.Logger
}

// Option adjusts a Client at construction time.
type Option func(*Client)

// WithRetry sets the transient-fault retry policy: up to retryCount retries,
// attempt n waiting n backoff units.
func WithRetry(retryCount int, backoffUnit time.Duration) Option {
	return func(c *Client) {
		c.retryCount = retryCount
		c.backoffUnit = backoffUnit
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the named downstream service. The
// underlying http.Client pools connections per service and is safe for
// concurrent use across unrelated inbound requests.
func NewClient(name, baseURL string, opts ...Option) *Client {
	c := &Client{
		name:        name,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		retryCount:  3,
		backoffUnit: time.Second,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the configured service name.
func (c *Client) Name() string {
	return c.name
}

// FetchList issues a read and parses the response body as a list of T.
func FetchList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, c.classify(status, body, path)
	}

	var result []T
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, apperr.Internalf("%s returned an empty body for %s", c.name, path)
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperr.Internalf("%s returned an unreadable body for %s", c.name, path).Wrap(err)
	}
	if result == nil {
		return nil, apperr.Internalf("%s returned no value for %s", c.name, path)
	}
	return result, nil
}

// Send issues a create/update with a JSON body and parses the response as a
// single TResp.
func Send[TReq, TResp any](ctx context.Context, c *Client, path string, payload TReq) (*TResp, error) {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Internalf("failed to encode request for %s %s", c.name, path).Wrap(err)
	}

	status, body, err := c.do(ctx, http.MethodPost, path, requestBody)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, c.classify(status, body, path)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, apperr.Internalf("%s returned no value for %s", c.name, path)
	}
	var result TResp
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperr.Internalf("%s returned an unreadable body for %s", c.name, path).Wrap(err)
	}
	return &result, nil
}

// Remove issues a delete and returns the boolean payload from the response
// body.
func (c *Client) Remove(ctx context.Context, path string) (bool, error) {
	status, body, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return false, err
	}
	if !isSuccess(status) {
		return false, c.classify(status, body, path)
	}

	var deleted bool
	if err := json.Unmarshal(bytes.TrimSpace(body), &deleted); err != nil {
		return false, apperr.Internalf("%s returned an unreadable delete result for %s", c.name, path).Wrap(err)
	}
	return deleted, nil
}

// do performs one HTTP exchange, retrying transient faults. It returns the
// final status and body; classification of non-success statuses is left to
// the caller so that success-path parsing stays with each operation.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if attempt > 0 {
			// Linear backoff: attempt n waits n backoff units.
			select {
			case <-ctx.Done():
				return 0, nil, apperr.Internalf("call to %s %s cancelled", c.name, path).Wrap(ctx.Err())
			case <-time.After(time.Duration(attempt) * c.backoffUnit):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return 0, nil, apperr.Internalf("failed to build request for %s %s", c.name, path).Wrap(err)
		}
		c.setHeaders(ctx, req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return 0, nil, apperr.Internalf("call to %s %s cancelled", c.name, path).Wrap(ctx.Err())
			}
			// Connection-level failures are transient.
			lastErr = err
			c.logger.Warn("downstream call failed, will retry",
				"service", c.name, "path", path, "attempt", attempt+1, "error", err)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if isTransient(resp.StatusCode) && attempt < c.retryCount {
			c.logger.Warn("downstream returned transient status, will retry",
				"service", c.name, "path", path, "status", resp.StatusCode, "attempt", attempt+1)
			continue
		}
		return resp.StatusCode, respBody, nil
	}

	return 0, nil, apperr.Internalf("call to %s %s failed after %d attempts", c.name, path, c.retryCount+1).Wrap(lastErr)
}

// setHeaders adds content negotiation headers and forwards the inbound
// credential unchanged.
func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if credential, ok := CredentialFromContext(ctx); ok {
		req.Header.Set("Authorization", credential)
	}
}

// errorBody is the structured error payload every downstream service
// returns. Both fields are optional on the wire.
type errorBody struct {
	Message *string `json:"message"`
	Details *string `json:"details"`
}

// classify is the single decision procedure over (status code, body
// presence, parse success) shared by every operation.
func (c *Client) classify(status int, body []byte, path string) error {
	if status == http.StatusUnauthorized {
		return apperr.Unauthorized(
			"request not authorized",
			"the request for service "+c.name+" and endpoint "+path+" is not authorized",
		)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return apperr.Internalf("call to %s %s failed with status %d and an empty body", c.name, path, status)
	}

	var parsed errorBody
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return apperr.Internalf("call to %s %s failed with status %d and an unreadable body", c.name, path, status).Wrap(err)
	}

	message := "downstream call failed"
	if parsed.Message != nil && *parsed.Message != "" {
		message = *parsed.Message
	}
	details := ""
	if parsed.Details != nil {
		details = *parsed.Details
	}
	return apperr.Upstream(message, details)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// isTransient reports whether a status is retryable: 5xx and request
// timeout. 401 and every other 4xx fail immediately.
func isTransient(status int) bool {
	return status >= 500 || status == http.StatusRequestTimeout
}
