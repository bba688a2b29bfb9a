package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/simmer-dev/simmer/internal/apperr"
	"github.com/simmer-dev/simmer/internal/metrics"
)

// TokenSource yields the current bearer token, or "" when unauthenticated.
type TokenSource interface {
	Token() string
}

// Client handles all communication with the remote forum API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest runs struct validation before any bytes hit the wire.
func validateRequest(body any) error {
	if err := validate.Struct(body); err != nil {
		return apperr.New(apperr.Validation, err.Error())
	}
	return nil
}

// do is the single unified helper for issuing API requests. The JSON body
// is optional; the bearer token is attached when present.
func (c *Client) do(ctx context.Context, operation, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	metrics.RequestStarted()
	defer metrics.RequestFinished()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRequest(operation, 0, time.Since(start))
		return nil, fmt.Errorf("forum api unavailable: %w", err)
	}
	metrics.ObserveRequest(operation, resp.StatusCode, time.Since(start))
	return resp, nil
}

// checkStatus converts a non-2xx response into the error taxonomy, using
// the response body as the message when the server sent one.
func checkStatus(resp *http.Response, operation string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	message := fmt.Sprintf("%s failed with status %d", operation, resp.StatusCode)
	if bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil && len(bodyBytes) > 0 {
		message = string(bodyBytes)
	}
	return apperr.FromStatus(resp.StatusCode, message)
}

func decode(body io.Reader, out any) error {
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("cannot decode api response: %w", err)
	}
	return nil
}
