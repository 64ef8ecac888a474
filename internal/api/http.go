package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sethvargo/go-retry"

	"github.com/kozaktomas/face-auth/internal/payload"
)

// doRequestJSON performs a request and unmarshals a 2xx JSON response into T.
// 404 becomes ErrNotFound, other failures become *APIError, and transport
// failures are wrapped in ErrNetwork.
func doRequestJSON[T any](ctx context.Context, c *Client, method, endpoint string, query map[string]any, body []byte, contentType string) (*T, error) {
	url, err := BuildURL(c.baseURL, endpoint, query)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL built from configured base via BuildURL
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read response body: %w", ErrNetwork, err)
	}

	c.captureResponse(endpoint, resp.StatusCode, respBody)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, method, endpoint)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, parseAPIError(resp.StatusCode, respBody)
	}

	var result T
	if len(bytes.TrimSpace(respBody)) == 0 {
		return &result, nil
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}

	return &result, nil
}

// mutate sends a payload with POST. Identical in-flight mutations share one
// request. If another mutation of the same kind starts before this one
// returns, the result is discarded with ErrStale.
func mutate[T any](ctx context.Context, c *Client, op, endpoint string, p *payload.Payload, format payload.Format) (*T, error) {
	gen := c.nextGeneration(op)

	v, err, _ := c.inflight.Do(op+":"+p.Key(), func() (any, error) {
		body, contentType, err := p.Encode(format)
		if err != nil {
			return nil, err
		}
		return doRequestJSON[T](ctx, c, http.MethodPost, endpoint, nil, body, contentType)
	})

	if !c.isCurrent(op, gen) {
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

// query performs a cached GET. Network failures are retried with
// exponential backoff; HTTP errors are returned at once.
func query[T any](ctx context.Context, c *Client, endpoint string, params map[string]any) (*T, error) {
	key, err := BuildURL(c.baseURL, endpoint, params)
	if err != nil {
		return nil, err
	}

	// Callers get their own copy so mutations never reach the cache.
	if v, ok := c.cache.get(key); ok {
		cp := *v.(*T)
		return &cp, nil
	}

	gen := c.nextGeneration(key)

	var result *T
	backoff := retry.WithMaxRetries(c.retryAttempts, retry.NewExponential(c.retryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := doRequestJSON[T](ctx, c, http.MethodGet, endpoint, params, nil, "")
		if err != nil {
			if errors.Is(err, ErrNetwork) && ctx.Err() == nil {
				return retry.RetryableError(err)
			}
			return err
		}
		result = r
		return nil
	})

	if !c.isCurrent(key, gen) {
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}

	cached := *result
	c.cache.set(key, &cached)
	return result, nil
}
