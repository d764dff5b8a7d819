package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kirillkom/dinelog/internal/infrastructure/resilience"
)

// maxResponseBytes bounds a decoded response body.
const maxResponseBytes = 32 << 20

// call posts payload to path through the executor and decodes the response
// into a fresh T on every attempt, so a failed attempt leaves nothing behind.
func call[T any](ctx context.Context, c *Client, path, operation string, payload any) (T, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("marshal %s request: %w", operation, err)
	}

	var out T
	err = c.executeWithResilience(ctx, "ollama."+operation, func(ctx context.Context) error {
		var attempt T
		if err := c.post(ctx, path, body, &attempt, operation); err != nil {
			return err
		}
		out = attempt
		return nil
	})
	return out, wrapTemporaryIfNeeded("ollama "+operation, err)
}

func (c *Client) executeWithResilience(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return fn(ctx)
	}
	return c.executor.Execute(ctx, operation, fn, classifyOllamaError)
}

func (c *Client) post(ctx context.Context, path string, body []byte, out any, operation string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return resilience.NewHTTPStatusError("ollama", operation, resp)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
