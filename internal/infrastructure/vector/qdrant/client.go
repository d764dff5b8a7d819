package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client speaks the Qdrant REST API for a single collection.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

func New(baseURL, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

type scrolledPoint struct {
	ID      any            `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

type scrollPage struct {
	Points         []scrolledPoint `json:"points"`
	NextPageOffset any             `json:"next_page_offset"`
}

func (c *Client) upsert(ctx context.Context, points []point) error {
	if len(points) == 0 {
		return nil
	}
	if err := c.ensureCollection(ctx, len(points[0].Vector)); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	resp, err := c.doJSON(ctx, http.MethodPut, url, map[string]any{"points": points})
	if err != nil {
		return fmt.Errorf("qdrant upsert request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError("qdrant upsert status", resp)
	}
	return nil
}

// scrollAll pages through every point in the collection. A missing
// collection yields no points.
func (c *Client) scrollAll(ctx context.Context, pageSize int) ([]scrolledPoint, error) {
	url := fmt.Sprintf("%s/collections/%s/points/scroll", c.baseURL, c.collection)
	var (
		out    []scrolledPoint
		offset any
	)
	for {
		reqBody := map[string]any{
			"limit":        pageSize,
			"with_payload": true,
			"with_vector":  true,
		}
		if offset != nil {
			reqBody["offset"] = offset
		}
		resp, err := c.doJSON(ctx, http.MethodPost, url, reqBody)
		if err != nil {
			return nil, fmt.Errorf("qdrant scroll request: %w", err)
		}
		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			return out, nil
		}
		if resp.StatusCode >= 300 {
			err := statusError("qdrant scroll status", resp)
			resp.Body.Close()
			return nil, err
		}

		var page struct {
			Result scrollPage `json:"result"`
		}
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode scroll response: %w", err)
		}
		out = append(out, page.Result.Points...)
		if page.Result.NextPageOffset == nil || len(page.Result.Points) == 0 {
			return out, nil
		}
		offset = page.Result.NextPageOffset
	}
}

func (c *Client) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	resp, err := c.doJSON(ctx, http.MethodPut, url, map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant ensure collection request: %w", err)
	}
	defer resp.Body.Close()

	// 200/201 for create, 409 if already exists (depends on version/config).
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusConflict {
		return statusError("qdrant ensure collection status", resp)
	}

	c.ensureMu.Lock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
	c.ensureMu.Unlock()
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

func statusError(prefix string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return fmt.Errorf("%s: %s: %s", prefix, resp.Status, msg)
	}
	return fmt.Errorf("%s: %s", prefix, resp.Status)
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func getInt64Payload(payload map[string]any, key string) int64 {
	switch v := payload[key].(type) {
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	default:
		return 0
	}
}
