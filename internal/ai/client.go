package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client calls an HTTP generation backend. The wire contract is one POST:
//
//	POST {baseURL}/v1/generate
//	{"prompt": "..."}
//	-> 200 {"code": "...", "description": "...", "tokensUsed": 123}
//
// Anything other than 200 is a collaborator failure; the worker records it
// on the generation, it never reaches the submitting caller synchronously.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ Generator = (*Client)(nil)

// NewClient creates a client for the backend at baseURL. The http.Client
// timeout is a backstop; the per-call deadline comes from the worker's ctx.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

func (c *Client) Generate(ctx context.Context, prompt string) (*Result, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("ai: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ai: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ai: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for the failure reason; cap it so a
		// misbehaving backend cannot flood the generation record.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ai: backend returned status %d: %s", resp.StatusCode, snippet)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ai: decoding response: %w", err)
	}
	return &result, nil
}
