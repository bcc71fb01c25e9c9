package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// Ensure OpenAIClient implements Capability
var _ Capability = (*OpenAIClient)(nil)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	baseURL     string
	apiKey      string
	model       string
	httpClient  *http.Client
	rateLimiter RateLimiter
}

// NewOpenAIClient creates a chat completions client. baseURL may point at
// any compatible endpoint; empty means the OpenAI API.
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration, limiter RateLimiter) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if limiter == nil {
		limiter = NewNoOpLimiter()
	}
	return &OpenAIClient{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: limiter,
	}
}

// Name returns provider name.
func (c *OpenAIClient) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Generate sends a chat completion request and returns the first choice.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (*Response, error) {
	if c.apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "API key not configured")
	}

	// Wait for rate limiter
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(errors.ErrCapabilityUnavailable, err.Error())
	}

	wireReq := chatRequest{
		Model:       c.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if wireReq.MaxTokens == 0 {
		wireReq.MaxTokens = 4096
	}
	if req.System != "" {
		wireReq.Messages = append(wireReq.Messages, chatMessage{Role: "system", Content: req.System})
	}
	wireReq.Messages = append(wireReq.Messages, chatMessage{Role: "user", Content: req.User})

	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, errors.Wrap(err, "marshal chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create HTTP request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Network failures and client timeouts both mean the capability
		// cannot serve this stage right now
		return nil, errors.Wrapf(errors.ErrCapabilityUnavailable, "send chat request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read chat response")
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    string `json:"code"`
			} `json:"error"`
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, errors.Wrapf(errors.ErrCapabilityUnavailable, "provider quota exhausted (%d): %s",
				resp.StatusCode, string(respBody))
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, errors.Wrapf(errors.ErrCapabilityUnavailable, "provider error (%d): %s - %s",
				resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return nil, errors.Wrapf(errors.ErrCapabilityUnavailable, "provider error (%d): %s",
			resp.StatusCode, string(respBody))
	}

	var wireResp chatResponse
	if err := json.Unmarshal(respBody, &wireResp); err != nil {
		return nil, errors.Wrap(err, "unmarshal chat response")
	}

	if len(wireResp.Choices) == 0 {
		return nil, errors.Wrap(errors.ErrCapabilityUnavailable, "provider returned no choices")
	}

	return &Response{
		Content: wireResp.Choices[0].Message.Content,
		Model:   wireResp.Model,
		Usage: Usage{
			PromptTokens:     wireResp.Usage.PromptTokens,
			CompletionTokens: wireResp.Usage.CompletionTokens,
			TotalTokens:      wireResp.Usage.TotalTokens,
		},
	}, nil
}
