package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"propmap/internal/config"
)

// StreamChunkParser is the interface for provider-specific chunk parsing
type StreamChunkParser interface {
	ParseChunk(data []byte) (*StreamChunk, error)
}

// OpenAIClient talks to an OpenAI-compatible chat completion API
type OpenAIClient struct {
	config      *config.OpenAIConfig
	httpClient  *http.Client
	chunkParser StreamChunkParser
}

// Ensure OpenAIClient implements Completer
var _ Completer = (*OpenAIClient)(nil)

// NewOpenAIClient creates a new OpenAI-compatible client with auto-detection
// of the provider's streaming format
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	var parser StreamChunkParser
	if IsNVIDIAProvider(cfg.APIBase) {
		parser = &NVIDIAStreamChunkParser{}
		log.Printf("Detected NVIDIA API provider (supports reasoning/thinking)")
	} else {
		parser = &OpenAIStreamChunkParser{}
	}

	return &OpenAIClient{
		config:      cfg,
		chunkParser: parser,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c.config.Enabled
}

// chatCompletionRequest is the wire request for /chat/completions
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

// chatCompletionResponse is the wire response for /chat/completions
type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// apiErrorBody is the error envelope OpenAI-compatible APIs return
type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete performs a chat completion request and returns the assistant text
func (c *OpenAIClient) Complete(ctx context.Context, messages []ChatMessage, model string) (string, error) {
	if !c.config.Enabled {
		return "", &APIError{Kind: ErrInvalidRequest, Message: "API is not enabled (missing API key)"}
	}

	req := c.buildRequest(messages, model, false)
	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &APIError{Kind: ErrOther, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyAPIError(resp.StatusCode, body)
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", &APIError{Kind: ErrOther, Status: resp.StatusCode, Message: "no choices in response"}
	}

	return result.Choices[0].Message.Content, nil
}

// CompleteStream performs a streaming chat completion request. Each parsed
// chunk is handed to the callback; the accumulated assistant text is returned.
func (c *OpenAIClient) CompleteStream(ctx context.Context, messages []ChatMessage, model string, callback StreamCallback) (string, error) {
	if !c.config.Enabled {
		return "", &APIError{Kind: ErrInvalidRequest, Message: "API is not enabled (missing API key)"}
	}

	req := c.buildRequest(messages, model, true)
	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &APIError{Kind: ErrOther, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", classifyAPIError(resp.StatusCode, body)
	}

	var full strings.Builder
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return full.String(), fmt.Errorf("failed to read stream: %w", err)
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		// SSE format: "data: {...}"
		if !bytes.HasPrefix(line, []byte("data: ")) {
			continue
		}
		data := bytes.TrimPrefix(line, []byte("data: "))
		if bytes.Equal(data, []byte("[DONE]")) {
			break
		}

		chunk, err := c.chunkParser.ParseChunk(data)
		if err != nil {
			log.Printf("Warning: failed to parse stream chunk: %v", err)
			continue
		}
		full.WriteString(chunk.Content)

		if err := callback(chunk); err != nil {
			return full.String(), fmt.Errorf("callback error: %w", err)
		}
	}

	return full.String(), nil
}

func (c *OpenAIClient) buildRequest(messages []ChatMessage, model string, stream bool) chatCompletionRequest {
	if model == "" {
		model = c.config.Model
	}
	return chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: c.config.Temperature,
		TopP:        c.config.TopP,
		MaxTokens:   c.config.MaxTokens,
		Stream:      stream,
	}
}

// classifyAPIError maps an HTTP failure to a classified *APIError
func classifyAPIError(status int, body []byte) *APIError {
	var envelope apiErrorBody
	_ = json.Unmarshal(body, &envelope)
	message := envelope.Error.Message
	if message == "" {
		message = string(body)
	}

	kind := ErrOther
	switch {
	case status == http.StatusTooManyRequests &&
		(envelope.Error.Type == "insufficient_quota" || envelope.Error.Code == "insufficient_quota" ||
			strings.Contains(message, "quota")):
		kind = ErrQuotaExceeded
	case status == http.StatusTooManyRequests:
		kind = ErrRateLimited
	case status >= 400 && status < 500:
		kind = ErrInvalidRequest
	}

	return &APIError{Kind: kind, Status: status, Message: message}
}
