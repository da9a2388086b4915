// glm.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGLMBaseURL = "https://open.bigmodel.cn/api/coding/paas/v4"

type GLMProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewGLMProvider(apiKey, baseURL, model string) (*GLMProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GLM_API_KEY is not set")
	}
	if baseURL == "" {
		baseURL = defaultGLMBaseURL
	}
	if model == "" {
		model = "glm-4.7"
	}
	return &GLMProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (p *GLMProvider) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	payload := map[string]interface{}{
		"model":       p.model,
		"messages":    messages,
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		payload["max_tokens"] = opts.MaxTokens
	}
	bodyBytes, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Code: resp.StatusCode, Body: truncate(respBody)}
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content          string `json:"content"`
				ReasoningContent string `json:"reasoning_content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal: %w body=%s", err, truncate(respBody))
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	// Some GLM models put everything into reasoning_content and leave
	// content empty; the caller treats "" as a retryable empty response.
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
