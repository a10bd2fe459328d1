package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/contextra/ragcore/v1/faults"
)

type InferenceProvider struct {
	baseURL     string
	apiKey      string
	temperature float64
	httpClient  *http.Client
}

func newInferenceProvider(cfg *Config) (*InferenceProvider, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("llm: missing LLM_ENDPOINT")
	}

	// Remove trailing slash if user added it.
	base := strings.TrimRight(cfg.Endpoint, "/")

	return &InferenceProvider{
		baseURL:     base,
		apiKey:      cfg.ApiKey,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutS) * time.Second},
	}, nil
}

// Complete generates an assistant reply using the OpenAI-compatible
// /v1/chat/completions endpoint.
func (p *InferenceProvider) Complete(ctx context.Context, model string, messages []Message, maxTokens int) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("llm: no messages provided")
	}
	if model == "" {
		return "", fmt.Errorf("llm: model is required")
	}

	reqBody := map[string]any{
		"model":       model,
		"messages":    messages,
		"temperature": p.temperature,
	}
	if maxTokens > 0 {
		reqBody["max_tokens"] = maxTokens
	}

	url := fmt.Sprintf("%s/v1/chat/completions", p.baseURL)

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := p.postJSON(ctx, url, reqBody, &parsed); err != nil {
		return "", err
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm: completion returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// postJSON sends an HTTP POST request to the completion API, classifying
// failures into the shared error taxonomy.
func (p *InferenceProvider) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http error: %w: %w", faults.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("http %d for %s: %s: %w", resp.StatusCode, url, snippet, classifyStatus(resp.StatusCode))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}

	return nil
}

// classifyStatus maps an HTTP status to the error taxonomy. Rate limiting is
// transient; auth and quota failures are permanent and must not be retried.
func classifyStatus(status int) error {
	if status >= 500 || status == http.StatusTooManyRequests {
		return faults.ErrBackendUnavailable
	}
	return faults.ErrPermanent
}
