package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
	"github.com/novafit/gymdesk-backend/internal/utils"
)

const (
	defaultProviderBase  = "https://api.openai.com/v1"
	defaultProviderModel = "gpt-4o-mini"
	defaultTimeout       = 30 * time.Second
	defaultMaxTokens     = 1024
)

// ProviderConfig configures the OpenAI-compatible completion provider.
type ProviderConfig struct {
	// APIKey is the bearer token used to authenticate against the API.
	APIKey string

	// BaseURL overrides the API endpoint. Useful for local models or any
	// other OpenAI-compatible endpoint. Defaults to https://api.openai.com/v1.
	BaseURL string

	// Model is the chat model to use. Defaults to gpt-4o-mini.
	Model string

	// Timeout is the HTTP request timeout. Defaults to 30s.
	Timeout time.Duration

	// MaxTokens bounds the completion. Defaults to 1024.
	MaxTokens int
}

// ProviderConfigFromEnv reads the provider settings the way the rest of the
// process reads configuration.
func ProviderConfigFromEnv(log *logger.Logger) ProviderConfig {
	return ProviderConfig{
		APIKey:    utils.GetEnv("LLM_API_KEY", "", nil),
		BaseURL:   utils.GetEnv("LLM_BASE_URL", defaultProviderBase, log),
		Model:     utils.GetEnv("LLM_MODEL", defaultProviderModel, log),
		Timeout:   time.Duration(utils.GetEnvAsInt("LLM_TIMEOUT_SECONDS", 30, log)) * time.Second,
		MaxTokens: utils.GetEnvAsInt("LLM_MAX_TOKENS", defaultMaxTokens, log),
	}
}

type openAIProvider struct {
	cfg    ProviderConfig
	log    *logger.Logger
	client *http.Client
}

// NewOpenAIProvider returns a Provider backed by an OpenAI-compatible chat
// completions API, requesting JSON-object output. Safe for concurrent use.
func NewOpenAIProvider(cfg ProviderConfig, log *logger.Logger) (Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing LLM_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultProviderBase
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = defaultProviderModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return &openAIProvider{
		cfg:    cfg,
		log:    log.With("service", "LLMProvider"),
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// --- minimal wire types ---

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiRequest struct {
	Model          string       `json:"model"`
	Messages       []oaiMessage `json:"messages"`
	MaxTokens      int          `json:"max_tokens,omitempty"`
	ResponseFormat *oaiFormat   `json:"response_format,omitempty"`
}

type oaiFormat struct {
	Type string `json:"type"` // "json_object"
}

type oaiResponse struct {
	Choices []oaiChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type oaiChoice struct {
	Message      oaiMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

func (p *openAIProvider) Complete(ctx context.Context, system, user string) (string, error) {
	body := oaiRequest{
		Model: p.cfg.Model,
		Messages: []oaiMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:      p.cfg.MaxTokens,
		ResponseFormat: &oaiFormat{Type: "json_object"},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/chat/completions",
		bytes.NewReader(data),
	)
	if err != nil {
		return "", fmt.Errorf("llm: create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read response body: %w", err)
	}

	var oaiResp oaiResponse
	if err := json.Unmarshal(respBody, &oaiResp); err != nil {
		return "", fmt.Errorf("llm: decode API response: %w", err)
	}
	if oaiResp.Error != nil {
		return "", fmt.Errorf("llm: API error (%s): %s", oaiResp.Error.Type, oaiResp.Error.Message)
	}
	if len(oaiResp.Choices) == 0 {
		return "", fmt.Errorf("llm: no choices returned (HTTP %d)", resp.StatusCode)
	}

	return oaiResp.Choices[0].Message.Content, nil
}
