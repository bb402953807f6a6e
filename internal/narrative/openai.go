package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shuffleraid/raid-api/internal/errors"
)

const (
	defaultBaseURL = "https://api.openai.com"
	chatPath       = "/v1/chat/completions"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 3 * time.Second

	systemPrompt = "You narrate a turn-based dungeon raid. Rewrite the " +
		"given combat log line as one vivid sentence. Keep every number " +
		"and name exactly as given. Reply with the sentence only."
)

// OpenAIConfig holds the configuration for the OpenAI describer
type OpenAIConfig struct {
	APIKey string
	// BaseURL overrides the API host, mainly for tests
	BaseURL string
	Model   string
	// Timeout bounds a single completion call; zero means the default
	Timeout time.Duration
}

// Validate ensures all required settings are provided
func (c *OpenAIConfig) Validate() error {
	if c.APIKey == "" {
		return errors.InvalidArgument("api key is required")
	}
	return nil
}

// OpenAIDescriber narrates lines through the chat completions API
type OpenAIDescriber struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewOpenAIDescriber creates a describer backed by the OpenAI API
func NewOpenAIDescriber(cfg *OpenAIConfig) (*OpenAIDescriber, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &OpenAIDescriber{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

var _ Describer = (*OpenAIDescriber)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Describe asks the model for a one-sentence narration of the line
func (d *OpenAIDescriber) Describe(ctx context.Context, input DescribeInput) (string, error) {
	if input.Line == "" {
		return "", errors.InvalidArgument("line cannot be empty")
	}

	payload := chatRequest{
		Model: d.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: input.Line},
		},
		Temperature: 0.8,
		MaxTokens:   80,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal completion request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+chatPath, strings.NewReader(string(body)))
	if err != nil {
		return "", errors.Wrap(err, "failed to build completion request")
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "completion request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.Unavailable(fmt.Sprintf("completion returned %d: %s", resp.StatusCode, detail))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "failed to decode completion response")
	}
	if len(out.Choices) == 0 {
		return "", errors.Unavailable("completion returned no choices")
	}

	line := strings.TrimSpace(out.Choices[0].Message.Content)
	if line == "" {
		return "", errors.Unavailable("completion returned an empty line")
	}
	return line, nil
}
