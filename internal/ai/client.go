package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nikbrunner/bmai/internal/model"
	"github.com/nikbrunner/bmai/internal/settings"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-3.5-turbo"
)

var (
	ErrNoAPIKey            = errors.New("custom API key is missing")
	ErrProviderUnavailable = errors.New("gemini provider is not configured in this build, switch to a custom provider")
	ErrAPIRequest          = errors.New("API request failed")
	ErrInvalidResponse     = errors.New("invalid API response")
)

// Config selects the provider endpoint and credentials.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Language string // output language for summaries and tags
}

// ConfigFromSettings extracts the AI configuration from the product settings.
func ConfigFromSettings(s settings.Settings) Config {
	return Config{
		Provider: s.AIProvider,
		APIKey:   s.CustomAPIKey,
		BaseURL:  s.AIBaseURL,
		Model:    s.AIModel,
		Language: s.Language,
	}
}

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	apiKey     string
	endpoint   string
	model      string
	language   string
	httpClient *http.Client
	log        logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a new AI client.
// Returns ErrProviderUnavailable for the gemini provider and ErrNoAPIKey when
// no key is configured. No request is made in either case.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Provider == settings.ProviderGemini {
		return nil, ErrProviderUnavailable
	}
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	c := &Client{
		apiKey:   cfg.APIKey,
		endpoint: base + "/chat/completions",
		model:    modelName,
		language: cfg.Language,
		// No client timeout: requests are bounded by the caller's context.
		httpClient: &http.Client{},
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the model name requests are sent with.
func (c *Client) Model() string {
	return c.model
}

// Analyze asks the model for a summary, tags and a category for a bookmark.
// Replies that are not valid JSON yield default values rather than an error.
func (c *Client) Analyze(ctx context.Context, title, url string) (*Analysis, error) {
	content, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: analyzeSystemPrompt},
			{Role: "user", Content: buildAnalyzePrompt(title, url, c.language)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(content) == "" {
		return &Analysis{Summary: "No analysis available.", Tags: []string{}, Category: "Uncategorized"}, nil
	}

	var result Analysis
	if err := json.Unmarshal([]byte(extractJSON(content)), &result); err != nil {
		c.log.WithError(err).Warn("AI reply is not valid JSON")
	}
	if result.Summary == "" {
		result.Summary = "No summary."
	}
	if result.Category == "" {
		result.Category = "Uncategorized"
	}
	result.Tags = normalizeTags(result.Tags)
	return &result, nil
}

// Search asks the model which bookmarks match query and returns their ids
// in the order the model listed them.
func (c *Client) Search(ctx context.Context, query string, bookmarks []*model.Node) ([]string, error) {
	prompt, err := buildSearchPrompt(query, bookmarks)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	content, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: searchSystemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		content = "{}"
	}

	var result searchResult
	if err := json.Unmarshal([]byte(extractJSON(content)), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if result.IDs == nil {
		return []string{}, nil
	}
	return result.IDs, nil
}

// TestConnection sends a minimal prompt to verify the endpoint and key.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.complete(ctx, chatRequest{
		Model:     c.model,
		Messages:  []chatMessage{{Role: "user", Content: "Say OK"}},
		MaxTokens: 5,
	})
	return err
}

// complete posts a chat completion request and returns the first choice's
// message content.
func (c *Client) complete(ctx context.Context, reqBody chatRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.log.WithFields(logrus.Fields{"endpoint": c.endpoint, "model": c.model}).Debug("sending chat completion")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPIRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(apiResp.Choices) == 0 {
		return "", nil
	}
	return apiResp.Choices[0].Message.Content, nil
}
