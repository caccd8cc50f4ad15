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
	"time"

	"go-vacancy-swipe/internal/filter"
	"go-vacancy-swipe/internal/logging"
	"go-vacancy-swipe/internal/models"
	"go-vacancy-swipe/internal/reporter"
)

const (
	DefaultBaseURL  = "https://api.groq.com/openai/v1"
	DefaultModel    = "llama-3.3-70b-versatile"
	DefaultLanguage = "Ukrainian"
	DefaultMinChars = 200
	DefaultMaxChars = 4000
	DefaultTimeout  = 30 * time.Second

	reportTag = "Classification Error"
)

type GroqConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	MinChars int
	MaxChars int
	Timeout  time.Duration
}

type groqClient struct {
	cfg        GroqConfig
	httpClient *http.Client
	notifier   reporter.Notifier
	log        *logging.Logger
}

// NewGroqClient builds a Classifier over Groq's OpenAI-compatible chat API.
// notifier may be nil.
func NewGroqClient(cfg GroqConfig, notifier reporter.Notifier, log *logging.Logger) Classifier {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = DefaultMinChars
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &groqClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		notifier:   notifier,
		log:        log,
	}
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type groqRequest struct {
	Model          string         `json:"model"`
	Messages       []groqMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// transportError marks failures the operator should hear about.
type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func (c *groqClient) Classify(ctx context.Context, text string, filters models.Filters) models.Verdict {
	if len([]rune(text)) < c.cfg.MinChars || filter.IsChallengePage(text) {
		return models.Verdict{Valid: false, Reason: ReasonBlocked}
	}
	if c.cfg.APIKey == "" {
		return models.Verdict{Valid: false, Reason: "AI disabled"}
	}

	verdict, err := c.complete(ctx, truncateRunes(text, c.cfg.MaxChars), filters)
	if err != nil {
		c.log.Warn("⚠️ Classification failed", "err", err)
		var te *transportError
		if errors.As(err, &te) && c.notifier != nil && ctx.Err() == nil {
			c.notifier.Report(ctx, reportTag, err)
		}
		return models.Verdict{Valid: false, Reason: err.Error()}
	}
	return verdict
}

func (c *groqClient) complete(ctx context.Context, text string, filters models.Filters) (models.Verdict, error) {
	reqBody := groqRequest{
		Model: c.cfg.Model,
		Messages: []groqMessage{
			{Role: "system", Content: buildSystemPrompt(c.cfg.Language)},
			{Role: "user", Content: buildUserPrompt(text, filters)},
		},
		Temperature:    0.2,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return models.Verdict{}, fmt.Errorf("failed to marshal groq request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return models.Verdict{}, fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Verdict{}, &transportError{fmt.Errorf("http request failed: %w", err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Verdict{}, &transportError{fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Verdict{}, &transportError{fmt.Errorf("groq API returned status %d: %s", resp.StatusCode, truncateRunes(string(bodyBytes), 300))}
	}

	var groqResp groqResponse
	if err := json.Unmarshal(bodyBytes, &groqResp); err != nil {
		return models.Verdict{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if groqResp.Error != nil {
		return models.Verdict{}, fmt.Errorf("API error: %s", groqResp.Error.Message)
	}
	if len(groqResp.Choices) == 0 {
		return models.Verdict{}, fmt.Errorf("no choices returned from groq API")
	}

	return parseVerdict(groqResp.Choices[0].Message.Content)
}

// parseVerdict requires the "valid" key; a verdict without it is malformed.
func parseVerdict(content string) (models.Verdict, error) {
	cleaned := cleanMarkdownJSON(content)

	var probe struct {
		Valid *bool `json:"valid"`
	}
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return models.Verdict{}, fmt.Errorf("model returned non-JSON content (length %d): %w", len(cleaned), err)
	}
	if probe.Valid == nil {
		return models.Verdict{}, fmt.Errorf("model response has no \"valid\" field")
	}

	var v models.Verdict
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return models.Verdict{}, fmt.Errorf("failed to decode verdict: %w", err)
	}
	return v, nil
}

// cleanMarkdownJSON removes backticks and "json" prefix if the model wraps its answer.
func cleanMarkdownJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
