package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"daily-trivia-service/internal/answer"
	"daily-trivia-service/internal/domain"
	"github.com/tidwall/gjson"
)

const (
	defaultBaseURL    = "https://api.anthropic.com/v1/messages"
	defaultModel      = "claude-haiku-4-5-20251001"
	anthropicVersion  = "2023-06-01"
	placeholderAPIKey = "your-key-here"
	systemPrompt      = "You are a strict trivia judge. Reply YES or NO only."
)

// Config configures the Messages API judge.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client asks a chat model for a YES/NO ruling on a trivia answer.
type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{cfg: cfg}
}

// Configured reports whether a usable API key is set.
func (c *Client) Configured() bool {
	key := strings.TrimSpace(c.cfg.APIKey)
	return key != "" && key != placeholderAPIKey
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

// Verdict implements answer.Judge.
func (c *Client) Verdict(ctx context.Context, in answer.Input) (bool, error) {
	if !c.Configured() {
		return false, domain.ErrJudgeUnconfigured
	}

	body, err := json.Marshal(messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: 10,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: prompt(in)}},
	})
	if err != nil {
		return false, fmt.Errorf("encode judge request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build judge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrJudgeUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return false, fmt.Errorf("%w: read body: %v", domain.ErrJudgeUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("%w: status %d", domain.ErrJudgeUnavailable, resp.StatusCode)
	}
	return parseVerdict(raw)
}

func prompt(in answer.Input) string {
	return fmt.Sprintf("Category: %s\nQuestion: %s\nCorrect answer: %s\nPlayer answered: %s\n\nIs the player's answer correct? YES or NO.",
		in.Category, in.Question, in.CorrectAnswer, in.UserAnswer)
}

func parseVerdict(raw []byte) (bool, error) {
	if !gjson.ValidBytes(raw) {
		return false, domain.ErrMalformedVerdict
	}
	text := gjson.GetBytes(raw, "content.0.text")
	if !text.Exists() {
		return false, domain.ErrMalformedVerdict
	}
	verdict := strings.ToUpper(strings.TrimSpace(text.String()))
	verdict = strings.TrimRight(verdict, ".!")
	switch verdict {
	case "YES":
		return true, nil
	case "NO":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", domain.ErrMalformedVerdict, text.String())
}
