package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"panwatch/pkg/metrics"
	"panwatch/pkg/web"

	"github.com/kaptinlin/jsonrepair"
)

// Message is one chat turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Config holds defaults for the chat-completions endpoint. Agents may
// override model and base URL per call.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	client   *web.Client
	cfg      Config
	recorder *metrics.Recorder
}

func NewClient(cfg Config, recorder *metrics.Recorder) *Client {
	return &Client{
		client: web.NewClient(
			web.WithTimeout(cfg.Timeout),
			web.WithHeader("Authorization", "Bearer "+cfg.APIKey),
		),
		cfg:      cfg,
		recorder: recorder,
	}
}

// Options overrides the configured defaults for a single call.
type Options struct {
	Model   string
	BaseURL string
}

// Chat sends the messages and returns the first choice's content.
func (c *Client) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	model := c.cfg.Model
	if opts.Model != "" {
		model = opts.Model
	}
	baseURL := c.cfg.BaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	if baseURL == "" {
		return "", errors.New("ai base url not configured")
	}

	req := chatRequest{Model: model, Messages: messages, Temperature: 0.2}
	url := strings.TrimRight(baseURL, "/") + "/chat/completions"

	var resp chatResponse
	start := time.Now()
	err := c.client.PostJSON(ctx, url, req, &resp)
	c.recorder.UpstreamRequest("ai", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("chat completion: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// DecodeJSON extracts a JSON object from model output and unmarshals it
// into dest. Markdown fences are stripped and malformed JSON is repaired
// before decoding; models routinely truncate or loosely quote output.
func DecodeJSON(content string, dest any) error {
	text := strings.TrimSpace(content)
	if start := strings.Index(text, "```"); start >= 0 {
		text = text[start+3:]
		text = strings.TrimPrefix(text, "json")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
		text = strings.TrimSpace(text)
	}

	// Narrow to the outermost object if the model added prose around it.
	if first := strings.Index(text, "{"); first >= 0 {
		if last := strings.LastIndex(text, "}"); last > first {
			text = text[first : last+1]
		} else {
			text = text[first:]
		}
	}

	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return fmt.Errorf("repair json: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), dest); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}
