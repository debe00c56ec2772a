package aiwriter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const completionsURL = "https://api.openai.com/v1/chat/completions"

// ErrUnavailable is returned when no API key is configured. Callers are
// expected to switch to their deterministic fallback on any error.
var ErrUnavailable = errors.New("aiwriter: no API key configured")

// Client calls a chat-completions API and decodes structured JSON replies.
type Client interface {
	Complete(ctx context.Context, system, prompt string, out any) error
}

// Writer is the HTTP client for the AI completion service.
type Writer struct {
	apiKey string
	model  string
	client *http.Client
}

func New(apiKey string, client *http.Client) *Writer {
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}
	return &Writer{apiKey: apiKey, model: "gpt-4o-mini", client: client}
}

// Available reports whether live completions can be attempted.
func (w *Writer) Available() bool {
	return w != nil && w.apiKey != ""
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the prompt and decodes the JSON reply into out. Every
// failure mode (missing key, transport error, API error, empty or malformed
// content) comes back as an error instead of a panic.
func (w *Writer) Complete(ctx context.Context, system, prompt string, out any) error {
	if !w.Available() {
		return ErrUnavailable
	}

	body, err := json.Marshal(chatRequest{
		Model: w.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", completionsURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("aiwriter: malformed response: %w", err)
	}
	if parsed.Error != nil {
		return fmt.Errorf("aiwriter: api error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return errors.New("aiwriter: empty response")
	}

	content := stripFences(parsed.Choices[0].Message.Content)
	if strings.TrimSpace(content) == "" {
		return errors.New("aiwriter: empty completion content")
	}

	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("aiwriter: malformed completion JSON: %w", err)
	}
	return nil
}

// stripFences removes markdown code fences some models wrap JSON in.
func stripFences(content string) string {
	if idx := strings.Index(content, "```json"); idx >= 0 {
		content = content[idx+len("```json"):]
		if end := strings.Index(content, "```"); end >= 0 {
			content = content[:end]
		}
	} else if idx := strings.Index(content, "```"); idx >= 0 {
		content = content[idx+3:]
		if end := strings.Index(content, "```"); end >= 0 {
			content = content[:end]
		}
	}
	return strings.TrimSpace(content)
}
