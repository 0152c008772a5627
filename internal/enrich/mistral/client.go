package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// codeFencePattern matches the backtick runs models wrap answers in; the
// cleaning contract strips them from the response before use.
var codeFencePattern = regexp.MustCompile("`+")

const extractPrompt = "Extract the manufacturer or maker names mentioned in the PO text. " +
	"Return ONLY a JSON object of the form {\"manufacturers\": [\"name\", ...]} with no other keys. " +
	"Use an empty array when no manufacturer is mentioned.\ncontent: "

// Clean sends the PO text to the dedicated cleaning agent and returns the
// response with code fences stripped. The fallback-to-input policy lives in
// the enrich wrapper, not here: this client reports errors.
func (c *Client) Clean(ctx context.Context, text string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	if c.cfg.CleanerAgentID == "" {
		return "", fmt.Errorf("cleaner agent id not configured")
	}

	body := map[string]any{
		"agent_id": c.cfg.CleanerAgentID,
		"messages": []map[string]any{
			{"role": "user", "content": text},
		},
	}
	c.log.Info("mistral.clean.start", "req_id", rid, "agent_id", c.cfg.CleanerAgentID, "text_len", len(text))

	content, err := c.complete(ctx, "/agents/completions", body)
	if err != nil {
		c.log.Error("mistral.clean.error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}
	cleaned := codeFencePattern.ReplaceAllString(content, "")

	c.log.Info("mistral.clean.ok", "req_id", rid, "bytes", len(cleaned), "elapsed_ms", time.Since(start).Milliseconds())
	return cleaned, nil
}

// ExtractManufacturers asks the chat model for the maker names in the PO
// text and returns them as a hyphen-separated plain-text list. The model is
// constrained to a JSON object which is schema-validated before joining, so
// a malformed response surfaces as an error instead of garbage output.
func (c *Client) ExtractManufacturers(ctx context.Context, text string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	body := map[string]any{
		"model":           c.cfg.Model,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "user", "content": extractPrompt + text},
		},
	}
	c.log.Info("mistral.extract.start", "req_id", rid, "model", c.cfg.Model, "text_len", len(text))

	content, err := c.complete(ctx, "/chat/completions", body)
	if err != nil {
		c.log.Error("mistral.extract.error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	names, err := decodeManufacturers([]byte(strings.TrimSpace(content)))
	if err != nil {
		c.log.Error("mistral.extract.decode_error", "req_id", rid, "error", err, "content", content,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	c.log.Info("mistral.extract.ok", "req_id", rid, "names", len(names), "elapsed_ms", time.Since(start).Milliseconds())
	return strings.Join(names, " - "), nil
}

// complete posts a completion request and returns the first choice's
// message content.
func (c *Client) complete(ctx context.Context, path string, body map[string]any) (string, error) {
	raw, err := c.post(ctx, strings.TrimRight(c.cfg.BaseURL, "/")+path, body)
	if err != nil {
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode mistral response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in mistral response")
	}
	return cc.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mistral http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.log.Warn("mistral response body close error", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		return nil, fmt.Errorf("mistral status %d: %s", resp.StatusCode, buf.String())
	}

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	return buf.Bytes(), nil
}
