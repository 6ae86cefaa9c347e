// Package genlang is a thin client for a generative-language REST provider
// (Gemini-style API surface). It exposes the two endpoints the advisor
// needs, model listing and text generation, and maps provider statuses to
// typed errors so callers can tell rate limiting from hard rejection.
package genlang

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
)

// ErrRateLimited marks a 429 from the provider; the caller may retry the
// same model after a backoff.
var ErrRateLimited = errors.New("provider rate limited")

// StatusError is any other non-2xx provider response. It fails the model
// being tried, not necessarily the whole request.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider error (status %d): %s", e.Code, e.Body)
}

// Content is one conversation entry in the wire format. Role is "user" or
// "model".
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

type generateRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// ModelInfo is one provider-reported model descriptor.
type ModelInfo struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName,omitempty"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// SupportsGeneration reports whether the model can serve generateContent.
func (m ModelInfo) SupportsGeneration() bool {
	for _, method := range m.SupportedGenerationMethods {
		if method == "generateContent" {
			return true
		}
	}
	return false
}

// ID strips the "models/" resource prefix from the descriptor name.
func (m ModelInfo) ID() string {
	return strings.TrimPrefix(m.Name, "models/")
}

type listModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// Client calls the provider over HTTP. The zero value is not usable; use
// NewClient.
type Client struct {
	baseURL     string
	apiKey      string
	temperature float64
	httpClient  *http.Client
}

func NewClient(baseURL, apiKey string, temperature float64) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		temperature: temperature,
		// Per-call deadlines come from the caller's context; this is a
		// safety net against a wedged connection.
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// ListModels fetches the provider's callable model descriptors.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("building models request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var parsed listModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding models response: %w", err)
	}
	return parsed.Models, nil
}

// Generate sends the conversation to one model and returns the first
// candidate's text, with markdown fences stripped if the model added any.
func (c *Client) Generate(ctx context.Context, model string, contents []Content) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         contents,
		GenerationConfig: generationConfig{Temperature: c.temperature},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling generate request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling model %s: %w", model, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding generate response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &StatusError{Code: http.StatusOK, Body: "empty candidate in response"}
	}

	return cleanFences(parsed.Candidates[0].Content.Parts[0].Text), nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ErrRateLimited, strings.TrimSpace(string(body)))
	}
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// cleanFences strips ```...``` wrappers models sometimes add despite
// instructions.
func cleanFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
