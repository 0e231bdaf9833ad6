package advice

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/krishimitra/crop-scan-backend/internal/apperr"
)

const defaultModel = "gemini-2.0-flash"

// Gemini generates free-text advice through the Gemini API. It backs the
// disease summaries, the weather advice prompt and the /gemini-advice route.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client authenticated with an API key.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{client: client, model: defaultModel}, nil
}

// Generate sends one prompt and returns the model's text, trimmed.
// An empty candidate set is reported as an error; callers decide whether
// that degrades to a fallback string or propagates.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", &apperr.UpstreamError{Service: "gemini", Err: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text, nil
}
