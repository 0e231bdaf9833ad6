package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/krishimitra/crop-scan-backend/internal/apperr"
)

// Google forwards text to the Google Translate v2 REST API.
type Google struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

func NewGoogle(client *http.Client, apiKey string) *Google {
	return &Google{
		client:  client,
		apiKey:  apiKey,
		baseURL: "https://translation.googleapis.com/language/translate/v2",
	}
}

// Translate returns the first translation for text in the target language.
// A well-formed response with no translations yields an empty string.
func (g *Google) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"q":      text,
		"target": targetLanguage,
		"format": "text",
	})
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s?key=%s", g.baseURL, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &apperr.UpstreamError{Service: "translate", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return "", &apperr.UpstreamError{
			Service: "translate",
			Status:  resp.StatusCode,
			Body:    string(raw),
		}
	}

	var payload struct {
		Data struct {
			Translations []struct {
				TranslatedText string `json:"translatedText"`
			} `json:"translations"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", &apperr.UpstreamError{Service: "translate", Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(payload.Data.Translations) == 0 {
		return "", nil
	}
	return payload.Data.Translations[0].TranslatedText, nil
}
