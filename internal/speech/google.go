package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/krishimitra/crop-scan-backend/internal/apperr"
)

// Google transcribes short audio clips through the Google Speech-to-Text
// REST API, keyed by the general cloud API key.
type Google struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

func NewGoogle(client *http.Client, apiKey string) *Google {
	return &Google{
		client:  client,
		apiKey:  apiKey,
		baseURL: "https://speech.googleapis.com/v1/speech:recognize",
	}
}

// Transcribe submits the audio bytes and joins all result transcripts with
// newlines. An empty result set yields an empty string, not an error.
// The encoding config matches what the app records: MP3, 16 kHz, Hindi.
func (g *Google) Transcribe(ctx context.Context, audio []byte) (string, error) {
	body, err := json.Marshal(map[string]any{
		"config": map[string]any{
			"encoding":        "MP3",
			"sampleRateHertz": 16000,
			"languageCode":    "hi-IN",
		},
		"audio": map[string]any{
			"content": base64.StdEncoding.EncodeToString(audio),
		},
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
		return "", &apperr.UpstreamError{Service: "speech-to-text", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return "", &apperr.UpstreamError{
			Service: "speech-to-text",
			Status:  resp.StatusCode,
			Body:    string(raw),
		}
	}

	var payload struct {
		Results []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", &apperr.UpstreamError{Service: "speech-to-text", Err: fmt.Errorf("decode response: %w", err)}
	}

	var lines []string
	for _, r := range payload.Results {
		if len(r.Alternatives) > 0 {
			lines = append(lines, r.Alternatives[0].Transcript)
		}
	}
	return strings.Join(lines, "\n"), nil
}
