package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/krishimitra/crop-scan-backend/internal/apperr"
	"github.com/krishimitra/crop-scan-backend/internal/diagnosis"
)

// KindwiseIdentifier implements diagnosis.Identifier against the Kindwise
// crop.health identification API.
type KindwiseIdentifier struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

func NewKindwiseIdentifier(client *http.Client, apiKey string) *KindwiseIdentifier {
	return &KindwiseIdentifier{
		client:  client,
		apiKey:  apiKey,
		baseURL: "https://crop.kindwise.com/api/v1/identification",
	}
}

func (p *KindwiseIdentifier) Identify(ctx context.Context, imageBase64 string) ([]diagnosis.Suggestion, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("crop health api key is not configured")
	}

	// similar_images is always requested; geolocation is never attached.
	body, err := json.Marshal(struct {
		Images        []string `json:"images"`
		SimilarImages bool     `json:"similar_images"`
	}{
		Images:        []string{imageBase64},
		SimilarImages: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &apperr.UpstreamError{Service: "crop-health", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, &apperr.UpstreamError{
			Service: "crop-health",
			Status:  resp.StatusCode,
			Body:    string(raw),
		}
	}

	var payload struct {
		Result struct {
			Disease struct {
				Suggestions []struct {
					ID             string   `json:"id"`
					Name           string   `json:"name"`
					Probability    *float64 `json:"probability"`
					ScientificName string   `json:"scientific_name"`
				} `json:"suggestions"`
			} `json:"disease"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &apperr.UpstreamError{Service: "crop-health", Err: fmt.Errorf("decode response: %w", err)}
	}

	raw := payload.Result.Disease.Suggestions
	out := make([]diagnosis.Suggestion, 0, len(raw))
	for _, s := range raw {
		name := s.Name
		if name == "" {
			name = "Unknown Disease"
		}
		var prob float64
		if s.Probability != nil {
			prob = *s.Probability
		}
		out = append(out, diagnosis.Suggestion{
			ID:             s.ID,
			Name:           name,
			Probability:    prob,
			ScientificName: s.ScientificName,
		})
	}
	return out, nil
}
