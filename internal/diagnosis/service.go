package diagnosis

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/krishimitra/crop-scan-backend/internal/staging"
)

const (
	// maxSuggestions caps the list at the top guesses by probability.
	maxSuggestions = 4

	// summaryFallback replaces the summary of a suggestion whose advice
	// call failed. Sibling suggestions keep their real summaries.
	summaryFallback = "Failed to fetch details."
)

// Service runs the image analysis pipeline: stage the upload, identify
// diseases, then enrich the top suggestions with generated summaries.
type Service struct {
	stager     *staging.Stager
	identifier Identifier
	advisor    Summarizer
}

// NewService creates a new Service.
func NewService(stager *staging.Stager, identifier Identifier, advisor Summarizer) *Service {
	return &Service{
		stager:     stager,
		identifier: identifier,
		advisor:    advisor,
	}
}

// Analyze stages the raw image bytes, submits them for identification and
// returns the top suggestions sorted by probability descending, each with a
// generated summary. The staged file is removed on every path. Identification
// failure aborts the pipeline; a single summary failure does not.
func (s *Service) Analyze(ctx context.Context, image []byte) (*Report, error) {
	staged, err := s.stager.Stage(image)
	if err != nil {
		return nil, err
	}
	defer staged.Remove()

	suggestions, err := s.identifier.Identify(ctx, staged.Base64)
	if err != nil {
		return nil, err
	}

	// Stable sort keeps the upstream order for equal probabilities.
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Probability > suggestions[j].Probability
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	// One summary call per surviving suggestion, concurrently. A failed
	// branch writes its fallback and never cancels the others.
	var wg sync.WaitGroup
	for i := range suggestions {
		wg.Add(1)
		go func(sug *Suggestion) {
			defer wg.Done()

			summary, err := s.advisor.Generate(ctx, summaryPrompt(sug.Name))
			if err != nil {
				log.Printf("diagnosis: summary for %q failed: %v", sug.Name, err)
				sug.Summary = summaryFallback
				return
			}
			sug.Summary = summary
		}(&suggestions[i])
	}
	wg.Wait()

	return &Report{Result: ReportResult{Diseases: suggestions}}, nil
}

func summaryPrompt(disease string) string {
	return fmt.Sprintf(`A farmer's crop may have the disease "%s". In plain text, briefly explain what it is, how to recognize it, and how to treat or prevent it. Use simple farmer-friendly language. No bold or italics, no greetings or introductions.`, disease)
}
