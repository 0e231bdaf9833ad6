package diagnosis

import "context"

// Identifier abstracts the plant-health identification service
// (e.g. Kindwise crop.health).
type Identifier interface {
	Identify(ctx context.Context, imageBase64 string) ([]Suggestion, error)
}

// Summarizer turns a prompt into free text; used for per-disease summaries.
type Summarizer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
