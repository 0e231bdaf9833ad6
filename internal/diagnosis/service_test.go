package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/krishimitra/crop-scan-backend/internal/staging"
)

type fakeIdentifier struct {
	suggestions []Suggestion
	err         error
}

func (f *fakeIdentifier) Identify(ctx context.Context, imageBase64 string) ([]Suggestion, error) {
	return f.suggestions, f.err
}

// fakeAdvisor echoes a summary derived from the prompt, failing for any
// disease name listed in failFor.
type fakeAdvisor struct {
	failFor []string
}

func (f *fakeAdvisor) Generate(ctx context.Context, prompt string) (string, error) {
	for _, name := range f.failFor {
		if strings.Contains(prompt, fmt.Sprintf("%q", name)) {
			return "", errors.New("advice backend down")
		}
	}
	return "summary:" + prompt, nil
}

func newTestService(t *testing.T, identifier Identifier, advisor Summarizer) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	stager, err := staging.New(dir)
	if err != nil {
		t.Fatalf("staging setup failed: %v", err)
	}
	return NewService(stager, identifier, advisor), dir
}

func TestAnalyzeKeepsTopFourSortedByProbability(t *testing.T) {
	identifier := &fakeIdentifier{suggestions: []Suggestion{
		{Name: "rust", Probability: 0.2},
		{Name: "blight", Probability: 0.9},
		{Name: "mildew", Probability: 0.5},
		{Name: "smut", Probability: 0.1},
		{Name: "wilt", Probability: 0.7},
		{Name: "rot", Probability: 0.3},
	}}

	svc, _ := newTestService(t, identifier, &fakeAdvisor{})
	report, err := svc.Analyze(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	diseases := report.Result.Diseases
	if len(diseases) != 4 {
		t.Fatalf("expected 4 diseases, got %d", len(diseases))
	}

	wantOrder := []string{"blight", "wilt", "mildew", "rot"}
	for i, want := range wantOrder {
		if diseases[i].Name != want {
			t.Errorf("position %d: got %q, want %q", i, diseases[i].Name, want)
		}
	}
}

func TestAnalyzeShortListIsNeverPadded(t *testing.T) {
	identifier := &fakeIdentifier{suggestions: []Suggestion{
		{Name: "rust", Probability: 0.4},
		{Name: "blight", Probability: 0.6},
	}}

	svc, _ := newTestService(t, identifier, &fakeAdvisor{})
	report, err := svc.Analyze(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	if len(report.Result.Diseases) != 2 {
		t.Fatalf("expected 2 diseases, got %d", len(report.Result.Diseases))
	}
}

func TestAnalyzeStableOrderForEqualProbabilities(t *testing.T) {
	identifier := &fakeIdentifier{suggestions: []Suggestion{
		{Name: "first", Probability: 0.5},
		{Name: "second", Probability: 0.5},
		{Name: "third", Probability: 0.5},
	}}

	svc, _ := newTestService(t, identifier, &fakeAdvisor{})
	report, err := svc.Analyze(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	wantOrder := []string{"first", "second", "third"}
	for i, want := range wantOrder {
		if report.Result.Diseases[i].Name != want {
			t.Errorf("position %d: got %q, want %q", i, report.Result.Diseases[i].Name, want)
		}
	}
}

func TestAnalyzeFailedSummaryFallsBackWithoutContaminatingSiblings(t *testing.T) {
	identifier := &fakeIdentifier{suggestions: []Suggestion{
		{Name: "blight", Probability: 0.9},
		{Name: "rust", Probability: 0.4},
	}}

	svc, _ := newTestService(t, identifier, &fakeAdvisor{failFor: []string{"rust"}})
	report, err := svc.Analyze(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	diseases := report.Result.Diseases
	if diseases[1].Summary != summaryFallback {
		t.Errorf("rust summary = %q, want fallback %q", diseases[1].Summary, summaryFallback)
	}
	if diseases[0].Summary == summaryFallback || diseases[0].Summary == "" {
		t.Errorf("blight summary should be real, got %q", diseases[0].Summary)
	}
}

func TestAnalyzeRemovesStagedFileOnSuccess(t *testing.T) {
	identifier := &fakeIdentifier{suggestions: []Suggestion{{Name: "rust", Probability: 0.4}}}

	svc, dir := newTestService(t, identifier, &fakeAdvisor{})
	if _, err := svc.Analyze(context.Background(), []byte("img")); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	assertDirEmpty(t, dir)
}

func TestAnalyzeRemovesStagedFileOnIdentificationFailure(t *testing.T) {
	identifier := &fakeIdentifier{err: errors.New("upstream blew up")}

	svc, dir := newTestService(t, identifier, &fakeAdvisor{})
	if _, err := svc.Analyze(context.Background(), []byte("img")); err == nil {
		t.Fatal("expected identification error")
	}

	assertDirEmpty(t, dir)
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no staged files left, found %d", len(entries))
	}
}
