package advice

import (
	"regexp"
	"strings"
)

// Fallback strings returned when a language section cannot be located in the
// model output. The client renders them verbatim.
const (
	FallbackEnglish = "⚠️ No English advice available."
	FallbackHindi   = "⚠️ No Hindi advice available."
)

// Bilingual holds the two language sections parsed out of one model response.
type Bilingual struct {
	English string `json:"english"`
	Hindi   string `json:"hindi"`
}

var (
	// The Hindi section runs from its marker up to the "English:" marker or
	// the end of text. Markers are case-insensitive with an optional colon.
	hindiSection   = regexp.MustCompile(`(?is)hindi\s*:?\s*(.+?)(?:\s*english\s*:|$)`)
	englishSection = regexp.MustCompile(`(?is)english\s*:?\s*(.+)`)

	// Markdown emphasis and heading characters the model sometimes emits
	// despite being told not to; collapsed together with whitespace runs.
	markupAndSpace = regexp.MustCompile(`[*#\s]+`)
)

// ParseBilingual splits free-form model text into Hindi and English advice by
// ordered marker search. Each marker is handled independently: a missing one
// leaves that language at its fallback, it never voids the other section.
// The function is pure so it can be tested without any network call.
func ParseBilingual(text string) Bilingual {
	out := Bilingual{
		English: FallbackEnglish,
		Hindi:   FallbackHindi,
	}

	if m := hindiSection.FindStringSubmatch(text); m != nil {
		if cleaned := cleanSection(m[1]); cleaned != "" {
			out.Hindi = cleaned
		}
	}
	if m := englishSection.FindStringSubmatch(text); m != nil {
		if cleaned := cleanSection(m[1]); cleaned != "" {
			out.English = cleaned
		}
	}

	return out
}

func cleanSection(s string) string {
	return strings.TrimSpace(markupAndSpace.ReplaceAllString(s, " "))
}
