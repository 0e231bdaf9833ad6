package advice

import "testing"

func TestParseBilingualSplitsOnMarkers(t *testing.T) {
	got := ParseBilingual("Hindi: नमस्ते English: Hello")

	if got.Hindi != "नमस्ते" {
		t.Errorf("hindi = %q, want %q", got.Hindi, "नमस्ते")
	}
	if got.English != "Hello" {
		t.Errorf("english = %q, want %q", got.English, "Hello")
	}
}

func TestParseBilingualMissingEnglishMarker(t *testing.T) {
	got := ParseBilingual("Hindi: फसल को पानी दें और मौसम पर नज़र रखें।")

	if got.English != FallbackEnglish {
		t.Errorf("english = %q, want fallback %q", got.English, FallbackEnglish)
	}
	if got.Hindi == FallbackHindi {
		t.Error("hindi should have been parsed, got fallback")
	}
}

func TestParseBilingualMissingHindiMarker(t *testing.T) {
	got := ParseBilingual("English: Water your crops early in the morning.")

	if got.Hindi != FallbackHindi {
		t.Errorf("hindi = %q, want fallback %q", got.Hindi, FallbackHindi)
	}
	if got.English != "Water your crops early in the morning." {
		t.Errorf("english = %q", got.English)
	}
}

func TestParseBilingualNoMarkersAtAll(t *testing.T) {
	got := ParseBilingual("some unrelated model output")

	if got.Hindi != FallbackHindi || got.English != FallbackEnglish {
		t.Errorf("expected both fallbacks, got %+v", got)
	}
}

func TestParseBilingualStripsMarkdownAndCollapsesWhitespace(t *testing.T) {
	got := ParseBilingual("Hindi:\n**बीज** बोएं\n\nEnglish:\n# Sow *seeds*  now")

	if got.Hindi != "बीज बोएं" {
		t.Errorf("hindi = %q, want %q", got.Hindi, "बीज बोएं")
	}
	if got.English != "Sow seeds now" {
		t.Errorf("english = %q, want %q", got.English, "Sow seeds now")
	}
}

func TestParseBilingualCaseInsensitiveMarkers(t *testing.T) {
	got := ParseBilingual("HINDI गेहूं बोएं ENGLISH: wheat is suitable")

	if got.Hindi != "गेहूं बोएं" {
		t.Errorf("hindi = %q", got.Hindi)
	}
	if got.English != "wheat is suitable" {
		t.Errorf("english = %q", got.English)
	}
}
