package relevance

import (
	"strings"
	"testing"
)

func TestScoreKeywordWeights(t *testing.T) {
	// One title match (8) plus one content match (3), no bonuses.
	got := Score("machine learning", "machine learning", []string{"machine learning"}, "")
	if got != 11 {
		t.Errorf("Expected score 11, got %d", got)
	}
}

func TestScoreTitleOutweighsContent(t *testing.T) {
	inTitle := Score("machine learning", "", []string{"machine learning"}, "")
	inContent := Score("", "machine learning", []string{"machine learning"}, "")
	if inTitle <= inContent {
		t.Errorf("Title match (%d) must outweigh content match (%d)", inTitle, inContent)
	}
}

func TestScorePurposeWords(t *testing.T) {
	// Two purpose words of four or more chars, each matched once (2 each).
	got := Score("", "quantum computing hardware", nil, "quantum computing")
	if got != 4 {
		t.Errorf("Expected score 4 from purpose words, got %d", got)
	}
}

func TestScorePurposeShortWordsIgnored(t *testing.T) {
	// "ai" and "for" are below the minimum purpose word length.
	got := Score("", "ai for everyone", nil, "ai for")
	if got != 0 {
		t.Errorf("Expected short purpose words ignored, got %d", got)
	}
}

func TestScoreQualityBonuses(t *testing.T) {
	longContent := strings.Repeat("filler text ", 50) // > 500 chars
	veryLongContent := strings.Repeat("filler text ", 100)

	// No keyword or purpose matches; only bonuses apply.
	if got := Score("short", longContent, nil, ""); got != 3 {
		t.Errorf("Expected long content bonus 3, got %d", got)
	}
	if got := Score("short", veryLongContent, nil, ""); got != 5 {
		t.Errorf("Expected stacked length bonuses 5, got %d", got)
	}
	if got := Score("a reasonably descriptive title", "", nil, ""); got != 2 {
		t.Errorf("Expected descriptive title bonus 2, got %d", got)
	}
	if got := Score("New Study Results", "", nil, ""); got != 3 {
		t.Errorf("Expected research title bonus 3, got %d", got)
	}
}

func TestScoreKeywordFreeContentStaysLow(t *testing.T) {
	// Bonuses alone max out at 10 (3+2+2+3), well under the default threshold.
	title := "Comprehensive Research Overview Study"
	content := strings.Repeat("unrelated words ", 100)
	if got := Score(title, content, []string{"blockchain"}, ""); got > 10 {
		t.Errorf("Keyword-free content must stay at bonus-only levels, got %d", got)
	}
	if got := Score(title, content, []string{"blockchain"}, ""); got >= DefaultThreshold {
		t.Errorf("Keyword-free content must fall below the default threshold, got %d", got)
	}
}

func TestScoreSaturatesAtHundred(t *testing.T) {
	content := strings.Repeat("machine learning ", 100)
	got := Score("machine learning machine learning machine learning", content,
		[]string{"machine learning"}, "machine learning research")
	if got != 100 {
		t.Errorf("Expected saturation at 100, got %d", got)
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	upper := Score("MACHINE LEARNING", "MACHINE LEARNING NEWS", []string{"machine learning"}, "")
	lower := Score("machine learning", "machine learning news", []string{"Machine Learning"}, "")
	if upper != lower {
		t.Errorf("Expected case-insensitive scoring, got %d vs %d", upper, lower)
	}
}

func TestScoreEmptyKeywordsSkipped(t *testing.T) {
	got := Score("anything", "anything", []string{"", "  "}, "")
	if got != 0 {
		t.Errorf("Expected blank keywords to contribute nothing, got %d", got)
	}
}

func TestRecalculateForAnnotations(t *testing.T) {
	if got := RecalculateForAnnotations(50, 2); got != 60 {
		t.Errorf("Expected 50 + 2*5 = 60, got %d", got)
	}
	// Boost caps at 20 regardless of annotation count.
	if got := RecalculateForAnnotations(50, 100); got != 70 {
		t.Errorf("Expected capped boost 70, got %d", got)
	}
	if got := RecalculateForAnnotations(95, 4); got != 100 {
		t.Errorf("Expected clamp at 100, got %d", got)
	}
	if got := RecalculateForAnnotations(40, 0); got != 40 {
		t.Errorf("Expected unchanged score with no annotations, got %d", got)
	}
}
