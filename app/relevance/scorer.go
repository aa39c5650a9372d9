// Package relevance scores content against a workspace's keywords and
// purpose. Scoring is lexical and additive by design: scores saturate at 100
// rather than being normalized, so heavily matching content pins to the top.
package relevance

import (
	"strings"
)

const (
	titleMatchWeight   = 8
	contentMatchWeight = 3
	purposeWordWeight  = 2

	// Quality bonuses.
	longContentBonus      = 3 // content longer than 500 chars
	veryLongContentBonus  = 2 // content longer than 1000 chars
	descriptiveTitleBonus = 2 // title longer than 20 chars
	researchTitleBonus    = 3 // title mentions research or study

	maxScore = 100

	// Words this short carry no signal when tokenizing the purpose text.
	minPurposeWordLength = 4

	annotationWeight   = 5
	maxAnnotationBoost = 20
)

// DefaultThreshold is the minimum score at which monitored content is kept.
// Callers share this single cutoff rather than picking their own.
const DefaultThreshold = 30

// Score ranks how well a piece of content matches the given keywords and
// purpose, returning an integer in [0,100]. Title matches outweigh body
// matches because headline relevance is a stronger signal than incidental
// mentions.
func Score(title, content string, keywords []string, purpose string) int {
	titleLower := strings.ToLower(title)
	contentLower := strings.ToLower(content)

	score := 0

	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		score += strings.Count(titleLower, keyword) * titleMatchWeight
		score += strings.Count(contentLower, keyword) * contentMatchWeight
	}

	if purpose != "" {
		combined := titleLower + " " + contentLower
		for _, word := range strings.Fields(strings.ToLower(purpose)) {
			word = strings.Trim(word, ".,;:!?\"'()")
			if len(word) < minPurposeWordLength {
				continue
			}
			score += strings.Count(combined, word) * purposeWordWeight
		}
	}

	if len(content) > 500 {
		score += longContentBonus
	}
	if len(content) > 1000 {
		score += veryLongContentBonus
	}
	if len(title) > 20 {
		score += descriptiveTitleBonus
	}
	if strings.Contains(titleLower, "research") || strings.Contains(titleLower, "study") {
		score += researchTitleBonus
	}

	return clamp(score)
}

// RecalculateForAnnotations boosts a base score for content that has accrued
// user annotations, capped so annotations alone cannot dominate the score.
func RecalculateForAnnotations(baseScore, annotationCount int) int {
	boost := annotationCount * annotationWeight
	if boost > maxAnnotationBoost {
		boost = maxAnnotationBoost
	}
	return clamp(baseScore + boost)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
