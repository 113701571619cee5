package services

import "strings"

// PostProcessor normalizes text returned by the external assistant. It is
// a pure transform pipeline, independent of the transport that produced
// the text: currency substitution, off-topic truncation, word cap.
type PostProcessor struct {
	currency string
	wordCap  int
}

// NewPostProcessor creates a post-processor enforcing the dataset's
// currency symbol and the configured word budget.
func NewPostProcessor(currency string, wordCap int) *PostProcessor {
	return &PostProcessor{currency: currency, wordCap: wordCap}
}

// foreignCurrencyMarkers are substituted with the dataset currency, in
// order: multi-char markers first so "US$" is not half-replaced.
var foreignCurrencyMarkers = []string{
	"US$", "USD ", "EUR ", "GBP ", "INR ", "JPY ", "$", "€", "£", "¥",
}

// offTopicMarkers flag text that drifted away from sales analytics.
// The response is cut at the sentence boundary preceding the marker.
var offTopicMarkers = []string{
	"as an ai language model", "quadratic equation", "photosynthesis",
	"def main(", "public static void", "import numpy", "console.log",
	"<?php", "recipe", "poem about", "chess opening", "world war",
}

// Apply runs the full pipeline.
func (p *PostProcessor) Apply(text string) string {
	text = p.SubstituteCurrency(text)
	text = p.TruncateOffTopic(text)
	text = p.CapWords(text)
	return strings.TrimSpace(text)
}

// SubstituteCurrency rewrites foreign currency markers to the dataset's
// single detected symbol.
func (p *PostProcessor) SubstituteCurrency(text string) string {
	for _, marker := range foreignCurrencyMarkers {
		if marker == p.currency || strings.TrimSpace(marker) == p.currency {
			continue
		}
		replacement := p.currency
		if strings.HasSuffix(marker, " ") {
			replacement = p.currency + " "
		}
		text = strings.ReplaceAll(text, marker, replacement)
	}
	return text
}

// TruncateOffTopic cuts the text at the sentence boundary before the first
// off-topic marker. If the marker opens the text, everything goes.
func (p *PostProcessor) TruncateOffTopic(text string) string {
	lower := strings.ToLower(text)
	cut := -1
	for _, marker := range offTopicMarkers {
		if idx := strings.Index(lower, marker); idx >= 0 && (cut == -1 || idx < cut) {
			cut = idx
		}
	}
	if cut == -1 {
		return text
	}
	boundary := 0
	for _, sep := range []string{".", "!", "?", "\n"} {
		if idx := strings.LastIndex(text[:cut], sep); idx+1 > boundary {
			boundary = idx + 1
		}
	}
	return strings.TrimSpace(text[:boundary])
}

// CapWords enforces the response word budget.
func (p *PostProcessor) CapWords(text string) string {
	if p.wordCap <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) <= p.wordCap {
		return text
	}
	return strings.Join(words[:p.wordCap], " ") + " …"
}
