package services

import (
	"sales-chat-api/pkg/models"
)

// VocabularyService derives the dynamic entity vocabulary from a dataset.
// It has no state and no side effects; callers must treat an empty
// vocabulary as "no data" and short-circuit before computing anything.
type VocabularyService struct{}

// NewVocabularyService creates a new vocabulary service
func NewVocabularyService() *VocabularyService {
	return &VocabularyService{}
}

// Extract returns the distinct values of each categorical column plus the
// numeric/text/date column partition. The partition is sampled from the
// first record; an empty dataset yields empty sets everywhere.
func (s *VocabularyService) Extract(records []models.SalesRecord) models.Vocabulary {
	if len(records) == 0 {
		return models.Vocabulary{}
	}

	return models.Vocabulary{
		Customers:  distinctValues(records, func(r models.SalesRecord) string { return r.Customer }),
		Items:      distinctValues(records, func(r models.SalesRecord) string { return r.Item }),
		Categories: distinctValues(records, func(r models.SalesRecord) string { return r.Category }),
		Regions:    distinctValues(records, func(r models.SalesRecord) string { return r.Region }),

		NumericColumns: []string{"amount", "quantity"},
		TextColumns:    []string{"customer", "item", "category", "region", "masterid", "issales"},
		DateColumns:    []string{"transactiondate"},
	}
}

// distinctValues collects non-empty distinct values in first-seen order.
// First-seen order matters: the resolver's first-match-wins scan depends on it.
func distinctValues(records []models.SalesRecord, get func(models.SalesRecord) string) []string {
	seen := make(map[string]bool, len(records))
	var out []string
	for _, r := range records {
		v := get(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
