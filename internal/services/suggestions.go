package services

import (
	"sort"
	"strings"

	"moneypaz/internal/core"
)

const (
	// DefaultConceptMatches is the autocomplete list length.
	DefaultConceptMatches = 5
	// QuickPickLimit caps the frequently used custom categories offered.
	QuickPickLimit = 4
)

// baselineConcepts fill the suggestion list after the user's own concepts.
var baselineConcepts = []string{
	"mercadona", "lidl", "coviran", "carrefour", "dia",
	"netflix", "spotify", "hbo", "disney", "amazon prime",
	"gasolina", "parking", "renfe", "bus", "taxi",
	"cajamar", "santander", "bbva", "ing",
	"seguro ocaso", "seguro mapfre", "mutua",
	"endesa", "iberdrola", "naturgy",
	"vodafone", "movistar", "orange",
	"nómina papá", "nómina mamá", "bizum papá", "bizum mamá",
	"comunidad", "hipoteca", "alquiler",
}

// SuggestedConcepts ranks the concepts used on movements by frequency,
// case-insensitively, then appends the baseline entries not already listed.
func SuggestedConcepts(s core.FinanceState) []string {
	counts := map[string]int{}
	var order []string
	for _, m := range s.Movements {
		if m.Concept == "" {
			continue
		}
		c := strings.ToLower(m.Concept)
		if _, ok := counts[c]; !ok {
			order = append(order, c)
		}
		counts[c]++
	}
	ranked := rankByCount(order, counts)

	seen := make(map[string]bool, len(ranked)+len(baselineConcepts))
	for _, c := range ranked {
		seen[c] = true
	}
	for _, c := range baselineConcepts {
		if !seen[c] {
			ranked = append(ranked, c)
			seen[c] = true
		}
	}
	return ranked
}

// MatchConcepts filters SuggestedConcepts by case-insensitive substring. A
// blank query returns the head of the list. limit <= 0 means the default.
func MatchConcepts(s core.FinanceState, query string, limit int) []string {
	if limit <= 0 {
		limit = DefaultConceptMatches
	}
	q := strings.ToLower(query)
	out := []string{}
	for _, c := range SuggestedConcepts(s) {
		if len(out) == limit {
			break
		}
		if strings.Contains(c, q) {
			out = append(out, c)
		}
	}
	return out
}

// QuickPickCategories returns the most used custom categories for a movement
// type, limited to those still present in the custom category list.
func QuickPickCategories(s core.FinanceState, t core.MovementType) []core.Category {
	out := []core.Category{}
	for _, u := range FrequentCategories(s) {
		if len(out) == QuickPickLimit {
			break
		}
		id := u.Category.ID
		if !matchesType(id, t) {
			continue
		}
		if _, predefined := core.LookupCatalog(id); predefined && !isLegacy(id) {
			continue
		}
		if !s.HasCustomCategory(id) {
			continue
		}
		out = append(out, core.NewCustomCategory(id))
	}
	return out
}

// CategoryOption is one entry of a category listing.
type CategoryOption struct {
	Category core.Category `json:"category"`
	Label    string        `json:"label"`
}

// CategoriesFor lists the predefined categories for a movement type followed
// by the matching custom categories.
func CategoriesFor(s core.FinanceState, t core.MovementType) []CategoryOption {
	out := []CategoryOption{}
	for _, e := range core.CatalogFor(t) {
		c := core.ResolveCategory(e.ID)
		out = append(out, CategoryOption{Category: c, Label: e.Label})
	}
	for _, c := range s.CustomCategories {
		if c.MovementType != t {
			continue
		}
		out = append(out, CategoryOption{Category: c, Label: c.Label()})
	}
	return out
}

// SearchCategories filters CategoriesFor by label or id substring. A blank
// query matches nothing.
func SearchCategories(s core.FinanceState, t core.MovementType, query string) []CategoryOption {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []CategoryOption{}
	if q == "" {
		return out
	}
	for _, o := range CategoriesFor(s, t) {
		if strings.Contains(strings.ToLower(o.Label), q) || strings.Contains(strings.ToLower(o.Category.ID), q) {
			out = append(out, o)
		}
	}
	return out
}

// CanCreateCategory reports whether query would introduce a new category:
// at least two characters and no existing label or id equal to it.
func CanCreateCategory(s core.FinanceState, t core.MovementType, query string) bool {
	if strings.TrimSpace(query) == "" || len([]rune(query)) < 2 {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(query))
	for _, o := range CategoriesFor(s, t) {
		if strings.ToLower(o.Category.ID) == q || strings.ToLower(o.Label) == q {
			return false
		}
	}
	return true
}

func matchesType(id string, t core.MovementType) bool {
	income := strings.HasPrefix(id, core.IncomePrefix)
	if t == core.Income {
		if income {
			return true
		}
		e, ok := core.LookupCatalog(id)
		return ok && e.Type == core.Income && e.Group == core.GroupIncome
	}
	return !income
}

func isLegacy(id string) bool {
	e, ok := core.LookupCatalog(id)
	return ok && e.Group == core.GroupLegacy
}

// rankByCount orders keys by descending count, keeping the given order on ties.
func rankByCount(keys []string, counts map[string]int) []string {
	out := append([]string(nil), keys...)
	sort.SliceStable(out, func(i, j int) bool {
		return counts[out[i]] > counts[out[j]]
	})
	return out
}
