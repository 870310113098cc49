package core

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IncomePrefix marks a custom category as an income category.
const IncomePrefix = "ingreso_"

const (
	KindPredefined CategoryKind = "predefined"
	KindCustom     CategoryKind = "custom"
)

const (
	GroupMain   CategoryGroup = "main"
	GroupBills  CategoryGroup = "bills"
	GroupIncome CategoryGroup = "income"
	GroupLegacy CategoryGroup = "legacy"
)

type (
	CategoryKind  string
	CategoryGroup string

	// Category tags a movement. The kind and movement type are decided once,
	// when the value is built from its id.
	Category struct {
		Kind         CategoryKind `json:"kind"`
		ID           string       `json:"id"`
		MovementType MovementType `json:"movementType"`
	}

	// CatalogEntry describes one predefined category.
	CatalogEntry struct {
		ID    string        `json:"id"`
		Label string        `json:"label"`
		Type  MovementType  `json:"type"`
		Group CategoryGroup `json:"group"`
	}
)

var catalog = []CatalogEntry{
	{ID: "alimentacion", Label: "Alimentación", Type: Expense, Group: GroupMain},
	{ID: "movilidad", Label: "Movilidad", Type: Expense, Group: GroupMain},
	{ID: "ocio", Label: "Ocio", Type: Expense, Group: GroupMain},
	{ID: "varios", Label: "Varios", Type: Expense, Group: GroupMain},

	{ID: "luz", Label: "Luz", Type: Expense, Group: GroupBills},
	{ID: "agua", Label: "Agua", Type: Expense, Group: GroupBills},
	{ID: "movil", Label: "Móvil", Type: Expense, Group: GroupBills},
	{ID: "vivienda", Label: "Hipoteca/Alquiler", Type: Expense, Group: GroupBills},
	{ID: "seguros", Label: "Seguros", Type: Expense, Group: GroupBills},
	{ID: "suscripciones", Label: "Suscripciones", Type: Expense, Group: GroupBills},

	{ID: "nomina", Label: "Nómina", Type: Income, Group: GroupIncome},
	{ID: "bizum", Label: "Bizum", Type: Income, Group: GroupIncome},
	{ID: "regalo", Label: "Regalo", Type: Income, Group: GroupIncome},
	{ID: "otros_ingresos", Label: "Otros ingresos", Type: Income, Group: GroupIncome},

	// Older snapshots still carry these ids.
	{ID: "comida", Label: "Comida", Type: Expense, Group: GroupLegacy},
	{ID: "casa", Label: "Casa", Type: Expense, Group: GroupLegacy},
	{ID: "transporte", Label: "Movilidad", Type: Expense, Group: GroupLegacy},
	{ID: "ingreso", Label: "Ingreso", Type: Income, Group: GroupLegacy},
}

var catalogIndex = func() map[string]CatalogEntry {
	m := make(map[string]CatalogEntry, len(catalog))
	for _, e := range catalog {
		m[e.ID] = e
	}
	return m
}()

// legacyAliases maps retired ids to the id that replaced them.
var legacyAliases = map[string]string{
	"comida":     "alimentacion",
	"transporte": "movilidad",
}

// Catalog returns the predefined categories, legacy ids included.
func Catalog() []CatalogEntry {
	return append([]CatalogEntry(nil), catalog...)
}

// CatalogFor returns the non-legacy predefined categories for a movement type,
// in display order.
func CatalogFor(t MovementType) []CatalogEntry {
	var out []CatalogEntry
	for _, e := range catalog {
		if e.Type == t && e.Group != GroupLegacy {
			out = append(out, e)
		}
	}
	return out
}

// LookupCatalog finds a predefined category by id.
func LookupCatalog(id string) (CatalogEntry, bool) {
	e, ok := catalogIndex[id]
	return e, ok
}

// ResolveCategory builds the Category value for an id. Predefined ids take
// their type from the catalog; any other id is custom and counts as income
// only when it carries IncomePrefix.
func ResolveCategory(id string) Category {
	if e, ok := catalogIndex[id]; ok {
		return Category{Kind: KindPredefined, ID: id, MovementType: e.Type}
	}
	return NewCustomCategory(id)
}

// NewCustomCategory builds a custom category for an already normalized id,
// even when the id collides with a predefined one.
func NewCustomCategory(id string) Category {
	t := Expense
	if strings.HasPrefix(id, IncomePrefix) {
		t = Income
	}
	return Category{Kind: KindCustom, ID: id, MovementType: t}
}

// NormalizeCategoryName trims and lower-cases a user supplied category name.
func NormalizeCategoryName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CustomCategoryID returns the id a user supplied name is stored under for
// the given movement type.
func CustomCategoryID(t MovementType, name string) string {
	id := NormalizeCategoryName(name)
	if id == "" {
		return ""
	}
	if t == Income && !strings.HasPrefix(id, IncomePrefix) {
		id = IncomePrefix + id
	}
	return id
}

// CanonicalCategoryID folds legacy aliases into their current id.
func CanonicalCategoryID(id string) string {
	if alias, ok := legacyAliases[id]; ok {
		return alias
	}
	return id
}

func (c Category) IsCustom() bool {
	return c.Kind == KindCustom
}

func (c Category) IsIncome() bool {
	return c.MovementType == Income
}

// Name is the id without the income prefix.
func (c Category) Name() string {
	if c.Kind == KindCustom {
		return strings.TrimPrefix(c.ID, IncomePrefix)
	}
	return c.ID
}

// Label returns the text shown for the category.
func (c Category) Label() string {
	if c.Kind == KindPredefined {
		if e, ok := catalogIndex[c.ID]; ok {
			return e.Label
		}
	}
	return TitleWords(c.Name())
}

func (c Category) String() string {
	return c.ID
}

// TitleWords upper-cases the first letter of every space separated word.
func TitleWords(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
