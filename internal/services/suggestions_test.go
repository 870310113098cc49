package services

import (
	"reflect"
	"testing"

	"moneypaz/internal/core"
)

func withConcept(m core.Movement, concept string) core.Movement {
	m.Concept = concept
	return m
}

func TestSuggestedConcepts_UserConceptsFirst(t *testing.T) {
	s := stateWith(
		withConcept(mov("1", core.Expense, "1", "ocio", at(5, 9)), "Bar Pepe"),
		withConcept(mov("2", core.Expense, "1", "alimentacion", at(4, 9)), "Mercadona"),
		withConcept(mov("3", core.Expense, "1", "alimentacion", at(3, 9)), "mercadona"),
		mov("4", core.Expense, "1", "ocio", at(2, 9)),
	)
	got := SuggestedConcepts(s)

	if got[0] != "mercadona" || got[1] != "bar pepe" {
		t.Fatalf("user concepts not ranked first: %v", got[:3])
	}
	count := 0
	for _, c := range got {
		if c == "mercadona" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("mercadona listed %d times", count)
	}
	if len(got) != len(baselineConcepts)+1 {
		t.Errorf("expected baseline plus one user concept, got %d entries", len(got))
	}
	if got[len(got)-1] != "alquiler" {
		t.Errorf("baseline order not kept: last is %q", got[len(got)-1])
	}
}

func TestMatchConcepts(t *testing.T) {
	s := stateWith(withConcept(mov("1", core.Expense, "1", "ocio", at(5, 9)), "Bizum Luis"))

	cases := []struct {
		query string
		limit int
		want  []string
	}{
		{"", 0, []string{"bizum luis", "mercadona", "lidl", "coviran", "carrefour"}},
		{"BIZUM", 0, []string{"bizum luis", "bizum papá", "bizum mamá"}},
		{"seguro", 1, []string{"seguro ocaso"}},
		{"zzz", 0, []string{}},
	}
	for _, tc := range cases {
		if got := MatchConcepts(s, tc.query, tc.limit); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("MatchConcepts(%q, %d) = %v, want %v", tc.query, tc.limit, got, tc.want)
		}
	}
}

func TestQuickPickCategories(t *testing.T) {
	s := stateWith(
		mov("1", core.Expense, "1", "gimnasio", at(9, 9)),
		mov("2", core.Expense, "1", "gimnasio", at(8, 9)),
		mov("3", core.Expense, "1", "ocio", at(7, 9)),
		mov("4", core.Expense, "1", "ocio", at(7, 8)),
		mov("5", core.Expense, "1", "ocio", at(7, 7)),
		mov("6", core.Income, "1", "ingreso_clases", at(6, 9)),
		mov("7", core.Expense, "1", "peluqueria", at(5, 9)),
		mov("8", core.Expense, "1", "borrada", at(5, 8)),
		mov("9", core.Expense, "1", "libros", at(4, 9)),
		mov("10", core.Expense, "1", "tabaco", at(3, 9)),
		mov("11", core.Expense, "1", "regalos", at(2, 9)),
	)
	for _, id := range []string{"gimnasio", "ingreso_clases", "peluqueria", "libros", "tabaco", "regalos"} {
		s.CustomCategories = append(s.CustomCategories, core.NewCustomCategory(id))
	}

	expense := QuickPickCategories(s, core.Expense)
	var ids []string
	for _, c := range expense {
		ids = append(ids, c.ID)
	}
	want := []string{"gimnasio", "peluqueria", "libros", "tabaco"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("expense quick picks = %v, want %v", ids, want)
	}

	income := QuickPickCategories(s, core.Income)
	if len(income) != 1 || income[0].ID != "ingreso_clases" || income[0].MovementType != core.Income {
		t.Errorf("income quick picks = %+v", income)
	}
}

func TestCategoriesFor(t *testing.T) {
	s := core.ZeroState()
	s.CustomCategories = []core.Category{
		core.NewCustomCategory("gimnasio"),
		core.NewCustomCategory("ingreso_clases particulares"),
	}

	expense := CategoriesFor(s, core.Expense)
	if len(expense) != 11 || expense[10].Category.ID != "gimnasio" || expense[10].Label != "Gimnasio" {
		t.Fatalf("unexpected expense listing %+v", expense)
	}
	income := CategoriesFor(s, core.Income)
	if len(income) != 5 || income[4].Label != "Clases Particulares" {
		t.Fatalf("unexpected income listing %+v", income)
	}

	found := SearchCategories(s, core.Expense, "MOV")
	if len(found) != 2 || found[0].Category.ID != "movilidad" || found[1].Category.ID != "movil" {
		t.Errorf("search by label/id = %+v", found)
	}
	if len(SearchCategories(s, core.Expense, "  ")) != 0 {
		t.Error("blank search should match nothing")
	}

	if CanCreateCategory(s, core.Expense, "ocio") || CanCreateCategory(s, core.Expense, "x") {
		t.Error("existing or one-letter names cannot be created")
	}
	if !CanCreateCategory(s, core.Expense, "Mascotas") {
		t.Error("new name should be creatable")
	}
}
