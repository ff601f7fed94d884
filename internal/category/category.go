// Package category maps free-text labels produced by the recognizer to the
// closed set of canonical spending categories the rest of the system
// understands.
package category

import (
	"hash/fnv"
	"strings"

	"golang.org/x/text/cases"
)

// Category is one of the canonical spending categories.
type Category string

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Entertainment Category = "Entertainment"
	Shopping      Category = "Shopping"
	Bills         Category = "Bills"
	Health        Category = "Health"
	Other         Category = "Other"
)

// keywordSet pairs a category with the substrings that select it. Evaluation
// order is significant: the first category whose keyword matches wins, so
// reordering entries changes user-visible classification.
type keywordSet struct {
	category Category
	keywords []string
}

var keywordSets = []keywordSet{
	{Food, []string{
		"food", "grocer", "restaurant", "cafe", "coffee", "lunch", "dinner",
		"еда", "продукт", "супермаркет", "ресторан", "кафе", "питание", "фастфуд",
	}},
	{Transport, []string{
		"transport", "taxi", "fuel", "gas", "metro", "bus", "train", "parking",
		"транспорт", "такси", "бензин", "топливо", "метро", "проезд", "парковк",
	}},
	{Entertainment, []string{
		"entertainment", "cinema", "movie", "game", "music", "concert",
		"развлечени", "кино", "игр", "музык", "концерт", "досуг",
	}},
	{Shopping, []string{
		"shopping", "clothes", "clothing", "electronics", "marketplace",
		"покупк", "одежд", "шопинг", "маркетплейс", "электроник",
	}},
	{Bills, []string{
		"bill", "utilit", "rent", "internet", "phone", "subscription",
		"счета", "коммунал", "жкх", "аренда", "связь", "подписк",
	}},
	{Health, []string{
		"health", "pharmacy", "doctor", "medical", "fitness", "sport",
		"здоровье", "аптек", "врач", "медицин", "фитнес", "спорт",
	}},
}

// Classify maps an arbitrary label to a canonical category. It is total:
// unknown, empty and non-Latin input all resolve to Other. Matching is
// case-insensitive substring containment in fixed list order.
func Classify(label string) Category {
	folded := fold(label)
	if folded == "" {
		return Other
	}

	for _, set := range keywordSets {
		for _, kw := range set.keywords {
			if strings.Contains(folded, kw) {
				return set.category
			}
		}
	}

	return Other
}

// All returns the canonical categories in their fixed evaluation order.
func All() []Category {
	return []Category{Food, Transport, Entertainment, Shopping, Bills, Health, Other}
}

// Valid reports whether c is one of the canonical categories.
func Valid(c Category) bool {
	switch c {
	case Food, Transport, Entertainment, Shopping, Bills, Health, Other:
		return true
	}

	return false
}

// Normalize coerces arbitrary category input to the canonical set,
// falling back to Other.
func Normalize(c Category) Category {
	if Valid(c) {
		return c
	}

	return Other
}

// palette holds the display colors assigned to labels that classify as Other.
var palette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
}

// Color returns a stable display color for a label. The assignment is a pure
// function of the label text, so the same unmapped label always renders with
// the same color.
func Color(label string) string {
	h := fnv.New32a()
	h.Write([]byte(fold(label)))

	return palette[h.Sum32()%uint32(len(palette))]
}

// fold lowercases the label for caseless matching across scripts.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
