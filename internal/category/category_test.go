package category_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ddanshin/kopilka/internal/category"
)

func TestClassify(t *testing.T) {
	type testCase struct {
		name  string
		label string
		want  category.Category
	}

	tests := []testCase{
		{name: "EnglishFood", label: "Food", want: category.Food},
		{name: "EnglishGroceries", label: "Weekly groceries", want: category.Food},
		{name: "RussianFood", label: "Продукты", want: category.Food},
		{name: "RussianRestaurant", label: "Рестораны и кафе", want: category.Food},
		{name: "EnglishTaxi", label: "TAXI RIDES", want: category.Transport},
		{name: "RussianTransport", label: "Транспорт", want: category.Transport},
		{name: "RussianEntertainment", label: "Развлечения", want: category.Entertainment},
		{name: "EnglishCinema", label: "cinema tickets", want: category.Entertainment},
		{name: "RussianShopping", label: "Покупки", want: category.Shopping},
		{name: "EnglishUtilities", label: "Utilities & rent", want: category.Bills},
		{name: "RussianUtilities", label: "ЖКХ", want: category.Bills},
		{name: "EnglishPharmacy", label: "Pharmacy", want: category.Health},
		{name: "RussianHealth", label: "Здоровье", want: category.Health},
		{name: "Unknown", label: "Miscellaneous stuff", want: category.Other},
		{name: "Empty", label: "", want: category.Other},
		{name: "Whitespace", label: "   ", want: category.Other},
		{name: "Emoji", label: "🦄🦄🦄", want: category.Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, category.Classify(tt.label))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	labels := []string{"Продукты", "random label", "", "Taxi"}

	for _, label := range labels {
		first := category.Classify(label)
		for range 10 {
			assert.Equal(t, first, category.Classify(label))
		}
	}
}

func TestClassify_ListOrderPrecedence(t *testing.T) {
	// A label containing keywords from two categories resolves to whichever
	// category comes first in the fixed evaluation order.
	got := category.Classify("sport clothes")
	assert.Equal(t, category.Shopping, got, "Shopping is checked before Health")

	got = category.Classify("food delivery subscription")
	assert.Equal(t, category.Food, got, "Food is checked before Bills")
}

func TestClassify_CaseInsensitive(t *testing.T) {
	assert.Equal(t, category.Classify("ПРОДУКТЫ"), category.Classify("продукты"))
	assert.Equal(t, category.Classify("Taxi"), category.Classify("tAXI"))
}

func TestColor_Stable(t *testing.T) {
	c1 := category.Color("Прочее")
	c2 := category.Color("Прочее")
	assert.Equal(t, c1, c2)
	assert.NotEmpty(t, c1)

	// Case variants of the same label share a color.
	assert.Equal(t, category.Color("misc"), category.Color("MISC"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, category.Food, category.Normalize(category.Food))
	assert.Equal(t, category.Other, category.Normalize(category.Category("Groceries")))
	assert.Equal(t, category.Other, category.Normalize(category.Category("")))
}

func TestAll_EndsWithOther(t *testing.T) {
	all := category.All()
	assert.Len(t, all, 7)
	assert.Equal(t, category.Other, all[len(all)-1])
}
