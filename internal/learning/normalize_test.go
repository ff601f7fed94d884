package learning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ddanshin/kopilka/internal/learning"
)

func TestNormalize(t *testing.T) {
	type testCase struct {
		name  string
		input string
		want  string
	}

	tests := []testCase{
		{
			name:  "LowercasesAndTrims",
			input: "  ПЯТЁРОЧКА  ",
			want:  "пятёрочка",
		},
		{
			name:  "StripsNoiseWords",
			input: "Оплата товаров и услуг Пятёрочка",
			want:  "пятёрочка",
		},
		{
			name:  "StripsLegalPrefix",
			input: "ООО Пятёрочка",
			want:  "пятёрочка",
		},
		{
			name:  "StripsCardNumber",
			input: "магазин 1234 5678 9012 3456",
			want:  "магазин",
		},
		{
			name:  "StripsAmountAndDate",
			input: "кафе 199,90 12/05/2025",
			want:  "кафе",
		},
		{
			name:  "StripsTrailingReference",
			input: "перевод сбербанк №12345",
			want:  "сбербанк",
		},
		{
			name:  "StripsTrailingNo",
			input: "store no 778",
			want:  "store",
		},
		{
			name:  "InnerDotBecomesSpace",
			input: "Яндекс.Еда",
			want:  "яндекс еда",
		},
		{
			name:  "InnerSlashBecomesSpace",
			input: "delivery/club",
			want:  "delivery club",
		},
		{
			name:  "StripsQuotes",
			input: `покупка «Магнит»`,
			want:  "магнит",
		},
		{
			name:  "CollapsesWhitespace",
			input: "wildberries   marketplace",
			want:  "wildberries marketplace",
		},
		{
			name:  "Empty",
			input: "",
			want:  "",
		},
		{
			name:  "OnlyNoise",
			input: "оплата покупка",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, learning.Normalize(tt.input))
		})
	}
}

func TestNormalize_SameMerchantSameKey(t *testing.T) {
	variants := []string{
		"Оплата Яндекс.Еда №4412",
		"покупка ЯНДЕКС.ЕДА",
		"яндекс еда 349,00",
	}

	want := learning.Normalize(variants[0])
	assert.NotEmpty(t, want)

	for _, v := range variants[1:] {
		assert.Equal(t, want, learning.Normalize(v), "input %q", v)
	}
}
