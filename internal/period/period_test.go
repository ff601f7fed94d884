package period_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddanshin/kopilka/internal/period"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	// Freeze the clock so hint-only and current-year fallbacks are stable.
	frozen := time.Date(2026, 2, 10, 15, 30, 0, 0, time.UTC)
	restore := period.SetNow(func() time.Time { return frozen })
	defer restore()

	type args struct {
		label string
		hint  period.Kind
	}

	type testCase struct {
		name      string
		args      args
		wantStart time.Time
		wantEnd   time.Time
		wantKind  period.Kind
	}

	tests := []testCase{
		{
			name:      "EmptyWithYearHint",
			args:      args{label: "", hint: period.KindYear},
			wantStart: date(2026, 1, 1),
			wantEnd:   date(2026, 12, 31),
			wantKind:  period.KindYear,
		},
		{
			name:      "EmptyWithMonthHint",
			args:      args{label: "", hint: period.KindMonth},
			wantStart: date(2026, 2, 1),
			wantEnd:   date(2026, 2, 28),
			wantKind:  period.KindMonth,
		},
		{
			name:      "EmptyNoHint",
			args:      args{label: ""},
			wantStart: frozen,
			wantEnd:   frozen,
			wantKind:  period.KindCustom,
		},
		{
			name:      "MonthRangeWithTo",
			args:      args{label: "2025-06 to 2026-01"},
			wantStart: date(2025, 6, 1),
			wantEnd:   date(2026, 1, 31),
			wantKind:  period.KindCustom,
		},
		{
			name:      "MonthRangeWithDash",
			args:      args{label: "2024-01 - 2024-03", hint: period.KindCustom},
			wantStart: date(2024, 1, 1),
			wantEnd:   date(2024, 3, 31),
			wantKind:  period.KindCustom,
		},
		{
			name:      "MonthRangeReversedSwaps",
			args:      args{label: "2024-05 to 2024-02"},
			wantStart: date(2024, 2, 1),
			wantEnd:   date(2024, 5, 31),
			wantKind:  period.KindCustom,
		},
		{
			name:      "ISOMonth",
			args:      args{label: "2024-03"},
			wantStart: date(2024, 3, 1),
			wantEnd:   date(2024, 3, 31),
			wantKind:  period.KindMonth,
		},
		{
			name:      "ISOMonthYearHintExpands",
			args:      args{label: "2024-03", hint: period.KindYear},
			wantStart: date(2024, 1, 1),
			wantEnd:   date(2024, 12, 31),
			wantKind:  period.KindYear,
		},
		{
			name:      "ISOMonthLeapFebruary",
			args:      args{label: "2024-02"},
			wantStart: date(2024, 2, 1),
			wantEnd:   date(2024, 2, 29),
			wantKind:  period.KindMonth,
		},
		{
			name:      "ISOYear",
			args:      args{label: "2025"},
			wantStart: date(2025, 1, 1),
			wantEnd:   date(2025, 12, 31),
			wantKind:  period.KindYear,
		},
		{
			name:      "ISOYearIgnoresMonthHint",
			args:      args{label: "2025", hint: period.KindMonth},
			wantStart: date(2025, 1, 1),
			wantEnd:   date(2025, 12, 31),
			wantKind:  period.KindYear,
		},
		{
			name:      "EnglishMonthName",
			args:      args{label: "January 2024"},
			wantStart: date(2024, 1, 1),
			wantEnd:   date(2024, 1, 31),
			wantKind:  period.KindMonth,
		},
		{
			name:      "RussianMonthName",
			args:      args{label: "Январь 2024"},
			wantStart: date(2024, 1, 1),
			wantEnd:   date(2024, 1, 31),
			wantKind:  period.KindMonth,
		},
		{
			name:      "RussianGenitiveMonth",
			args:      args{label: "ноября 2025"},
			wantStart: date(2025, 11, 1),
			wantEnd:   date(2025, 11, 30),
			wantKind:  period.KindMonth,
		},
		{
			name:      "RussianMonthNoYearDefaultsCurrent",
			args:      args{label: "Ноябрь"},
			wantStart: date(2026, 11, 1),
			wantEnd:   date(2026, 11, 30),
			wantKind:  period.KindMonth,
		},
		{
			name:      "MonthNameYearHintExpands",
			args:      args{label: "Март 2024", hint: period.KindYear},
			wantStart: date(2024, 1, 1),
			wantEnd:   date(2024, 12, 31),
			wantKind:  period.KindYear,
		},
		{
			name:      "MonthNameExtraTokens",
			args:      args{label: "За декабрь 2025 года"},
			wantStart: date(2025, 12, 1),
			wantEnd:   date(2025, 12, 31),
			wantKind:  period.KindMonth,
		},
		{
			name:      "GenericISODate",
			args:      args{label: "2024-07-15"},
			wantStart: date(2024, 7, 15),
			wantEnd:   date(2024, 7, 15),
			wantKind:  period.KindCustom,
		},
		{
			name:      "GenericDottedDate",
			args:      args{label: "15.07.2024", hint: period.KindWeek},
			wantStart: date(2024, 7, 15),
			wantEnd:   date(2024, 7, 15),
			wantKind:  period.KindWeek,
		},
		{
			name:      "UnparseableYearHint",
			args:      args{label: "whenever it was", hint: period.KindYear},
			wantStart: date(2026, 1, 1),
			wantEnd:   date(2026, 12, 31),
			wantKind:  period.KindYear,
		},
		{
			name:      "UnparseableNoHint",
			args:      args{label: "???"},
			wantStart: frozen,
			wantEnd:   frozen,
			wantKind:  period.KindCustom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := period.Resolve(tt.args.label, tt.args.hint)

			assert.Equal(t, tt.wantStart, got.Start)
			assert.Equal(t, tt.wantEnd, got.End)
			assert.Equal(t, tt.wantKind, got.Kind)
		})
	}
}

func TestResolve_RangeAlwaysValid(t *testing.T) {
	labels := []string{
		"", "2024", "2024-05", "2024-13", "garbage", "май", "May 2023",
		"0000-00", "2024-01 to 2023-01", "9999", "31.12.2025",
	}
	hints := []period.Kind{"", period.KindMonth, period.KindYear, period.KindWeek, period.KindCustom}

	for _, label := range labels {
		for _, hint := range hints {
			got := period.Resolve(label, hint)
			require.False(t, got.End.Before(got.Start),
				"label=%q hint=%q: start %v after end %v", label, hint, got.Start, got.End)
			require.NotEmpty(t, got.Kind)
		}
	}
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, period.KindMonth, period.ParseKind("month"))
	assert.Equal(t, period.KindYear, period.ParseKind(" YEAR "))
	assert.Equal(t, period.KindWeek, period.ParseKind("week"))
	assert.Equal(t, period.KindCustom, period.ParseKind("custom"))
	assert.Equal(t, period.Kind(""), period.ParseKind("fortnight"))
	assert.Equal(t, period.Kind(""), period.ParseKind(""))
}
