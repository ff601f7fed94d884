// Package period resolves the free-text period descriptor attached to a
// recognized chart into a concrete calendar range.
package period

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Kind is the granularity of a resolved period.
type Kind string

const (
	KindMonth  Kind = "month"
	KindYear   Kind = "year"
	KindWeek   Kind = "week"
	KindCustom Kind = "custom"
)

// ParseKind normalizes an optional granularity hint. Unknown values resolve
// to the empty Kind (absent hint).
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindMonth:
		return KindMonth
	case KindYear:
		return KindYear
	case KindWeek:
		return KindWeek
	case KindCustom:
		return KindCustom
	}

	return ""
}

// Resolved is a concrete date range with its granularity. Start and End are
// day-granular UTC instants with Start <= End; for month and year kinds End
// is the last calendar day of the window containing Start.
type Resolved struct {
	Start time.Time
	End   time.Time
	Kind  Kind
}

// now is swapped out in tests.
var now = time.Now

// Resolve turns a free-text period label and an optional granularity hint
// into a date range. It is total: every input resolves to a valid range.
//
// Precedence, first match wins:
//  1. empty label: range derived from the hint alone
//  2. explicit month range "YYYY-MM to YYYY-MM" (also "-" or "—" separators)
//  3. ISO month "YYYY-MM"; a year hint expands it to the full year
//  4. ISO year "YYYY"
//  5. localized month-name token with optional year token
//  6. generic date formats
//  7. fallback to the hint alone
//
// The hint is authoritative for the granularity whenever present: a month
// literal under a year hint yields the containing year.
func Resolve(label string, hint Kind) Resolved {
	label = strings.TrimSpace(label)
	if label == "" {
		return fromHint(hint)
	}

	if r, ok := parseMonthRange(label, hint); ok {
		return r
	}

	if r, ok := parseISOMonth(label, hint); ok {
		return r
	}

	if r, ok := parseISOYear(label); ok {
		return r
	}

	if r, ok := parseNamedMonth(label, hint); ok {
		return r
	}

	if r, ok := parseGenericDate(label, hint); ok {
		return r
	}

	return fromHint(hint)
}

func fromHint(hint Kind) Resolved {
	n := now().UTC()

	switch hint {
	case KindYear:
		return yearRange(n.Year())
	case KindMonth:
		return monthRange(n.Year(), n.Month(), KindMonth)
	}

	return Resolved{Start: n, End: n, Kind: KindCustom}
}

func monthRange(year int, month time.Month, kind Kind) Resolved {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)

	return Resolved{
		Start: start,
		End:   start.AddDate(0, 1, -1),
		Kind:  kind,
	}
}

func yearRange(year int) Resolved {
	return Resolved{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		Kind:  KindYear,
	}
}

// kindOr returns the hint when present, otherwise the rule's default kind.
func kindOr(hint, def Kind) Kind {
	if hint != "" {
		return hint
	}

	return def
}

var monthRangeRe = regexp.MustCompile(`(?i)^(\d{4})-(\d{2})\s*(?:to|[-–—])\s*(\d{4})-(\d{2})$`)

func parseMonthRange(label string, hint Kind) (Resolved, bool) {
	m := monthRangeRe.FindStringSubmatch(label)
	if m == nil {
		return Resolved{}, false
	}

	fromYear, _ := strconv.Atoi(m[1])
	fromMonth, _ := strconv.Atoi(m[2])
	toYear, _ := strconv.Atoi(m[3])
	toMonth, _ := strconv.Atoi(m[4])

	if fromMonth < 1 || fromMonth > 12 || toMonth < 1 || toMonth > 12 {
		return Resolved{}, false
	}

	start := time.Date(fromYear, time.Month(fromMonth), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(toYear, time.Month(toMonth), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)

	if end.Before(start) {
		start, end = time.Date(toYear, time.Month(toMonth), 1, 0, 0, 0, 0, time.UTC),
			time.Date(fromYear, time.Month(fromMonth), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
	}

	return Resolved{Start: start, End: end, Kind: kindOr(hint, KindCustom)}, true
}

var isoMonthRe = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

func parseISOMonth(label string, hint Kind) (Resolved, bool) {
	m := isoMonthRe.FindStringSubmatch(label)
	if m == nil {
		return Resolved{}, false
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])

	if month < 1 || month > 12 {
		return Resolved{}, false
	}

	// The structural hint outranks the literal grain of the token.
	if hint == KindYear {
		return yearRange(year), true
	}

	return monthRange(year, time.Month(month), kindOr(hint, KindMonth)), true
}

var isoYearRe = regexp.MustCompile(`^\d{4}$`)

func parseISOYear(label string) (Resolved, bool) {
	if !isoYearRe.MatchString(label) {
		return Resolved{}, false
	}

	year, _ := strconv.Atoi(label)

	return yearRange(year), true
}

// monthNames maps folded month-name tokens, including genitive and
// abbreviated forms, to months. Covers English and Russian.
var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,

	"январь": time.January, "января": time.January, "янв": time.January,
	"февраль": time.February, "февраля": time.February, "фев": time.February,
	"март": time.March, "марта": time.March, "мар": time.March,
	"апрель": time.April, "апреля": time.April, "апр": time.April,
	"май": time.May, "мая": time.May,
	"июнь": time.June, "июня": time.June, "июн": time.June,
	"июль": time.July, "июля": time.July, "июл": time.July,
	"август": time.August, "августа": time.August, "авг": time.August,
	"сентябрь": time.September, "сентября": time.September, "сен": time.September, "сент": time.September,
	"октябрь": time.October, "октября": time.October, "окт": time.October,
	"ноябрь": time.November, "ноября": time.November, "ноя": time.November, "нояб": time.November,
	"декабрь": time.December, "декабря": time.December, "дек": time.December,
}

var yearTokenRe = regexp.MustCompile(`^\d{4}$`)

func parseNamedMonth(label string, hint Kind) (Resolved, bool) {
	caser := cases.Fold()

	var (
		month      time.Month
		monthFound bool
		year       int
		yearFound  bool
	)

	for _, token := range strings.Fields(label) {
		token = strings.Trim(token, ".,;:()\"'")

		if !monthFound {
			if m, ok := monthNames[caser.String(token)]; ok {
				month = m
				monthFound = true

				continue
			}
		}

		if !yearFound && yearTokenRe.MatchString(token) {
			year, _ = strconv.Atoi(token)
			yearFound = true
		}
	}

	if !monthFound {
		return Resolved{}, false
	}

	if !yearFound {
		year = now().UTC().Year()
	}

	if hint == KindYear {
		return yearRange(year), true
	}

	return monthRange(year, month, kindOr(hint, KindMonth)), true
}

// dateLayouts mirrors the formats the recognizer is known to emit.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
}

func parseGenericDate(label string, hint Kind) (Resolved, bool) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, label)
		if err != nil {
			continue
		}

		t = t.UTC()

		return Resolved{Start: t, End: t, Kind: kindOr(hint, KindCustom)}, true
	}

	return Resolved{}, false
}
