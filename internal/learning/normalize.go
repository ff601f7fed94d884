// Package learning improves classification over time by remembering how the
// user corrects recognized categories per merchant.
package learning

import (
	"regexp"
	"sort"
	"strings"
)

// noiseWords are boilerplate phrases found in bank transaction descriptions.
var noiseWords = []string{
	"пр.", "оплата", "покупка", "перевод", "payment", "purchase",
	"списание", "зачисление", "возврат", "операция", "по карте",
	"безналичная оплата", "мобильный банк", "оплата товаров и услуг",
}

// noiseByLength holds the noise words longest first so short words cannot
// eat parts of longer phrases.
var noiseByLength = func() []string {
	words := make([]string, len(noiseWords))
	copy(words, noiseWords)
	sort.Slice(words, func(i, j int) bool { return len(words[i]) > len(words[j]) })

	return words
}()

var (
	legalPrefixRe = regexp.MustCompile(`(^|\s)(ооо|ип|ао|пао|зао|нко|ук)\s+`)
	cardNumberRe  = regexp.MustCompile(`\d{4}[-\s*]\d{4}[-\s*]\d{4}[-\s*]\d{4}`)
	amountRe      = regexp.MustCompile(`\d+[.,]\d+`)
	dateRe        = regexp.MustCompile(`\d{2}[./-]\d{2}[./-]\d{2,4}`)
	trailingRefRe = regexp.MustCompile(`[#№]\s*\d+$`)
	trailingNoRe  = regexp.MustCompile(`(?i)\bno\s*\d+$`)
	innerPunctRe  = regexp.MustCompile(`([\p{L}\d])[./\\]([\p{L}\d])`)
	strayPunctRe  = regexp.MustCompile(`[«»“”"'*]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

const maxMerchantLen = 500

// Normalize extracts a canonical merchant key from a raw transaction
// description. Two descriptions of the same merchant should normalize to the
// same key so corrections accumulate against one record.
func Normalize(description string) string {
	text := strings.ToLower(strings.TrimSpace(description))

	for _, word := range noiseByLength {
		text = strings.ReplaceAll(text, word, "")
	}

	// "ооо пятёрочка" keeps only the merchant name.
	text = legalPrefixRe.ReplaceAllString(text, "$1")

	text = cardNumberRe.ReplaceAllString(text, "")
	text = amountRe.ReplaceAllString(text, "")
	text = dateRe.ReplaceAllString(text, "")
	text = trailingRefRe.ReplaceAllString(text, "")
	text = trailingNoRe.ReplaceAllString(text, "")

	// "яндекс.еда" becomes "яндекс еда". Run twice since adjacent matches
	// share a letter.
	text = innerPunctRe.ReplaceAllString(text, "$1 $2")
	text = innerPunctRe.ReplaceAllString(text, "$1 $2")

	text = strayPunctRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))

	if runes := []rune(text); len(runes) > maxMerchantLen {
		text = string(runes[:maxMerchantLen])
	}

	return text
}
