package translate

import (
	"strings"
	"unicode/utf8"
)

// diacriticThreshold is the share of harakat above which a text is taken
// to be a fully vocalized verse.
const diacriticThreshold = 0.3

// quranicIndicators are vocalized words typical of Qur'anic verses.
var quranicIndicators = []string{
	"قُلْ", "إِنَّ", "وَ", "الَّذِينَ", "يَا عِبَادِيَ",
	"لَا تَقْنَطُوا", "رَّحْمَةِ", "اللَّهِ", "يُحِبُّ",
	"التَّوَّابِينَ", "الْمُتَطَهِّرِينَ",
}

func isDiacritic(r rune) bool {
	return r >= 0x064B && r <= 0x0652
}

// IsQuranicVerse reports whether Arabic text should be left untranslated:
// more than 30% of its code points are diacritics, or it contains one of
// the indicator words.
func IsQuranicVerse(text string) bool {
	total := utf8.RuneCountInString(text)
	if total == 0 {
		return false
	}

	marks := 0
	for _, r := range text {
		if isDiacritic(r) {
			marks++
		}
	}
	if float64(marks)/float64(total) > diacriticThreshold {
		return true
	}

	for _, ind := range quranicIndicators {
		if strings.Contains(text, ind) {
			return true
		}
	}
	return false
}
