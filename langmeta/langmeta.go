// Package langmeta provides language display metadata: English names used in
// translation prompts and native names used in generated file headers.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	// English is the name given to the translation model.
	English string
	// Native is the language's own name.
	Native string
	// Comment is the label used in the generated language table.
	Comment string
}

// Registry contains the site languages.
var Registry = map[string]Meta{
	"ar": {English: "Arabic", Native: "العربية", Comment: "Arabic"},
	"en": {English: "English", Native: "English", Comment: "English"},
	"fr": {English: "French", Native: "Français", Comment: "Français"},
	"zh": {English: "Simplified Chinese", Native: "中文", Comment: "Chinese (Simplified)"},
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns metadata for lang. Unknown codes fall back to the CLDR
// English and self names; unparseable codes are returned as-is.
func Resolve(lang string) Meta {
	if m, ok := Registry[lang]; ok {
		return m
	}
	normalized := canonicalize(lang)
	if m, ok := Registry[normalized]; ok {
		return m
	}
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if m, ok := Registry[parts[0]]; ok {
			return m
		}
	}

	tag, err := language.Parse(normalized)
	if err != nil {
		return Meta{English: lang, Native: lang, Comment: lang}
	}
	english := display.English.Tags().Name(tag)
	if english == "" {
		english = lang
	}
	native := display.Self.Name(tag)
	if native == "" {
		native = english
	}
	return Meta{English: english, Native: native, Comment: english}
}

// EnglishName returns the English name of lang for use in prompts.
func EnglishName(lang string) string {
	return Resolve(lang).English
}

// NativeName returns the language's own name.
func NativeName(lang string) string {
	return Resolve(lang).Native
}

