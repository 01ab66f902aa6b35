// Package i18n translates jsxlate's console output.
//
// Messages are gettext msgids; the format string passed to a log helper is
// the msgid itself. Catalogs are embedded from locales/<lang>/LC_MESSAGES/
// jsxlate.po. Only Arabic ships today, so operators with an Arabic locale
// get the same Arabic console output the site's maintainers are used to.
//
//	i18n.Init("")
//	fmt.Println(i18n.Tf("Saved %s", path))
//	fmt.Println(i18n.N("Wrote %d locale file", "Wrote %d locale files", n, n))
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const domain = "jsxlate"

var po *gotext.Locale

// Init loads the catalog for lang, or for the locale named by the
// environment when lang is empty. Region variants use the base language
// catalog ("ar_EG" reads "ar"). Unknown languages leave messages untranslated.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T returns the translation of msgid, or msgid itself.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// Tf translates format and formats it with args.
func Tf(format string, args ...any) string {
	if po == nil {
		return sprintf(format, args...)
	}
	return po.Get(format, args...)
}

// N picks the plural form of a message for count n and formats it with
// args. The catalog's Plural-Forms rule decides the form; without a catalog
// singular is used for n == 1 and plural otherwise.
func N(singular, plural string, n int, args ...any) string {
	if po == nil {
		if n == 1 {
			return sprintf(singular, args...)
		}
		return sprintf(plural, args...)
	}
	return po.GetN(singular, plural, n, args...)
}

// sprintf leaves format untouched when there is nothing to substitute,
// as gotext does.
func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// detectLanguage returns the first usable locale from LANGUAGE, LC_ALL,
// LC_MESSAGES and LANG, without encoding suffix. "C" and "POSIX" are
// skipped; the fallback is "en".
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		val, _, _ = strings.Cut(val, ".")
		if val == "" || val == "C" || val == "POSIX" {
			continue
		}
		return val
	}
	return "en"
}
