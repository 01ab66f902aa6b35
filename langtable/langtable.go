// Package langtable renders and parses the generated language table: a
// JavaScript module exporting language → category → key → string.
//
// The table looks like:
//
//	export const translations = {
//	  // ============================================
//	  // Arabic
//	  // ============================================
//	  ar: {
//	    // ============ common ============
//	    common: {
//	      save_changes: "حفظ التغييرات",
//	    },
//
//	  },
//
//	};
//
// A language body is the text between the "  ar: {" line and the closing
// "  }," line. The splitter wraps a body into a per-language module, so the
// same body bytes are produced whether it is rendered from a Record Set or
// cut out of a previously generated table.
package langtable

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/minios-linux/jsxlate/langmeta"
	"github.com/minios-linux/jsxlate/records"
)

const (
	banner     = "// ============================================"
	openTable  = "export const translations = {\n"
	closeTable = "};\n"
)

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

// Render produces the generated language table for langs (records.Languages
// when empty).
func Render(set records.Set, langs []string) []byte {
	if len(langs) == 0 {
		langs = records.Languages
	}

	var buf bytes.Buffer
	buf.WriteString(openTable)
	for _, lang := range langs {
		fmt.Fprintf(&buf, "  %s\n", banner)
		fmt.Fprintf(&buf, "  // %s\n", langmeta.Resolve(lang).Comment)
		fmt.Fprintf(&buf, "  %s\n", banner)
		fmt.Fprintf(&buf, "  %s: {\n", lang)
		buf.WriteString(RenderBody(set, lang))
		buf.WriteString("\n  },\n\n")
	}
	buf.WriteString(closeTable)
	return buf.Bytes()
}

// RenderBody renders one language's categories. Categories and keys are
// sorted; a missing value renders as an empty string. The result is empty
// when the set has no categories.
func RenderBody(set records.Set, lang string) string {
	var b strings.Builder
	for _, category := range set.Categories() {
		cat := set[category]
		fmt.Fprintf(&b, "    // ============ %s ============\n", Escape(category))
		fmt.Fprintf(&b, "    %s: {\n", jsKey(category))
		for _, key := range cat.Keys() {
			fmt.Fprintf(&b, "      %s: \"%s\",\n", jsKey(key), Escape(cat[key].Get(lang)))
		}
		b.WriteString("    },\n\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Escape escapes backslash, double quote, newline and carriage return for a
// double-quoted JavaScript string literal.
func Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	return s
}

// Unescape reverses Escape. Unknown escape sequences keep their backslash.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				result.WriteByte('\n')
				i++
			case 'r':
				result.WriteByte('\r')
				i++
			case '\\':
				result.WriteByte('\\')
				i++
			case '"':
				result.WriteByte('"')
				i++
			default:
				result.WriteByte(s[i])
			}
		} else {
			result.WriteByte(s[i])
		}
	}
	return result.String()
}

// jsKey returns key as an object property name: bare when it is a valid
// identifier, quoted otherwise.
func jsKey(key string) string {
	if isIdentifier(key) {
		return key
	}
	return `"` + Escape(key) + `"`
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)):
		default:
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ExtractBlock returns the body of lang's block in a generated table.
// ok is false when the language has no block.
func ExtractBlock(table, lang string) (body string, ok bool) {
	re := regexp.MustCompile(`(?ms)^  ` + regexp.QuoteMeta(lang) + `: \{\n(.*?)\n  \},$`)
	m := re.FindStringSubmatch(strings.ReplaceAll(table, "\r\n", "\n"))
	if m == nil {
		return "", false
	}
	return m[1], true
}

const (
	namePattern  = `([^\s":{}]+|"(?:[^"\\]|\\.)*")`
	valuePattern = `"((?:[^"\\]|\\.)*)"`
)

var (
	categoryOpenRe = regexp.MustCompile(`^\s*` + namePattern + `:\s*\{$`)
	entryRe        = regexp.MustCompile(`^\s*` + namePattern + `:\s*` + valuePattern + `,?$`)
	blockCloseRe   = regexp.MustCompile(`^\s*\},?$`)
)

// ParseBody parses a language body back into category → key → string.
func ParseBody(body string) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	var current map[string]string

	body = strings.ReplaceAll(body, "\r\n", "\n")
	for n, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "//"):
			continue

		case current == nil:
			m := categoryOpenRe.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("line %d: expected category, got %q", n+1, trimmed)
			}
			name := unquoteName(m[1])
			if out[name] == nil {
				out[name] = make(map[string]string)
			}
			current = out[name]

		case blockCloseRe.MatchString(line):
			current = nil

		default:
			m := entryRe.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("line %d: expected entry, got %q", n+1, trimmed)
			}
			current[unquoteName(m[1])] = Unescape(m[2])
		}
	}

	if current != nil {
		return nil, fmt.Errorf("unterminated category block")
	}
	return out, nil
}

func unquoteName(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return Unescape(s[1 : len(s)-1])
	}
	return s
}
