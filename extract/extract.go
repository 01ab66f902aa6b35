// Package extract pulls human-readable UI strings out of React page files
// and turns them into a Record Set.
//
// Extraction is purely textual: three regular expressions find quoted
// literals and tag-bounded JSX text, a set of ignore patterns drops code
// tokens, and a keep rule retains Arabic text or capitalized English prose.
// Each kept string is assigned a category (from the file name or its content)
// and a unique slug key.
package extract

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/minios-linux/jsxlate/records"
)

// ---------------------------------------------------------------------------
// Patterns
// ---------------------------------------------------------------------------

// candidatePatterns find candidate strings; the first group is the text.
var candidatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`"([^"]{3,})"`),
	regexp.MustCompile(`'([^']{3,})'`),
	regexp.MustCompile(`>\s*([^<>{}\n]{3,})\s*<`),
}

// ignorePatterns drop identifiers, attribute names, numbers, member
// expressions, existing t() calls, template variables and URLs.
var ignorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[a-zA-Z0-9_\-./]+$`),
	regexp.MustCompile(`^className$`),
	regexp.MustCompile(`^onClick$`),
	regexp.MustCompile(`^onChange$`),
	regexp.MustCompile(`^\p{Nd}+$`),
	regexp.MustCompile(`^[a-z]+\.[a-z]+$`),
	regexp.MustCompile(`^t\(`),
	regexp.MustCompile(`^\$`),
	regexp.MustCompile(`^https?://`),
}

// trimChars are stripped from both ends of a candidate.
const trimChars = ".,;:!?()[]{}'\""

// MaxKeyLength is the maximum slug length in characters, before any
// collision suffix.
const MaxKeyLength = 50

// ---------------------------------------------------------------------------
// Text heuristics
// ---------------------------------------------------------------------------

// IsArabic reports whether text contains a character in the Arabic block
// (U+0600–U+06FF).
func IsArabic(text string) bool {
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}

// Clean collapses whitespace runs and strips punctuation and brackets from
// both ends.
func Clean(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return strings.Trim(text, trimChars)
}

// ShouldIgnore reports whether text is too short or looks like code.
func ShouldIgnore(text string) bool {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < 3 {
		return true
	}
	for _, re := range ignorePatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// IsUIText reports whether text is worth translating: it contains Arabic,
// or it is longer than five characters and starts with an uppercase letter.
func IsUIText(text string) bool {
	if IsArabic(text) {
		return true
	}
	if utf8.RuneCountInString(text) <= 5 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(text)
	return unicode.IsUpper(first)
}

// Candidates returns the UI strings found in content, in order of first
// appearance per pattern, without duplicates.
func Candidates(content string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, re := range candidatePatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			text := Clean(m[1])
			if ShouldIgnore(text) || !IsUIText(text) {
				continue
			}
			if !seen[text] {
				seen[text] = true
				out = append(out, text)
			}
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

// DefaultCategory is used when neither the file name nor the content match.
const DefaultCategory = "common"

type categoryRule struct {
	category string
	keywords []string
}

// fileCategories is checked in order against the lowercased file stem.
var fileCategories = []categoryRule{
	{"home", []string{"home"}},
	{"repentance", []string{"repentance", "tawba"}},
	{"fatwa", []string{"fatwa"}},
	{"learn_islam", []string{"learn", "islam"}},
	{"contact", []string{"contact"}},
	{"courses", []string{"course"}},
	{"profile", []string{"profile"}},
	{"reconciliation", []string{"reconciliation"}},
}

// contentCategories is checked in order against the lowercased text.
var contentCategories = []categoryRule{
	{"auth", []string{"login", "register", "password", "email"}},
	{"search", []string{"search", "filter", "find"}},
	{"common", []string{"save", "delete", "edit", "cancel"}},
}

func matchRules(s string, rules []categoryRule) (string, bool) {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(s, kw) {
				return rule.category, true
			}
		}
	}
	return "", false
}

// Categorize picks the category for text found in the file with the given stem.
func Categorize(text, fileStem string) string {
	if c, ok := matchRules(strings.ToLower(fileStem), fileCategories); ok {
		return c
	}
	if c, ok := matchRules(strings.ToLower(text), contentCategories); ok {
		return c
	}
	return DefaultCategory
}

// ---------------------------------------------------------------------------
// Keys
// ---------------------------------------------------------------------------

// Slug lowercases text, drops everything except letters, numbers, underscores
// and whitespace, joins the words with underscores and truncates the result
// to MaxKeyLength characters.
func Slug(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	slug := strings.Join(strings.Fields(b.String()), "_")
	if utf8.RuneCountInString(slug) > MaxKeyLength {
		slug = string([]rune(slug)[:MaxKeyLength])
	}
	return slug
}

// UniqueKey returns Slug(text), suffixed with _1, _2, ... until taken
// reports false.
func UniqueKey(text string, taken func(string) bool) string {
	base := Slug(text)
	key := base
	for n := 1; taken(key); n++ {
		key = fmt.Sprintf("%s_%d", base, n)
	}
	return key
}

// ---------------------------------------------------------------------------
// Directory extraction
// ---------------------------------------------------------------------------

// FileResult describes the outcome for one scanned file.
type FileResult struct {
	Path  string
	Stem  string
	Texts []string
	Err   error
}

// Options controls directory extraction.
type Options struct {
	// Extensions are the page file extensions to scan (default .jsx).
	Extensions []string
	// OnFile is called after each file has been scanned.
	OnFile func(FileResult)
}

// Result is the outcome of a directory extraction.
type Result struct {
	Set   records.Set
	Files []FileResult
}

// ExtractFile reads one page file and returns its UI strings.
func ExtractFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Candidates(string(data)), nil
}

// ExtractDir scans dir and builds a Record Set from every page file.
// A file that cannot be read is reported through OnFile and contributes
// nothing. Keys are unique across the whole set.
func ExtractDir(dir string, opts Options) (*Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("pages directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("pages directory %s: not a directory", dir)
	}

	files, err := FindSources(dir, opts.Extensions)
	if err != nil {
		return nil, err
	}

	res := &Result{Set: make(records.Set)}

	for _, path := range files {
		fr := FileResult{Path: path, Stem: FileStem(path)}
		fr.Texts, fr.Err = ExtractFile(path)

		for _, text := range fr.Texts {
			key := UniqueKey(text, res.Set.HasKey)
			res.Set.Add(Categorize(text, fr.Stem), key, NewRecord(text, fr.Stem))
		}

		res.Files = append(res.Files, fr)
		if opts.OnFile != nil {
			opts.OnFile(fr)
		}
	}

	return res, nil
}

// NewRecord builds the initial record for text: Arabic text goes to the ar
// field, anything else to en.
func NewRecord(text, sourceFile string) *records.Record {
	rec := &records.Record{SourceFile: sourceFile, NeedsTranslation: true}
	if IsArabic(text) {
		rec.AR = text
	} else {
		rec.EN = text
	}
	return rec
}
