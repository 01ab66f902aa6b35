// Package split writes one JavaScript locale module per language plus an
// aggregating index, and patches the consumer's import to use them.
package split

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/jsxlate/langmeta"
	"github.com/minios-linux/jsxlate/langtable"
	"github.com/minios-linux/jsxlate/records"
)

// BodySource returns the rendered body for a language. ok is false when
// there is nothing to write for it.
type BodySource func(lang string) (body string, ok bool)

// FromSet renders bodies directly from a Record Set.
func FromSet(set records.Set) BodySource {
	return func(lang string) (string, bool) {
		body := langtable.RenderBody(set, lang)
		return body, body != ""
	}
}

// FromTable cuts bodies out of a generated language table.
func FromTable(table []byte) BodySource {
	text := string(table)
	return func(lang string) (string, bool) {
		body, ok := langtable.ExtractBlock(text, lang)
		return body, ok && body != ""
	}
}

// Options controls a split run.
type Options struct {
	// LocalesDir is the output directory for the locale modules.
	LocalesDir string
	// Languages to write (records.Languages when empty).
	Languages []string
	// OnFile is called after a locale module is written, with the number of
	// body lines.
	OnFile func(lang, path string, lines int)
	// OnSkip is called for a language without data.
	OnSkip func(lang string)
}

// Result summarises a split run.
type Result struct {
	Written []string
	Skipped []string
	Index   string
}

// Run writes the locale modules and the index. The index always lists every
// configured language.
func Run(src BodySource, opts Options) (*Result, error) {
	langs := opts.Languages
	if len(langs) == 0 {
		langs = records.Languages
	}

	if err := os.MkdirAll(opts.LocalesDir, 0755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", opts.LocalesDir, err)
	}

	res := &Result{}
	for _, lang := range langs {
		body, ok := src(lang)
		if !ok {
			res.Skipped = append(res.Skipped, lang)
			if opts.OnSkip != nil {
				opts.OnSkip(lang)
			}
			continue
		}

		path, err := WriteLocale(opts.LocalesDir, lang, body)
		if err != nil {
			return res, err
		}
		res.Written = append(res.Written, path)
		if opts.OnFile != nil {
			opts.OnFile(lang, path, strings.Count(body, "\n"))
		}
	}

	index, err := WriteIndex(opts.LocalesDir, langs)
	if err != nil {
		return res, err
	}
	res.Index = index
	return res, nil
}

// LocaleModule wraps a language body into a module exporting one constant.
func LocaleModule(lang, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s translations\n", langmeta.NativeName(lang))
	fmt.Fprintf(&b, "export const %s = {\n", lang)
	b.WriteString(body)
	b.WriteString("\n};\n")
	return []byte(b.String())
}

// WriteLocale writes <dir>/<lang>.js and returns its path.
func WriteLocale(dir, lang, body string) (string, error) {
	path := filepath.Join(dir, lang+".js")
	if err := os.WriteFile(path, LocaleModule(lang, body), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// IndexModule returns the aggregator that imports every language module
// and re-exports them as translations.
func IndexModule(langs []string) []byte {
	var b strings.Builder
	b.WriteString("// Auto-generated translations index\n")
	for _, lang := range langs {
		fmt.Fprintf(&b, "import { %s } from './%s';\n", lang, lang)
	}
	b.WriteString("\nexport const translations = {\n")
	for _, lang := range langs {
		fmt.Fprintf(&b, "  %s,\n", lang)
	}
	b.WriteString("};\n")
	return []byte(b.String())
}

// WriteIndex writes <dir>/index.js and returns its path.
func WriteIndex(dir string, langs []string) (string, error) {
	path := filepath.Join(dir, "index.js")
	if err := os.WriteFile(path, IndexModule(langs), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// PatchStatus is the outcome of PatchImport.
type PatchStatus int

const (
	Patched        PatchStatus = iota // import replaced
	AlreadyPatched                    // new import already present
	FileMissing                       // consumer file does not exist
	LineMissing                       // old import not found
)

// PatchImport replaces oldImport with newImport in the file at path.
// Missing file or line is reported through the status, not as an error.
func PatchImport(path, oldImport, newImport string) (PatchStatus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileMissing, nil
		}
		return FileMissing, fmt.Errorf("reading %s: %w", path, err)
	}

	content := string(data)
	if !strings.Contains(content, oldImport) {
		if newImport != "" && strings.Contains(content, newImport) {
			return AlreadyPatched, nil
		}
		return LineMissing, nil
	}

	content = strings.ReplaceAll(content, oldImport, newImport)
	info, err := os.Stat(path)
	if err != nil {
		return LineMissing, fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
		return LineMissing, fmt.Errorf("writing %s: %w", path, err)
	}
	return Patched, nil
}
