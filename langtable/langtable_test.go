package langtable

import (
	"reflect"
	"testing"

	"github.com/minios-linux/jsxlate/records"
)

func sampleSet() records.Set {
	return records.Set{
		"common": records.Category{
			"save": {AR: "حفظ", EN: `Say "hi" \o/`, FR: "Ligne 1\nLigne 2", ZH: "保存\r\n"},
			"404_page": {AR: "غير موجود", EN: "Not found"},
		},
		"home": records.Category{
			"welcome": {AR: "مرحبا", EN: "Welcome"},
		},
	}
}

func TestRenderFormat(t *testing.T) {
	set := records.Set{
		"common": records.Category{
			"save": {AR: "حفظ", EN: `Say "hi"\`},
		},
	}

	got := string(Render(set, []string{"ar", "en"}))
	want := `export const translations = {
  // ============================================
  // Arabic
  // ============================================
  ar: {
    // ============ common ============
    common: {
      save: "حفظ",
    },

  },

  // ============================================
  // English
  // ============================================
  en: {
    // ============ common ============
    common: {
      save: "Say \"hi\"\\",
    },

  },

};
`
	if got != want {
		t.Fatalf("Render() mismatch:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderDefaultsToAllLanguages(t *testing.T) {
	table := string(Render(sampleSet(), nil))
	for _, lang := range records.Languages {
		if _, ok := ExtractBlock(table, lang); !ok {
			t.Errorf("no block for %s", lang)
		}
	}
}

func TestExtractBlockMatchesRenderBody(t *testing.T) {
	set := sampleSet()
	table := string(Render(set, nil))

	for _, lang := range records.Languages {
		body, ok := ExtractBlock(table, lang)
		if !ok {
			t.Fatalf("ExtractBlock(%s) found nothing", lang)
		}
		if want := RenderBody(set, lang); body != want {
			t.Errorf("%s: extracted body differs from rendered body:\n%q\nwant\n%q", lang, body, want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	set := sampleSet()
	// Hand-edited Record Sets may carry line breaks in category names.
	set["bad\ncat\r"] = records.Category{
		"k": {AR: "نص", EN: "text"},
	}

	for _, lang := range records.Languages {
		body, ok := ExtractBlock(string(Render(set, nil)), lang)
		if !ok {
			t.Fatalf("ExtractBlock(%s) found nothing", lang)
		}
		parsed, err := ParseBody(body)
		if err != nil {
			t.Fatalf("ParseBody(%s): %v", lang, err)
		}

		want := make(map[string]map[string]string)
		for category, cat := range set {
			want[category] = make(map[string]string)
			for key, rec := range cat {
				want[category][key] = rec.Get(lang)
			}
		}
		if !reflect.DeepEqual(parsed, want) {
			t.Errorf("%s: round trip = %#v\nwant %#v", lang, parsed, want)
		}
	}
}

func TestExtractBlockMissing(t *testing.T) {
	table := "export const translations = {\n  en: {\n    common: {\n      a: \"b\",\n    },\n  },\n};\n"
	if _, ok := ExtractBlock(table, "fr"); ok {
		t.Fatal("expected no block for fr")
	}
	body, ok := ExtractBlock(table, "en")
	if !ok {
		t.Fatal("expected block for en")
	}
	if body != "    common: {\n      a: \"b\",\n    }," {
		t.Fatalf("body = %q", body)
	}
}

func TestExtractBlockEmptySet(t *testing.T) {
	body, ok := ExtractBlock(string(Render(records.Set{}, nil)), "ar")
	if !ok || body != "" {
		t.Fatalf("ExtractBlock on empty table = %q, %v", body, ok)
	}
}

func TestEscapeUnescape(t *testing.T) {
	tests := []struct {
		raw, escaped string
	}{
		{`plain`, `plain`},
		{`a\b`, `a\\b`},
		{`say "x"`, `say \"x\"`},
		{"one\ntwo", `one\ntwo`},
		{"cr\r", `cr\r`},
		{`\n literal`, `\\n literal`},
	}
	for _, tc := range tests {
		if got := Escape(tc.raw); got != tc.escaped {
			t.Errorf("Escape(%q) = %q, want %q", tc.raw, got, tc.escaped)
		}
		if got := Unescape(tc.escaped); got != tc.raw {
			t.Errorf("Unescape(%q) = %q, want %q", tc.escaped, got, tc.raw)
		}
	}
}

func TestJSKey(t *testing.T) {
	tests := map[string]string{
		"save_changes": "save_changes",
		"سبحان_الله":   "سبحان_الله",
		"404_page":     `"404_page"`,
		"":             `""`,
		"a-b":          `"a-b"`,
	}
	for in, want := range tests {
		if got := jsKey(in); got != want {
			t.Errorf("jsKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseBodyErrors(t *testing.T) {
	tests := []string{
		"      orphan: \"value\",",
		"    common: {\n      broken line\n    },",
		"    common: {\n      a: \"b\",",
	}
	for _, body := range tests {
		if _, err := ParseBody(body); err == nil {
			t.Errorf("ParseBody(%q): expected error", body)
		}
	}
}
