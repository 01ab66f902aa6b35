package langmeta

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_br", want: "pt-BR"},
		{in: " EN-us ", want: "en-US"},
		{in: "ar", want: "ar"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got := canonicalize(tc.in)
		if got != tc.want {
			t.Fatalf("canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Run("registry match", func(t *testing.T) {
		got := Resolve("zh")
		if got.English != "Simplified Chinese" || got.Native != "中文" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("region falls back to base", func(t *testing.T) {
		got := Resolve("ar_SA")
		if got.English != "Arabic" || got.Native != "العربية" {
			t.Fatalf("unexpected fallback result: %#v", got)
		}
	})

	t.Run("unknown code uses CLDR names", func(t *testing.T) {
		got := Resolve("de")
		if got.English != "German" || got.Native == "" {
			t.Fatalf("unexpected CLDR result: %#v", got)
		}
	})

	t.Run("unparseable passthrough", func(t *testing.T) {
		got := Resolve("not a language")
		if got.English != "not a language" || got.Native != "not a language" {
			t.Fatalf("unexpected passthrough result: %#v", got)
		}
	})
}
