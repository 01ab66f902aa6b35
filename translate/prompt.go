package translate

import (
	"strings"

	"github.com/minios-linux/jsxlate/langmeta"
)

// DefaultPrompt asks for a single translation that keeps Islamic
// terminology and a formal tone. Placeholders: {{sourceLang}},
// {{targetLang}} and {{text}}.
const DefaultPrompt = `Translate the following {{sourceLang}} to {{targetLang}}.

Important guidelines:
- Maintain Islamic terminology accurately
- Keep the tone formal and respectful
- For religious terms, use standard translations
- Return ONLY the translation, no explanations

Text to translate:
{{text}}

Translation:`

// RenderPrompt fills tmpl (DefaultPrompt when empty) with the English
// language names and the text.
func RenderPrompt(tmpl, sourceLang, targetLang, text string) string {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultPrompt
	}
	r := strings.NewReplacer(
		"{{sourceLang}}", langmeta.EnglishName(sourceLang),
		"{{targetLang}}", langmeta.EnglishName(targetLang),
		"{{text}}", text,
	)
	return r.Replace(tmpl)
}
