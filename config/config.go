// Package config — .jsxlate.yaml configuration file support.
//
// Every field is optional: a project without .jsxlate.yaml runs with the
// defaults below, which match the layout of a typical Vite/React site
// (pages under src/pages, locale modules under src/locales). Command-line
// flags override file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// FileName is the config file name looked up in the project root.
const FileName = ".jsxlate.yaml"

// SiteLanguages are the languages a Record Set can hold.
var SiteLanguages = []string{"ar", "en", "fr", "zh"}

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// Config is the top-level .jsxlate.yaml structure.
type Config struct {
	// PagesDir is the directory scanned for page files.
	PagesDir string `yaml:"pages_dir"`
	// Extensions are the page file extensions to scan.
	Extensions []string `yaml:"extensions"`
	// ExtractedFile is the Record Set written by extract.
	ExtractedFile string `yaml:"extracted_file"`
	// FinalFile is the Record Set maintained by translate.
	FinalFile string `yaml:"final_file"`
	// GeneratedFile is the generated language table.
	GeneratedFile string `yaml:"generated_file"`
	// LocalesDir receives the per-language modules and index.js.
	LocalesDir string `yaml:"locales_dir"`
	// Languages are the site languages, in table order.
	Languages []string `yaml:"languages"`
	// BatchSize caps the records translated per run (0 = unlimited).
	BatchSize int `yaml:"batch_size"`
	// RequestDelay is the pause after every API call.
	RequestDelay time.Duration `yaml:"request_delay"`
	// KeepFailedPending keeps records with failed languages pending.
	KeepFailedPending bool `yaml:"keep_failed_pending"`
	// Patch describes the consumer import rewritten by split.
	Patch Patch `yaml:"patch"`
	// Provider configures the translation API.
	Provider Provider `yaml:"provider"`
	// Prompt overrides the translation prompt template.
	Prompt string `yaml:"prompt,omitempty"`

	// Root is the project root all relative paths are resolved against.
	Root string `yaml:"-"`
}

// Patch is the import replacement applied by split.
type Patch struct {
	File      string `yaml:"file"`
	OldImport string `yaml:"old_import"`
	NewImport string `yaml:"new_import"`
}

// Provider holds the translation API settings.
type Provider struct {
	ID      string `yaml:"id"`
	Model   string `yaml:"model,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	// APIKeyEnv names the environment variable holding the API key
	// (provider default when empty).
	APIKeyEnv  string        `yaml:"api_key_env,omitempty"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	Proxy      string        `yaml:"proxy,omitempty"`
}

// keyEnvByProvider maps provider IDs to their conventional key variables.
var keyEnvByProvider = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"google":    "GOOGLE_API_KEY",
}

// KeyEnv returns the environment variable holding the API key, or "" for
// providers that need none.
func (p Provider) KeyEnv() string {
	if p.APIKeyEnv != "" {
		return p.APIKeyEnv
	}
	return keyEnvByProvider[p.ID]
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		PagesDir:      "src/pages",
		Extensions:    []string{".jsx"},
		ExtractedFile: "translations_extracted.json",
		FinalFile:     "translations_final.json",
		GeneratedFile: "translations_GENERATED.jsx",
		LocalesDir:    "src/locales",
		Languages:     append([]string(nil), SiteLanguages...),
		BatchSize:     50,
		RequestDelay:  time.Second,
		Patch: Patch{
			File:      "src/components/LanguageContext.jsx",
			OldImport: "import { translations } from './translations';",
			NewImport: "import { translations } from '../locales';",
		},
		Provider: Provider{
			ID:         "anthropic",
			Timeout:    120 * time.Second,
			MaxRetries: 3,
		},
		Root: ".",
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads .jsxlate.yaml from rootDir on top of the defaults. A missing
// file is not an error.
func Load(rootDir string) (*Config, error) {
	if rootDir == "" {
		rootDir = "."
	}
	path := filepath.Join(rootDir, FileName)
	cfg, err := LoadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = Defaults()
		} else {
			return nil, err
		}
	}
	cfg.Root = rootDir
	return cfg, nil
}

// LoadFile reads the given config file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Defaults()
	cfg.Root = filepath.Dir(path)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate checks the configuration and normalises language codes.
func (c *Config) Validate() error {
	var problems []string

	for name, v := range map[string]string{
		"pages_dir":      c.PagesDir,
		"extracted_file": c.ExtractedFile,
		"final_file":     c.FinalFile,
		"generated_file": c.GeneratedFile,
		"locales_dir":    c.LocalesDir,
		"provider.id":    c.Provider.ID,
	} {
		if strings.TrimSpace(v) == "" {
			problems = append(problems, name+" must not be empty")
		}
	}

	if len(c.Languages) == 0 {
		problems = append(problems, "languages must not be empty")
	}
	seen := make(map[string]bool)
	for i, lang := range c.Languages {
		tag, err := language.Parse(lang)
		if err != nil {
			problems = append(problems, fmt.Sprintf("languages: invalid code %q", lang))
			continue
		}
		base, _ := tag.Base()
		code := base.String()
		if !isSiteLanguage(code) {
			problems = append(problems, fmt.Sprintf("languages: %q is not one of %s", lang, strings.Join(SiteLanguages, ", ")))
			continue
		}
		if seen[code] {
			problems = append(problems, fmt.Sprintf("languages: %q listed twice", code))
		}
		seen[code] = true
		c.Languages[i] = code
	}

	if c.RequestDelay < 0 {
		problems = append(problems, "request_delay must not be negative")
	}
	if c.Provider.Timeout < 0 {
		problems = append(problems, "provider.timeout must not be negative")
	}
	if c.Provider.MaxRetries < 0 {
		problems = append(problems, "provider.max_retries must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func isSiteLanguage(code string) bool {
	for _, l := range SiteLanguages {
		if l == code {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

// Path resolves p against the project root.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// ---------------------------------------------------------------------------
// Flags
// ---------------------------------------------------------------------------

// Flag names shared by the subcommands.
const (
	FlagPagesDir   = "pages-dir"
	FlagExt        = "ext"
	FlagExtracted  = "extracted"
	FlagOutput     = "output"
	FlagGenerated  = "generated"
	FlagLocalesDir = "locales-dir"
	FlagBatchSize  = "batch-size"
	FlagDelay      = "delay"
	FlagStrict     = "strict"
	FlagProvider   = "provider"
	FlagModel      = "model"
	FlagBaseURL    = "base-url"
	FlagProxy      = "proxy"
	FlagTimeout    = "timeout"
	FlagMaxRetries = "max-retries"
)

// ApplyFlags copies every flag set on the command line into c.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case FlagPagesDir:
			c.PagesDir = f.Value.String()
		case FlagExt:
			c.Extensions, err = fs.GetStringSlice(f.Name)
		case FlagExtracted:
			c.ExtractedFile = f.Value.String()
		case FlagOutput:
			c.FinalFile = f.Value.String()
		case FlagGenerated:
			c.GeneratedFile = f.Value.String()
		case FlagLocalesDir:
			c.LocalesDir = f.Value.String()
		case FlagBatchSize:
			c.BatchSize, err = fs.GetInt(f.Name)
		case FlagDelay:
			c.RequestDelay, err = fs.GetDuration(f.Name)
		case FlagStrict:
			c.KeepFailedPending, err = fs.GetBool(f.Name)
		case FlagProvider:
			c.Provider.ID = f.Value.String()
		case FlagModel:
			c.Provider.Model = f.Value.String()
		case FlagBaseURL:
			c.Provider.BaseURL = f.Value.String()
		case FlagProxy:
			c.Provider.Proxy = f.Value.String()
		case FlagTimeout:
			c.Provider.Timeout, err = fs.GetDuration(f.Name)
		case FlagMaxRetries:
			c.Provider.MaxRetries, err = fs.GetInt(f.Name)
		}
	})
	return err
}
