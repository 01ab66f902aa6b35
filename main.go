// jsxlate — localization kit for React page files: extracts UI strings,
// translates them with an AI provider and splits them into locale modules.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/minios-linux/jsxlate/config"
	"github.com/minios-linux/jsxlate/extract"
	"github.com/minios-linux/jsxlate/i18n"
	"github.com/minios-linux/jsxlate/langmeta"
	"github.com/minios-linux/jsxlate/langtable"
	"github.com/minios-linux/jsxlate/records"
	"github.com/minios-linux/jsxlate/settings"
	"github.com/minios-linux/jsxlate/split"
	"github.com/minios-linux/jsxlate/translate"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

// The format strings are gettext msgids; see i18n/locales.

func logInfo(format string, args ...any) {
	logLine(colorBlue+"[INFO]", i18n.Tf(format, args...))
}

func logSuccess(format string, args ...any) {
	logLine(colorGreen+"[OK]", i18n.Tf(format, args...))
}

func logWarning(format string, args ...any) {
	logLine(colorYellow+"[WARN]", i18n.Tf(format, args...))
}

func logError(format string, args ...any) {
	logLine(colorRed+"[ERROR]", i18n.Tf(format, args...))
}

// logSuccessN and logWarningN log a message whose wording depends on the
// count n.
func logSuccessN(singular, plural string, n int, args ...any) {
	logLine(colorGreen+"[OK]", i18n.N(singular, plural, n, args...))
}

func logWarningN(singular, plural string, n int, args ...any) {
	logLine(colorYellow+"[WARN]", i18n.N(singular, plural, n, args...))
}

func logLine(tag, msg string) {
	fmt.Fprintln(os.Stderr, tag+colorReset+" "+msg)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jsxlate",
		Short: "Extract, translate and split UI strings of a React site",
		Long: `jsxlate — localization kit for React page files.

Workflow:
  extract     Collect UI strings from src/pages into translations_extracted.json
  translate   Translate pending strings with an AI provider (resumable, capped per run)
  progress    Show translation progress
  split       Write src/locales/{ar,en,fr,zh}.js and src/locales/index.js
  auth        Manage stored API keys

Settings are read from .jsxlate.yaml in the project root; flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")

	root.AddCommand(
		newExtractCmd(),
		newTranslateCmd(),
		newProgressCmd(),
		newSplitCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("jsxlate version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// extract
// ---------------------------------------------------------------------------

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract UI strings from page files",
		Long: `Scan the pages directory for UI strings and write a fresh Record Set.

Arabic strings are stored in the "ar" field, everything else in "en"; every
record starts with needs_translation set. Running extract again over an
unchanged tree produces an identical file.`,
		Run: func(cmd *cobra.Command, args []string) {
			runExtract(mustLoadConfig(cmd.Flags()))
		},
	}

	cmd.Flags().String(config.FlagPagesDir, "", "Directory with page files (default src/pages)")
	cmd.Flags().StringSlice(config.FlagExt, nil, "Page file extensions (default .jsx)")
	cmd.Flags().String(config.FlagExtracted, "", "Output Record Set (default translations_extracted.json)")

	return cmd
}

func runExtract(cfg *config.Config) {
	pagesDir := cfg.Path(cfg.PagesDir)
	if !dirExists(pagesDir) {
		logError("Pages directory not found: %s", pagesDir)
		return
	}

	logInfo("Scanning %s...", pagesDir)

	res, err := extract.ExtractDir(pagesDir, extract.Options{
		Extensions: cfg.Extensions,
		OnFile: func(fr extract.FileResult) {
			switch {
			case fr.Err != nil:
				logError("Failed to read %s: %v", fr.Path, fr.Err)
			case len(fr.Texts) == 0:
				logInfo("%s: no texts", fr.Stem)
			default:
				logSuccessN("%s: %d text", "%s: %d texts", len(fr.Texts), fr.Stem, len(fr.Texts))
			}
		},
	})
	if err != nil {
		logError("Extraction failed: %v", err)
		os.Exit(1)
	}

	if res.Set.Len() == 0 {
		logWarning("No texts extracted; nothing written")
		return
	}

	out := cfg.Path(cfg.ExtractedFile)
	if err := res.Set.Save(out); err != nil {
		logError("Failed to save %s: %v", out, err)
		os.Exit(1)
	}

	st := res.Set.Stats()
	fmt.Fprintln(os.Stderr)
	logSuccessN("Extracted %d text from %d files", "Extracted %d texts from %d files", st.Total, st.Total, len(res.Files))
	fmt.Fprintf(os.Stderr, "  %-12s %d\n", i18n.T("Arabic:"), st.Arabic)
	fmt.Fprintf(os.Stderr, "  %-12s %d\n", i18n.T("English:"), st.English)
	for _, category := range res.Set.Categories() {
		fmt.Fprintf(os.Stderr, "    %-20s %d\n", category, len(res.Set[category]))
	}
	fmt.Fprintln(os.Stderr)
	logSuccess("Saved %s", out)
	logInfo("Next step: jsxlate translate")
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		apiKey      string
		retryFailed bool
		dryRun      bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate pending strings using AI",
		Long: `Fill in the missing languages of pending records.

Resumes from the final Record Set when it exists, otherwise starts from the
extracted one. At most --batch-size records are translated per run (0 means
no limit); progress is saved after every record, so the command can be
interrupted with Ctrl-C and run again.

The API key is taken from --api-key, then the provider's environment
variable (ANTHROPIC_API_KEY by default), then 'jsxlate auth login'.

Examples:
  # Translate the next 50 records with Claude
  export ANTHROPIC_API_KEY=sk-ant-...
  jsxlate translate

  # Translate everything, half a second between calls
  jsxlate translate --batch-size 0 --delay 500ms

  # Retry languages that failed in earlier runs
  jsxlate translate --retry-failed

  # Show what would be translated
  jsxlate translate --dry-run`,
		Run: func(cmd *cobra.Command, args []string) {
			runTranslate(mustLoadConfig(cmd.Flags()), translateArgs{
				apiKey:      apiKey,
				retryFailed: retryFailed,
				dryRun:      dryRun,
				verbose:     verbose,
			})
		},
	}

	// Provider selection
	cmd.Flags().String(config.FlagProvider, "", "AI provider: "+strings.Join(translate.ProviderIDs(), ", ")+" (default anthropic)")
	cmd.Flags().String(config.FlagModel, "", "Model name (default "+translate.DefaultModel+")")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (or the provider's environment variable)")
	cmd.Flags().String(config.FlagBaseURL, "", "Custom API base URL")

	// Translation behavior
	cmd.Flags().IntP(config.FlagBatchSize, "n", 0, "Records to translate in this run, 0 = all (default 50)")
	cmd.Flags().Duration(config.FlagDelay, 0, "Pause after every API call (default 1s)")
	cmd.Flags().Bool(config.FlagStrict, false, "Keep records with failed languages pending")
	cmd.Flags().BoolVar(&retryFailed, "retry-failed", false, "Re-process records with failed languages")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be translated without calling AI")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable detailed logging")

	// Files
	cmd.Flags().String(config.FlagExtracted, "", "Extracted Record Set (default translations_extracted.json)")
	cmd.Flags().String(config.FlagOutput, "", "Final Record Set (default translations_final.json)")
	cmd.Flags().String(config.FlagGenerated, "", "Generated language table (default translations_GENERATED.jsx)")

	// Network
	cmd.Flags().Duration(config.FlagTimeout, 0, "Request timeout (default 120s)")
	cmd.Flags().String(config.FlagProxy, "", "HTTP/HTTPS proxy URL")
	cmd.Flags().Int(config.FlagMaxRetries, 0, "Retries per call on network errors, 5xx and 429 (default 3)")

	_ = cmd.RegisterFlagCompletionFunc(config.FlagProvider, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, id := range translate.ProviderIDs() {
			out = append(out, id+"\t"+translate.DefaultProviders()[id].Name)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

type translateArgs struct {
	apiKey      string
	retryFailed bool
	dryRun      bool
	verbose     bool
}

func runTranslate(cfg *config.Config, a translateArgs) {
	prov, err := translate.ResolveProvider(cfg.Provider.ID, translate.Provider{
		BaseURL: cfg.Provider.BaseURL,
		Model:   cfg.Provider.Model,
		Proxy:   cfg.Provider.Proxy,
		Timeout: cfg.Provider.Timeout,
	})
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	keyEnv := cfg.Provider.KeyEnv()
	key, keySource := settings.ResolveAPIKey(prov.ID, a.apiKey, keyEnv)
	if prov.NeedsKey() && key == "" && !a.dryRun {
		logError("No API key for %s", prov.Name)
		if keyEnv != "" {
			fmt.Fprintf(os.Stderr, "  export %s='your-key-here'\n", keyEnv)
		}
		fmt.Fprintf(os.Stderr, "  jsxlate auth login --provider %s\n", prov.ID)
		os.Exit(1)
	}
	prov.APIKey = key

	inPath, resumed, ok := selectInput(cfg.Path(cfg.FinalFile), cfg.Path(cfg.ExtractedFile))
	if !ok {
		logError("File not found: %s", cfg.Path(cfg.ExtractedFile))
		logInfo("Run 'jsxlate extract' first")
		os.Exit(1)
	}
	set, err := records.Load(inPath)
	if err != nil {
		logError("Failed to load %s: %v", inPath, err)
		os.Exit(1)
	}
	if resumed {
		logInfo("Resuming from %s", inPath)
		if extracted := cfg.Path(cfg.ExtractedFile); isNewer(extracted, inPath) {
			logWarning("%s is newer than %s and is ignored; delete %s to start from the new extraction", extracted, inPath, inPath)
		}
	}

	before := set.Stats()
	logInfo("%d texts, %d pending", before.Total, before.Remaining)
	if a.verbose && keySource != "" {
		logInfo("Using %s (%s), API key from %s", prov.Name, prov.Model, keySource)
	}

	outPath := cfg.Path(cfg.FinalFile)
	opts := translate.Options{
		Cap:               cfg.BatchSize,
		Delay:             cfg.RequestDelay,
		Languages:         cfg.Languages,
		RetryFailed:       a.retryFailed,
		KeepFailedPending: cfg.KeepFailedPending,
		DryRun:            a.dryRun,
		OnLog: func(format string, args ...any) {
			logInfo(format, args...)
		},
		OnError: func(format string, args ...any) {
			logError(format, args...)
		},
		OnRecord: func(category, key string, rec *records.Record) error {
			return set.Save(outPath)
		},
	}

	if a.dryRun {
		res, _ := translate.Run(context.Background(), set, nil, opts)
		fmt.Fprintln(os.Stderr)
		logInfo("Dry run: %d records, %d API calls, %d Qur'anic verses skipped", res.Processed, res.Calls, res.Quranic)
		return
	}

	client := translate.NewClient(prov)
	client.Prompt = cfg.Prompt
	client.MaxRetries = cfg.Provider.MaxRetries
	if client.MaxRetries == 0 {
		client.MaxRetries = -1
	}
	client.Verbose = a.verbose

	// Setup signal handling for graceful cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logWarning("Interrupted, saving progress...")
		cancel()
	}()

	logInfo("Translating with %s (%s)...", prov.Name, prov.Model)
	start := time.Now()
	res, runErr := translate.Run(ctx, set, client, opts)

	if err := set.Save(outPath); err != nil {
		logError("Failed to save %s: %v", outPath, err)
		os.Exit(1)
	}
	logSuccess("Saved %s", outPath)

	genPath := cfg.Path(cfg.GeneratedFile)
	if err := os.WriteFile(genPath, langtable.Render(set, cfg.Languages), 0644); err != nil {
		logError("Failed to write %s: %v", genPath, err)
		os.Exit(1)
	}
	logSuccess("Generated %s", genPath)

	fmt.Fprintln(os.Stderr)
	switch {
	case errors.Is(runErr, context.Canceled):
		logWarningN("Stopped after %d text; run 'jsxlate translate' to continue", "Stopped after %d texts; run 'jsxlate translate' to continue", res.Processed, res.Processed)
	case runErr != nil:
		logError("Translation stopped: %v", runErr)
		os.Exit(1)
	case res.CapReached:
		logWarning("Reached the limit of %d texts for this run", cfg.BatchSize)
		logInfo("Run 'jsxlate translate' again to continue")
	default:
		logSuccessN("Translated %d text in %s", "Translated %d texts in %s", res.Processed, res.Processed, time.Since(start).Round(time.Second))
	}
	if res.Quranic > 0 {
		logInfo("%d Qur'anic verses left untranslated", res.Quranic)
	}
	if res.Failures > 0 {
		logWarning("%d translations failed; run 'jsxlate translate --retry-failed' to retry", res.Failures)
	}
}

// selectInput picks the Record Set to translate: the final file when it
// exists (resume), otherwise the extracted file.
func selectInput(finalPath, extractedPath string) (path string, resumed, ok bool) {
	if fileExists(finalPath) {
		return finalPath, true, true
	}
	if fileExists(extractedPath) {
		return extractedPath, false, true
	}
	return "", false, false
}

// isNewer reports whether path was modified after other. Missing files are
// never newer.
func isNewer(path, other string) bool {
	a, err := os.Stat(path)
	if err != nil {
		return false
	}
	b, err := os.Stat(other)
	if err != nil {
		return false
	}
	return a.ModTime().After(b.ModTime())
}

// ---------------------------------------------------------------------------
// progress (read-only)
// ---------------------------------------------------------------------------

func newProgressCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show translation progress",
		Long: `Show how many records are translated and estimate the remaining runs.

Reads the final Record Set and does not modify any files.`,
		Run: func(cmd *cobra.Command, args []string) {
			runProgress(mustLoadConfig(cmd.Flags()), verbose)
		},
	}

	cmd.Flags().String(config.FlagOutput, "", "Final Record Set (default translations_final.json)")
	cmd.Flags().IntP(config.FlagBatchSize, "n", 0, "Records per run used for the estimate (default 50)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show per-category progress")

	return cmd
}

func runProgress(cfg *config.Config, verbose bool) {
	path := cfg.Path(cfg.FinalFile)
	if !fileExists(path) {
		logWarning("File not found: %s", path)
		logInfo("Run 'jsxlate translate' first")
		return
	}

	set, err := records.Load(path)
	if err != nil {
		logError("Failed to load %s: %v", path, err)
		os.Exit(1)
	}

	st := set.Stats()
	fmt.Println(formatProgress(st, cfg.BatchSize))

	if verbose {
		fmt.Println()
		byCategory := set.CategoryStats()
		width := 0
		for _, category := range set.Categories() {
			width = max(width, len(category))
		}
		for _, category := range set.Categories() {
			cs := byCategory[category]
			fmt.Printf("  %-*s %s  %d/%d\n", width, category, progressBar(int(cs.Percent()), 20), cs.Completed, cs.Total)
		}
	}
}

// formatProgress renders the progress report for st.
func formatProgress(st records.Stats, batchSize int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", i18n.T("Total:"), st.Total)
	fmt.Fprintf(&b, "%s %d (%.1f%%)\n", i18n.T("Completed:"), st.Completed, st.Percent())
	fmt.Fprintf(&b, "%s %d\n", i18n.T("Remaining:"), st.Remaining)
	if st.Failed > 0 {
		fmt.Fprintf(&b, "%s %d\n", i18n.T("With failed languages:"), st.Failed)
	}
	fmt.Fprintf(&b, "%s\n", progressBar(int(st.Percent()), 40))

	if st.Remaining == 0 {
		fmt.Fprintf(&b, "\n%s\n", i18n.T("All texts are translated!"))
		fmt.Fprintf(&b, "%s jsxlate split", i18n.T("Next step:"))
		return b.String()
	}

	size := batchSize
	if size <= 0 {
		size = st.Remaining
	}
	fmt.Fprintf(&b, "\n"+i18n.T("Estimated runs remaining: %d (%d texts per run)")+"\n", st.RemainingRuns(batchSize), size)
	fmt.Fprintf(&b, "%s jsxlate translate", i18n.T("Next step:"))
	return b.String()
}

// progressBar renders a colored bar of the given width followed by the
// percentage.
func progressBar(percent, width int) string {
	percent = max(0, min(percent, 100))
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s%s%s %4d%%", color, bar, colorReset, percent)
}

// ---------------------------------------------------------------------------
// split
// ---------------------------------------------------------------------------

func newSplitCmd() *cobra.Command {
	var (
		fromTable bool
		noPatch   bool
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Write one locale module per language",
		Long: `Write <locales_dir>/{ar,en,fr,zh}.js and <locales_dir>/index.js.

By default the modules are rendered from the final Record Set. With
--from-table the language blocks are cut out of the generated language
table instead. Afterwards the LanguageContext import is switched to the
locales directory unless --no-patch is given.`,
		Run: func(cmd *cobra.Command, args []string) {
			runSplit(mustLoadConfig(cmd.Flags()), fromTable, noPatch)
		},
	}

	cmd.Flags().BoolVar(&fromTable, "from-table", false, "Read the generated language table instead of the Record Set")
	cmd.Flags().BoolVar(&noPatch, "no-patch", false, "Do not patch the LanguageContext import")
	cmd.Flags().String(config.FlagOutput, "", "Final Record Set (default translations_final.json)")
	cmd.Flags().String(config.FlagGenerated, "", "Generated language table (default translations_GENERATED.jsx)")
	cmd.Flags().String(config.FlagLocalesDir, "", "Output directory (default src/locales)")

	return cmd
}

func runSplit(cfg *config.Config, fromTable, noPatch bool) {
	var src split.BodySource
	if fromTable {
		path := cfg.Path(cfg.GeneratedFile)
		data, err := os.ReadFile(path)
		if err != nil {
			logWarning("File not found: %s", path)
			logInfo("Run 'jsxlate translate' first")
			return
		}
		src = split.FromTable(data)
	} else {
		path := cfg.Path(cfg.FinalFile)
		if !fileExists(path) {
			logWarning("File not found: %s", path)
			logInfo("Run 'jsxlate translate' first")
			return
		}
		set, err := records.Load(path)
		if err != nil {
			logError("Failed to load %s: %v", path, err)
			os.Exit(1)
		}
		src = split.FromSet(set)
	}

	localesDir := cfg.Path(cfg.LocalesDir)
	res, err := split.Run(src, split.Options{
		LocalesDir: localesDir,
		Languages:  cfg.Languages,
		OnFile: func(lang, path string, lines int) {
			logSuccess("Saved %s (%d lines)", path, lines)
		},
		OnSkip: func(lang string) {
			logWarning("No translations found for %s (%s)", langmeta.NativeName(lang), lang)
		},
	})
	if err != nil {
		logError("Split failed: %v", err)
		os.Exit(1)
	}
	logSuccess("Saved %s", res.Index)

	if !noPatch {
		patchLanguageContext(cfg)
	}

	fmt.Fprintln(os.Stderr)
	logSuccessN("Wrote %d locale file", "Wrote %d locale files", len(res.Written), len(res.Written))
	for _, p := range res.Written {
		fmt.Fprintf(os.Stderr, "  • %s\n", p)
	}
	fmt.Fprintf(os.Stderr, "  • %s\n", res.Index)
}

func patchLanguageContext(cfg *config.Config) {
	path := cfg.Path(cfg.Patch.File)
	status, err := split.PatchImport(path, cfg.Patch.OldImport, cfg.Patch.NewImport)
	if err != nil {
		logWarning("Could not patch %s: %v", path, err)
		printManualPatch(cfg)
		return
	}

	switch status {
	case split.Patched:
		logSuccess("Updated import in %s", path)
	case split.AlreadyPatched:
		logInfo("%s already imports the locales", path)
	case split.FileMissing:
		logWarning("File not found: %s", path)
		printManualPatch(cfg)
	case split.LineMissing:
		logWarning("Import line not found in %s", path)
		printManualPatch(cfg)
	}
}

func printManualPatch(cfg *config.Config) {
	fmt.Fprintf(os.Stderr, "  %s\n", i18n.T("Change the import manually from:"))
	fmt.Fprintf(os.Stderr, "    %s\n", cfg.Patch.OldImport)
	fmt.Fprintf(os.Stderr, "  %s\n", i18n.T("to:"))
	fmt.Fprintf(os.Stderr, "    %s\n", cfg.Patch.NewImport)
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored API keys",
		Long: `Manage API keys stored in ` + "`$XDG_DATA_HOME/jsxlate/auth.json`" + `.

Stored keys are used when neither --api-key nor the provider's environment
variable is set.

Examples:
  jsxlate auth login                          Store an Anthropic API key
  jsxlate auth login --provider openai        Store an OpenAI API key
  jsxlate auth logout --provider anthropic    Remove the Anthropic key
  jsxlate auth logout                         Remove all keys
  jsxlate auth list                           Show stored keys`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthListCmd(),
	)

	return cmd
}

// keyProviders lists the providers that take an API key.
func keyProviders() []string {
	var ids []string
	for _, id := range translate.ProviderIDs() {
		if translate.DefaultProviders()[id].NeedsKey() {
			ids = append(ids, id)
		}
	}
	return ids
}

func newAuthLoginCmd() *cobra.Command {
	var (
		provider string
		apiKey   string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key",
		Long: `Store an API key for a provider. The key is read from --api-key or,
when omitted, from standard input.`,
		Run: func(cmd *cobra.Command, args []string) {
			authLoginAPIKey(provider, apiKey)
		},
	}

	cmd.Flags().StringVar(&provider, "provider", translate.ProviderAnthropic, "Provider: "+strings.Join(keyProviders(), ", "))
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (read from stdin when empty)")

	return cmd
}

func authLoginAPIKey(providerID, key string) {
	prov, ok := translate.DefaultProviders()[providerID]
	if !ok || !prov.NeedsKey() {
		logError("Unknown provider '%s'. Known providers: %s", providerID, strings.Join(keyProviders(), ", "))
		os.Exit(1)
	}

	existing := settings.GetAPIKey(providerID)
	if key == "" {
		fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, prov.Name, colorReset)
		fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
		if existing != "" {
			fmt.Fprintf(os.Stderr, "  %s %s%s%s\n", i18n.T("Current key:"), colorYellow, settings.MaskKey(existing), colorReset)
			fmt.Fprintf(os.Stderr, "  %s ", i18n.T("Enter new key to replace, or press Enter to keep:"))
		} else {
			fmt.Fprintf(os.Stderr, "  %s ", i18n.T("Enter API key:"))
		}

		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			logError("No input received")
			os.Exit(1)
		}
		key = strings.TrimSpace(scanner.Text())
	}

	if key == "" {
		if existing != "" {
			logInfo("Keeping existing key")
			return
		}
		logError("No API key provided")
		os.Exit(1)
	}

	if err := settings.SetAPIKey(providerID, key); err != nil {
		logError("Failed to save API key: %v", err)
		os.Exit(1)
	}
	logSuccess("%s API key saved to %s", prov.Name, settings.FilePath())
}

func newAuthLogoutCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored API keys",
		Long: `Remove the stored key of one provider, or all keys when --provider is
not given.`,
		Run: func(cmd *cobra.Command, args []string) {
			if provider != "" {
				if err := settings.Remove(provider); err != nil {
					logError("Failed to remove %s credentials: %v", provider, err)
					os.Exit(1)
				}
				logSuccess("%s credentials removed", provider)
				return
			}
			if err := settings.RemoveAll(); err != nil {
				logError("Failed to remove credentials: %v", err)
				os.Exit(1)
			}
			logSuccess("All stored credentials removed")
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to logout (default: all)")

	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show stored API keys",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.Defaults()
			store := settings.Load()

			fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Stored Credentials"), colorReset)
			fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
			for _, id := range keyProviders() {
				status := colorRed + i18n.T("not configured") + colorReset
				if entry := store[id]; entry != nil && entry.Key != "" {
					status = fmt.Sprintf("%s%s%s (%s)", colorGreen, i18n.T("configured"), colorReset, settings.MaskKey(entry.Key))
				}
				fmt.Fprintf(os.Stderr, "  %-10s %s\n", id, status)
			}

			fmt.Fprintf(os.Stderr, "\n  %s%s%s\n", colorYellow, i18n.T("Environment Variables"), colorReset)
			var envs []string
			for _, id := range keyProviders() {
				p := cfg.Provider
				p.ID = id
				envs = append(envs, p.KeyEnv())
			}
			sort.Strings(envs)
			for _, env := range envs {
				if v := os.Getenv(env); v != "" {
					fmt.Fprintf(os.Stderr, "  %-18s %s%s%s\n", env, colorGreen, settings.MaskKey(v), colorReset)
				} else {
					fmt.Fprintf(os.Stderr, "  %-18s %s%s%s\n", env, colorRed, i18n.T("not set"), colorReset)
				}
			}
			fmt.Fprintln(os.Stderr)
		},
	}
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// loadConfig reads .jsxlate.yaml from the project root and applies the
// flags given on the command line.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyFlags(flags); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mustLoadConfig(flags *pflag.FlagSet) *config.Config {
	cfg, err := loadConfig(flags)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}
	return cfg
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
