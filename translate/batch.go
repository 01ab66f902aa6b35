// Package translate fills in missing languages of a Record Set through an
// AI translation provider.
//
// Records are visited in sorted category and key order. Each pending record
// gets one blocking call per missing target language; once a record is done
// its needs_translation flag is cleared and it counts toward the per-run cap.
// Arabic source text recognised as a Qur'anic verse is left untranslated and
// does not count.
package translate

import (
	"context"
	"time"

	"github.com/minios-linux/jsxlate/records"
)

// Translator translates one string between two languages.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// DefaultCap is the number of records translated per run.
const DefaultCap = 50

// ---------------------------------------------------------------------------
// Translation options
// ---------------------------------------------------------------------------

// Options controls a translation run.
type Options struct {
	// Cap is the maximum number of records processed in this run
	// (0 or negative = unlimited).
	Cap int
	// Delay is the pause after every API call.
	Delay time.Duration
	// Languages are the site languages (records.Languages when empty).
	Languages []string
	// RetryFailed re-processes completed records that have failed languages.
	RetryFailed bool
	// KeepFailedPending leaves needs_translation set on records whose
	// translation failed for some language.
	KeepFailedPending bool
	// DryRun counts the work without calling the translator or touching
	// the records.
	DryRun bool
	// OnRecord is called after each record changes state, with the Record
	// Set already updated. A returned error aborts the run.
	OnRecord func(category, key string, rec *records.Record) error
	// OnLog emits log messages during translation.
	OnLog func(format string, args ...any)
	// OnError emits error messages during translation.
	OnError func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	}
}

func (o *Options) languages() []string {
	if len(o.Languages) == 0 {
		return records.Languages
	}
	return o.Languages
}

// Result summarises a translation run.
type Result struct {
	// Processed is the number of records that consumed the cap.
	Processed int
	// Quranic is the number of records left untranslated as verses.
	Quranic int
	// Calls is the number of translation calls made (or planned in a dry run).
	Calls int
	// Failures is the number of calls that failed.
	Failures int
	// CapReached is true when the run stopped at the cap.
	CapReached bool
}

// Run translates pending records of set in place. It returns ctx.Err() when
// cancelled; the record in flight keeps its flag and is picked up again by
// the next run.
func Run(ctx context.Context, set records.Set, tr Translator, opts Options) (*Result, error) {
	res := &Result{}

	for _, category := range set.Categories() {
		cat := set[category]
		announced := false

		for _, key := range cat.Keys() {
			if err := ctx.Err(); err != nil {
				return res, err
			}

			rec := cat[key]
			retry := !rec.NeedsTranslation && opts.RetryFailed && rec.HasFailures()
			if !rec.NeedsTranslation && !retry {
				continue
			}

			source, sourceLang := rec.Source()
			if source == "" {
				continue
			}

			if !announced {
				opts.log("Category: %s", category)
				announced = true
			}

			if sourceLang == "ar" && !retry && IsQuranicVerse(source) {
				opts.log("  Skipping Qur'anic verse: %s...", preview(source, 30))
				res.Quranic++
				if opts.DryRun {
					continue
				}
				rec.NeedsTranslation = false
				if err := notify(opts, category, key, rec); err != nil {
					return res, err
				}
				continue
			}

			opts.log("  • %s...", preview(key, 30))

			if opts.DryRun {
				res.Calls += len(missingTargets(rec, sourceLang, opts.languages()))
			} else if err := translateRecord(ctx, rec, source, sourceLang, tr, &opts, res); err != nil {
				return res, err
			} else {
				rec.NeedsTranslation = opts.KeepFailedPending && rec.HasFailures() && !retry
				if err := notify(opts, category, key, rec); err != nil {
					return res, err
				}
			}

			res.Processed++
			if opts.Cap > 0 && res.Processed >= opts.Cap {
				res.CapReached = true
				return res, nil
			}
		}
	}

	return res, nil
}

// translateRecord fills every empty target language of rec. Only context
// cancellation is returned; call failures are recorded on the record.
func translateRecord(ctx context.Context, rec *records.Record, source, sourceLang string, tr Translator, opts *Options, res *Result) error {
	for _, lang := range targets(sourceLang, opts.languages()) {
		if rec.Get(lang) != "" {
			rec.ClearFailed(lang)
			continue
		}

		res.Calls++
		text, err := tr.Translate(ctx, source, sourceLang, lang)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			res.Failures++
			rec.MarkFailed(lang)
			opts.logError("Translation %s → %s failed: %v", sourceLang, lang, err)
		} else {
			rec.Set(lang, text)
			rec.ClearFailed(lang)
		}

		if err := sleep(ctx, opts.Delay); err != nil {
			return err
		}
	}
	return nil
}

func notify(opts Options, category, key string, rec *records.Record) error {
	if opts.OnRecord == nil {
		return nil
	}
	return opts.OnRecord(category, key, rec)
}

// targets returns langs without the source language, in order.
func targets(sourceLang string, langs []string) []string {
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		if l != sourceLang {
			out = append(out, l)
		}
	}
	return out
}

func missingTargets(rec *records.Record, sourceLang string, langs []string) []string {
	var out []string
	for _, l := range targets(sourceLang, langs) {
		if rec.Get(l) == "" {
			out = append(out, l)
		}
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
