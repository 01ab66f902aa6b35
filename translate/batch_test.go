package translate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/minios-linux/jsxlate/records"
)

// fakeTranslator returns "<target>:<text>" and records every call.
type fakeTranslator struct {
	calls []string
	fail  map[string]bool // target languages that fail
	onCall func()
}

func (f *fakeTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	f.calls = append(f.calls, sourceLang+">"+targetLang+":"+text)
	if f.onCall != nil {
		f.onCall()
	}
	if f.fail[targetLang] {
		return "", errors.New("boom")
	}
	return targetLang + ":" + text, nil
}

func pendingSet(n int) records.Set {
	set := records.Set{}
	for i := 0; i < n; i++ {
		set.Add("common", fmt.Sprintf("key_%03d", i), &records.Record{EN: fmt.Sprintf("Text %d", i), NeedsTranslation: true})
	}
	return set
}

func TestRunTranslatesMissingLanguages(t *testing.T) {
	set := records.Set{
		"home": records.Category{
			"welcome": {AR: "أهلا بكم", NeedsTranslation: true},
			"partial": {EN: "Save changes", FR: "Déjà fait", NeedsTranslation: true},
		},
	}
	tr := &fakeTranslator{}

	res, err := Run(context.Background(), set, tr, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantCalls := []string{
		"en>ar:Save changes",
		"en>zh:Save changes",
		"ar>en:أهلا بكم",
		"ar>fr:أهلا بكم",
		"ar>zh:أهلا بكم",
	}
	if !reflect.DeepEqual(tr.calls, wantCalls) {
		t.Fatalf("calls = %v\nwant %v", tr.calls, wantCalls)
	}
	if res.Processed != 2 || res.Calls != 5 || res.Failures != 0 {
		t.Fatalf("unexpected result: %#v", res)
	}

	partial := set["home"]["partial"]
	if partial.FR != "Déjà fait" {
		t.Errorf("populated field overwritten: %q", partial.FR)
	}
	if partial.AR != "ar:Save changes" || partial.NeedsTranslation {
		t.Errorf("unexpected partial record: %#v", partial)
	}
	welcome := set["home"]["welcome"]
	if welcome.EN != "en:أهلا بكم" || welcome.FR == "" || welcome.ZH == "" || welcome.NeedsTranslation {
		t.Errorf("unexpected welcome record: %#v", welcome)
	}
}

func TestRunEnforcesCap(t *testing.T) {
	set := pendingSet(120)
	tr := &fakeTranslator{}

	res, err := Run(context.Background(), set, tr, Options{Cap: 50})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Processed != 50 || !res.CapReached {
		t.Fatalf("unexpected result: %#v", res)
	}
	if st := set.Stats(); st.Completed != 50 || st.Remaining != 70 {
		t.Fatalf("stats after first run: %+v", st)
	}

	// The next runs resume where the previous one stopped.
	if _, err := Run(context.Background(), set, tr, Options{Cap: 50}); err != nil {
		t.Fatal(err)
	}
	res, err = Run(context.Background(), set, tr, Options{Cap: 50})
	if err != nil {
		t.Fatal(err)
	}
	if res.Processed != 20 || res.CapReached {
		t.Fatalf("third run: %#v", res)
	}
	if st := set.Stats(); st.Remaining != 0 {
		t.Fatalf("remaining = %d", st.Remaining)
	}
}

func TestRunUnlimitedCap(t *testing.T) {
	set := pendingSet(7)
	res, err := Run(context.Background(), set, &fakeTranslator{}, Options{Cap: 0})
	if err != nil {
		t.Fatal(err)
	}
	if res.Processed != 7 || res.CapReached {
		t.Fatalf("unexpected result: %#v", res)
	}
}

func TestRunQuranicVerseMakesNoCalls(t *testing.T) {
	verse := "قُلْ يَا عِبَادِيَ الَّذِينَ أَسْرَفُوا عَلَى أَنفُسِهِمْ"
	set := records.Set{
		"repentance": records.Category{"verse": {AR: verse, NeedsTranslation: true}},
	}
	tr := &fakeTranslator{}

	res, err := Run(context.Background(), set, tr, Options{Cap: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.calls) != 0 {
		t.Fatalf("expected no calls, got %v", tr.calls)
	}
	rec := set["repentance"]["verse"]
	if rec.NeedsTranslation || rec.EN != "" || rec.FR != "" || rec.ZH != "" {
		t.Fatalf("unexpected record: %#v", rec)
	}
	if res.Quranic != 1 || res.Processed != 0 {
		t.Fatalf("verse must not consume the cap: %#v", res)
	}
}

func TestRunSkipsRecordsWithoutSource(t *testing.T) {
	set := records.Set{"common": records.Category{"empty": {NeedsTranslation: true}}}
	tr := &fakeTranslator{}
	res, err := Run(context.Background(), set, tr, Options{Cap: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.calls) != 0 || res.Processed != 0 || !set["common"]["empty"].NeedsTranslation {
		t.Fatalf("record without source must be left alone: %#v", res)
	}
}

func TestRunCompletionIsMonotonic(t *testing.T) {
	set := records.Set{
		"common": records.Category{
			"done":    {EN: "Already done", NeedsTranslation: false},
			"pending": {EN: "Still pending", NeedsTranslation: true},
		},
	}
	tr := &fakeTranslator{fail: map[string]bool{"fr": true}}

	if _, err := Run(context.Background(), set, tr, Options{KeepFailedPending: true, RetryFailed: true}); err != nil {
		t.Fatal(err)
	}
	if set["common"]["done"].NeedsTranslation {
		t.Fatal("completed record became pending")
	}
	for _, c := range tr.calls {
		if c == "en>ar:Already done" {
			t.Fatal("completed record was re-translated")
		}
	}
}

func TestRunRecordsFailures(t *testing.T) {
	newSet := func() records.Set {
		return records.Set{"common": records.Category{"k": {EN: "Save changes", NeedsTranslation: true}}}
	}

	t.Run("flag cleared, failure recorded", func(t *testing.T) {
		set := newSet()
		var errs int
		res, err := Run(context.Background(), set, &fakeTranslator{fail: map[string]bool{"fr": true}}, Options{
			OnError: func(string, ...any) { errs++ },
		})
		if err != nil {
			t.Fatal(err)
		}
		rec := set["common"]["k"]
		if rec.NeedsTranslation || rec.FR != "" || !reflect.DeepEqual(rec.Failed, []string{"fr"}) {
			t.Fatalf("unexpected record: %#v", rec)
		}
		if res.Failures != 1 || errs != 1 || res.Processed != 1 {
			t.Fatalf("unexpected result: %#v (errs=%d)", res, errs)
		}
	})

	t.Run("strict keeps record pending", func(t *testing.T) {
		set := newSet()
		if _, err := Run(context.Background(), set, &fakeTranslator{fail: map[string]bool{"zh": true}}, Options{KeepFailedPending: true}); err != nil {
			t.Fatal(err)
		}
		if rec := set["common"]["k"]; !rec.NeedsTranslation || rec.AR == "" || rec.FR == "" {
			t.Fatalf("unexpected record: %#v", rec)
		}
	})

	t.Run("retry fills only failed fields", func(t *testing.T) {
		set := newSet()
		if _, err := Run(context.Background(), set, &fakeTranslator{fail: map[string]bool{"fr": true}}, Options{}); err != nil {
			t.Fatal(err)
		}

		// Without --retry-failed the record is complete.
		tr := &fakeTranslator{}
		if _, err := Run(context.Background(), set, tr, Options{}); err != nil {
			t.Fatal(err)
		}
		if len(tr.calls) != 0 {
			t.Fatalf("unexpected calls: %v", tr.calls)
		}

		res, err := Run(context.Background(), set, tr, Options{RetryFailed: true})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(tr.calls, []string{"en>fr:Save changes"}) {
			t.Fatalf("calls = %v", tr.calls)
		}
		rec := set["common"]["k"]
		if rec.FR != "fr:Save changes" || rec.HasFailures() || rec.NeedsTranslation || res.Processed != 1 {
			t.Fatalf("unexpected record: %#v", rec)
		}
	})
}

func TestRunCheckpointsEveryRecord(t *testing.T) {
	set := pendingSet(3)
	var seen []string
	_, err := Run(context.Background(), set, &fakeTranslator{}, Options{
		OnRecord: func(category, key string, rec *records.Record) error {
			if rec.NeedsTranslation {
				t.Errorf("%s saved before completion", key)
			}
			seen = append(seen, key)
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(seen, []string{"key_000", "key_001", "key_002"}) {
		t.Fatalf("checkpoints = %v", seen)
	}

	wantErr := errors.New("disk full")
	set = pendingSet(3)
	_, err = Run(context.Background(), set, &fakeTranslator{}, Options{
		OnRecord: func(string, string, *records.Record) error { return wantErr },
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestRunCancellationKeepsRecordInFlightPending(t *testing.T) {
	set := pendingSet(3)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := &fakeTranslator{}
	tr.onCall = func() {
		if len(tr.calls) == 4 { // second call of the second record
			cancel()
		}
	}

	res, err := Run(ctx, set, tr, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res.Processed != 1 {
		t.Fatalf("processed = %d", res.Processed)
	}
	if set["common"]["key_000"].NeedsTranslation {
		t.Error("first record should be complete")
	}
	if rec := set["common"]["key_001"]; !rec.NeedsTranslation || rec.HasFailures() {
		t.Errorf("record in flight should stay pending without failures: %#v", rec)
	}
}

func TestRunDryRun(t *testing.T) {
	set := records.Set{
		"common": records.Category{
			"a": {EN: "First text", NeedsTranslation: true},
			"b": {AR: "نص", FR: "Texte", NeedsTranslation: true},
			"c": {EN: "Third text", NeedsTranslation: true},
		},
	}
	tr := &fakeTranslator{}
	res, err := Run(context.Background(), set, tr, Options{DryRun: true, Cap: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.calls) != 0 {
		t.Fatalf("dry run made calls: %v", tr.calls)
	}
	if res.Processed != 2 || res.Calls != 5 || !res.CapReached {
		t.Fatalf("unexpected result: %#v", res)
	}
	if st := set.Stats(); st.Remaining != 3 {
		t.Fatalf("dry run changed records: %+v", st)
	}
}
