// Package records implements the Record Set — the JSON file that holds every
// extracted UI string together with its per-language values and a completion
// flag. It is the only durable state shared between extract, translate,
// progress and split.
//
// File format:
//
//	{
//	  "home": {
//	    "welcome_to_the_site": {
//	      "ar": "",
//	      "en": "Welcome to the site",
//	      "fr": "",
//	      "zh": "",
//	      "source_file": "HomePage",
//	      "needs_translation": true
//	    }
//	  }
//	}
//
// Categories and keys are written in sorted order, so saving the same Set
// twice yields byte-identical files.
package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
)

// Languages is the fixed set of per-record language fields, in output order.
var Languages = []string{"ar", "en", "fr", "zh"}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Record is one translatable UI string.
type Record struct {
	AR               string `json:"ar"`
	EN               string `json:"en"`
	FR               string `json:"fr"`
	ZH               string `json:"zh"`
	SourceFile       string `json:"source_file"`
	NeedsTranslation bool   `json:"needs_translation"`
	// Failed lists languages whose last translation attempt failed.
	Failed []string `json:"failed,omitempty"`
}

// UnmarshalJSON decodes a record, treating a missing needs_translation as true.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		NeedsTranslation *bool `json:"needs_translation"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.NeedsTranslation = aux.NeedsTranslation == nil || *aux.NeedsTranslation
	return nil
}

// Get returns the value stored for lang, or "" for an unknown language.
func (r *Record) Get(lang string) string {
	switch lang {
	case "ar":
		return r.AR
	case "en":
		return r.EN
	case "fr":
		return r.FR
	case "zh":
		return r.ZH
	}
	return ""
}

// Set stores value for lang. Unknown languages are ignored.
func (r *Record) Set(lang, value string) {
	switch lang {
	case "ar":
		r.AR = value
	case "en":
		r.EN = value
	case "fr":
		r.FR = value
	case "zh":
		r.ZH = value
	}
}

// Source returns the source text and its language: Arabic when present,
// otherwise English. Both empty means the record has no source.
func (r *Record) Source() (text, lang string) {
	if r.AR != "" {
		return r.AR, "ar"
	}
	if r.EN != "" {
		return r.EN, "en"
	}
	return "", ""
}

// MarkFailed adds lang to the failed list if not already present.
func (r *Record) MarkFailed(lang string) {
	for _, l := range r.Failed {
		if l == lang {
			return
		}
	}
	r.Failed = append(r.Failed, lang)
	sort.Strings(r.Failed)
}

// ClearFailed removes lang from the failed list.
func (r *Record) ClearFailed(lang string) {
	out := r.Failed[:0]
	for _, l := range r.Failed {
		if l != lang {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		r.Failed = nil
		return
	}
	r.Failed = out
}

// HasFailures reports whether any language failed on the last attempt.
func (r *Record) HasFailures() bool {
	return len(r.Failed) > 0
}

// Category maps translation keys to records.
type Category map[string]*Record

// Keys returns the category's keys in sorted order.
func (c Category) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set maps category names to categories.
type Set map[string]Category

// Categories returns the category names in sorted order.
func (s Set) Categories() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Add inserts rec under category/key, creating the category if needed.
func (s Set) Add(category, key string, rec *Record) {
	if s[category] == nil {
		s[category] = make(Category)
	}
	s[category][key] = rec
}

// HasKey reports whether key is used in any category.
func (s Set) HasKey(key string) bool {
	for _, c := range s {
		if _, ok := c[key]; ok {
			return true
		}
	}
	return false
}

// Walk calls fn for every record in sorted category, then key order.
// Returning false from fn stops the walk.
func (s Set) Walk(fn func(category, key string, rec *Record) bool) {
	for _, name := range s.Categories() {
		cat := s[name]
		for _, key := range cat.Keys() {
			if !fn(name, key, cat[key]) {
				return
			}
		}
	}
}

// Len returns the total number of records.
func (s Set) Len() int {
	n := 0
	for _, c := range s {
		n += len(c)
	}
	return n
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads a Record Set from path.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes Record Set JSON.
func Parse(data []byte) (Set, error) {
	var s Set
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing record set: %w", err)
	}
	if s == nil {
		s = make(Set)
	}
	for name, c := range s {
		if c == nil {
			s[name] = make(Category)
			continue
		}
		for key, rec := range c {
			if rec == nil {
				delete(c, key)
			}
		}
	}
	return s, nil
}

// Marshal encodes the set as indented UTF-8 JSON without HTML escaping.
func (s Set) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("marshaling record set: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the set to path, replacing any previous content.
// The file is written to a temporary sibling first and renamed into place.
func (s Set) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats summarizes translation progress of a set or a category.
type Stats struct {
	Total     int
	Completed int
	Remaining int
	// Failed counts records with at least one failed language.
	Failed int
	// Arabic and English count records by populated source field.
	Arabic  int
	English int
}

// Percent returns the completed share in percent (0 for an empty set).
func (st Stats) Percent() float64 {
	if st.Total == 0 {
		return 0
	}
	return float64(st.Completed) / float64(st.Total) * 100
}

// RemainingRuns estimates how many translate runs of batchSize records are
// still needed. A non-positive batch size means a single unlimited run.
func (st Stats) RemainingRuns(batchSize int) int {
	if st.Remaining == 0 {
		return 0
	}
	if batchSize <= 0 {
		return 1
	}
	return int(math.Ceil(float64(st.Remaining) / float64(batchSize)))
}

func (st *Stats) add(rec *Record) {
	st.Total++
	if rec.NeedsTranslation {
		st.Remaining++
	} else {
		st.Completed++
	}
	if rec.HasFailures() {
		st.Failed++
	}
	if rec.AR != "" {
		st.Arabic++
	}
	if rec.EN != "" {
		st.English++
	}
}

// Stats returns progress counts over the whole set.
func (s Set) Stats() Stats {
	var st Stats
	for _, c := range s {
		for _, rec := range c {
			st.add(rec)
		}
	}
	return st
}

// CategoryStats returns progress counts per category.
func (s Set) CategoryStats() map[string]Stats {
	out := make(map[string]Stats, len(s))
	for name, c := range s {
		var st Stats
		for _, rec := range c {
			st.add(rec)
		}
		out[name] = st
	}
	return out
}
