// Package report implements the run report: a YAML file listing the keys
// that still need a translator after a sync, and what happened to every
// locale file. It is written next to the project config when enabled and is
// meant to be handed to translators or checked in CI.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/xlfsync/langmeta"
	"github.com/minios-linux/xlfsync/propagate"
	"github.com/minios-linux/xlfsync/reconcile"
)

// Version is the report format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Report is the YAML document.
type Report struct {
	Version      int    `yaml:"version"`
	SourceLocale string `yaml:"source_locale"`
	// NeedsTranslation mirrors reconcile.Result.NeedsTranslation.
	NeedsTranslation bool `yaml:"needs_translation"`
	// Baseline explains a missing baseline; empty when the backup was used.
	Baseline string `yaml:"baseline,omitempty"`
	// Pending maps every new or changed key to its English text.
	Pending map[string]string `yaml:"pending"`
	// Unchanged counts the keys carried forward.
	Unchanged int `yaml:"unchanged"`
	// Removed lists keys dropped from the source since the last run.
	Removed []string `yaml:"removed,omitempty"`
	// Locales describes every non-source locale.
	Locales []Locale `yaml:"locales"`
}

// Locale is the per-locale part of the report.
type Locale struct {
	Locale  string `yaml:"locale"`
	Name    string `yaml:"name,omitempty"`
	Action  string `yaml:"action"`
	Kept    int    `yaml:"kept"`
	Dropped int    `yaml:"dropped"`
	Error   string `yaml:"error,omitempty"`
}

// ---------------------------------------------------------------------------
// Building
// ---------------------------------------------------------------------------

// Build assembles a report from a reconciliation and a propagation.
func Build(sourceLocale string, rec *reconcile.Result, prop *propagate.Result) *Report {
	r := &Report{
		Version:          Version,
		SourceLocale:     sourceLocale,
		NeedsTranslation: rec.NeedsTranslation,
		Pending:          rec.NeedsUpdate.Values(),
		Unchanged:        rec.DoesntNeedUpdate.Len(),
		Removed:          append([]string(nil), rec.Removed...),
	}
	if rec.Baseline != nil {
		r.Baseline = rec.Baseline.Error()
	}
	sort.Strings(r.Removed)

	if prop != nil {
		for _, l := range prop.Locales {
			entry := Locale{
				Locale:  l.Locale,
				Name:    langmeta.Resolve(l.Locale).EnglishName,
				Action:  l.Action.String(),
				Kept:    l.Kept,
				Dropped: l.Dropped,
			}
			if l.Err != nil {
				entry.Error = l.Err.Error()
			}
			r.Locales = append(r.Locales, entry)
		}
	}
	return r
}

// PendingKeys returns the pending keys sorted.
func (r *Report) PendingKeys() []string {
	keys := make([]string, 0, len(r.Pending))
	for k := range r.Pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Summary returns a one-line human-readable summary.
func (r *Report) Summary() string {
	if !r.NeedsTranslation {
		return fmt.Sprintf("%s up to date, %d keys unchanged", r.SourceLocale, r.Unchanged)
	}
	return fmt.Sprintf("%d keys pending translation, %d unchanged, %d removed", len(r.Pending), r.Unchanged, len(r.Removed))
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Save atomically replaces path with the report, so a reader never sees a
// half-written file.
func (r *Report) Save(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Load reads a report written by Save.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if r.Version != Version {
		return nil, fmt.Errorf("%s: unsupported report version %d", path, r.Version)
	}
	if r.Pending == nil {
		r.Pending = make(map[string]string)
	}
	return &r, nil
}
