// Package propagate carries unchanged translations forward into every
// non-source locale file after a reconciliation.
//
//   - Keys whose English text is unchanged keep their previous translation.
//   - New and changed keys are left out, pending a translator.
//   - A locale without a usable previous file is seeded with a verbatim copy
//     of the source-locale file.
package propagate

import (
	"errors"
	"fmt"

	"github.com/minios-linux/xlfsync/localefile"
	"github.com/minios-linux/xlfsync/reconcile"
)

// MissingLocaleFileError reports that a locale had no usable previous file.
// It is not a failure: the locale is seeded from the source file instead.
type MissingLocaleFileError struct {
	Locale string
	Path   string
	Err    error
}

func (e *MissingLocaleFileError) Error() string {
	return fmt.Sprintf("no usable %s file %s: %v", e.Locale, e.Path, e.Err)
}

func (e *MissingLocaleFileError) Unwrap() error { return e.Err }

// Action is what happened to one locale file.
type Action int

const (
	// ActionNone: nothing was written (see LocaleResult.Err).
	ActionNone Action = iota
	// ActionMerged: the previous file was rewritten with carried-forward keys.
	ActionMerged
	// ActionSeeded: the source file was copied over.
	ActionSeeded
)

func (a Action) String() string {
	switch a {
	case ActionMerged:
		return "merged"
	case ActionSeeded:
		return "seeded"
	}
	return "none"
}

// Options configures propagation.
type Options struct {
	// Dir holds the <locale>.json files.
	Dir string
	// SourceLocale is skipped; its file is the seed for the others.
	SourceLocale string
	// Locales is the configured locale list (may include SourceLocale).
	Locales []string
	// Indent is the JSON indentation (default tab).
	Indent string
}

// LocaleResult is the outcome for one locale.
type LocaleResult struct {
	Locale string
	Path   string
	Action Action
	// Kept counts carried-forward keys (ActionMerged).
	Kept int
	// Dropped counts previous keys not carried forward (ActionMerged).
	Dropped int
	// Seed is set when the locale was seeded, explaining why.
	Seed *MissingLocaleFileError
	// Err is an IO failure writing this locale.
	Err error
}

// Result collects per-locale outcomes in configured order.
type Result struct {
	Locales []LocaleResult
}

// Err joins the per-locale errors.
func (r *Result) Err() error {
	var errs []error
	for _, l := range r.Locales {
		if l.Err != nil {
			errs = append(errs, l.Err)
		}
	}
	return errors.Join(errs...)
}

// Count returns how many locales ended with action a.
func (r *Result) Count(a Action) int {
	n := 0
	for _, l := range r.Locales {
		if l.Action == a {
			n++
		}
	}
	return n
}

// Run updates every configured locale other than the source. A failure for
// one locale is recorded and the others still run.
func Run(opts Options, rec *reconcile.Result) *Result {
	if opts.Indent == "" {
		opts.Indent = localefile.DefaultIndent
	}
	sourcePath := localefile.Path(opts.Dir, opts.SourceLocale)

	res := &Result{}
	seen := make(map[string]bool)
	for _, locale := range opts.Locales {
		if locale == opts.SourceLocale || seen[locale] {
			continue
		}
		seen[locale] = true
		res.Locales = append(res.Locales, propagateLocale(opts, locale, sourcePath, rec))
	}
	return res
}

func propagateLocale(opts Options, locale, sourcePath string, rec *reconcile.Result) LocaleResult {
	path := localefile.Path(opts.Dir, locale)
	lr := LocaleResult{Locale: locale, Path: path}

	prior, err := localefile.ParseFile(path)
	if err != nil {
		lr.Seed = &MissingLocaleFileError{Locale: locale, Path: path, Err: err}
		if err := localefile.CopyFile(sourcePath, path); err != nil {
			lr.Err = fmt.Errorf("seeding %s: %w", locale, err)
			return lr
		}
		lr.Action = ActionSeeded
		return lr
	}

	merged := Carry(prior, rec.DoesntNeedUpdate)
	lr.Kept = merged.Len()
	lr.Dropped = prior.Len() - merged.Len()

	if err := merged.WriteFile(path, opts.Indent); err != nil {
		lr.Err = fmt.Errorf("updating %s: %w", locale, err)
		return lr
	}
	lr.Action = ActionMerged
	return lr
}

// Carry returns the prior translations of the unchanged keys, in source
// order. Unchanged keys the prior file never had are omitted.
func Carry(prior, unchanged *localefile.Map) *localefile.Map {
	out := localefile.New()
	for _, k := range unchanged.Keys() {
		if v, ok := prior.Get(k); ok {
			out.Set(k, v)
		}
	}
	return out
}
