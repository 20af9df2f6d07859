// Package pipeline runs a full sync of a locale directory:
//
//	list directory → convert every XLIFF file → reconcile the source locale
//	against its backup → propagate unchanged translations to every locale
//
// Each stage starts only after the previous one has finished. File and
// locale failures are isolated; the run fails as a whole only when the
// source locale could not be converted, since nothing can be reconciled
// without it.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/minios-linux/xlfsync/config"
	"github.com/minios-linux/xlfsync/convert"
	"github.com/minios-linux/xlfsync/localefile"
	"github.com/minios-linux/xlfsync/propagate"
	"github.com/minios-linux/xlfsync/reconcile"
	"github.com/minios-linux/xlfsync/report"
	"github.com/minios-linux/xlfsync/xliff"
)

// ErrNoSourceFile is returned when the locale directory has no exchange
// file for the source locale.
var ErrNoSourceFile = errors.New("no exchange file for the source locale")

// Summary holds the results of every stage that ran.
type Summary struct {
	Convert   *convert.Result
	Reconcile *reconcile.Result
	Propagate *propagate.Result
	Report    *report.Report
	// Locales is the resolved locale list the propagation used.
	Locales []string
	// Skipped lists files detection ignored as not locale files.
	Skipped []string
}

// Run performs a sync as configured by cfg. cfg must have been validated.
// The returned Summary is non-nil whenever listing the directory succeeded,
// even if an error is returned.
func Run(cfg *config.Config, logger zerolog.Logger) (*Summary, error) {
	dir := cfg.AbsDir()
	logger = logger.With().Str("dir", dir).Logger()

	names, err := convert.ListDir(dir)
	if err != nil {
		return nil, err
	}

	sum := &Summary{}

	// Convert.
	sum.Convert = convert.Run(convert.Options{
		Dir:          dir,
		Extension:    cfg.Extension,
		Resource:     cfg.Resource,
		SourceLocale: cfg.SourceLocale,
		BackupPath:   cfg.BackupPath(),
		Indent:       cfg.Indent,
		Workers:      cfg.Workers,
	}, names)

	for _, f := range sum.Convert.Files {
		l := logger.With().Str("stage", "convert").Str("file", f.Name).Logger()
		if f.Err != nil {
			l.Error().Err(f.Err).Msg("conversion failed")
			continue
		}
		ev := l.Info().Int("keys", f.Keys)
		if f.Locale == cfg.SourceLocale {
			ev = ev.Stringer("backup", f.Backup)
		}
		ev.Msg("converted")
	}
	convertErr := sum.Convert.Err()

	src := sum.Convert.Source(cfg.SourceLocale)
	if src == nil {
		return sum, errors.Join(convertErr, fmt.Errorf("%w: expected %s", ErrNoSourceFile, cfg.ExchangePath(cfg.SourceLocale)))
	}
	if src.Err != nil {
		return sum, fmt.Errorf("source locale %s could not be converted, reconciliation aborted: %w", cfg.SourceLocale, convertErr)
	}

	// Reconcile.
	rec, err := reconcile.Reconcile(cfg.SourcePath(), cfg.BackupPath())
	if err != nil {
		return sum, errors.Join(convertErr, fmt.Errorf("reconcile: %w", err))
	}
	sum.Reconcile = rec

	rl := logger.With().Str("stage", "reconcile").Logger()
	if rec.Baseline != nil {
		rl.Info().Str("baseline", cfg.BackupFile).Msg("no previous source file, treating every key as new")
		rl.Debug().Err(rec.Baseline).Msg("baseline unavailable")
	}
	rl.Info().
		Int("needs_update", rec.NeedsUpdate.Len()).
		Int("unchanged", rec.DoesntNeedUpdate.Len()).
		Int("removed", len(rec.Removed)).
		Bool("needs_translation", rec.NeedsTranslation).
		Msg("reconciled")

	// Propagate.
	locales, skipped := cfg.ResolveLocales()
	sum.Locales, sum.Skipped = locales, skipped
	for _, name := range skipped {
		logger.Warn().Str("stage", "propagate").Str("file", name).Msg("not a locale file name, left untouched")
	}
	sum.Propagate = propagate.Run(propagate.Options{
		Dir:          dir,
		SourceLocale: cfg.SourceLocale,
		Locales:      sum.Locales,
		Indent:       cfg.Indent,
	}, rec)

	for _, l := range sum.Propagate.Locales {
		pl := logger.With().Str("stage", "propagate").Str("locale", l.Locale).Logger()
		switch {
		case l.Err != nil:
			pl.Error().Err(l.Err).Msg("propagation failed")
		case l.Action == propagate.ActionSeeded:
			pl.Info().Msg("seeded from source locale")
			pl.Debug().Err(l.Seed).Msg("seed reason")
		default:
			pl.Info().Int("kept", l.Kept).Int("dropped", l.Dropped).Msg("merged")
		}
	}

	errs := []error{convertErr, sum.Propagate.Err()}

	// Report.
	if path := cfg.ReportPath(); path != "" {
		sum.Report = report.Build(cfg.SourceLocale, rec, sum.Propagate)
		if err := sum.Report.Save(path); err != nil {
			errs = append(errs, err)
		} else {
			logger.Info().Str("stage", "report").Str("path", path).Msg(sum.Report.Summary())
		}
	}

	return sum, errors.Join(errs...)
}

// Plan extracts the source-locale exchange file in memory and classifies it
// against the current source JSON, without writing anything. It answers
// "what would the next sync mark for translation".
func Plan(cfg *config.Config) (*reconcile.Result, error) {
	current, err := xliff.ExtractFile(cfg.ExchangePath(cfg.SourceLocale), cfg.Resource)
	if err != nil {
		return nil, err
	}

	baseline, err := localefile.ParseFile(cfg.SourcePath())
	if err != nil {
		r := reconcile.Classify(current, nil)
		r.Baseline = &reconcile.MissingBackupError{Path: cfg.SourcePath(), Err: err}
		return r, nil
	}
	return reconcile.Classify(current, baseline), nil
}
