// Package convert turns the XLIFF files of a locale directory into flat JSON
// locale files.
//
// Every <name>.xlf is converted independently into <name>.json next to it.
// Before the source-locale JSON is replaced, the previous one is moved to the
// backup path so that the reconciler can diff old and new English strings.
package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/minios-linux/xlfsync/localefile"
	"github.com/minios-linux/xlfsync/xliff"
)

// DefaultExtension is the file extension of exchange-format files.
const DefaultExtension = ".xlf"

// Stage names the step of a file conversion that failed.
type Stage string

const (
	StageRead    Stage = "read"
	StageExtract Stage = "extract"
	StageBackup  Stage = "backup"
	StageWrite   Stage = "write"
)

// FileError is a failure converting one file.
type FileError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// BackupOutcome tells what happened to the previous source-locale file.
type BackupOutcome int

const (
	// BackupSkipped: the file is not the source locale, or conversion
	// failed before the backup step.
	BackupSkipped BackupOutcome = iota
	// BackupRenamed: the previous file was moved to the backup path.
	BackupRenamed
	// BackupNoPrior: there was no previous file (first run).
	BackupNoPrior
)

func (b BackupOutcome) String() string {
	switch b {
	case BackupRenamed:
		return "renamed"
	case BackupNoPrior:
		return "no prior file"
	}
	return "skipped"
}

// Options configures a conversion run.
type Options struct {
	// Dir holds the .xlf inputs and receives the .json outputs.
	Dir string
	// Extension selects input files (default ".xlf").
	Extension string
	// Resource is the <file> resource to extract, e.g. "ngi18n".
	Resource string
	// SourceLocale is the locale whose previous JSON is backed up.
	SourceLocale string
	// BackupPath is where the previous source JSON is moved.
	BackupPath string
	// Indent is the JSON indentation (default tab).
	Indent string
	// Workers bounds concurrent conversions; <= 0 means one per file.
	Workers int
}

func (o *Options) setDefaults() {
	if o.Extension == "" {
		o.Extension = DefaultExtension
	}
	if o.Indent == "" {
		o.Indent = localefile.DefaultIndent
	}
}

// FileResult is the outcome of converting one file.
type FileResult struct {
	// Name is the input file name, e.g. "en-US.xlf".
	Name string
	// Locale is the input name without extension, e.g. "en-US".
	Locale string
	// Output is the path of the written JSON file.
	Output string
	// Keys is the number of units written.
	Keys int
	// Backup is set for the source-locale file only.
	Backup BackupOutcome
	// Err is nil on success, otherwise a *FileError.
	Err error
}

// Result collects the per-file results of a run, sorted by file name.
type Result struct {
	Files []FileResult
}

// Source returns the result for the source-locale file, or nil when the
// directory had no such file.
func (r *Result) Source(locale string) *FileResult {
	for i := range r.Files {
		if r.Files[i].Locale == locale {
			return &r.Files[i]
		}
	}
	return nil
}

// Failed returns the results that carry an error.
func (r *Result) Failed() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Err joins all per-file errors, nil when every file converted.
func (r *Result) Err() error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errors.Join(errs...)
}

// ListDir returns the names of the regular files in dir, sorted.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Select returns the names carrying the exchange-format extension.
func Select(names []string, ext string) []string {
	var out []string
	for _, n := range names {
		if strings.HasSuffix(n, ext) && len(n) > len(ext) {
			out = append(out, n)
		}
	}
	return out
}

// Run converts every exchange-format file among names. Files are converted
// concurrently; a failure is recorded on that file's result and does not
// stop the others.
func Run(opts Options, names []string) *Result {
	opts.setDefaults()

	inputs := Select(names, opts.Extension)
	sort.Strings(inputs)
	res := &Result{Files: make([]FileResult, len(inputs))}

	var g errgroup.Group
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, name := range inputs {
		g.Go(func() error {
			res.Files[i] = convertFile(opts, name)
			return nil
		})
	}
	_ = g.Wait()

	return res
}

// convertFile extracts one file and writes its JSON. For the source locale
// the previous JSON is backed up between extraction and write, so a failed
// extraction leaves the previous file in place.
func convertFile(opts Options, name string) FileResult {
	locale := strings.TrimSuffix(name, opts.Extension)
	inPath := filepath.Join(opts.Dir, name)
	outPath := localefile.Path(opts.Dir, locale)
	fr := FileResult{Name: name, Locale: locale, Output: outPath}

	doc, err := xliff.ParseFile(inPath)
	if err != nil {
		stage := StageExtract
		var pe *xliff.ParseError
		if !errors.As(err, &pe) {
			stage = StageRead
		}
		fr.Err = &FileError{Stage: stage, Path: inPath, Err: err}
		return fr
	}

	m, err := xliff.Extract(doc, opts.Resource)
	if err != nil {
		fr.Err = &FileError{Stage: StageExtract, Path: inPath, Err: err}
		return fr
	}
	fr.Keys = m.Len()

	if locale == opts.SourceLocale && opts.BackupPath != "" {
		outcome, err := Backup(outPath, opts.BackupPath)
		fr.Backup = outcome
		if err != nil {
			fr.Err = &FileError{Stage: StageBackup, Path: outPath, Err: err}
			return fr
		}
	}

	if err := m.WriteFile(outPath, opts.Indent); err != nil {
		fr.Err = &FileError{Stage: StageWrite, Path: outPath, Err: err}
	}
	return fr
}

// Backup moves current to backup, replacing any older backup. A missing
// current file is the first run and not an error.
func Backup(current, backup string) (BackupOutcome, error) {
	info, err := os.Stat(current)
	if errors.Is(err, os.ErrNotExist) {
		return BackupNoPrior, nil
	}
	if err != nil {
		return BackupSkipped, err
	}
	if !info.Mode().IsRegular() {
		return BackupSkipped, fmt.Errorf("%s is not a regular file", current)
	}

	// os.Rename does not replace an existing file on every platform.
	if err := os.Remove(backup); err != nil && !errors.Is(err, os.ErrNotExist) {
		return BackupSkipped, err
	}
	if err := os.Rename(current, backup); err != nil {
		return BackupSkipped, err
	}
	return BackupRenamed, nil
}
