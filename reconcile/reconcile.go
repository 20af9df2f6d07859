// Package reconcile decides which source-locale keys need translating by
// comparing freshly extracted English strings against the previous run.
package reconcile

import (
	"fmt"

	"github.com/minios-linux/xlfsync/localefile"
)

// MissingBackupError reports that the previous source file could not be
// used as a baseline. It is not a failure: every key is then treated as new.
type MissingBackupError struct {
	Path string
	Err  error
}

func (e *MissingBackupError) Error() string {
	return fmt.Sprintf("no usable baseline %s: %v", e.Path, e.Err)
}

func (e *MissingBackupError) Unwrap() error { return e.Err }

// Result partitions the current source keys.
type Result struct {
	// Current is the freshly extracted source-locale map.
	Current *localefile.Map
	// NeedsUpdate holds new keys and keys whose text changed.
	NeedsUpdate *localefile.Map
	// DoesntNeedUpdate holds keys whose text is unchanged, with that text.
	DoesntNeedUpdate *localefile.Map
	// Removed lists baseline keys that no longer exist, in baseline order.
	Removed []string
	// NeedsTranslation is true when NeedsUpdate is non-empty or no baseline
	// was available.
	NeedsTranslation bool
	// Baseline is non-nil when the previous file was missing or unreadable.
	Baseline *MissingBackupError
}

// Classify compares current against baseline. A nil baseline marks every
// key as needing an update.
func Classify(current, baseline *localefile.Map) *Result {
	r := &Result{
		Current:          current,
		NeedsUpdate:      localefile.New(),
		DoesntNeedUpdate: localefile.New(),
	}

	if baseline == nil {
		for _, k := range current.Keys() {
			v, _ := current.Get(k)
			r.NeedsUpdate.Set(k, v)
		}
		r.NeedsTranslation = true
		return r
	}

	for _, k := range current.Keys() {
		v, _ := current.Get(k)
		if old, ok := baseline.Get(k); ok && old == v {
			r.DoesntNeedUpdate.Set(k, v)
			continue
		}
		r.NeedsUpdate.Set(k, v)
		r.NeedsTranslation = true
	}

	for _, k := range baseline.Keys() {
		if !current.Has(k) {
			r.Removed = append(r.Removed, k)
		}
	}

	return r
}

// Reconcile reads the current source file and the backup and classifies
// them. A missing or unparsable backup is recorded in Result.Baseline; only
// an unreadable current file is an error.
func Reconcile(currentPath, backupPath string) (*Result, error) {
	current, err := localefile.ParseFile(currentPath)
	if err != nil {
		return nil, err
	}

	baseline, err := localefile.ParseFile(backupPath)
	if err != nil {
		r := Classify(current, nil)
		r.Baseline = &MissingBackupError{Path: backupPath, Err: err}
		return r, nil
	}

	return Classify(current, baseline), nil
}
