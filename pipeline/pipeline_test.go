package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/xlfsync/config"
	"github.com/minios-linux/xlfsync/convert"
	"github.com/minios-linux/xlfsync/localefile"
	"github.com/minios-linux/xlfsync/logging"
	"github.com/minios-linux/xlfsync/propagate"
	"github.com/minios-linux/xlfsync/report"
)

type unitDef struct {
	id, source string
}

func xlf(units ...unitDef) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<xliff version="2.0" xmlns="urn:oasis:names:tc:xliff:document:2.0" srcLang="en-US">
  <file id="ngi18n" original="ng.template">
`)
	for _, u := range units {
		b.WriteString(`    <unit id="` + u.id + `"><segment><source>` + u.source + `</source></segment></unit>` + "\n")
	}
	b.WriteString("  </file>\n</xliff>\n")
	return b.String()
}

func newConfig(t *testing.T, locales ...string) (*config.Config, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.SetRoot(root)
	cfg.Dir = "locale"
	cfg.Locales = locales
	_, err := cfg.Validate()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(cfg.AbsDir(), 0755))
	return cfg, cfg.AbsDir()
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func read(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func values(t *testing.T, dir, name string) map[string]string {
	t.Helper()
	m, err := localefile.ParseFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return m.Values()
}

func TestScenarioPlaceholderExtraction(t *testing.T) {
	cfg, dir := newConfig(t, "en-US")
	write(t, dir, "en-US.xlf", `<xliff version="2.0"><file id="ngi18n"><unit id="GREETING"><segment>
		<source>Hello</source><target><ph id="0" equiv="ICU"/>Hello</target></segment></unit></file></xliff>`)

	_, err := Run(cfg, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, "{\n\t\"GREETING\": \"{$ICU}Hello\"\n}", read(t, dir, "en-US.json"))
}

func TestScenarioFirstRun(t *testing.T) {
	cfg, dir := newConfig(t, "en-US", "es-MX", "de-CH")
	write(t, dir, "en-US.xlf", xlf(unitDef{"A", "One"}, unitDef{"B", "Two"}))

	sum, err := Run(cfg, logging.Discard())
	require.NoError(t, err)

	rec := sum.Reconcile
	require.NotNil(t, rec.Baseline)
	assert.True(t, rec.NeedsTranslation)
	assert.Equal(t, values(t, dir, "en-US.json"), rec.NeedsUpdate.Values())
	assert.Equal(t, 0, rec.DoesntNeedUpdate.Len())

	english := read(t, dir, "en-US.json")
	assert.Equal(t, english, read(t, dir, "es-MX.json"))
	assert.Equal(t, english, read(t, dir, "de-CH.json"))
	assert.Equal(t, 2, sum.Propagate.Count(propagate.ActionSeeded))
	assert.Equal(t, convert.BackupNoPrior, sum.Convert.Source("en-US").Backup)
}

func TestScenarioChangedKey(t *testing.T) {
	cfg, dir := newConfig(t, "en-US", "de-CH")
	write(t, dir, "en-US.json", `{"A": "1", "B": "2"}`)
	write(t, dir, "de-CH.json", `{"A": "eins", "B": "zwei"}`)
	write(t, dir, "en-US.xlf", xlf(unitDef{"A", "1"}, unitDef{"B", "3"}))

	sum, err := Run(cfg, logging.Discard())
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"B": "3"}, sum.Reconcile.NeedsUpdate.Values())
	assert.Equal(t, map[string]string{"A": "1"}, sum.Reconcile.DoesntNeedUpdate.Values())
	assert.Equal(t, map[string]string{"A": "eins"}, values(t, dir, "de-CH.json"))
	assert.Equal(t, `{"A": "1", "B": "2"}`, read(t, dir, "en-US(old).json"))
}

func TestIdempotentSecondRun(t *testing.T) {
	cfg, dir := newConfig(t, "en-US", "pl-PL")
	write(t, dir, "en-US.xlf", xlf(unitDef{"A", "One"}, unitDef{"B", "Two"}, unitDef{"C", "Three"}))

	_, err := Run(cfg, logging.Discard())
	require.NoError(t, err)
	write(t, dir, "pl-PL.json", `{"A": "Jeden", "B": "Dwa", "C": "Trzy"}`)

	sum, err := Run(cfg, logging.Discard())
	require.NoError(t, err)

	assert.Equal(t, 0, sum.Reconcile.NeedsUpdate.Len())
	assert.False(t, sum.Reconcile.NeedsTranslation)
	assert.Equal(t, values(t, dir, "en-US.json"), sum.Reconcile.DoesntNeedUpdate.Values())
	assert.Equal(t, map[string]string{"A": "Jeden", "B": "Dwa", "C": "Trzy"}, values(t, dir, "pl-PL.json"))
}

func TestFailingLocaleDoesNotAbortRun(t *testing.T) {
	cfg, dir := newConfig(t, "en-US", "de-CH")
	write(t, dir, "en-US.xlf", xlf(unitDef{"A", "One"}))
	write(t, dir, "de-CH.xlf", `<xliff version="2.0"><file id="ngi18n"><unit id="A">`)

	sum, err := Run(cfg, logging.Discard())
	require.Error(t, err)

	var fe *convert.FileError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Path, "de-CH.xlf")

	require.NotNil(t, sum.Propagate)
	assert.Equal(t, read(t, dir, "en-US.json"), read(t, dir, "de-CH.json"))
}

func TestMissingSourceFileAborts(t *testing.T) {
	cfg, dir := newConfig(t, "en-US", "de-CH")
	write(t, dir, "de-CH.xlf", xlf(unitDef{"A", "Eins"}))

	sum, err := Run(cfg, logging.Discard())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSourceFile)
	assert.Nil(t, sum.Reconcile)
	assert.Nil(t, sum.Propagate)
}

func TestBrokenSourceFileAborts(t *testing.T) {
	cfg, dir := newConfig(t, "en-US", "de-CH")
	write(t, dir, "en-US.json", `{"A": "1"}`)
	write(t, dir, "en-US.xlf", `<xliff version="2.0"><file id="wrong"></file></xliff>`)

	sum, err := Run(cfg, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconciliation aborted")
	assert.Nil(t, sum.Reconcile)
	assert.Equal(t, `{"A": "1"}`, read(t, dir, "en-US.json"))
	assert.NoFileExists(t, filepath.Join(dir, "de-CH.json"))
}

func TestMissingDirectory(t *testing.T) {
	cfg, dir := newConfig(t, "en-US")
	require.NoError(t, os.RemoveAll(dir))

	sum, err := Run(cfg, logging.Discard())
	assert.Nil(t, sum)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunWritesReport(t *testing.T) {
	cfg, dir := newConfig(t, "en-US", "de-CH")
	cfg.Report = "pending.yaml"
	write(t, dir, "en-US.xlf", xlf(unitDef{"A", "One"}))

	sum, err := Run(cfg, logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, sum.Report)

	r, err := report.Load(cfg.ReportPath())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "One"}, r.Pending)
	require.Len(t, r.Locales, 1)
	assert.Equal(t, "seeded", r.Locales[0].Action)
}

func TestLocalesDetectedWhenNotConfigured(t *testing.T) {
	cfg, dir := newConfig(t)
	write(t, dir, "en-US.xlf", xlf(unitDef{"A", "One"}))
	write(t, dir, "fr-FR.json", `{"A": "Un"}`)

	_, err := Run(cfg, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{}, values(t, dir, "fr-FR.json"))

	// Unchanged now: the French translation written by hand is kept.
	write(t, dir, "fr-FR.json", `{"A": "Un"}`)
	_, err = Run(cfg, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "Un"}, values(t, dir, "fr-FR.json"))
}

func TestUnrelatedJSONSurvivesDetection(t *testing.T) {
	cfg, dir := newConfig(t)
	write(t, dir, "en-US.xlf", xlf(unitDef{"A", "one"}))
	write(t, dir, "de-CH.json", `{"A": "eins"}`)
	manifest := `{"theme": {"color": "red"}}`
	write(t, dir, "manifest.json", manifest)

	sum, err := Run(cfg, logging.Discard())
	require.NoError(t, err)

	assert.Equal(t, []string{"de-CH", "en-US"}, sum.Locales)
	assert.Equal(t, []string{"manifest.json"}, sum.Skipped)
	assert.Equal(t, manifest, read(t, dir, "manifest.json"))
}

func TestConfiguredUnknownLocaleIsPropagated(t *testing.T) {
	cfg, dir := newConfig(t, "en-US", "howdy")
	write(t, dir, "en-US.xlf", xlf(unitDef{"A", "one"}))

	sum, err := Run(cfg, logging.Discard())
	require.NoError(t, err)
	assert.Empty(t, sum.Skipped)
	assert.Equal(t, read(t, dir, "en-US.json"), read(t, dir, "howdy.json"))
}

func TestPlan(t *testing.T) {
	cfg, dir := newConfig(t, "en-US")
	write(t, dir, "en-US.xlf", xlf(unitDef{"A", "1"}, unitDef{"B", "new"}))

	r, err := Plan(cfg)
	require.NoError(t, err)
	assert.NotNil(t, r.Baseline)
	assert.Equal(t, 2, r.NeedsUpdate.Len())

	write(t, dir, "en-US.json", `{"A": "1", "OLD": "x"}`)
	r, err = Plan(cfg)
	require.NoError(t, err)
	assert.Nil(t, r.Baseline)
	assert.Equal(t, []string{"B"}, r.NeedsUpdate.Keys())
	assert.Equal(t, []string{"OLD"}, r.Removed)

	assert.NoFileExists(t, filepath.Join(dir, "en-US(old).json"))
	assert.Equal(t, `{"A": "1", "OLD": "x"}`, read(t, dir, "en-US.json"))
}
