package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/minios-linux/xlfsync/config"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		width   int
		want    string
	}{
		{
			name:    "clamps below zero",
			percent: -10,
			width:   4,
			want:    colorRed + "░░░░" + colorReset + "   0%",
		},
		{
			name:    "mid range uses yellow",
			percent: 50,
			width:   4,
			want:    colorYellow + "██░░" + colorReset + "  50%",
		},
		{
			name:    "clamps above hundred",
			percent: 120,
			width:   4,
			want:    colorGreen + "████" + colorReset + " 100%",
		},
	}

	for _, tc := range tests {
		if got := progressBar(tc.percent, tc.width); got != tc.want {
			t.Fatalf("%s: progressBar() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestOtherLocales(t *testing.T) {
	got := otherLocales([]string{"en-US", "de-CH", "en-US", "pl-PL"}, "en-US")
	want := []string{"de-CH", "pl-PL"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("otherLocales() = %v, want %v", got, want)
	}
	if got := otherLocales([]string{"en-US"}, "en-US"); len(got) != 0 {
		t.Fatalf("otherLocales(source only) = %v, want empty", got)
	}
}

func TestLangColumnWidth(t *testing.T) {
	if got := langColumnWidth(nil); got != len("Locale") {
		t.Fatalf("langColumnWidth(nil) = %d, want %d", got, len("Locale"))
	}
	if got := langColumnWidth([]string{"de", "zh-Hant-TW"}); got != len("zh-Hant-TW")+3 {
		t.Fatalf("langColumnWidth() = %d, want %d", got, len("zh-Hant-TW")+3)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "en-US.json")
	if err := os.WriteFile(file, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if !fileExists(file) {
		t.Fatalf("fileExists(%q) = false, want true", file)
	}
	if fileExists(dir) {
		t.Fatalf("fileExists(%q) = true for directory, want false", dir)
	}
	if fileExists(filepath.Join(dir, "missing.json")) {
		t.Fatal("fileExists(missing) = true, want false")
	}
}

const sourceXLF = `<?xml version="1.0" encoding="UTF-8"?>
<xliff version="2.0" xmlns="urn:oasis:names:tc:xliff:document:2.0" srcLang="en-US">
  <file id="ngi18n" original="ng.template">
    <unit id="A"><segment><source>One</source></segment></unit>
    <unit id="B"><segment><source>Two</source></segment></unit>
  </file>
</xliff>
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSyncCommand(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "locale")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "en-US.xlf"), []byte(sourceXLF), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "sync", "--root", root, "--dir", "locale", "--locales", "en-US,de-CH", "--log-level", "error", "--check")
	if !errors.Is(err, errPending) {
		t.Fatalf("first sync --check error = %v, want %v", err, errPending)
	}

	for _, name := range []string{"en-US.json", "de-CH.json"} {
		if !fileExists(filepath.Join(dir, name)) {
			t.Fatalf("%s not written", name)
		}
	}

	if _, err := execute(t, "sync", "--root", root, "--dir", "locale", "--locales", "en-US,de-CH", "--log-level", "error", "--check"); err != nil {
		t.Fatalf("second sync --check error = %v, want nil", err)
	}
	if !fileExists(filepath.Join(dir, "en-US(old).json")) {
		t.Fatal("backup not written")
	}
}

func TestPlanCommand(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "en-US.xlf"), []byte(sourceXLF), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "en-US.json"), []byte(`{"A": "One"}`), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "plan", "--root", root, "--dir", ".")
	if err != nil {
		t.Fatalf("plan error = %v", err)
	}
	if strings.TrimSpace(out) != "B\tTwo" {
		t.Fatalf("plan output = %q, want %q", out, "B\tTwo")
	}
	if fileExists(filepath.Join(root, "en-US(old).json")) {
		t.Fatal("plan must not write a backup")
	}
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	root := t.TempDir()
	cfgFile := filepath.Join(root, ".xlfsync.yaml")
	if err := os.WriteFile(cfgFile, []byte("dir: from-file\nsource_locale: en-GB\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("XLFSYNC_DIR", "from-env")
	rootDir, configPath, logLevel = root, "", ""

	fs := pflag.NewFlagSet("sync", pflag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	if err := fs.Parse([]string{"--source", "fr-FR"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Dir != "from-env" {
		t.Fatalf("Dir = %q, want env override", cfg.Dir)
	}
	if cfg.SourceLocale != "fr-FR" {
		t.Fatalf("SourceLocale = %q, want flag override", cfg.SourceLocale)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "xlfsync version "+version) {
		t.Fatalf("version output = %q", out)
	}
}
