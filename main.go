// xlfsync: converts Angular XLIFF exports into JSON locale files and keeps
// existing translations in step with the English source.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minios-linux/xlfsync/config"
	"github.com/minios-linux/xlfsync/i18n"
	"github.com/minios-linux/xlfsync/langmeta"
	"github.com/minios-linux/xlfsync/localefile"
	"github.com/minios-linux/xlfsync/logging"
	"github.com/minios-linux/xlfsync/pipeline"
	"github.com/minios-linux/xlfsync/propagate"
	"github.com/minios-linux/xlfsync/reconcile"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// errPending is returned by `sync --check` when keys still need translating.
var errPending = errors.New("keys pending translation")

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir    string
	configPath string
	logLevel   string
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xlfsync",
		Short: "Sync XLIFF exports into JSON locale files",
		Long: `xlfsync: converts the XLIFF files produced by "ng extract-i18n" into
flat JSON locale files and keeps translations in step with the source locale.

A sync converts every *.xlf file in the locale directory, compares the new
source-locale file against the copy saved by the previous run, and rewrites
every other locale file so it keeps only translations whose English text did
not change. Changed and new keys are reported for translation.

Commands:
  sync        Convert, reconcile and propagate (the full run)
  plan        Show what the next sync would mark for translation
  status      Show translation coverage per locale
  version     Show version information

Configuration is read from .xlfsync.yaml in the project root, then
XLFSYNC_* environment variables, then command-line flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default <root>/"+config.FileName+")")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newSyncCmd(),
		newPlanCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration: defaults, the project file, the
// environment, then the flags the user set.
func loadConfig(flags *config.Flags) (*config.Config, error) {
	cfg, err := config.Load(rootDir, configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if flags != nil {
		flags.Apply(cfg)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		logWarning("%s", w)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "xlfsync version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// sync (convert → reconcile → propagate)
// ---------------------------------------------------------------------------

func newSyncCmd() *cobra.Command {
	var check bool
	var flags *config.Flags

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Convert XLIFF files and propagate unchanged translations",
		Long: `Convert every exchange file in the locale directory to JSON, reconcile
the source locale against the previous run, and rewrite the other locale
files so that only translations of unchanged keys survive.

The previous source-locale file is kept as "<source>(old).json" and is the
baseline for the next run. Without it every key is treated as new.

Examples:
  xlfsync sync
  xlfsync sync --dir src/assets/i18n --locales en-US,de-CH,pl-PL
  xlfsync sync --report i18n-pending.yaml --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := logging.Setup(cfg.LogLevel, os.Stderr)

			sum, runErr := pipeline.Run(cfg, logger)
			printSyncSummary(cfg, sum)
			if runErr != nil {
				return runErr
			}
			if check && sum.Reconcile.NeedsTranslation {
				return errPending
			}
			return nil
		},
	}

	flags = config.RegisterFlags(cmd.Flags())
	cmd.Flags().BoolVar(&check, "check", false, "Exit with an error when keys need translation (for CI)")

	return cmd
}

func printSyncSummary(cfg *config.Config, sum *pipeline.Summary) {
	if sum == nil || sum.Convert == nil {
		return
	}

	converted := len(sum.Convert.Files) - len(sum.Convert.Failed())
	logInfo(i18n.N("Converted %d file", "Converted %d files", converted), converted)

	rec := sum.Reconcile
	if rec == nil {
		return
	}
	if rec.NeedsTranslation {
		n := rec.NeedsUpdate.Len()
		logWarning(i18n.N("%d key needs translation", "%d keys need translation", n), n)
		for _, k := range rec.NeedsUpdate.Keys() {
			v, _ := rec.NeedsUpdate.Get(k)
			fmt.Fprintf(os.Stderr, "  %s: %s\n", k, v)
		}
	} else {
		logSuccess("%s", i18n.T("All translations are up to date"))
	}
	if len(rec.Removed) > 0 {
		logInfo(i18n.N("%d key removed from %s", "%d keys removed from %s", len(rec.Removed)), len(rec.Removed), cfg.SourceLocale)
	}

	if sum.Propagate == nil {
		return
	}
	updated := sum.Propagate.Count(propagate.ActionMerged)
	seeded := sum.Propagate.Count(propagate.ActionSeeded)
	if updated > 0 {
		logSuccess(i18n.N("Updated %d locale file", "Updated %d locale files", updated), updated)
	}
	if seeded > 0 {
		logInfo(i18n.N("Created %d locale file from %s", "Created %d locale files from %s", seeded), seeded, cfg.SourceLocale)
	}
	if sum.Report != nil {
		logInfo(i18n.T("Report written to %s"), cfg.ReportPath())
	}
}

// ---------------------------------------------------------------------------
// plan (read-only reconciliation)
// ---------------------------------------------------------------------------

func newPlanCmd() *cobra.Command {
	var flags *config.Flags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show which keys the next sync would mark for translation",
		Long: `Extract the source-locale exchange file in memory and compare it with
the current source-locale JSON file. Nothing is written.

Keys needing translation are printed to stdout as "key<TAB>text", one per
line, so the output can be piped into other tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logging.SetLevel(cfg.LogLevel)

			rec, err := pipeline.Plan(cfg)
			if err != nil {
				return err
			}
			printPlan(cmd, cfg, rec)
			return nil
		},
	}

	flags = config.RegisterFlags(cmd.Flags())

	return cmd
}

func printPlan(cmd *cobra.Command, cfg *config.Config, rec *reconcile.Result) {
	if rec.Baseline != nil {
		logInfo(i18n.T("No current %s file, every key is new"), cfg.SourceLocale+localefile.Ext)
	}

	out := cmd.OutOrStdout()
	for _, k := range rec.NeedsUpdate.Keys() {
		v, _ := rec.NeedsUpdate.Get(k)
		fmt.Fprintf(out, "%s\t%s\n", k, v)
	}

	if rec.NeedsTranslation {
		n := rec.NeedsUpdate.Len()
		logWarning(i18n.N("%d key needs translation", "%d keys need translation", n), n)
	} else {
		logSuccess("%s", i18n.T("All translations are up to date"))
	}
	if len(rec.Removed) > 0 {
		logInfo(i18n.N("%d key removed from %s", "%d keys removed from %s", len(rec.Removed)), len(rec.Removed), cfg.SourceLocale)
		for _, k := range rec.Removed {
			fmt.Fprintf(os.Stderr, "  - %s\n", k)
		}
	}
}

// ---------------------------------------------------------------------------
// status (read-only: translation coverage)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var flags *config.Flags

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show project info and translation coverage",
		Long: `Show the resolved configuration and, for every locale, how many source
keys are translated, still carry the English text, or are missing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			runStatus(cfg)
			return nil
		},
	}

	flags = config.RegisterFlags(cmd.Flags())

	return cmd
}

func runStatus(cfg *config.Config) {
	locales, skipped := cfg.ResolveLocales()

	fmt.Fprintf(os.Stderr, "%sProject%s\n", colorBlue, colorReset)
	fmt.Fprintf(os.Stderr, "  Locale dir: %s\n", cfg.AbsDir())
	fmt.Fprintf(os.Stderr, "  Source:     %s\n", cfg.SourceLocale)
	fmt.Fprintf(os.Stderr, "  Resource:   %s\n", cfg.Resource)
	fmt.Fprintf(os.Stderr, "  Locales:    %s\n", strings.Join(locales, ", "))
	if len(skipped) > 0 {
		fmt.Fprintf(os.Stderr, "  Ignored:    %s\n", strings.Join(skipped, ", "))
	}
	if fileExists(cfg.BackupPath()) {
		fmt.Fprintf(os.Stderr, "  Baseline:   %s\n", cfg.BackupFile)
	} else {
		fmt.Fprintf(os.Stderr, "  Baseline:   %s\n", i18n.T("none (next sync treats every key as new)"))
	}
	fmt.Fprintln(os.Stderr)

	source, err := localefile.ParseFile(cfg.SourcePath())
	if err != nil {
		logInfo("%s", i18n.T("No source locale file yet. Run 'xlfsync sync' first."))
		return
	}
	if source.Len() == 0 {
		logInfo(i18n.T("No keys in %s"), cfg.SourcePath())
		return
	}

	others := otherLocales(locales, cfg.SourceLocale)
	width := langColumnWidth(others)

	fmt.Fprintf(os.Stderr, "%sTranslation Coverage%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "%-*s %-22s %-8s %-8s %s\n", width, "Locale", "Progress", "Seeded", "Missing", "Name")

	for _, locale := range others {
		meta := langmeta.Resolve(locale)
		label := locale
		if meta.Flag != "" {
			label = meta.Flag + " " + locale
		}

		target, err := localefile.ParseFile(cfg.LocalePath(locale))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%-*s %-22s %-8s %-8s %s\n", width, label, "missing", "-", "-", meta.EnglishName)
			continue
		}

		cov := localefile.Compare(source, target)
		fmt.Fprintf(os.Stderr, "%-*s %s %-8d %-8d %s\n", width, label,
			progressBar(cov.Percent(), 15), cov.SameAsSource, len(cov.Missing), meta.EnglishName)
	}

	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "Total keys: %d\n\n", source.Len())
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// otherLocales returns locales without source, preserving order.
func otherLocales(locales []string, source string) []string {
	var out []string
	for _, l := range locales {
		if l != source {
			out = append(out, l)
		}
	}
	return out
}

// langColumnWidth fits the widest locale label plus its flag.
func langColumnWidth(locales []string) int {
	width := len("Locale")
	for _, l := range locales {
		// Flags are two runes that render as one wide glyph.
		if n := len(l) + 3; n > width {
			width = n
		}
	}
	return width
}

// progressBar renders percent as a coloured bar followed by the number.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := percent * width / 100
	color := colorYellow
	switch {
	case percent < 30:
		color = colorRed
	case percent == 100:
		color = colorGreen
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return color + bar + colorReset + fmt.Sprintf(" %3d%%", percent)
}
