// Package config implements .xlfsync.yaml configuration file support.
//
// The project file lives in the project root and describes where the locale
// directory is, which locale is the English source and which locales are
// maintained. Every field has a default, so the file is optional; values
// can be overridden by XLFSYNC_* environment variables and CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = ".xlfsync.yaml"

// Defaults matching an Angular project created with `ng extract-i18n
// --format xlf2 --output-path src/assets/locale`.
const (
	DefaultDir          = "src/assets/locale"
	DefaultSourceLocale = "en-US"
	DefaultResource     = "ngi18n"
	DefaultExtension    = ".xlf"
	DefaultIndent       = "\t"
	DefaultWorkers      = 4
	DefaultLogLevel     = "info"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// Config is the top-level .xlfsync.yaml structure.
type Config struct {
	// Dir is the locale directory relative to the project root.
	Dir string `yaml:"dir"`
	// SourceLocale is the locale the strings are authored in.
	SourceLocale string `yaml:"source_locale"`
	// Locales lists every maintained locale, the source included. Empty
	// means detect from the files in Dir.
	Locales []string `yaml:"locales,omitempty"`
	// Resource is the XLIFF <file> resource holding the units.
	Resource string `yaml:"resource"`
	// Extension selects the exchange-format files in Dir.
	Extension string `yaml:"extension"`
	// BackupFile is the backup file name in Dir (default "<source>(old).json").
	BackupFile string `yaml:"backup_file,omitempty"`
	// Indent is the JSON indentation of written files.
	Indent string `yaml:"indent"`
	// Workers bounds concurrent file conversions.
	Workers int `yaml:"workers"`
	// Report is an optional YAML report path relative to the project root.
	Report string `yaml:"report,omitempty"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	root string
}

// Default returns a Config with every default applied, rooted at ".".
func Default() *Config {
	return &Config{
		Dir:          DefaultDir,
		SourceLocale: DefaultSourceLocale,
		Resource:     DefaultResource,
		Extension:    DefaultExtension,
		Indent:       DefaultIndent,
		Workers:      DefaultWorkers,
		LogLevel:     DefaultLogLevel,
		root:         ".",
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the config file for the project at rootDir. When path is empty
// rootDir/.xlfsync.yaml is used and may be absent; an explicit path must
// exist. Fields missing from the file keep their defaults.
func Load(rootDir, path string) (*Config, error) {
	cfg := Default()
	cfg.root = rootDir

	explicit := path != ""
	if !explicit {
		path = filepath.Join(rootDir, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate fills derived defaults and checks the configuration. It returns
// warnings for values that are usable but suspicious, such as locale
// identifiers unknown to BCP 47.
func (c *Config) Validate() ([]string, error) {
	if c.Dir == "" {
		c.Dir = DefaultDir
	}
	if c.SourceLocale == "" {
		c.SourceLocale = DefaultSourceLocale
	}
	if c.Resource == "" {
		return nil, errors.New("resource must not be empty")
	}
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	if c.Indent == "" {
		c.Indent = DefaultIndent
	}
	if c.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.BackupFile == "" {
		c.BackupFile = c.SourceLocale + "(old).json"
	}
	if strings.ContainsAny(c.BackupFile, `/\`) {
		return nil, fmt.Errorf("backup_file %q must be a plain file name", c.BackupFile)
	}
	if c.BackupFile == c.SourceLocale+".json" {
		return nil, fmt.Errorf("backup_file %q would overwrite the source locale file", c.BackupFile)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel)
	}

	var warnings []string
	if w, err := CheckLocale(c.SourceLocale); err != nil {
		return nil, fmt.Errorf("source_locale: %w", err)
	} else if w != "" {
		warnings = append(warnings, w)
	}
	for _, l := range c.Locales {
		w, err := CheckLocale(l)
		if err != nil {
			return nil, fmt.Errorf("locales: %w", err)
		}
		if w != "" {
			warnings = append(warnings, w)
		}
	}
	return warnings, nil
}

// CheckLocale validates a locale identifier used as a file name. Identifiers
// that could escape the locale directory are errors; identifiers that are
// not valid BCP 47 tags only produce a warning, since the locale files are
// named by the application and not by the standard.
func CheckLocale(id string) (warning string, err error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.TrimSpace(id) != id {
		return "", fmt.Errorf("invalid locale identifier %q", id)
	}
	if _, perr := language.Parse(id); perr != nil {
		return fmt.Sprintf("locale %q is not a known BCP 47 tag: %v", id, perr), nil
	}
	return "", nil
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

// Root returns the project root the config was loaded for.
func (c *Config) Root() string { return c.root }

// SetRoot changes the project root.
func (c *Config) SetRoot(root string) { c.root = root }

// AbsDir returns the absolute locale directory.
func (c *Config) AbsDir() string {
	if filepath.IsAbs(c.Dir) {
		return c.Dir
	}
	abs, err := filepath.Abs(filepath.Join(c.root, c.Dir))
	if err != nil {
		return filepath.Join(c.root, c.Dir)
	}
	return abs
}

// LocalePath returns the JSON file path of locale.
func (c *Config) LocalePath(locale string) string {
	return filepath.Join(c.AbsDir(), locale+".json")
}

// SourcePath returns the JSON file path of the source locale.
func (c *Config) SourcePath() string {
	return c.LocalePath(c.SourceLocale)
}

// ExchangePath returns the exchange-format file path of locale.
func (c *Config) ExchangePath(locale string) string {
	return filepath.Join(c.AbsDir(), locale+c.Extension)
}

// BackupPath returns the backup file path.
func (c *Config) BackupPath() string {
	return filepath.Join(c.AbsDir(), c.BackupFile)
}

// ReportPath returns the absolute report path, or "" when disabled.
func (c *Config) ReportPath() string {
	if c.Report == "" {
		return ""
	}
	if filepath.IsAbs(c.Report) {
		return c.Report
	}
	return filepath.Join(c.root, c.Report)
}

// ---------------------------------------------------------------------------
// Locale detection
// ---------------------------------------------------------------------------

// ResolveLocales returns the configured locales, or when none are
// configured, the locales detected from files in the locale directory. The
// source locale is always included. skipped lists the files detection
// passed over because their names are not BCP 47 tags; it is empty for a
// configured list, which may name any locale.
func (c *Config) ResolveLocales() (locales, skipped []string) {
	if len(c.Locales) > 0 {
		return withLocale(c.Locales, c.SourceLocale), nil
	}
	locales, skipped = c.detectLocales()
	return withLocale(locales, c.SourceLocale), skipped
}

// detectLocales finds locale names from *.json and exchange-format files.
// Other JSON files (manifests, fixtures) live next to the locale files in
// many projects, so only names that parse as language tags count.
func (c *Config) detectLocales() (locales, skipped []string) {
	entries, err := os.ReadDir(c.AbsDir())
	if err != nil {
		return nil, nil
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == c.BackupFile {
			continue
		}
		var locale string
		switch {
		case strings.HasSuffix(name, ".json"):
			locale = strings.TrimSuffix(name, ".json")
		case strings.HasSuffix(name, c.Extension):
			locale = strings.TrimSuffix(name, c.Extension)
		default:
			continue
		}
		if warning, err := CheckLocale(locale); err != nil || warning != "" {
			skipped = append(skipped, name)
			continue
		}
		if seen[locale] {
			continue
		}
		seen[locale] = true
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	sort.Strings(skipped)
	return locales, skipped
}

// withLocale returns locales with want prepended when missing.
func withLocale(locales []string, want string) []string {
	for _, l := range locales {
		if l == want {
			return locales
		}
	}
	return append([]string{want}, locales...)
}
