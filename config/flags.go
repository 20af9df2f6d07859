package config

import (
	"strings"

	"github.com/spf13/pflag"
)

// Flags holds CLI overrides. Only flags the user actually set are applied,
// so flag defaults never mask values from the file or the environment.
type Flags struct {
	fs *pflag.FlagSet

	dir      string
	source   string
	locales  []string
	resource string
	workers  int
	report   string
}

// RegisterFlags adds the config override flags to fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.dir, "dir", DefaultDir, "Locale directory (relative to --root)")
	fs.StringVar(&f.source, "source", DefaultSourceLocale, "Source locale")
	fs.StringSliceVar(&f.locales, "locales", nil, "Maintained locales (comma-separated)")
	fs.StringVar(&f.resource, "resource", DefaultResource, "XLIFF <file> resource to extract")
	fs.IntVar(&f.workers, "workers", DefaultWorkers, "Concurrent file conversions")
	fs.StringVar(&f.report, "report", "", "Write a YAML report of pending translations")
	return f
}

// Apply copies the flags that were set on the command line into c.
func (f *Flags) Apply(c *Config) {
	if f.fs.Changed("dir") {
		c.Dir = f.dir
	}
	if f.fs.Changed("source") {
		c.SourceLocale = f.source
	}
	if f.fs.Changed("locales") {
		c.Locales = trimAll(f.locales)
	}
	if f.fs.Changed("resource") {
		c.Resource = f.resource
	}
	if f.fs.Changed("workers") {
		c.Workers = f.workers
	}
	if f.fs.Changed("report") {
		c.Report = f.report
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
