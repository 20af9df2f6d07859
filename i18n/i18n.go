// Package i18n translates the summary lines xlfsync prints after a command.
//
// Structured log records from the pipeline stay in English so they can be
// grepped; only the human summaries in main.go (printSyncSummary, printPlan,
// runStatus) go through T and N. The catalogs are gettext .po files embedded
// from locales/<lang>/LC_MESSAGES/xlfsync.po. main calls Init("") once,
// before cobra parses the command line:
//
//	i18n.Init("")
//	logInfo(i18n.N("Converted %d file", "Converted %d files", n), n)
//	logSuccess("%s", i18n.T("All translations are up to date"))
//
// Format verbs stay in the msgid, so translations may reorder them with
// explicit indexes (%[2]s).
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const domain = "xlfsync"

// po is nil until Init; T and N then pass msgids through.
var po *gotext.Locale

// Init loads the catalog for lang, or for the language named by the
// environment when lang is empty. A language without a catalog (English
// included) leaves every summary untranslated.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates a summary line.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a counted summary line using the catalog's Plural-Forms
// (three forms for ru).
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage reads XLFSYNC_LANG, then follows GNU gettext: LANGUAGE,
// LC_ALL, LC_MESSAGES, LANG.
func detectLanguage() string {
	for _, env := range []string{"XLFSYNC_LANG", "LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if val := os.Getenv(env); val != "" {
			// LANGUAGE can be a colon-separated list; take the first
			if env == "LANGUAGE" || env == "XLFSYNC_LANG" {
				parts := strings.SplitN(val, ":", 2)
				val = parts[0]
			}
			// Strip encoding suffix (e.g. "ru_RU.UTF-8" -> "ru_RU")
			if idx := strings.IndexByte(val, '.'); idx >= 0 {
				val = val[:idx]
			}
			// Skip "C" and "POSIX": no translation
			if val == "C" || val == "POSIX" || val == "" {
				continue
			}
			return val
		}
	}
	return "en"
}
