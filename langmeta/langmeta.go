// Package langmeta provides language metadata (native names and emoji flags)
// for locale identifiers, used by the CLI status output and the run report.
//
// Names come from the CLDR data bundled with golang.org/x/text; flags are
// built from the tag's region, or its most likely region when the tag has
// none (de → 🇩🇪).
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	// Tag is the canonical BCP 47 form, or the input for unknown languages.
	Tag string
	// Name is the language's name in itself ("Deutsch").
	Name string
	// EnglishName is the English name ("German").
	EnglishName string
	// Flag is the regional-indicator emoji, empty when no country applies.
	Flag string
}

// Canonicalize normalizes separators and case: pt_br → pt-BR. Identifiers
// that are not BCP 47 tags are returned trimmed, with "_" replaced by "-".
func Canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	tag, err := language.Parse(normalized)
	if err != nil {
		return normalized
	}
	return tag.String()
}

// Resolve returns best-effort metadata for lang. Unknown identifiers are
// passed through as their own name without a flag.
func Resolve(lang string) Meta {
	tag, err := language.Parse(Canonicalize(lang))
	if err != nil {
		return Meta{Tag: lang, Name: lang}
	}

	m := Meta{
		Tag:         tag.String(),
		Name:        display.Self.Name(tag),
		EnglishName: display.English.Tags().Name(tag),
	}
	if m.Name == "" {
		m.Name = lang
	}
	if region, conf := tag.Region(); conf != language.No && region.IsCountry() {
		m.Flag = FlagFromRegion(region.String())
	}
	return m
}

// FlagFromRegion converts a two-letter ISO 3166 region code to its flag
// emoji. Anything else yields "".
func FlagFromRegion(region string) string {
	if len(region) != 2 {
		return ""
	}
	region = strings.ToUpper(region)
	var b strings.Builder
	for _, r := range region {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + r - 'A')
	}
	return b.String()
}
