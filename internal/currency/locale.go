package currency

import (
	"strings"

	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"
)

type groupingStyle int

const (
	// groupThousands splits the integer part into groups of three digits.
	groupThousands groupingStyle = iota
	// groupIndian keeps the last three digits together and splits the rest
	// into pairs (thousands, lakhs, crores, ...).
	groupIndian
)

// convention holds the numeric formatting rules of a locale.
type convention struct {
	group       string
	decimal     string
	style       groupingStyle
	symbolAfter bool
}

var (
	western     = convention{group: ",", decimal: ".", style: groupThousands}
	indian      = convention{group: ",", decimal: ".", style: groupIndian}
	continental = convention{group: ".", decimal: ",", style: groupThousands, symbolAfter: true}
	french      = convention{group: "\u202f", decimal: ",", style: groupThousands, symbolAfter: true}
)

// Keyed by canonical BCP 47 tag.
var localeConventions = map[string]convention{
	"en-US": western,
	"en-GB": western,
	"en-AU": western,
	"en-CA": western,
	"en-SG": western,
	"en-IN": indian,
	"ja-JP": western,
	"de-DE": continental,
	"fr-FR": french,
}

// Used when the full tag is not in localeConventions.
var baseConventions = map[string]convention{
	"en": western,
	"ja": western,
	"de": continental,
	"es": continental,
	"it": continental,
	"nl": continental,
	"fr": french,
}

// lookupConvention resolves the formatting rules for a locale tag. Tags are
// canonicalised first so "en-us" and "en-US" resolve alike.
func lookupConvention(locale string) (convention, bool) {
	if strings.TrimSpace(locale) == "" {
		return convention{}, false
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return convention{}, false
	}
	if conv, ok := localeConventions[tag.String()]; ok {
		return conv, true
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return convention{}, false
	}
	conv, ok := baseConventions[base.String()]
	return conv, ok
}

// genericConvention returns the rules of the generic formatting path.
// Unknown locales and codes that are not ISO 4217 fall back to western.
func genericConvention(c Currency) convention {
	if !isISOCode(c.Code) {
		return western
	}
	if conv, ok := lookupConvention(c.Locale); ok {
		return conv
	}
	return western
}

// conventionFor returns the rules used to format and parse amounts in c.
func conventionFor(c Currency) convention {
	if c.Code == "INR" {
		return indian
	}
	return genericConvention(c)
}

func isISOCode(code string) bool {
	_, err := xcurrency.ParseISO(code)
	return err == nil
}
