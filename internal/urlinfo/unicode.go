package urlinfo

import (
	"strings"
	"unicode"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// UnicodeReport is the result of hostname Unicode analysis, consumed both by
// the engine and directly by callers that render homograph warnings.
type UnicodeReport struct {
	HasRisk         bool   `json:"has_risk"`
	IsPunycode      bool   `json:"is_punycode"`
	HasMixedScript  bool   `json:"has_mixed_script"`
	HasConfusables  bool   `json:"has_confusables"`
	HasZeroWidth    bool   `json:"has_zero_width"`
	SafeDisplayHost string `json:"safe_display_host"`
}

// confusables maps Cyrillic and Greek characters that render identically or
// near-identically to Latin letters (Unicode TR39 lookalike pairs). Only
// pairs abused in observed homograph attacks are carried; exotic confusables
// still trip the mixed-script check.
var confusables = map[rune]rune{
	// Cyrillic -> Latin
	'а': 'a', 'е': 'e', 'о': 'o', 'р': 'p', 'с': 'c', 'х': 'x',
	'у': 'y', 'і': 'i', 'ѕ': 's', 'ј': 'j', 'ԁ': 'd', 'һ': 'h',
	'ԛ': 'q', 'ԝ': 'w', 'ь': 'b', 'г': 'r', 'п': 'n', 'т': 't',
	// Greek -> Latin
	'ο': 'o', 'α': 'a', 'ν': 'v', 'ι': 'i', 'κ': 'k', 'ρ': 'p',
	'τ': 't', 'υ': 'u', 'χ': 'x', 'β': 'b', 'ε': 'e',
	// Fullwidth and misc lookalikes
	'ｌ': 'l', 'ｏ': 'o', 'ｇ': 'g', 'ⅼ': 'l', 'ℓ': 'l',
}

// zeroWidthRunes are invisible characters used to pad or disguise hostnames.
// Written as escapes: the characters are invisible in source, and a BOM is
// not even legal past the first code point of a Go file.
var zeroWidthRunes = map[rune]bool{
	'\u200b': true, // zero width space
	'\u200c': true, // zero width non-joiner
	'\u200d': true, // zero width joiner
	'\u2060': true, // word joiner
	'\ufeff': true, // byte order mark
	'\u00ad': true, // soft hyphen
}

// AnalyzeUnicode inspects a hostname for IDN and homograph risk. The input
// may be in punycode or Unicode form; both are analyzed.
func AnalyzeUnicode(hostname string) UnicodeReport {
	report := UnicodeReport{}

	host := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(hostname), "."))
	if host == "" {
		report.SafeDisplayHost = ""
		return report
	}

	for _, label := range strings.Split(host, ".") {
		if strings.HasPrefix(label, "xn--") {
			report.IsPunycode = true
			break
		}
	}

	decoded := host
	if report.IsPunycode {
		if u, err := idna.Lookup.ToUnicode(host); err == nil {
			decoded = u
		}
	}

	var sawLatin, sawOther bool
	for _, r := range decoded {
		if zeroWidthRunes[r] {
			report.HasZeroWidth = true
			continue
		}
		if _, ok := confusables[r]; ok {
			report.HasConfusables = true
		}
		if !unicode.IsLetter(r) {
			continue
		}
		switch {
		case unicode.Is(unicode.Latin, r):
			sawLatin = true
		case unicode.Is(unicode.Cyrillic, r), unicode.Is(unicode.Greek, r):
			sawOther = true
		default:
			sawOther = true
		}
	}
	report.HasMixedScript = sawLatin && sawOther

	report.SafeDisplayHost = Skeleton(decoded)
	report.HasRisk = report.IsPunycode || report.HasMixedScript ||
		report.HasConfusables || report.HasZeroWidth
	return report
}

// Skeleton returns the confusable-folded form of a hostname: NFKC
// normalized, zero-width characters stripped and lookalike runes mapped to
// their Latin targets. Two hostnames with equal skeletons render
// indistinguishably in most UIs.
func Skeleton(host string) string {
	folded := norm.NFKC.String(strings.ToLower(host))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if zeroWidthRunes[r] {
			continue
		}
		if latin, ok := confusables[r]; ok {
			r = latin
		}
		b.WriteRune(r)
	}
	return b.String()
}
