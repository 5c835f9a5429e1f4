// Package heuristics runs the lexical pattern checks against a parsed URL
// record. Every check is independent and side-effect-free: it inspects the
// record and returns at most one signal with a fixed score delta. The
// clamped sum of deltas is the heuristic aggregate score.
package heuristics

import (
	"fmt"
	"math"
	"strings"

	"github.com/qrshield/engine/internal/signal"
	"github.com/qrshield/engine/internal/urlinfo"
)

// Vote thresholds for the heuristic aggregate score.
const (
	safeMax       = 10
	suspiciousMax = 25
)

// Result carries the heuristic signals and the clamped aggregate score.
type Result struct {
	Signals []signal.Signal
	Score   int
	Vote    signal.Vote
}

// checkContext bundles the record with derived data shared by checks, so
// the unicode analysis runs once per URL instead of once per check.
type checkContext struct {
	rec urlinfo.Record
	uni urlinfo.UnicodeReport
}

type check struct {
	name string
	fn   func(cx *checkContext) *signal.Signal
}

// checks run in declaration order, which fixes the output signal order.
var checks = []check{
	{"ip_host", checkIPHost},
	{"script_scheme", checkScriptScheme},
	{"no_https", checkNoHTTPS},
	{"no_scheme", checkNoScheme},
	{"userinfo", checkUserinfo},
	{"shortener", checkShortener},
	{"credential_path", checkCredentialPath},
	{"subdomain_depth", checkSubdomainDepth},
	{"host_entropy", checkHostEntropy},
	{"embedded_url", checkEmbeddedURL},
	{"url_length", checkURLLength},
	{"over_length", checkOverLength},
	{"malformed", checkMalformed},
	{"hyphen_count", checkHyphens},
	{"digit_host", checkDigitHost},
	{"hex_escapes", checkHexEscapes},
	{"double_slash", checkDoubleSlash},
	{"host_keyword", checkHostKeyword},
	{"brand_subdomain", checkBrandSubdomain},
	{"odd_port", checkOddPort},
	{"punycode", checkPunycode},
	{"executable_path", checkExecutablePath},
	{"query_params", checkQueryParams},
	{"mixed_script", checkMixedScript},
	{"confusables", checkConfusables},
	{"zero_width", checkZeroWidth},
}

// Evaluate runs all checks against the record and aggregates their deltas.
func Evaluate(rec urlinfo.Record) Result {
	cx := &checkContext{rec: rec, uni: urlinfo.AnalyzeUnicode(rec.Host)}

	var res Result
	total := 0
	for _, c := range checks {
		if sig := c.fn(cx); sig != nil {
			res.Signals = append(res.Signals, *sig)
			total += sig.Delta
		}
	}
	res.Score = signal.ClampScore(total)
	res.Vote = VoteFor(res.Score)
	return res
}

// VoteFor maps a heuristic aggregate score to a component vote.
func VoteFor(score int) signal.Vote {
	switch {
	case score <= safeMax:
		return signal.VoteSafe
	case score <= suspiciousMax:
		return signal.VoteSuspicious
	default:
		return signal.VoteMalicious
	}
}

func sig(category string, sev signal.Severity, delta int, msg string) *signal.Signal {
	return &signal.Signal{Category: category, Severity: sev, Message: msg, Delta: delta}
}

// ---------------------------------------------------------------------------
// Host checks
// ---------------------------------------------------------------------------

func checkIPHost(cx *checkContext) *signal.Signal {
	if !cx.rec.IsIPv4Host() {
		return nil
	}
	return sig("ip_host", signal.SeverityHigh, 28,
		"Host is a raw IP address instead of a domain name")
}

var shorteners = map[string]bool{
	"bit.ly": true, "tinyurl.com": true, "t.co": true, "goo.gl": true,
	"ow.ly": true, "is.gd": true, "buff.ly": true, "rebrand.ly": true,
	"cutt.ly": true, "rb.gy": true, "shorturl.at": true, "t.ly": true,
}

func checkShortener(cx *checkContext) *signal.Signal {
	if !shorteners[cx.rec.Host] {
		return nil
	}
	return sig("shortener", signal.SeverityMedium, 18,
		"URL shortener hides the real destination")
}

func checkSubdomainDepth(cx *checkContext) *signal.Signal {
	depth := cx.rec.SubdomainCount()
	if depth <= 3 {
		return nil
	}
	return sig("subdomain_depth", signal.SeverityMedium, 12,
		fmt.Sprintf("Excessive subdomain nesting (%d levels)", depth))
}

func checkHostEntropy(cx *checkContext) *signal.Signal {
	for _, label := range cx.rec.Labels() {
		if len(label) >= 10 && shannonEntropy(label) > 3.8 {
			return sig("host_entropy", signal.SeverityMedium, 12,
				fmt.Sprintf("Hostname label %q looks randomly generated", label))
		}
	}
	return nil
}

func checkHyphens(cx *checkContext) *signal.Signal {
	if strings.Count(cx.rec.Host, "-") < 3 {
		return nil
	}
	return sig("hyphen_count", signal.SeverityLow, 8,
		"Hostname contains an unusual number of hyphens")
}

func checkDigitHost(cx *checkContext) *signal.Signal {
	if cx.rec.IsIPv4Host() {
		return nil
	}
	digits, letters := 0, 0
	for _, r := range cx.rec.Host {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r >= 'a' && r <= 'z':
			letters++
		}
	}
	if digits == 0 || digits+letters == 0 {
		return nil
	}
	if float64(digits)/float64(digits+letters) < 0.3 {
		return nil
	}
	return sig("digit_host", signal.SeverityMedium, 10,
		"Hostname is unusually digit-heavy")
}

var hostKeywords = []string{
	"secure", "login", "signin", "verify", "account", "update",
	"banking", "support", "alert", "confirm", "wallet", "recovery",
}

func checkHostKeyword(cx *checkContext) *signal.Signal {
	for _, kw := range hostKeywords {
		if strings.Contains(cx.rec.Host, kw) {
			return sig("host_keyword", signal.SeverityMedium, 12,
				fmt.Sprintf("Hostname contains bait keyword %q", kw))
		}
	}
	return nil
}

// brandKeywords is intentionally small and independent of the full brand
// table: this check only catches the brand-as-subdomain trick
// (paypal.evil-site.ga); full typosquat matching is a separate component.
var brandKeywords = []string{
	"paypal", "apple", "google", "amazon", "microsoft", "netflix",
	"facebook", "instagram", "whatsapp", "chase", "coinbase", "ebay",
}

func checkBrandSubdomain(cx *checkContext) *signal.Signal {
	labels := cx.rec.Labels()
	if len(labels) <= 2 {
		return nil
	}
	base := cx.rec.BaseLabel()
	for _, label := range labels[:len(labels)-2] {
		for _, kw := range brandKeywords {
			if strings.Contains(label, kw) && !strings.Contains(base, kw) {
				return sig("brand_subdomain", signal.SeverityHigh, 15,
					fmt.Sprintf("Brand name %q appears in a subdomain of an unrelated domain", kw))
			}
		}
	}
	return nil
}

func checkOddPort(cx *checkContext) *signal.Signal {
	switch cx.rec.Port {
	case "", "80", "443", "8080", "8443":
		return nil
	}
	return sig("odd_port", signal.SeverityMedium, 10,
		fmt.Sprintf("URL targets non-standard port %s", cx.rec.Port))
}

func checkPunycode(cx *checkContext) *signal.Signal {
	if !cx.uni.IsPunycode {
		return nil
	}
	return sig("punycode", signal.SeverityMedium, 15,
		"Hostname uses punycode-encoded international characters")
}

func checkMixedScript(cx *checkContext) *signal.Signal {
	if !cx.uni.HasMixedScript {
		return nil
	}
	return sig("mixed_script", signal.SeverityHigh, 25,
		"Hostname mixes Unicode scripts, a common homograph attack")
}

func checkConfusables(cx *checkContext) *signal.Signal {
	if !cx.uni.HasConfusables {
		return nil
	}
	return sig("confusables", signal.SeverityHigh, 20,
		"Hostname contains characters that imitate Latin letters")
}

func checkZeroWidth(cx *checkContext) *signal.Signal {
	if !cx.uni.HasZeroWidth {
		return nil
	}
	return sig("zero_width", signal.SeverityHigh, 25,
		"Hostname contains invisible zero-width characters")
}

// ---------------------------------------------------------------------------
// Scheme and structure checks
// ---------------------------------------------------------------------------

func checkScriptScheme(cx *checkContext) *signal.Signal {
	switch cx.rec.Scheme {
	case "javascript", "data", "vbscript":
		return sig("script_scheme", signal.SeverityCritical, 30,
			fmt.Sprintf("URL uses executable %s: scheme", cx.rec.Scheme))
	}
	return nil
}

func checkNoHTTPS(cx *checkContext) *signal.Signal {
	if !cx.rec.HadScheme || cx.rec.Scheme != "http" {
		return nil
	}
	return sig("no_https", signal.SeverityMedium, 15,
		"Connection is not encrypted (no HTTPS)")
}

func checkNoScheme(cx *checkContext) *signal.Signal {
	if cx.rec.HadScheme {
		return nil
	}
	return sig("no_scheme", signal.SeverityLow, 5,
		"URL has no scheme; assumed https for analysis")
}

func checkUserinfo(cx *checkContext) *signal.Signal {
	raw := cx.rec.Raw
	if i := strings.Index(raw, "://"); i >= 0 {
		raw = raw[i+3:]
	}
	authority := raw
	if i := strings.IndexAny(raw, "/?#"); i >= 0 {
		authority = raw[:i]
	}
	if !strings.Contains(authority, "@") {
		return nil
	}
	return sig("userinfo", signal.SeverityHigh, 20,
		"URL embeds credentials before an @ to disguise the real host")
}

func checkMalformed(cx *checkContext) *signal.Signal {
	if !cx.rec.Malformed {
		return nil
	}
	return sig("malformed", signal.SeverityMedium, 10,
		"Input could not be fully parsed as a URL")
}

func checkOverLength(cx *checkContext) *signal.Signal {
	if !cx.rec.Truncated {
		return nil
	}
	return sig("over_length", signal.SeverityMedium, 10,
		fmt.Sprintf("Input exceeds %d characters; analysis truncated", urlinfo.MaxInspectLength))
}

func checkURLLength(cx *checkContext) *signal.Signal {
	if cx.rec.RawLength <= 100 {
		return nil
	}
	return sig("url_length", signal.SeverityLow, 8,
		fmt.Sprintf("URL is unusually long (%d characters)", cx.rec.RawLength))
}

// ---------------------------------------------------------------------------
// Path and query checks
// ---------------------------------------------------------------------------

var credentialKeywords = []string{
	"login", "signin", "sign-in", "verify", "verification", "secure",
	"account", "update", "confirm", "password", "banking", "wallet",
	"auth", "credential", "sso", "webscr",
}

func checkCredentialPath(cx *checkContext) *signal.Signal {
	target := strings.ToLower(cx.rec.Path + "?" + cx.rec.Query)
	for _, kw := range credentialKeywords {
		if strings.Contains(target, kw) {
			return sig("credential_path", signal.SeverityMedium, 12,
				fmt.Sprintf("Path contains credential-harvesting keyword %q", kw))
		}
	}
	return nil
}

func checkEmbeddedURL(cx *checkContext) *signal.Signal {
	q := strings.ToLower(cx.rec.Query)
	if !strings.Contains(q, "http://") && !strings.Contains(q, "https://") &&
		!strings.Contains(q, "%3a%2f%2f") {
		return nil
	}
	return sig("embedded_url", signal.SeverityMedium, 18,
		"Query string embeds another URL, a redirect pattern")
}

func checkHexEscapes(cx *checkContext) *signal.Signal {
	target := cx.rec.Path + cx.rec.Query
	run := 0
	for i := 0; i+2 < len(target); {
		if target[i] == '%' && isHexByte(target[i+1]) && isHexByte(target[i+2]) {
			run++
			if run >= 3 {
				return sig("hex_escapes", signal.SeverityMedium, 10,
					"Path contains long runs of percent-encoded characters")
			}
			i += 3
			continue
		}
		run = 0
		i++
	}
	return nil
}

func checkDoubleSlash(cx *checkContext) *signal.Signal {
	if !strings.Contains(cx.rec.Path, "//") {
		return nil
	}
	return sig("double_slash", signal.SeverityLow, 8,
		"Path contains a double slash, used to confuse redirect parsing")
}

var executableExts = []string{".exe", ".scr", ".apk", ".bat", ".cmd", ".msi", ".jar", ".pif", ".dmg"}

func checkExecutablePath(cx *checkContext) *signal.Signal {
	path := strings.ToLower(cx.rec.Path)
	for _, ext := range executableExts {
		if strings.HasSuffix(path, ext) {
			return sig("executable_path", signal.SeverityHigh, 15,
				fmt.Sprintf("URL points directly at a %s executable", ext))
		}
	}
	return nil
}

func checkQueryParams(cx *checkContext) *signal.Signal {
	if cx.rec.Query == "" {
		return nil
	}
	params := strings.Count(cx.rec.Query, "&") + 1
	if params <= 6 {
		return nil
	}
	return sig("query_params", signal.SeverityLow, 6,
		fmt.Sprintf("Query string carries %d parameters", params))
}

func isHexByte(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// shannonEntropy computes the Shannon entropy of a string in bits per
// character.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	n := 0
	for _, r := range s {
		freq[r]++
		n++
	}
	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / float64(n)
		entropy -= p * math.Log2(p)
	}
	return entropy
}
