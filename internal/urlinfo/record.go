// Package urlinfo parses raw URL strings into an immutable record and
// performs Unicode/IDN analysis of hostnames. Parsing is total: any input,
// including binary garbage, yields a best-effort record with Malformed set
// rather than an error, so the analysis pipeline never aborts on bad input.
package urlinfo

import (
	"strings"
	"unicode"

	"golang.org/x/net/idna"
)

// MaxInspectLength caps how many characters of the input are inspected.
// Longer inputs are truncated for analysis and flagged separately.
const MaxInspectLength = 2048

// Record holds the parsed components of a URL. Fields are derived once and
// never mutated afterwards.
type Record struct {
	// Raw is the original input, possibly truncated to MaxInspectLength.
	Raw string
	// RawLength is the length of the input before truncation.
	RawLength int

	Scheme   string
	Host     string // lowercased hostname without port
	Port     string
	Path     string
	Query    string
	Fragment string

	// UnicodeHost is the IDN-decoded form of Host (same as Host when the
	// host carries no punycode labels).
	UnicodeHost string
	// ASCIIHost is the punycode form of Host.
	ASCIIHost string

	// HadScheme records whether the input carried an explicit scheme.
	// Scheme-less input is parsed as https for heuristic purposes.
	HadScheme bool
	Malformed bool
	Truncated bool
}

// Labels returns the dot-separated labels of the hostname.
func (r Record) Labels() []string {
	if r.Host == "" {
		return nil
	}
	return strings.Split(r.Host, ".")
}

// TLD returns the final label of the hostname, or "" for IP literals and
// single-label hosts.
func (r Record) TLD() string {
	labels := r.Labels()
	if len(labels) < 2 {
		return ""
	}
	tld := labels[len(labels)-1]
	if tld == "" || isDigits(tld) {
		return ""
	}
	return tld
}

// BaseLabel returns the registrable label directly left of the TLD, the
// part brand matching cares about ("paypal" in login.paypal.com).
func (r Record) BaseLabel() string {
	labels := r.Labels()
	if len(labels) < 2 {
		return r.Host
	}
	return labels[len(labels)-2]
}

// SubdomainCount returns the number of labels left of the registrable
// domain, e.g. a.b.example.com -> 2.
func (r Record) SubdomainCount() int {
	labels := r.Labels()
	if len(labels) <= 2 {
		return 0
	}
	return len(labels) - 2
}

// IsIPv4Host reports whether the host is a dotted-quad IP literal.
func (r Record) IsIPv4Host() bool {
	parts := strings.Split(r.Host, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if !isDigits(p) || len(p) == 0 || len(p) > 3 {
			return false
		}
		n := 0
		for _, c := range p {
			n = n*10 + int(c-'0')
		}
		if n > 255 {
			return false
		}
	}
	return true
}

// Parse converts an arbitrary string into a Record. It never fails; inputs
// that cannot be parsed as URLs produce a degraded record with Malformed set.
func Parse(raw string) Record {
	rec := Record{RawLength: len(raw)}

	trimmed := strings.TrimSpace(raw)
	if len(trimmed) > MaxInspectLength {
		trimmed = trimmed[:MaxInspectLength]
		rec.Truncated = true
	}
	rec.Raw = trimmed

	if trimmed == "" {
		rec.Malformed = true
		return rec
	}

	rest := trimmed
	if i := strings.Index(trimmed, "://"); i > 0 && isSchemeName(trimmed[:i]) {
		rec.Scheme = strings.ToLower(trimmed[:i])
		rec.HadScheme = true
		rest = trimmed[i+3:]
	} else if i := strings.IndexByte(trimmed, ':'); i > 0 && isSchemeName(trimmed[:i]) && !strings.Contains(trimmed[:i], ".") {
		// Opaque schemes such as data: and javascript: carry no authority.
		rec.Scheme = strings.ToLower(trimmed[:i])
		rec.HadScheme = true
		rec.Path = trimmed[i+1:]
		return rec
	} else {
		// No scheme: assume https for heuristic purposes, flag separately.
		rec.Scheme = "https"
	}

	// Manual authority split instead of url.Parse: url.Parse rejects inputs
	// (control bytes, bad percent escapes) that this pipeline must still
	// classify, so parsing is best effort by construction.
	if at := strings.IndexByte(hostPart(rest), '@'); at >= 0 {
		rest = rest[at+1:]
	}

	hostport := hostPart(rest)
	tail := rest[len(hostport):]

	host := hostport
	if c := strings.LastIndexByte(hostport, ':'); c >= 0 && !strings.HasPrefix(hostport, "[") {
		port := hostport[c+1:]
		if isDigits(port) && port != "" {
			host = hostport[:c]
			rec.Port = port
		}
	}

	rec.Host = strings.ToLower(strings.TrimSuffix(host, "."))
	if rec.Host == "" || !hostLooksValid(rec.Host) {
		rec.Malformed = true
	}

	if h := strings.IndexByte(tail, '#'); h >= 0 {
		rec.Fragment = tail[h+1:]
		tail = tail[:h]
	}
	if q := strings.IndexByte(tail, '?'); q >= 0 {
		rec.Query = tail[q+1:]
		tail = tail[:q]
	}
	rec.Path = tail

	rec.ASCIIHost, rec.UnicodeHost = idnForms(rec.Host)
	return rec
}

// hostPart returns the prefix of s up to the first path/query/fragment
// delimiter.
func hostPart(s string) string {
	end := len(s)
	for i, c := range s {
		if c == '/' || c == '?' || c == '#' {
			end = i
			break
		}
	}
	return s[:end]
}

// idnForms computes the punycode and Unicode forms of a host. Conversion
// errors fall back to the host as given so analysis can continue.
func idnForms(host string) (ascii, unicode string) {
	ascii, unicode = host, host
	if host == "" {
		return
	}
	if a, err := idna.Lookup.ToASCII(host); err == nil {
		ascii = a
	}
	if u, err := idna.Lookup.ToUnicode(host); err == nil {
		unicode = u
	}
	return
}

// hostLooksValid reports whether every rune is plausible in a hostname:
// ASCII letters/digits/.-_ or a non-ASCII letter, digit or mark (IDN), with
// at least one letter or digit overall. Zero-width characters and binary
// garbage fail, which marks the record malformed; the unicode analyzer
// still inspects the host either way.
func hostLooksValid(host string) bool {
	alnum := false
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			alnum = true
		case r == '.', r == '-', r == '_':
		case r == '[', r == ']', r == ':': // IPv6 literals
		case r > 0x7f && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)):
			alnum = true
		default:
			return false
		}
	}
	return alnum
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// isSchemeName reports whether s is a plausible URI scheme per RFC 3986.
func isSchemeName(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}
