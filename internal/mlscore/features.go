// Package mlscore implements the deterministic ML-style ensemble: a
// character-statistics score and a fixed-weight logistic feature score are
// blended into one phishing probability. Everything here is a pure function
// of the input URL; there is no training, no I/O and no randomness, so the
// scorer is reproducible by construction.
package mlscore

import (
	"math"
	"strings"

	"github.com/qrshield/engine/internal/urlinfo"
)

// FeatureCount is the dimension of the feature vector. Features 0-14 follow
// the reference logistic model's extraction exactly (same normalization
// caps); 15-23 are binary lexical flags.
const FeatureCount = 24

var shortenerHosts = map[string]bool{
	"bit.ly": true, "tinyurl.com": true, "t.co": true, "goo.gl": true, "ow.ly": true,
}

var suspiciousTLDs = map[string]bool{
	"tk": true, "ml": true, "ga": true, "cf": true, "gq": true,
	"xyz": true, "icu": true, "top": true,
}

var credentialWords = []string{
	"login", "signin", "verify", "secure", "account", "password", "update", "confirm",
}

var brandWords = []string{
	"paypal", "apple", "google", "amazon", "microsoft", "netflix", "facebook",
}

var binaryExts = []string{".exe", ".scr", ".apk", ".bat", ".msi", ".jar"}

// Features extracts the fixed feature vector from a parsed record. All
// values are normalized into [0,1].
func Features(rec urlinfo.Record) [FeatureCount]float64 {
	var f [FeatureCount]float64

	host := rec.Host
	path := rec.Path
	raw := rec.Raw

	f[0] = capRatio(float64(len(raw)), 500)        // URL length
	f[1] = capRatio(float64(len(host)), 100)       // host length
	f[2] = capRatio(float64(len(path)), 200)       // path length
	f[3] = capRatio(float64(subdomains(host)), 5)  // subdomain count
	f[4] = boolFeature(rec.Scheme == "https")      // HTTPS
	f[5] = boolFeature(rec.IsIPv4Host())           // IP host
	f[6] = capRatio(shannonEntropy(host), 5)       // host entropy
	f[7] = capRatio(shannonEntropy(path), 5)       // path entropy
	f[8] = capRatio(float64(queryCount(rec)), 10)  // query param count
	f[9] = boolFeature(strings.Contains(raw, "@")) // @ symbol
	f[10] = capRatio(float64(strings.Count(raw, ".")), 10)
	f[11] = capRatio(float64(strings.Count(raw, "-")), 10)
	f[12] = boolFeature(rec.Port != "")
	f[13] = boolFeature(shortenerHosts[host])
	f[14] = boolFeature(suspiciousTLDs[rec.TLD()])

	f[15] = boolFeature(containsAny(strings.ToLower(path+"?"+rec.Query), credentialWords))
	f[16] = boolFeature(brandInSubdomain(rec))
	f[17] = boolFeature(strings.Contains(host, "xn--"))
	f[18] = boolFeature(hexRun(path + rec.Query))
	f[19] = boolFeature(hasSuffixAny(strings.ToLower(path), binaryExts))
	f[20] = boolFeature(strings.Contains(strings.ToLower(rec.Query), "http"))
	f[21] = boolFeature(strings.Count(host, "-") >= 3)
	f[22] = boolFeature(digitRatio(host) >= 0.3)
	f[23] = boolFeature(rec.Scheme == "data" || rec.Scheme == "javascript")

	return f
}

func capRatio(v, max float64) float64 {
	r := v / max
	if r > 1 {
		return 1
	}
	if r < 0 {
		return 0
	}
	return r
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func subdomains(host string) int {
	n := strings.Count(host, ".") - 1
	if n < 0 {
		return 0
	}
	return n
}

func queryCount(rec urlinfo.Record) int {
	if rec.Query == "" {
		return 0
	}
	return strings.Count(rec.Query, "&") + 1
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func hasSuffixAny(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func brandInSubdomain(rec urlinfo.Record) bool {
	labels := rec.Labels()
	if len(labels) <= 2 {
		return false
	}
	base := rec.BaseLabel()
	for _, label := range labels[:len(labels)-2] {
		for _, w := range brandWords {
			if strings.Contains(label, w) && !strings.Contains(base, w) {
				return true
			}
		}
	}
	return false
}

func hexRun(s string) bool {
	run := 0
	for i := 0; i+2 < len(s); {
		if s[i] == '%' && isHex(s[i+1]) && isHex(s[i+2]) {
			run++
			if run >= 3 {
				return true
			}
			i += 3
			continue
		}
		run = 0
		i++
	}
	return false
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func digitRatio(host string) float64 {
	digits, letters := 0, 0
	for _, r := range host {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			letters++
		}
	}
	if digits+letters == 0 {
		return 0
	}
	return float64(digits) / float64(digits+letters)
}

// shannonEntropy is Shannon entropy in bits per character, identical to the
// reference model's calculation.
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
	e := 0.0
	for _, c := range freq {
		p := float64(c) / float64(n)
		e -= p * math.Log2(p)
	}
	return e
}
