// Package brand detects typosquatting and brand impersonation in hostnames.
// The matcher compares the registrable label against a curated brand list
// using character-substitution folding and edit distance; an exact match to
// the brand's legitimate domain short-circuits to no signal.
package brand

import (
	"fmt"
	"strings"

	"github.com/qrshield/engine/internal/signal"
	"github.com/qrshield/engine/internal/tables"
	"github.com/qrshield/engine/internal/urlinfo"
)

// Matcher holds the brand list. Read-only after construction.
type Matcher struct {
	brands []tables.Brand
}

// NewMatcher builds a Matcher from the loaded tables.
func NewMatcher(t *tables.Tables) *Matcher {
	return &Matcher{brands: t.Brands}
}

// Result is the outcome of brand matching for one hostname.
type Result struct {
	Matched  bool
	Brand    string
	Distance int
	Score    int
	Signal   *signal.Signal
	Vote     signal.Vote
}

// Evaluate checks the record's hostname against every brand. The closest
// impersonation wins; legitimate brand hosts vote SAFE with no signal.
func (m *Matcher) Evaluate(rec urlinfo.Record) Result {
	res := Result{Vote: signal.VoteSafe}
	if rec.Host == "" || rec.IsIPv4Host() {
		return res
	}

	// Match on the confusable skeleton so Cyrillic lookalikes fold to the
	// Latin letters they imitate before distance is measured.
	skelRec := rec
	skelRec.Host = urlinfo.Skeleton(rec.UnicodeHost)
	rawBase := skelRec.BaseLabel()
	foldedBase := desquat(rawBase)

	best := Result{Vote: signal.VoteSafe, Distance: -1}
	for _, b := range m.brands {
		// Exact legitimate domain (or a subdomain of it): never flag.
		if rec.Host == b.Domain || strings.HasSuffix(rec.Host, "."+b.Domain) {
			return Result{Vote: signal.VoteSafe, Brand: b.Name}
		}

		// Brands whose names carry digits (office365) must be matched
		// against the unfolded label, since folding rewrites their digits.
		dist, ok := m.match(foldedBase, b.Name)
		if !ok {
			dist, ok = m.match(rawBase, b.Name)
		}
		if !ok {
			continue
		}
		if best.Distance < 0 || dist < best.Distance {
			best = Result{Matched: true, Brand: b.Name, Distance: dist}
		}
	}

	if !best.Matched {
		return res
	}

	switch {
	case best.Distance <= 0:
		best.Score = 40
		best.Vote = signal.VoteMalicious
	case best.Distance == 1:
		best.Score = 35
		best.Vote = signal.VoteMalicious
	default:
		best.Score = 30
		best.Vote = signal.VoteSuspicious
	}
	best.Signal = &signal.Signal{
		Category: "brand",
		Severity: signal.SeverityHigh,
		Message:  fmt.Sprintf("Domain imitates brand %q but is not its legitimate domain", best.Brand),
		Delta:    best.Score,
	}
	return best
}

// match reports whether base impersonates the brand name and at what edit
// distance. Embedding the full brand name inside a longer label
// (paypal-secure) counts as distance 1.
func (m *Matcher) match(base, brand string) (int, bool) {
	if base == brand {
		return 0, true
	}
	if len(base) > len(brand) && strings.Contains(base, brand) {
		return 1, true
	}
	dist := levenshtein(base, brand)
	switch {
	case dist == 1:
		return 1, true
	case dist == 2 && len(brand) >= 6:
		return 2, true
	}
	return 0, false
}

// substitutions folds the digit/letter swaps typosquatters use. Multi-rune
// pairs (rn for m, vv for w) fold first so single-rune folds cannot mask them.
var multiSubs = [][2]string{
	{"rn", "m"},
	{"vv", "w"},
	{"cl", "d"},
}

var runeSubs = map[rune]rune{
	'0': 'o',
	'1': 'l',
	'3': 'e',
	'5': 's',
	'7': 't',
	'8': 'b',
	'@': 'a',
	'$': 's',
	'!': 'i',
}

// desquat normalizes a label by undoing common character substitutions.
func desquat(label string) string {
	s := strings.ToLower(label)
	for _, sub := range multiSubs {
		s = strings.ReplaceAll(s, sub[0], sub[1])
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if rep, ok := runeSubs[r]; ok {
			r = rep
		}
		b.WriteRune(r)
	}
	return b.String()
}

// levenshtein computes edit distance with the usual two-row DP.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
