// Package tldrep scores top-level domains against a reputation table.
package tldrep

import (
	"fmt"

	"github.com/qrshield/engine/internal/signal"
	"github.com/qrshield/engine/internal/tables"
	"github.com/qrshield/engine/internal/urlinfo"
)

// Category buckets a TLD by registry reputation.
type Category string

const (
	CategorySafe    Category = "safe"
	CategoryNeutral Category = "neutral"
	CategoryRisky   Category = "risky"
)

// riskyDelta is the score contribution of a risky TLD.
const riskyDelta = 25

// Scorer looks up TLD reputation. Read-only after construction.
type Scorer struct {
	risky map[string]bool
	safe  map[string]bool
}

// NewScorer builds a Scorer from the loaded tables.
func NewScorer(t *tables.Tables) *Scorer {
	return &Scorer{risky: t.RiskyTLDs, safe: t.SafeTLDs}
}

// Result carries the TLD category, its signal (nil unless risky) and the
// component vote.
type Result struct {
	TLD      string
	Category Category
	Score    int
	Signal   *signal.Signal
	Vote     signal.Vote
}

// Evaluate categorizes the record's TLD. Unknown TLDs are neutral; the vote
// mirrors the category (safe and neutral vote SAFE, risky votes MALICIOUS).
func (s *Scorer) Evaluate(rec urlinfo.Record) Result {
	tld := rec.TLD()
	res := Result{TLD: tld, Category: CategoryNeutral, Vote: signal.VoteSafe}
	if tld == "" {
		return res
	}

	switch {
	case s.risky[tld]:
		res.Category = CategoryRisky
		res.Score = riskyDelta
		res.Vote = signal.VoteMalicious
		res.Signal = &signal.Signal{
			Category: "tld",
			Severity: signal.SeverityHigh,
			Message:  fmt.Sprintf("Top-level domain .%s is frequently abused in phishing campaigns", tld),
			Delta:    riskyDelta,
		}
	case s.safe[tld]:
		res.Category = CategorySafe
	}
	return res
}
