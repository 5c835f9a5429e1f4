// Package intel performs offline threat-intel lookups against the embedded
// blocklist. A hit is authoritative: the engine's documented override rule
// forces a MALICIOUS verdict regardless of how the other components vote.
package intel

import (
	"fmt"
	"strings"

	"github.com/qrshield/engine/internal/signal"
	"github.com/qrshield/engine/internal/tables"
)

// hitDelta is near-maximal so a blocklist hit dominates the aggregate score
// on its own.
const hitDelta = 85

// Blocklist is a read-only set of known-bad domains.
type Blocklist struct {
	entries map[string]float64
}

// NewBlocklist builds a Blocklist from the loaded tables.
func NewBlocklist(t *tables.Tables) *Blocklist {
	return &Blocklist{entries: t.Blocklist}
}

// Match is the outcome of a blocklist lookup.
type Match struct {
	Found      bool
	Domain     string
	Confidence float64
	Signal     *signal.Signal
}

// Lookup normalizes the hostname (lowercase, strip leading www. and any
// trailing dot) and checks it against the blocklist exactly.
func (b *Blocklist) Lookup(hostname string) Match {
	host := Normalize(hostname)
	if host == "" {
		return Match{}
	}

	conf, ok := b.entries[host]
	if !ok {
		return Match{}
	}
	return Match{
		Found:      true,
		Domain:     host,
		Confidence: conf,
		Signal: &signal.Signal{
			Category: "threat_intel",
			Severity: signal.SeverityCritical,
			Message:  fmt.Sprintf("Domain %s is on the known-phishing blocklist", host),
			Delta:    hitDelta,
		},
	}
}

// Size returns the number of blocklist entries.
func (b *Blocklist) Size() int {
	return len(b.entries)
}

// Normalize produces the canonical lookup form of a hostname.
func Normalize(hostname string) string {
	host := strings.ToLower(strings.TrimSpace(hostname))
	host = strings.TrimSuffix(host, ".")
	host = strings.TrimPrefix(host, "www.")
	return host
}
