// Package signal defines the detection signal and vote types shared by all
// detector components. Every detector emits zero or more Signals plus a
// component-level Vote; the voting engine consumes both.
package signal

// Severity classifies how strongly a single signal indicates risk.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Vote is a component-level classification of a URL.
type Vote string

const (
	VoteSafe       Vote = "SAFE"
	VoteSuspicious Vote = "SUSPICIOUS"
	VoteMalicious  Vote = "MALICIOUS"
)

// Signal is one detector's contribution to the analysis: a human-readable
// message, a severity bucket and a bounded score delta. Signals are
// accumulated into the final flag list in detector order, so output is
// deterministic for identical input.
type Signal struct {
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Delta    int      `json:"delta"`
}

// ClampScore bounds an aggregate score to the [0,100] contract range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
