package engine

import (
	"testing"

	"github.com/qrshield/engine/internal/signal"
)

// =============================================================================
// Voting Algorithm Tests
// =============================================================================

// TestDecide_VoteTable verifies the consensus tie-break contract over
// synthetic component votes.
func TestDecide_VoteTable(t *testing.T) {
	tests := []struct {
		name  string
		votes ComponentVotes
		want  signal.Vote
	}{
		{
			name: "three safe one suspicious is safe",
			votes: ComponentVotes{
				Heuristic: signal.VoteSafe, ML: signal.VoteSafe,
				Brand: signal.VoteSafe, TLD: signal.VoteSuspicious,
			},
			want: signal.VoteSafe,
		},
		{
			name: "two malicious wins over two safe",
			votes: ComponentVotes{
				Heuristic: signal.VoteMalicious, ML: signal.VoteMalicious,
				Brand: signal.VoteSafe, TLD: signal.VoteSafe,
			},
			want: signal.VoteMalicious,
		},
		{
			name: "two safe two suspicious resolves safe",
			votes: ComponentVotes{
				Heuristic: signal.VoteSafe, ML: signal.VoteSuspicious,
				Brand: signal.VoteSafe, TLD: signal.VoteSuspicious,
			},
			want: signal.VoteSafe,
		},
		{
			name: "suspicious pair beats single safe and single malicious",
			votes: ComponentVotes{
				Heuristic: signal.VoteSuspicious, ML: signal.VoteSuspicious,
				Brand: signal.VoteSafe, TLD: signal.VoteMalicious,
			},
			want: signal.VoteSuspicious,
		},
		{
			name: "all safe is safe",
			votes: ComponentVotes{
				Heuristic: signal.VoteSafe, ML: signal.VoteSafe,
				Brand: signal.VoteSafe, TLD: signal.VoteSafe,
			},
			want: signal.VoteSafe,
		},
		{
			name: "ambiguous split falls through to suspicious",
			votes: ComponentVotes{
				Heuristic: signal.VoteMalicious, ML: signal.VoteSuspicious,
				Brand: signal.VoteSafe, TLD: signal.VoteSuspicious,
			},
			want: signal.VoteSuspicious,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.votes, false); got != tt.want {
				t.Errorf("Decide(%+v) = %s, want %s", tt.votes, got, tt.want)
			}
		})
	}
}

// TestDecide_KnownBadOverride verifies the threat-intel override outranks
// every vote combination, including a unanimous SAFE.
func TestDecide_KnownBadOverride(t *testing.T) {
	votes := ComponentVotes{
		Heuristic: signal.VoteSafe, ML: signal.VoteSafe,
		Brand: signal.VoteSafe, TLD: signal.VoteSafe,
	}
	if got := Decide(votes, true); got != signal.VoteMalicious {
		t.Errorf("known-bad override should force MALICIOUS, got %s", got)
	}
}

// =============================================================================
// Confidence Tests
// =============================================================================

// TestConfidenceLevel_Bounds verifies the level stays in [1,5] at the score
// extremes.
func TestConfidenceLevel_Bounds(t *testing.T) {
	manySignals := make([]signal.Signal, 10)
	for i := range manySignals {
		manySignals[i] = signal.Signal{Delta: 10}
	}

	for _, score := range []int{0, 25, 50, 75, 100} {
		got := ConfidenceLevel(score, signal.VoteMalicious, manySignals)
		if got < 1 || got > 5 {
			t.Errorf("ConfidenceLevel(score=%d) = %d, out of [1,5]", score, got)
		}
	}

	if got := ConfidenceLevel(50, signal.VoteSuspicious, nil); got != 1 {
		t.Errorf("mid score with no signals should be level 1, got %d", got)
	}
}

// TestConfidenceLevel_MonotoneInAgreement verifies that at a fixed score,
// adding signals that agree with the verdict never lowers confidence.
func TestConfidenceLevel_MonotoneInAgreement(t *testing.T) {
	const score = 70

	prev := 0
	for n := 0; n <= 8; n++ {
		signals := make([]signal.Signal, n)
		for i := range signals {
			signals[i] = signal.Signal{Delta: 12}
		}
		got := ConfidenceLevel(score, signal.VoteMalicious, signals)
		if got < prev {
			t.Fatalf("confidence dropped from %d to %d when agreeing signals grew to %d", prev, got, n)
		}
		prev = got
	}
}
