package engine

import (
	"math"

	"github.com/qrshield/engine/internal/signal"
)

// Decide implements the consensus algorithm over the four component votes.
// The decision order is a fixed contract, first match wins:
//
//  1. threat-intel hit        -> MALICIOUS (override, regardless of votes)
//  2. malicious votes >= 2    -> MALICIOUS
//  3. safe votes >= 3         -> SAFE
//  4. suspicious votes >= 2   -> SUSPICIOUS, unless safe votes also reach 2:
//     a 2-2 safe/suspicious split resolves SAFE (the safe-majority rule
//     outranks the suspicious pair)
//  5. safe votes >= 2         -> SAFE
//  6. otherwise               -> SUSPICIOUS (ambiguous splits fall through)
func Decide(votes ComponentVotes, knownBad bool) signal.Vote {
	if knownBad {
		return signal.VoteMalicious
	}

	var safe, sus, mal int
	for _, v := range []signal.Vote{votes.Heuristic, votes.ML, votes.Brand, votes.TLD} {
		switch v {
		case signal.VoteSafe:
			safe++
		case signal.VoteSuspicious:
			sus++
		case signal.VoteMalicious:
			mal++
		}
	}

	switch {
	case mal >= 2:
		return signal.VoteMalicious
	case safe >= 3:
		return signal.VoteSafe
	case sus >= 2 && safe < 2:
		return signal.VoteSuspicious
	case safe >= 2:
		return signal.VoteSafe
	default:
		return signal.VoteSuspicious
	}
}

// ConfidenceLevel derives the 1-5 confidence from score extremity and signal
// agreement. Distance from the score midpoint sets the base level; the level
// is boosted when four or more signals point the same way as the verdict,
// and again at six. The boost never shrinks with more agreeing signals, so
// confidence is monotone in agreement at fixed score.
func ConfidenceLevel(score int, verdict signal.Vote, signals []signal.Signal) int {
	base := 1 + int(math.Abs(float64(score)-50)/12.5)
	if base > 4 {
		base = 4
	}

	agreeing := 0
	if verdict != signal.VoteSafe {
		for _, s := range signals {
			if s.Delta > 0 {
				agreeing++
			}
		}
	}
	if agreeing >= 4 {
		base++
	}
	if agreeing >= 6 {
		base++
	}

	if base < 1 {
		return 1
	}
	if base > 5 {
		return 5
	}
	return base
}
