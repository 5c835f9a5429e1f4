package mlscore

import (
	"math"
	"strings"

	"github.com/qrshield/engine/internal/signal"
	"github.com/qrshield/engine/internal/urlinfo"
)

// Probability thresholds mapping the combined score to a component vote.
const (
	safeMax       = 0.30
	suspiciousMax = 0.60
)

// charWeight and featureWeight blend the two sub-scores into the combined
// probability.
const (
	charWeight    = 0.45
	featureWeight = 0.55
)

// weights and bias are the bundled logistic model. Signs and rough
// magnitudes follow what the reference training run converges to on its
// synthetic corpus: HTTPS pushes strongly negative, IP hosts, suspicious
// TLDs and script schemes strongly positive. Fixed at build time; the model
// is a pluggable scoring strategy, not a live learner.
var weights = [FeatureCount]float64{
	1.2,  // 0  url length
	0.8,  // 1  host length
	0.6,  // 2  path length
	1.5,  // 3  subdomain count
	-1.6, // 4  https
	2.8,  // 5  ip host
	1.1,  // 6  host entropy
	0.7,  // 7  path entropy
	0.5,  // 8  query param count
	2.2,  // 9  @ symbol
	0.8,  // 10 dot count
	1.0,  // 11 dash count
	1.4,  // 12 explicit port
	2.0,  // 13 shortener
	2.6,  // 14 suspicious tld
	1.8,  // 15 credential keyword
	1.7,  // 16 brand in subdomain
	1.6,  // 17 punycode label
	1.2,  // 18 hex escape run
	1.5,  // 19 executable extension
	1.9,  // 20 url embedded in query
	0.9,  // 21 many hyphens
	1.1,  // 22 digit heavy host
	3.0,  // 23 data/javascript scheme
}

const bias = -3.1

// Outcome is the scorer's diagnostic output. All values are in [0,1].
type Outcome struct {
	CharScore    float64
	FeatureScore float64
	Probability  float64
	Vote         signal.Vote
	Signal       *signal.Signal
}

// Evaluate computes the ensemble probability for a record and derives the
// component vote.
func Evaluate(rec urlinfo.Record) Outcome {
	char := CharScore(rec.Host)
	feat := FeatureScore(Features(rec))
	prob := charWeight*char + featureWeight*feat

	out := Outcome{
		CharScore:    char,
		FeatureScore: feat,
		Probability:  prob,
	}

	switch {
	case prob <= safeMax:
		out.Vote = signal.VoteSafe
	case prob <= suspiciousMax:
		out.Vote = signal.VoteSuspicious
		out.Signal = &signal.Signal{
			Category: "ml",
			Severity: signal.SeverityMedium,
			Message:  "Statistical model rates this URL as borderline",
			Delta:    int(math.Round(prob * 10)),
		}
	default:
		out.Vote = signal.VoteMalicious
		out.Signal = &signal.Signal{
			Category: "ml",
			Severity: signal.SeverityHigh,
			Message:  "Statistical model rates this URL as likely phishing",
			Delta:    int(math.Round(prob * 20)),
		}
	}
	return out
}

// FeatureScore runs the fixed logistic model over a feature vector.
func FeatureScore(f [FeatureCount]float64) float64 {
	z := bias
	for i, w := range weights {
		z += w * f[i]
	}
	return sigmoid(z)
}

// CharScore derives a [0,1] risk score from character-level statistics of
// the hostname: entropy, digit density and consonant clustering. Random or
// machine-generated hostnames score high on all three.
func CharScore(host string) float64 {
	if host == "" {
		return 0.5
	}
	h := strings.ToLower(host)

	entropy := capRatio(shannonEntropy(h), 5)
	digits := digitRatio(h)
	cluster := capRatio(float64(longestConsonantRun(h)), 6)

	return 0.5*entropy + 0.25*digits + 0.25*cluster
}

func longestConsonantRun(s string) int {
	longest, run := 0, 0
	for _, r := range s {
		if r >= 'a' && r <= 'z' && !isVowel(r) {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	return longest
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
