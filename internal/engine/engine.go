// Package engine combines the independent URL detectors into a single
// verdict through majority voting. Analyze is total: every string input,
// including empty or binary garbage, produces a verdict. The engine performs
// no I/O; the static tables are loaded once at construction and read-only
// afterwards, so concurrent analyses share nothing mutable.
package engine

import (
	"math"

	"go.uber.org/zap"

	"github.com/qrshield/engine/internal/brand"
	"github.com/qrshield/engine/internal/heuristics"
	"github.com/qrshield/engine/internal/intel"
	"github.com/qrshield/engine/internal/mlscore"
	"github.com/qrshield/engine/internal/signal"
	"github.com/qrshield/engine/internal/tables"
	"github.com/qrshield/engine/internal/tldrep"
	"github.com/qrshield/engine/internal/urlinfo"
)

// ComponentVotes are the four top-level votes feeding the voting algorithm,
// in the fixed ordinal order the algorithm inspects them.
type ComponentVotes struct {
	Heuristic signal.Vote `json:"heuristic"`
	ML        signal.Vote `json:"ml"`
	Brand     signal.Vote `json:"brand"`
	TLD       signal.Vote `json:"tld"`
}

// Diagnostics exposes the per-component scores the UI renders. Percentages
// are 0-100.
type Diagnostics struct {
	MLScore          float64 `json:"ml_score"`
	CharScore        float64 `json:"char_score"`
	FeatureScore     float64 `json:"feature_score"`
	HeuristicScore   int     `json:"heuristic_score"`
	IsKnownBad       bool    `json:"is_known_bad"`
	ThreatConfidence float64 `json:"threat_confidence"`
	MLConfidence     float64 `json:"ml_confidence"`
	ReasonCount      int     `json:"reason_count"`
	SafeDisplayHost  string  `json:"safe_display_host,omitempty"`
}

// Result is the complete analysis outcome for one URL.
type Result struct {
	URL         string          `json:"url"`
	Host        string          `json:"host"`
	Score       int             `json:"score"`
	Verdict     signal.Vote     `json:"verdict"`
	Confidence  int             `json:"confidence"`
	Flags       []string        `json:"flags"`
	Signals     []signal.Signal `json:"signals"`
	Votes       ComponentVotes  `json:"votes"`
	Diagnostics Diagnostics     `json:"diagnostics"`
}

// Engine holds the read-only detector state.
type Engine struct {
	logger    *zap.Logger
	brands    *brand.Matcher
	tlds      *tldrep.Scorer
	blocklist *intel.Blocklist
}

// New loads the static tables and builds an Engine. Table loading happens
// exactly once per process; concurrent analyses need no further
// synchronization.
func New(logger *zap.Logger) (*Engine, error) {
	t, err := tables.Load()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger:    logger,
		brands:    brand.NewMatcher(t),
		tlds:      tldrep.NewScorer(t),
		blocklist: intel.NewBlocklist(t),
	}, nil
}

// TableStats reports the sizes of the loaded static tables.
func (e *Engine) TableStats() tables.Stats {
	t, _ := tables.Load()
	return t.Stats()
}

// AnalyzeUnicode exposes the hostname Unicode analysis for callers that
// render homograph warnings independently of a full analysis.
func (e *Engine) AnalyzeUnicode(hostname string) urlinfo.UnicodeReport {
	return urlinfo.AnalyzeUnicode(hostname)
}

// Analyze runs every detector against the URL and produces the final
// verdict. It never fails: malformed input degrades to a low-confidence
// SUSPICIOUS verdict, never to a fabricated SAFE.
func (e *Engine) Analyze(rawURL string) Result {
	rec := urlinfo.Parse(rawURL)

	// Detectors run in fixed order and are isolated: a panic inside one
	// degrades that component's vote to SUSPICIOUS instead of aborting.
	heur := guard(e.logger, "heuristics",
		heuristics.Result{Vote: signal.VoteSuspicious},
		func() heuristics.Result { return heuristics.Evaluate(rec) })

	ml := guard(e.logger, "mlscore",
		mlscore.Outcome{Probability: 0.5, Vote: signal.VoteSuspicious},
		func() mlscore.Outcome { return mlscore.Evaluate(rec) })

	brandRes := guard(e.logger, "brand",
		brand.Result{Vote: signal.VoteSuspicious},
		func() brand.Result { return e.brands.Evaluate(rec) })

	tldRes := guard(e.logger, "tldrep",
		tldrep.Result{Vote: signal.VoteSuspicious},
		func() tldrep.Result { return e.tlds.Evaluate(rec) })

	intelRes := guard(e.logger, "intel",
		intel.Match{},
		func() intel.Match { return e.blocklist.Lookup(rec.Host) })

	signals := make([]signal.Signal, 0, len(heur.Signals)+4)
	signals = append(signals, heur.Signals...)
	for _, s := range []*signal.Signal{ml.Signal, brandRes.Signal, tldRes.Signal, intelRes.Signal} {
		if s != nil {
			signals = append(signals, *s)
		}
	}

	total := 0
	for _, s := range signals {
		total += s.Delta
	}
	score := signal.ClampScore(total)

	votes := ComponentVotes{
		Heuristic: heur.Vote,
		ML:        ml.Vote,
		Brand:     brandRes.Vote,
		TLD:       tldRes.Vote,
	}
	verdict := Decide(votes, intelRes.Found)

	// Non-negotiable floor: unparsable input is never reported SAFE.
	if verdict == signal.VoteSafe && (rec.Malformed || rec.Host == "") {
		verdict = signal.VoteSuspicious
	}

	flags := make([]string, len(signals))
	for i, s := range signals {
		flags[i] = s.Message
	}

	uni := urlinfo.AnalyzeUnicode(rec.Host)
	safeHost := ""
	if uni.HasRisk {
		safeHost = uni.SafeDisplayHost
	}

	res := Result{
		URL:        rec.Raw,
		Host:       rec.Host,
		Score:      score,
		Verdict:    verdict,
		Confidence: ConfidenceLevel(score, verdict, signals),
		Flags:      flags,
		Signals:    signals,
		Votes:      votes,
		Diagnostics: Diagnostics{
			MLScore:          round1(ml.Probability * 100),
			CharScore:        round1(ml.CharScore * 100),
			FeatureScore:     round1(ml.FeatureScore * 100),
			HeuristicScore:   heur.Score,
			IsKnownBad:       intelRes.Found,
			ThreatConfidence: intelRes.Confidence,
			MLConfidence:     round1(math.Abs(ml.Probability-0.5) * 2),
			ReasonCount:      len(signals),
			SafeDisplayHost:  safeHost,
		},
	}

	e.logger.Debug("analysis complete",
		zap.String("host", rec.Host),
		zap.Int("score", res.Score),
		zap.String("verdict", string(res.Verdict)),
		zap.Int("signals", len(signals)))
	return res
}

// guard runs a detector and converts a panic into the degraded fallback.
func guard[T any](logger *zap.Logger, component string, fallback T, fn func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("detector failed, degrading its vote",
				zap.String("component", component),
				zap.Any("panic", r))
			out = fallback
		}
	}()
	return fn()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
