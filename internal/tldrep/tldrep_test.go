package tldrep

import (
	"testing"

	"github.com/qrshield/engine/internal/signal"
	"github.com/qrshield/engine/internal/tables"
	"github.com/qrshield/engine/internal/urlinfo"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	tbl, err := tables.Load()
	if err != nil {
		t.Fatalf("tables.Load failed: %v", err)
	}
	return NewScorer(tbl)
}

// TestEvaluate_RiskyTLD verifies abused TLDs get the risky category, a
// MALICIOUS vote and a scored signal.
func TestEvaluate_RiskyTLD(t *testing.T) {
	s := newTestScorer(t)

	for _, url := range []string{"https://phish.tk", "https://free-stuff.xyz", "https://dl.zip"} {
		res := s.Evaluate(urlinfo.Parse(url))
		if res.Category != CategoryRisky {
			t.Errorf("%s: category = %s, want risky", url, res.Category)
		}
		if res.Vote != signal.VoteMalicious {
			t.Errorf("%s: vote = %s, want MALICIOUS", url, res.Vote)
		}
		if res.Signal == nil || res.Signal.Delta != res.Score || res.Score == 0 {
			t.Errorf("%s: expected scored signal, got %+v", url, res)
		}
	}
}

// TestEvaluate_SafeTLD verifies restricted registries vote SAFE with no
// signal.
func TestEvaluate_SafeTLD(t *testing.T) {
	s := newTestScorer(t)

	res := s.Evaluate(urlinfo.Parse("https://city.gov"))
	if res.Category != CategorySafe {
		t.Errorf("category = %s, want safe", res.Category)
	}
	if res.Vote != signal.VoteSafe || res.Signal != nil || res.Score != 0 {
		t.Errorf("safe TLD should be silent, got %+v", res)
	}
}

// TestEvaluate_NeutralTLD verifies unlisted TLDs are neutral.
func TestEvaluate_NeutralTLD(t *testing.T) {
	s := newTestScorer(t)

	res := s.Evaluate(urlinfo.Parse("https://example.com"))
	if res.Category != CategoryNeutral {
		t.Errorf("category = %s, want neutral", res.Category)
	}
	if res.Vote != signal.VoteSafe || res.Signal != nil {
		t.Errorf("neutral TLD should be silent, got %+v", res)
	}
}

// TestEvaluate_NoTLD verifies IP literals and single-label hosts skip TLD
// scoring entirely.
func TestEvaluate_NoTLD(t *testing.T) {
	s := newTestScorer(t)

	for _, url := range []string{"http://192.168.1.1", "https://localhost"} {
		res := s.Evaluate(urlinfo.Parse(url))
		if res.TLD != "" || res.Category != CategoryNeutral || res.Signal != nil {
			t.Errorf("%s: expected empty neutral result, got %+v", url, res)
		}
	}
}
