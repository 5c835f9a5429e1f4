package heuristics

import (
	"strings"
	"testing"

	"github.com/qrshield/engine/internal/signal"
	"github.com/qrshield/engine/internal/urlinfo"
)

func categoriesOf(res Result) map[string]bool {
	out := make(map[string]bool, len(res.Signals))
	for _, s := range res.Signals {
		out[s.Category] = true
	}
	return out
}

// =============================================================================
// Individual Check Tests
// =============================================================================

// TestEvaluate_CleanURL verifies an unremarkable HTTPS URL produces no
// signals and a SAFE vote.
func TestEvaluate_CleanURL(t *testing.T) {
	res := Evaluate(urlinfo.Parse("https://www.example.com/about"))

	if len(res.Signals) != 0 {
		t.Errorf("expected no signals, got %+v", res.Signals)
	}
	if res.Score != 0 {
		t.Errorf("score = %d, want 0", res.Score)
	}
	if res.Vote != signal.VoteSafe {
		t.Errorf("vote = %s, want SAFE", res.Vote)
	}
}

// TestEvaluate_CategoryTriggers walks one URL per check and verifies the
// expected category fires.
func TestEvaluate_CategoryTriggers(t *testing.T) {
	cases := []struct {
		url      string
		category string
	}{
		{"http://192.168.1.1/", "ip_host"},
		{"javascript:alert(1)", "script_scheme"},
		{"http://example.com", "no_https"},
		{"example.com", "no_scheme"},
		{"https://user@evil.example/", "userinfo"},
		{"https://bit.ly/abc123", "shortener"},
		{"https://example.com/account/verify", "credential_path"},
		{"https://a.b.c.d.e.example.com/", "subdomain_depth"},
		{"https://example.com/?next=https://evil.example", "embedded_url"},
		{"https://my-very-odd-host-name.example.com/", "hyphen_count"},
		{"https://a1b2c3d4.co/", "digit_host"},
		{"https://example.com/%41%42%43page", "hex_escapes"},
		{"https://example.com/a//b", "double_slash"},
		{"https://secure-banking.example.com/", "host_keyword"},
		{"https://paypal.evil-host.example/", "brand_subdomain"},
		{"https://example.com:1337/", "odd_port"},
		{"https://xn--pple-43d.com/", "punycode"},
		{"https://example.com/setup.exe", "executable_path"},
		{"https://example.com/?a=1&b=2&c=3&d=4&e=5&f=6&g=7", "query_params"},
		{"https://gооgle.com/", "mixed_script"},
		{"https://gооgle.com/", "confusables"},
		{"https://goog\u200ble.com/", "zero_width"},
	}
	for _, tc := range cases {
		res := Evaluate(urlinfo.Parse(tc.url))
		if !categoriesOf(res)[tc.category] {
			t.Errorf("%s: expected %q signal, got %+v", tc.url, tc.category, res.Signals)
		}
	}
}

// TestEvaluate_LongURL verifies both length checks fire independently: the
// soft length flag at 100 characters and the truncation flag at the
// inspection cap.
func TestEvaluate_LongURL(t *testing.T) {
	soft := Evaluate(urlinfo.Parse("https://example.com/" + strings.Repeat("a", 120)))
	if !categoriesOf(soft)["url_length"] {
		t.Error("expected url_length for a 100+ character URL")
	}
	if categoriesOf(soft)["over_length"] {
		t.Error("over_length must not fire below the inspection cap")
	}

	hard := Evaluate(urlinfo.Parse("https://example.com/" + strings.Repeat("a", 3000)))
	cats := categoriesOf(hard)
	if !cats["over_length"] || !cats["url_length"] {
		t.Errorf("expected both length flags, got %v", cats)
	}
}

// TestEvaluate_RandomHostEntropy verifies high-entropy machine-generated
// labels are flagged while dictionary hostnames are not.
func TestEvaluate_RandomHostEntropy(t *testing.T) {
	flagged := Evaluate(urlinfo.Parse("https://xk9f2qz8vw4jm1t6.example.com/"))
	if !categoriesOf(flagged)["host_entropy"] {
		t.Error("expected host_entropy for a random label")
	}

	clean := Evaluate(urlinfo.Parse("https://documentation.example.com/"))
	if categoriesOf(clean)["host_entropy"] {
		t.Error("dictionary label flagged as random")
	}
}

// TestEvaluate_StandardPortsAllowed verifies common ports do not trip the
// odd-port check.
func TestEvaluate_StandardPortsAllowed(t *testing.T) {
	for _, url := range []string{
		"https://example.com:443/",
		"http://example.com:80/",
		"https://example.com:8443/",
	} {
		if categoriesOf(Evaluate(urlinfo.Parse(url)))["odd_port"] {
			t.Errorf("%s: standard port flagged", url)
		}
	}
}

// =============================================================================
// Aggregation Tests
// =============================================================================

// TestEvaluate_ScoreIsClampedSum verifies the aggregate equals the clamped
// sum of the individual deltas.
func TestEvaluate_ScoreIsClampedSum(t *testing.T) {
	res := Evaluate(urlinfo.Parse("http://192.168.1.1/login.php"))

	sum := 0
	for _, s := range res.Signals {
		sum += s.Delta
	}
	if res.Score != signal.ClampScore(sum) {
		t.Errorf("score %d != clamped sum %d", res.Score, signal.ClampScore(sum))
	}
	if res.Score < 0 || res.Score > 100 {
		t.Errorf("score %d out of range", res.Score)
	}
}

// TestVoteFor verifies the vote thresholds on the aggregate score.
func TestVoteFor(t *testing.T) {
	cases := []struct {
		score int
		want  signal.Vote
	}{
		{0, signal.VoteSafe},
		{10, signal.VoteSafe},
		{11, signal.VoteSuspicious},
		{25, signal.VoteSuspicious},
		{26, signal.VoteMalicious},
		{100, signal.VoteMalicious},
	}
	for _, tc := range cases {
		if got := VoteFor(tc.score); got != tc.want {
			t.Errorf("VoteFor(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

// TestEvaluate_SignalOrderIsStable verifies repeated evaluation emits
// signals in the same order, which keeps verdicts reproducible.
func TestEvaluate_SignalOrderIsStable(t *testing.T) {
	rec := urlinfo.Parse("http://paypal.secure-login.example.tk/verify?next=https://evil.example")
	a := Evaluate(rec)
	b := Evaluate(rec)

	if len(a.Signals) != len(b.Signals) {
		t.Fatalf("signal count differs: %d vs %d", len(a.Signals), len(b.Signals))
	}
	for i := range a.Signals {
		if a.Signals[i] != b.Signals[i] {
			t.Errorf("signal %d differs: %+v vs %+v", i, a.Signals[i], b.Signals[i])
		}
	}
}
