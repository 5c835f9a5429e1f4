package urlinfo

import "testing"

// =============================================================================
// Unicode Analysis Tests
// =============================================================================

// TestAnalyzeUnicode_PlainASCII verifies a plain ASCII hostname reports no
// risk at all.
func TestAnalyzeUnicode_PlainASCII(t *testing.T) {
	rep := AnalyzeUnicode("www.example.com")

	if rep.HasRisk {
		t.Errorf("ASCII host reported risky: %+v", rep)
	}
	if rep.SafeDisplayHost != "www.example.com" {
		t.Errorf("safe display host = %q", rep.SafeDisplayHost)
	}
}

// TestAnalyzeUnicode_CyrillicHomograph verifies Cyrillic lookalikes trip
// both the mixed-script and confusables flags and fold back to Latin in
// the display form.
func TestAnalyzeUnicode_CyrillicHomograph(t *testing.T) {
	// аpple.com with a Cyrillic а.
	rep := AnalyzeUnicode("аpple.com")

	if !rep.HasMixedScript {
		t.Error("expected mixed-script")
	}
	if !rep.HasConfusables {
		t.Error("expected confusables")
	}
	if !rep.HasRisk {
		t.Error("expected HasRisk")
	}
	if rep.SafeDisplayHost != "apple.com" {
		t.Errorf("safe display host = %q, want apple.com", rep.SafeDisplayHost)
	}
}

// TestAnalyzeUnicode_Punycode verifies xn-- labels are detected and decoded
// before script analysis.
func TestAnalyzeUnicode_Punycode(t *testing.T) {
	// xn--pple-43d.com decodes to аpple.com (Cyrillic а).
	rep := AnalyzeUnicode("xn--pple-43d.com")

	if !rep.IsPunycode {
		t.Error("expected IsPunycode")
	}
	if !rep.HasRisk {
		t.Error("punycode alone must set HasRisk")
	}
	if !rep.HasConfusables {
		t.Error("decoded Cyrillic а should register as a confusable")
	}
}

// TestAnalyzeUnicode_ZeroWidth verifies invisible characters are detected
// and stripped from the display form.
func TestAnalyzeUnicode_ZeroWidth(t *testing.T) {
	rep := AnalyzeUnicode("goog\u200ble.com")

	if !rep.HasZeroWidth {
		t.Error("expected HasZeroWidth")
	}
	if rep.SafeDisplayHost != "google.com" {
		t.Errorf("safe display host = %q, want google.com", rep.SafeDisplayHost)
	}
}

// TestAnalyzeUnicode_AllInvisibleRunes verifies each invisible character in
// the detection set is both flagged and stripped from the display form.
func TestAnalyzeUnicode_AllInvisibleRunes(t *testing.T) {
	for _, r := range []rune{'\u200b', '\u200c', '\u200d', '\u2060', '\ufeff', '\u00ad'} {
		host := "goog" + string(r) + "le.com"
		rep := AnalyzeUnicode(host)
		if !rep.HasZeroWidth {
			t.Errorf("U+%04X: expected HasZeroWidth", r)
		}
		if rep.SafeDisplayHost != "google.com" {
			t.Errorf("U+%04X: safe display host = %q, want google.com", r, rep.SafeDisplayHost)
		}
	}
}

// TestAnalyzeUnicode_Empty verifies the degenerate input.
func TestAnalyzeUnicode_Empty(t *testing.T) {
	rep := AnalyzeUnicode("")
	if rep.HasRisk {
		t.Errorf("empty host reported risky: %+v", rep)
	}
}

// =============================================================================
// Skeleton Tests
// =============================================================================

// TestSkeleton verifies confusable folding, zero-width stripping and
// fullwidth normalization produce canonical Latin forms.
func TestSkeleton(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"google.com", "google.com"},
		{"gооgle.com", "google.com"},  // Cyrillic о
		{"pаypаl.com", "paypal.com"},  // Cyrillic а
		{"goog\u200ble.com", "google.com"},
		{"ｇｏｏｇｌｅ.com", "google.com"}, // fullwidth
	}
	for _, tc := range cases {
		if got := Skeleton(tc.in); got != tc.want {
			t.Errorf("Skeleton(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
