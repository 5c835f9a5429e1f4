package tables

import "testing"

// TestLoad verifies the embedded tables parse and contain the entries the
// detection components depend on.
func TestLoad(t *testing.T) {
	tbl, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(tbl.Brands) == 0 {
		t.Fatal("no brands loaded")
	}
	found := false
	for _, b := range tbl.Brands {
		if b.Name == "" || b.Domain == "" {
			t.Errorf("incomplete brand entry %+v", b)
		}
		if b.Name == "paypal" && b.Domain == "paypal.com" {
			found = true
		}
	}
	if !found {
		t.Error("paypal brand entry missing")
	}

	if !tbl.RiskyTLDs["tk"] {
		t.Error("tk should be risky")
	}
	if !tbl.SafeTLDs["gov"] {
		t.Error("gov should be safe")
	}
	if tbl.RiskyTLDs["com"] || tbl.SafeTLDs["com"] {
		t.Error("com should be neutral")
	}

	conf, ok := tbl.Blocklist["paypal-account-verify.com"]
	if !ok {
		t.Fatal("blocklist entry missing")
	}
	if conf <= 0 || conf > 1 {
		t.Errorf("confidence = %v out of (0,1]", conf)
	}
}

// TestLoad_Memoized verifies repeated loads return the same instance.
func TestLoad_Memoized(t *testing.T) {
	a, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	b, _ := Load()
	if a != b {
		t.Error("Load should return the memoized instance")
	}
}

// TestStats verifies the size report matches the loaded tables.
func TestStats(t *testing.T) {
	tbl, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s := tbl.Stats()
	if s.Brands != len(tbl.Brands) || s.Blocklist != len(tbl.Blocklist) {
		t.Errorf("stats %+v do not match tables", s)
	}
	if s.RiskyTLDs == 0 || s.SafeTLDs == 0 {
		t.Errorf("expected non-empty TLD tables, got %+v", s)
	}
}
