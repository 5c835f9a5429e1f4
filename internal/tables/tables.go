// Package tables owns the static data the engine needs at analysis time:
// the curated brand list, the TLD reputation table and the threat-intel
// blocklist. Tables are embedded in the binary, parsed once at startup and
// read-only afterwards, so no locking is needed on the lookup path.
package tables

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed brands.yaml tlds.yaml blocklist.yaml
var dataFS embed.FS

// Brand pairs a brand name with its legitimate registered domain.
type Brand struct {
	Name   string `yaml:"name"`
	Domain string `yaml:"domain"`
}

// BlocklistEntry is one known-bad domain with a source confidence in [0,1].
type BlocklistEntry struct {
	Domain     string  `yaml:"domain"`
	Confidence float64 `yaml:"confidence"`
}

// Tables holds all loaded static data.
type Tables struct {
	Brands    []Brand
	RiskyTLDs map[string]bool
	SafeTLDs  map[string]bool
	Blocklist map[string]float64
}

type brandsFile struct {
	Brands []Brand `yaml:"brands"`
}

type tldsFile struct {
	Risky []string `yaml:"risky"`
	Safe  []string `yaml:"safe"`
}

type blocklistFile struct {
	Entries []BlocklistEntry `yaml:"entries"`
}

var (
	loadOnce sync.Once
	loaded   *Tables
	loadErr  error
)

// Load parses the embedded tables. The first call does the work; later
// calls return the same instance. Initialization completes before the first
// analysis request, so lookups never race with loading.
func Load() (*Tables, error) {
	loadOnce.Do(func() {
		loaded, loadErr = parseAll()
	})
	return loaded, loadErr
}

func parseAll() (*Tables, error) {
	t := &Tables{
		RiskyTLDs: make(map[string]bool),
		SafeTLDs:  make(map[string]bool),
		Blocklist: make(map[string]float64),
	}

	var bf brandsFile
	if err := parseFile("brands.yaml", &bf); err != nil {
		return nil, err
	}
	for _, b := range bf.Brands {
		b.Name = strings.ToLower(b.Name)
		b.Domain = strings.ToLower(b.Domain)
		t.Brands = append(t.Brands, b)
	}

	var tf tldsFile
	if err := parseFile("tlds.yaml", &tf); err != nil {
		return nil, err
	}
	for _, tld := range tf.Risky {
		t.RiskyTLDs[strings.ToLower(tld)] = true
	}
	for _, tld := range tf.Safe {
		t.SafeTLDs[strings.ToLower(tld)] = true
	}

	var lf blocklistFile
	if err := parseFile("blocklist.yaml", &lf); err != nil {
		return nil, err
	}
	for _, e := range lf.Entries {
		conf := e.Confidence
		if conf <= 0 || conf > 1 {
			conf = 1.0
		}
		t.Blocklist[strings.ToLower(e.Domain)] = conf
	}

	return t, nil
}

func parseFile(name string, out any) error {
	data, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read embedded table %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse table %s: %w", name, err)
	}
	return nil
}

// Stats reports table sizes for the introspection endpoint.
type Stats struct {
	Brands    int `json:"brands"`
	RiskyTLDs int `json:"risky_tlds"`
	SafeTLDs  int `json:"safe_tlds"`
	Blocklist int `json:"blocklist"`
}

// Stats returns the number of entries loaded per table.
func (t *Tables) Stats() Stats {
	return Stats{
		Brands:    len(t.Brands),
		RiskyTLDs: len(t.RiskyTLDs),
		SafeTLDs:  len(t.SafeTLDs),
		Blocklist: len(t.Blocklist),
	}
}
