package scanner

import (
	"strings"
	"testing"
)

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	registry := NewRegistry()

	for _, name := range []string{
		"strict-transport-security",
		"Strict-Transport-Security",
		"STRICT-TRANSPORT-SECURITY",
	} {
		rule, ok := registry.Lookup(name)
		if !ok {
			t.Fatalf("expected lookup to find %q", name)
		}
		if rule.DisplayName != "Strict-Transport-Security" {
			t.Errorf("unexpected rule for %q: %s", name, rule.DisplayName)
		}
	}
}

func TestRegistryExcludesAnalyzerOwnedHeaders(t *testing.T) {
	registry := NewRegistry()

	if _, ok := registry.Lookup("set-cookie"); ok {
		t.Error("Set-Cookie must be owned by the cookie analyzer, not the registry")
	}
	for name := range disclosureHeaders {
		if _, ok := registry.Lookup(name); ok {
			t.Errorf("disclosure header %q must not carry a weighted rule", name)
		}
	}
}

func TestRegistryRulesAreWellFormed(t *testing.T) {
	registry := NewRegistry()

	seen := map[string]bool{}
	for _, rule := range registry.All() {
		if rule.Name != strings.ToLower(rule.Name) {
			t.Errorf("rule key %q is not lowercase", rule.Name)
		}
		if seen[rule.Name] {
			t.Errorf("duplicate rule key %q", rule.Name)
		}
		seen[rule.Name] = true
		if rule.Weight <= 0 {
			t.Errorf("rule %q has non-positive weight %g", rule.Name, rule.Weight)
		}
		switch rule.Category {
		case CategoryEssential, CategoryAdvanced, CategoryCORS:
		default:
			t.Errorf("rule %q has unscored category %q", rule.Name, rule.Category)
		}
	}
}

func TestRegistryOrderIsDeterministic(t *testing.T) {
	a := NewRegistry().All()
	b := NewRegistry().All()

	if len(a) != len(b) {
		t.Fatalf("rule counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			t.Fatalf("rule order differs at %d: %q vs %q", i, a[i].Name, b[i].Name)
		}
	}
}
