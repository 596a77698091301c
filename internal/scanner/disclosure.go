package scanner

import (
	"fmt"
	"regexp"
)

// disclosureHeaders are headers whose mere presence leaks implementation
// details: server banners, framework fingerprints and debug tokens.
var disclosureHeaders = map[string]struct {
	Severity    Severity
	Description string
}{
	"server":                 {SeverityMedium, "server software banner"},
	"x-powered-by":           {SeverityMedium, "framework fingerprint"},
	"x-aspnet-version":       {SeverityHigh, "ASP.NET version disclosure"},
	"x-aspnetmvc-version":    {SeverityHigh, "ASP.NET MVC version disclosure"},
	"x-generator":            {SeverityMedium, "site generator fingerprint"},
	"x-drupal-cache":         {SeverityLow, "Drupal fingerprint"},
	"x-drupal-dynamic-cache": {SeverityLow, "Drupal fingerprint"},
	"x-backend-server":       {SeverityHigh, "internal backend hostname"},
	"x-served-by":            {SeverityLow, "cache node identifier"},
	"x-cache":                {SeverityInfo, "cache status detail"},
	"x-cache-hits":           {SeverityInfo, "cache status detail"},
	"x-varnish":              {SeverityLow, "Varnish fingerprint"},
	"via":                    {SeverityLow, "proxy chain disclosure"},
	"x-runtime":              {SeverityMedium, "backend timing and framework hint"},
	"x-version":              {SeverityHigh, "application version disclosure"},
	"x-debug-token":          {SeverityHigh, "debug profiler token"},
	"x-debug-token-link":     {SeverityHigh, "debug profiler link"},
	"x-sourcemap":            {SeverityHigh, "source map location"},
	"sourcemap":              {SeverityHigh, "source map location"},
}

// versionPattern matches N.N or N.N.N version strings in banner values.
var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// DefaultPenaltyPoints maps severity to penalty points for the capped
// analyzers. Canonical table: 3/2/1/0 (see DESIGN.md); the same constants
// drive both disclosure and cookie penalties.
var DefaultPenaltyPoints = map[Severity]float64{
	SeverityHigh:   3,
	SeverityMedium: 2,
	SeverityLow:    1,
	SeverityInfo:   0,
}

// AnalyzeDisclosure scans the header map for information-leaking headers
// and version strings. It returns the findings and the accumulated penalty
// before capping; the engine applies the cap.
func AnalyzeDisclosure(headers Headers, points map[Severity]float64) ([]Finding, float64) {
	if points == nil {
		points = DefaultPenaltyPoints
	}

	var findings []Finding
	var penalty float64

	for name, entry := range disclosureHeaders {
		value := headers.Get(name)
		if value == "" {
			continue
		}
		findings = append(findings, Finding{
			Header:         name,
			Status:         StatusDangerous,
			Value:          value,
			Severity:       entry.Severity,
			Category:       CategoryOther,
			Issue:          fmt.Sprintf("%s: %q", entry.Description, value),
			Recommendation: "Remove or obfuscate this header",
		})
		penalty += points[entry.Severity]
	}

	// Version strings in banners are worth an extra medium finding even
	// when the banner itself already scored.
	for _, name := range []string{"server", "x-powered-by"} {
		value := headers.Get(name)
		if value == "" {
			continue
		}
		if match := versionPattern.FindString(value); match != "" {
			findings = append(findings, Finding{
				Header:         name,
				Status:         StatusDangerous,
				Value:          value,
				Severity:       SeverityMedium,
				Category:       CategoryOther,
				Issue:          fmt.Sprintf("exposes version number %q", match),
				Recommendation: "Strip version numbers from the banner",
			})
			penalty += points[SeverityMedium]
		}
	}

	return findings, penalty
}
