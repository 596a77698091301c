package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/headgrade/headgrade/internal/scanner"
	"github.com/headgrade/headgrade/internal/storage"
)

func TestCountBySeverityIgnoresCleanFindings(t *testing.T) {
	findings := []scanner.Finding{
		{Status: scanner.StatusPresent, Severity: scanner.SeverityInfo},
		{Status: scanner.StatusMissing, Severity: scanner.SeverityHigh},
		{Status: scanner.StatusMisconfigured, Severity: scanner.SeverityMedium},
		{Status: scanner.StatusDangerous, Severity: scanner.SeverityMedium},
		{Status: scanner.StatusMissing, Severity: scanner.SeverityLow},
	}

	high, medium, low := countBySeverity(findings)
	if high != 1 || medium != 2 || low != 1 {
		t.Errorf("got %d/%d/%d, want 1/2/1", high, medium, low)
	}
}

func TestFormatShortTimestamp(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC)
	if got := formatShortTimestamp(ts); got != "2025-03-14 09:26 UTC" {
		t.Errorf("unexpected timestamp format %q", got)
	}
	if got := formatShortTimestamp(time.Time{}); got != "unknown" {
		t.Errorf("zero time should render as unknown, got %q", got)
	}
}

func TestHTMLReportTemplateRenders(t *testing.T) {
	run := &storage.Run{
		StartedAt:   time.Now().UTC(),
		CompletedAt: time.Now().UTC(),
		Results: []scanner.ScanResult{
			{
				Target: "https://example.com",
				Score:  73,
				Grade:  "C",
				Findings: []scanner.Finding{
					{Header: "Strict-Transport-Security", Status: scanner.StatusMissing, Severity: scanner.SeverityHigh, Weight: 20, Issue: "header not set"},
				},
			},
			{Target: "https://down.example.com", Grade: "F", Error: "connection refused"},
		},
	}

	var buf strings.Builder
	if err := htmlReportTemplate.Execute(&buf, run); err != nil {
		t.Fatalf("template failed: %v", err)
	}
	html := buf.String()

	for _, want := range []string{"https://example.com", "73/100", "Strict-Transport-Security", "connection refused"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered report missing %q", want)
		}
	}
}

func TestPDFReportRenders(t *testing.T) {
	run := &storage.Run{
		StartedAt: time.Now().UTC(),
		Results: []scanner.ScanResult{
			{Target: "https://example.com", Score: 55, Grade: "E",
				Findings: []scanner.Finding{{Header: "X-Frame-Options", Status: scanner.StatusMissing, Severity: scanner.SeverityHigh, Issue: "header not set"}}},
		},
	}

	data, err := renderPDFReport(run)
	if err != nil {
		t.Fatalf("renderPDFReport failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("expected a PDF document")
	}
}
