package scanner

import (
	"net/http"
	"sort"
	"strings"
	"time"
)

// Headers is a normalized header map: keys lowercased, values preserved in
// arrival order. Set-Cookie keeps one entry per cookie; for every other
// header only the first value matters to the checks.
type Headers map[string][]string

// NewHeaders normalizes an http.Header into a Headers map.
func NewHeaders(h http.Header) Headers {
	m := make(Headers, len(h))
	for name, values := range h {
		key := strings.ToLower(name)
		m[key] = append(m[key], values...)
	}
	return m
}

// Get returns the first value for the given header name, or "" if absent.
func (h Headers) Get(name string) string {
	values := h[strings.ToLower(name)]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Values returns all values for the given header name.
func (h Headers) Values(name string) []string {
	return h[strings.ToLower(name)]
}

// Has reports whether the header is present with a non-empty value.
func (h Headers) Has(name string) bool {
	return h.Get(name) != ""
}

// ConfigIssue describes a problem with a present header's value.
type ConfigIssue struct {
	Problem     string   `json:"problem"`
	Remediation string   `json:"remediation,omitempty"`
	Severity    Severity `json:"severity"`
}

// Finding is one observation about a header or cookie.
type Finding struct {
	Header         string        `json:"header"`
	Status         Status        `json:"status"`
	Value          string        `json:"value,omitempty"`
	Severity       Severity      `json:"severity"`
	Category       Category      `json:"category"`
	Weight         float64       `json:"weight"`
	Earned         float64       `json:"earned"`
	Issue          string        `json:"issue,omitempty"`
	Recommendation string        `json:"recommendation,omitempty"`
	SubIssues      []ConfigIssue `json:"sub_issues,omitempty"`
}

// CategoryScore holds the earned/total points for one scored category and
// its weighted contribution to the final score.
type CategoryScore struct {
	Earned       float64 `json:"earned"`
	Total        float64 `json:"total"`
	Contribution float64 `json:"contribution"`
}

// ScoreBreakdown explains how the final score was assembled.
type ScoreBreakdown struct {
	Categories        map[Category]CategoryScore `json:"categories"`
	DisclosurePenalty float64                    `json:"disclosure_penalty"`
	CookiePenalty     float64                    `json:"cookie_penalty"`
}

// ScanResult is the aggregate output of one evaluation.
type ScanResult struct {
	Target     string         `json:"target"`
	CheckedAt  time.Time      `json:"checked_at"`
	HTTPStatus int            `json:"http_status,omitempty"`
	Headers    Headers        `json:"headers,omitempty"`
	Findings   []Finding      `json:"findings"`
	Score      int            `json:"score"`
	Grade      string         `json:"grade"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
	Error      string         `json:"error,omitempty"`
}

// sortFindings orders findings by severity (high first), then by status so
// dangerous/misconfigured precede present at equal severity, then by header
// name for determinism.
func sortFindings(findings []Finding) {
	statusRank := map[Status]int{
		StatusDangerous:     0,
		StatusMisconfigured: 1,
		StatusMissing:       2,
		StatusPresent:       3,
	}
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity.rank() != b.Severity.rank() {
			return a.Severity.rank() < b.Severity.rank()
		}
		if statusRank[a.Status] != statusRank[b.Status] {
			return statusRank[a.Status] < statusRank[b.Status]
		}
		return a.Header < b.Header
	})
}
