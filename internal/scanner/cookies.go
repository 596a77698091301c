package scanner

import (
	"fmt"
	"strings"
)

// sensitiveCookieKeywords mark cookies that likely carry credentials or
// session state; these are held to a stricter standard.
var sensitiveCookieKeywords = []string{
	"auth", "session", "token", "key", "secret", "password", "credential",
}

// cookieAttrs is the parsed attribute view of one Set-Cookie value.
type cookieAttrs struct {
	Name     string
	Secure   bool
	HTTPOnly bool
	SameSite string // lowercase value, "" when absent
}

func parseSetCookie(raw string) cookieAttrs {
	parts := strings.Split(raw, ";")
	attrs := cookieAttrs{}
	if len(parts) > 0 {
		name, _, _ := strings.Cut(strings.TrimSpace(parts[0]), "=")
		attrs.Name = strings.TrimSpace(name)
	}
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		key, value, _ := strings.Cut(part, "=")
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "secure":
			attrs.Secure = true
		case "httponly":
			attrs.HTTPOnly = true
		case "samesite":
			attrs.SameSite = strings.ToLower(strings.TrimSpace(value))
		}
	}
	return attrs
}

func isSensitiveCookieName(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range sensitiveCookieKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// AnalyzeCookies evaluates every Set-Cookie value for attribute
// completeness. Each cookie yields at most one finding carrying its issues
// as a nested list; the returned penalty is uncapped (the engine caps it).
func AnalyzeCookies(setCookies []string, points map[Severity]float64) ([]Finding, float64) {
	if points == nil {
		points = DefaultPenaltyPoints
	}

	var findings []Finding
	var penalty float64

	for _, raw := range setCookies {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		cookie := parseSetCookie(raw)

		var issues []ConfigIssue
		missingCore := false

		if !cookie.Secure {
			issues = append(issues, ConfigIssue{
				Problem:     "missing 'Secure' attribute",
				Remediation: "Add 'Secure' so the cookie is never sent over plaintext HTTP",
				Severity:    SeverityHigh,
			})
			missingCore = true
		}
		if !cookie.HTTPOnly {
			issues = append(issues, ConfigIssue{
				Problem:     "missing 'HttpOnly' attribute",
				Remediation: "Add 'HttpOnly' to keep scripts from reading the cookie",
				Severity:    SeverityMedium,
			})
			missingCore = true
		}
		switch cookie.SameSite {
		case "":
			issues = append(issues, ConfigIssue{
				Problem:     "missing 'SameSite' attribute",
				Remediation: "Add 'SameSite=Lax' or 'SameSite=Strict'",
				Severity:    SeverityMedium,
			})
			missingCore = true
		case "none":
			if !cookie.Secure {
				issues = append(issues, ConfigIssue{
					Problem:     "'SameSite=None' without 'Secure'",
					Remediation: "Cookies with 'SameSite=None' must also set 'Secure'",
					Severity:    SeverityHigh,
				})
			}
		}

		if len(issues) == 0 {
			continue
		}

		severity := SeverityInfo
		for _, issue := range issues {
			if issue.Severity.rank() < severity.rank() {
				severity = issue.Severity
			}
			penalty += points[issue.Severity]
		}

		// Sensitive cookies missing any core attribute are flagged high
		// regardless of the individual attribute severities.
		if missingCore && isSensitiveCookieName(cookie.Name) {
			severity = SeverityHigh
		}

		findings = append(findings, Finding{
			Header:         "Set-Cookie",
			Status:         StatusMisconfigured,
			Value:          raw,
			Severity:       severity,
			Category:       CategoryOther,
			Issue:          fmt.Sprintf("cookie %q has %d attribute issue(s)", cookie.Name, len(issues)),
			Recommendation: "Set 'Secure; HttpOnly; SameSite' on every cookie",
			SubIssues:      issues,
		})
	}

	return findings, penalty
}
