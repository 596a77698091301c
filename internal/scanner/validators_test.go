package scanner

import (
	"strings"
	"testing"
)

func TestCheckHSTS(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		wantSeverity Severity // "" means no issue
		wantProblem  string
	}{
		{"perfect", "max-age=31536000; includeSubDomains; preload", "", ""},
		{"two years", "max-age=63072000; includeSubDomains; preload", "", ""},
		{"missing max-age", "includeSubDomains", SeverityHigh, "max-age"},
		{"short max-age", "max-age=1000; includeSubDomains; preload", SeverityMedium, "below one year"},
		{"non-numeric max-age", "max-age=soon", SeverityMedium, "not a number"},
		{"missing includeSubDomains", "max-age=31536000; preload", SeverityLow, "includeSubDomains"},
		{"missing preload", "max-age=31536000; includeSubDomains", SeverityInfo, "preload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := checkHSTS(tt.value, nil)
			assertIssue(t, issue, tt.wantSeverity, tt.wantProblem)
		})
	}
}

func TestCheckHSTSReturnsFirstMatchOnly(t *testing.T) {
	// max-age missing outranks everything else even when other directives
	// are also absent.
	issue := checkHSTS("preload", nil)
	if issue == nil || issue.Severity != SeverityHigh {
		t.Fatalf("expected single high issue for missing max-age, got %+v", issue)
	}
}

func TestCheckCSP(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		wantSeverity Severity
		wantProblem  string
	}{
		{"strict policy", "default-src 'self'; script-src 'self'; style-src 'self'", "", ""},
		{"unsafe-inline", "default-src 'self'; script-src 'unsafe-inline'", SeverityHigh, "unsafe"},
		{"unsafe-eval", "default-src 'self'; script-src 'unsafe-eval'", SeverityHigh, "unsafe"},
		{"bare wildcard", "default-src *; script-src 'self'; style-src 'self'", SeverityMedium, "wildcard"},
		{"wildcard scoped to img-src", "default-src 'self'; script-src 'self'; style-src 'self'; img-src *", "", ""},
		{"wildcard scoped to font-src", "default-src 'self'; script-src 'self'; style-src 'self'; font-src *", "", ""},
		{"missing directives", "frame-ancestors 'none'", SeverityMedium, "default-src, script-src, style-src"},
		{"missing style-src only", "default-src 'self'; script-src 'self'", SeverityMedium, "style-src"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := checkCSP(tt.value, nil)
			assertIssue(t, issue, tt.wantSeverity, tt.wantProblem)
		})
	}
}

func TestCheckXFrameOptions(t *testing.T) {
	for _, value := range []string{"DENY", "deny", "SAMEORIGIN", "sameorigin", " DENY "} {
		if issue := checkXFrameOptions(value, nil); issue != nil {
			t.Errorf("expected %q to be accepted, got %+v", value, issue)
		}
	}
	issue := checkXFrameOptions("ALLOW-FROM https://evil.example", nil)
	assertIssue(t, issue, SeverityMedium, "")
}

func TestCheckXContentTypeOptions(t *testing.T) {
	if issue := checkXContentTypeOptions("nosniff", nil); issue != nil {
		t.Errorf("expected nosniff to be accepted, got %+v", issue)
	}
	assertIssue(t, checkXContentTypeOptions("sniff", nil), SeverityMedium, "nosniff")
}

func TestCheckXXSSProtection(t *testing.T) {
	if issue := checkXXSSProtection("1; mode=block", nil); issue != nil {
		t.Errorf("expected full value to be accepted, got %+v", issue)
	}
	assertIssue(t, checkXXSSProtection("0", nil), SeverityMedium, "not enabled")
	assertIssue(t, checkXXSSProtection("1", nil), SeverityLow, "mode=block")
}

func TestCheckReferrerPolicy(t *testing.T) {
	if issue := checkReferrerPolicy("strict-origin-when-cross-origin", nil); issue != nil {
		t.Errorf("expected strict policy to be accepted, got %+v", issue)
	}
	assertIssue(t, checkReferrerPolicy("unsafe-url", nil), SeverityLow, "leak")
	assertIssue(t, checkReferrerPolicy("no-referrer-when-downgrade", nil), SeverityLow, "leak")
}

func TestEnumValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator Validator
		good      []string
		bad       string
	}{
		{"coop", checkCOOP, []string{"same-origin", "Same-Origin-Allow-Popups"}, "unsafe-none"},
		{"coep", checkCOEP, []string{"require-corp", "credentialless"}, "unsafe-none"},
		{"corp", checkCORP, []string{"same-origin", "same-site", "cross-origin"}, "anything"},
		{"cross-domain-policies", checkPermittedCrossDomainPolicies, []string{"none", "master-only"}, "all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, value := range tt.good {
				if issue := tt.validator(value, nil); issue != nil {
					t.Errorf("expected %q to be accepted, got %+v", value, issue)
				}
			}
			assertIssue(t, tt.validator(tt.bad, nil), SeverityLow, "")
		})
	}
}

func TestCheckExpectCT(t *testing.T) {
	if issue := checkExpectCT("max-age=86400, enforce", nil); issue != nil {
		t.Errorf("expected valid Expect-CT to be accepted, got %+v", issue)
	}
	assertIssue(t, checkExpectCT("enforce", nil), SeverityLow, "max-age")
	assertIssue(t, checkExpectCT("max-age=100", nil), SeverityInfo, "below")
	assertIssue(t, checkExpectCT("max-age=abc", nil), SeverityLow, "not a number")
}

func TestJSONHeaderParseFailureBecomesIssue(t *testing.T) {
	// A malformed value is a finding, never a failure.
	for name, validator := range map[string]Validator{
		"report-to":       checkReportTo,
		"nel":             checkNEL,
		"clear-site-data": checkClearSiteData,
	} {
		issue := validator("{not json", nil)
		if issue == nil {
			t.Errorf("%s: expected invalid JSON issue", name)
			continue
		}
		if issue.Severity != SeverityLow || !strings.Contains(issue.Problem, "invalid JSON") {
			t.Errorf("%s: unexpected issue %+v", name, issue)
		}
	}
}

func TestCheckReportTo(t *testing.T) {
	valid := `{"group":"default","max_age":10886400,"endpoints":[{"url":"https://r.example.com"}]}`
	if issue := checkReportTo(valid, nil); issue != nil {
		t.Errorf("expected valid Report-To to be accepted, got %+v", issue)
	}
	assertIssue(t, checkReportTo(`{"group":"default"}`, nil), SeverityLow, "max_age")
}

func TestCheckNEL(t *testing.T) {
	if issue := checkNEL(`{"report_to":"default","max_age":2592000}`, nil); issue != nil {
		t.Errorf("expected valid NEL to be accepted, got %+v", issue)
	}
	assertIssue(t, checkNEL(`{"max_age":2592000}`, nil), SeverityLow, "report_to")
}

func TestCheckClearSiteData(t *testing.T) {
	if issue := checkClearSiteData(`"cache", "cookies", "storage"`, nil); issue != nil {
		t.Errorf("expected valid Clear-Site-Data to be accepted, got %+v", issue)
	}
	if issue := checkClearSiteData(`"*"`, nil); issue != nil {
		t.Errorf("expected wildcard directive to be accepted, got %+v", issue)
	}
	assertIssue(t, checkClearSiteData(`"everything"`, nil), SeverityLow, "unknown directive")
	assertIssue(t, checkClearSiteData(`cache`, nil), SeverityLow, "invalid JSON")
}

func TestCheckAllowOrigin(t *testing.T) {
	if issue := checkAllowOrigin("https://app.example.com", nil); issue != nil {
		t.Errorf("expected explicit origin to be accepted, got %+v", issue)
	}
	assertIssue(t, checkAllowOrigin("*", nil), SeverityMedium, "any origin")
}

func TestCheckAllowCredentialsNeedsWildcardOrigin(t *testing.T) {
	wildcard := Headers{"access-control-allow-origin": {"*"}}
	scoped := Headers{"access-control-allow-origin": {"https://app.example.com"}}

	assertIssue(t, checkAllowCredentials("true", wildcard), SeverityHigh, "wildcard")
	assertIssue(t, checkAllowCredentials("TRUE", wildcard), SeverityHigh, "wildcard")

	if issue := checkAllowCredentials("true", scoped); issue != nil {
		t.Errorf("credentials with explicit origin should pass, got %+v", issue)
	}
	if issue := checkAllowCredentials("false", wildcard); issue != nil {
		t.Errorf("credentials disabled should pass, got %+v", issue)
	}
}

func TestCheckAllowMethods(t *testing.T) {
	if issue := checkAllowMethods("GET, POST, OPTIONS", nil); issue != nil {
		t.Errorf("expected safe methods to be accepted, got %+v", issue)
	}
	issue := checkAllowMethods("GET, PUT, delete", nil)
	if issue == nil {
		t.Fatal("expected issue for state-changing methods")
	}
	if !strings.Contains(issue.Problem, "PUT") || !strings.Contains(issue.Problem, "DELETE") {
		t.Errorf("expected PUT and DELETE to be reported, got %q", issue.Problem)
	}
}

func TestCheckExposeHeaders(t *testing.T) {
	if issue := checkExposeHeaders("Content-Length, X-Total-Count", nil); issue != nil {
		t.Errorf("expected harmless headers to be accepted, got %+v", issue)
	}
	assertIssue(t, checkExposeHeaders("Authorization, Content-Length", nil), SeverityMedium, "authorization")
	assertIssue(t, checkExposeHeaders("x-api-key", nil), SeverityMedium, "x-api-key")
}

func TestCheckCORSMaxAge(t *testing.T) {
	if issue := checkCORSMaxAge("600", nil); issue != nil {
		t.Errorf("expected small max-age to be accepted, got %+v", issue)
	}
	assertIssue(t, checkCORSMaxAge("172800", nil), SeverityInfo, "exceeds")
	assertIssue(t, checkCORSMaxAge("forever", nil), SeverityLow, "not a number")
}

func assertIssue(t *testing.T, issue *ConfigIssue, wantSeverity Severity, wantProblem string) {
	t.Helper()
	if wantSeverity == "" {
		if issue != nil {
			t.Fatalf("expected no issue, got %+v", issue)
		}
		return
	}
	if issue == nil {
		t.Fatalf("expected %s issue containing %q, got none", wantSeverity, wantProblem)
	}
	if issue.Severity != wantSeverity {
		t.Errorf("expected severity %s, got %s (%q)", wantSeverity, issue.Severity, issue.Problem)
	}
	if wantProblem != "" && !strings.Contains(strings.ToLower(issue.Problem), strings.ToLower(wantProblem)) {
		t.Errorf("expected problem to mention %q, got %q", wantProblem, issue.Problem)
	}
}
