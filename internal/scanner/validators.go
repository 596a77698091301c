package scanner

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	hstsMinMaxAge    = 31536000 // one year
	corsMaxAgeLimit  = 86400
	expectCTMinAge   = 86400
	permissionsPolicyMinLen = 10 // shorter than this is almost certainly an empty policy
)

// parseDirectives splits a directive-style header value ("k=v; k2" or
// "k=v, k2") into a lowercase key → raw value map.
func parseDirectives(value string, sep string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(value, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, _ := strings.Cut(part, "=")
		out[strings.ToLower(strings.TrimSpace(key))] = strings.Trim(strings.TrimSpace(val), `"`)
	}
	return out
}

// parseCSPDirectives splits a CSP value into directive name → source tokens.
func parseCSPDirectives(value string) map[string][]string {
	out := make(map[string][]string)
	for _, part := range strings.Split(value, ";") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) == 0 {
			continue
		}
		out[strings.ToLower(fields[0])] = fields[1:]
	}
	return out
}

// checkHSTS validates Strict-Transport-Security. Checks run in priority
// order and return on the first problem found.
func checkHSTS(value string, _ Headers) *ConfigIssue {
	directives := parseDirectives(strings.ToLower(value), ";")

	maxAge, ok := directives["max-age"]
	if !ok {
		return &ConfigIssue{
			Problem:     "missing 'max-age' directive",
			Remediation: "Set 'max-age=31536000' (one year) at minimum",
			Severity:    SeverityHigh,
		}
	}
	seconds, err := strconv.Atoi(maxAge)
	if err != nil {
		return &ConfigIssue{
			Problem:     fmt.Sprintf("'max-age' value %q is not a number", maxAge),
			Remediation: "Set 'max-age=31536000' (one year) at minimum",
			Severity:    SeverityMedium,
		}
	}
	if seconds < hstsMinMaxAge {
		return &ConfigIssue{
			Problem:     fmt.Sprintf("'max-age' of %d is below one year (%d)", seconds, hstsMinMaxAge),
			Remediation: "Increase 'max-age' to at least 31536000",
			Severity:    SeverityMedium,
		}
	}
	if _, ok := directives["includesubdomains"]; !ok {
		return &ConfigIssue{
			Problem:     "missing 'includeSubDomains' directive",
			Remediation: "Add 'includeSubDomains' to protect all subdomains",
			Severity:    SeverityLow,
		}
	}
	if _, ok := directives["preload"]; !ok {
		return &ConfigIssue{
			Problem:     "missing 'preload' directive",
			Remediation: "Add 'preload' and submit the site to the HSTS preload list",
			Severity:    SeverityInfo,
		}
	}
	return nil
}

// wildcardAllowedIn lists CSP directives where a bare wildcard is tolerable.
var wildcardAllowedIn = map[string]bool{
	"font-src": true,
	"img-src":  true,
}

// checkCSP validates Content-Security-Policy.
func checkCSP(value string, _ Headers) *ConfigIssue {
	lower := strings.ToLower(value)

	if strings.Contains(lower, "'unsafe-inline'") || strings.Contains(lower, "'unsafe-eval'") {
		return &ConfigIssue{
			Problem:     "policy allows 'unsafe-inline' or 'unsafe-eval'",
			Remediation: "Remove unsafe sources; use nonces or hashes for inline content",
			Severity:    SeverityHigh,
		}
	}

	directives := parseCSPDirectives(lower)
	for name, tokens := range directives {
		if wildcardAllowedIn[name] {
			continue
		}
		for _, token := range tokens {
			if token == "*" {
				return &ConfigIssue{
					Problem:     fmt.Sprintf("wildcard source in '%s' is too permissive", name),
					Remediation: "Replace '*' with an explicit source list",
					Severity:    SeverityMedium,
				}
			}
		}
	}

	var missing []string
	for _, name := range []string{"default-src", "script-src", "style-src"} {
		if _, ok := directives[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &ConfigIssue{
			Problem:     "missing directives: " + strings.Join(missing, ", "),
			Remediation: "Define 'default-src' as a fallback plus explicit script/style sources",
			Severity:    SeverityMedium,
		}
	}
	return nil
}

func checkXFrameOptions(value string, _ Headers) *ConfigIssue {
	v := strings.ToUpper(strings.TrimSpace(value))
	if v == "DENY" || v == "SAMEORIGIN" {
		return nil
	}
	return &ConfigIssue{
		Problem:     fmt.Sprintf("value %q is not DENY or SAMEORIGIN", value),
		Remediation: "Set to 'DENY', or 'SAMEORIGIN' if the site frames itself",
		Severity:    SeverityMedium,
	}
}

func checkXContentTypeOptions(value string, _ Headers) *ConfigIssue {
	if strings.EqualFold(strings.TrimSpace(value), "nosniff") {
		return nil
	}
	return &ConfigIssue{
		Problem:     fmt.Sprintf("value %q is not 'nosniff'", value),
		Remediation: "Set to 'nosniff'",
		Severity:    SeverityMedium,
	}
}

func checkXXSSProtection(value string, _ Headers) *ConfigIssue {
	lower := strings.ToLower(value)
	if !strings.Contains(lower, "1") {
		return &ConfigIssue{
			Problem:     "filter is not enabled",
			Remediation: "Set to '1; mode=block'",
			Severity:    SeverityMedium,
		}
	}
	if !strings.Contains(lower, "mode=block") {
		return &ConfigIssue{
			Problem:     "missing 'mode=block'",
			Remediation: "Set to '1; mode=block' so detected attacks block rendering",
			Severity:    SeverityLow,
		}
	}
	return nil
}

func checkReferrerPolicy(value string, _ Headers) *ConfigIssue {
	lower := strings.ToLower(value)
	if strings.Contains(lower, "unsafe-url") || strings.Contains(lower, "no-referrer-when-downgrade") {
		return &ConfigIssue{
			Problem:     "policy may leak full URLs to third parties",
			Remediation: "Use 'strict-origin-when-cross-origin' or 'no-referrer'",
			Severity:    SeverityLow,
		}
	}
	return nil
}

func checkPermissionsPolicy(value string, _ Headers) *ConfigIssue {
	if len(strings.TrimSpace(value)) < permissionsPolicyMinLen {
		return &ConfigIssue{
			Problem:     "policy looks empty or minimal",
			Remediation: "Disable unused features, e.g. 'geolocation=(), microphone=(), camera=()'",
			Severity:    SeverityInfo,
		}
	}
	return nil
}

// enumValidator builds a validator accepting a small allow-list of values.
func enumValidator(allowed []string, remediation string) Validator {
	return func(value string, _ Headers) *ConfigIssue {
		v := strings.ToLower(strings.TrimSpace(value))
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return &ConfigIssue{
			Problem:     fmt.Sprintf("value %q is not one of %s", value, strings.Join(allowed, ", ")),
			Remediation: remediation,
			Severity:    SeverityLow,
		}
	}
}

var (
	checkCOOP = enumValidator(
		[]string{"same-origin", "same-origin-allow-popups", "noopener-allow-popups"},
		"Set to 'same-origin'")
	checkCOEP = enumValidator(
		[]string{"require-corp", "credentialless"},
		"Set to 'require-corp' or 'credentialless'")
	checkCORP = enumValidator(
		[]string{"same-origin", "same-site", "cross-origin"},
		"Set to 'same-origin' unless the resource is meant to be embedded elsewhere")
	checkPermittedCrossDomainPolicies = enumValidator(
		[]string{"none", "master-only"},
		"Set to 'none'")
)

func checkExpectCT(value string, _ Headers) *ConfigIssue {
	directives := parseDirectives(strings.ToLower(value), ",")
	maxAge, ok := directives["max-age"]
	if !ok {
		return &ConfigIssue{
			Problem:     "missing required 'max-age' directive",
			Remediation: "Set 'max-age=86400' at minimum",
			Severity:    SeverityLow,
		}
	}
	seconds, err := strconv.Atoi(maxAge)
	if err != nil {
		return &ConfigIssue{
			Problem:     fmt.Sprintf("'max-age' value %q is not a number", maxAge),
			Remediation: "Set 'max-age=86400' at minimum",
			Severity:    SeverityLow,
		}
	}
	if seconds < expectCTMinAge {
		return &ConfigIssue{
			Problem:     fmt.Sprintf("'max-age' of %d is below %d", seconds, expectCTMinAge),
			Remediation: "Increase 'max-age' to at least 86400",
			Severity:    SeverityInfo,
		}
	}
	return nil
}

func invalidJSONIssue(header string) *ConfigIssue {
	return &ConfigIssue{
		Problem:     "invalid JSON",
		Remediation: fmt.Sprintf("Fix the '%s' header so it parses as JSON", header),
		Severity:    SeverityLow,
	}
}

func checkReportTo(value string, _ Headers) *ConfigIssue {
	var group struct {
		Group     string            `json:"group"`
		MaxAge    *int64            `json:"max_age"`
		Endpoints []json.RawMessage `json:"endpoints"`
	}
	if err := json.Unmarshal([]byte(value), &group); err != nil {
		return invalidJSONIssue("Report-To")
	}
	if group.MaxAge == nil || len(group.Endpoints) == 0 {
		return &ConfigIssue{
			Problem:     "missing required 'max_age' or 'endpoints' field",
			Remediation: "Declare both 'max_age' and at least one endpoint",
			Severity:    SeverityLow,
		}
	}
	return nil
}

func checkNEL(value string, _ Headers) *ConfigIssue {
	var policy struct {
		ReportTo string `json:"report_to"`
		MaxAge   *int64 `json:"max_age"`
	}
	if err := json.Unmarshal([]byte(value), &policy); err != nil {
		return invalidJSONIssue("NEL")
	}
	if policy.ReportTo == "" || policy.MaxAge == nil {
		return &ConfigIssue{
			Problem:     "missing required 'report_to' or 'max_age' field",
			Remediation: "Reference a Report-To group and set 'max_age'",
			Severity:    SeverityLow,
		}
	}
	return nil
}

// clearSiteDataTypes are the directives browsers understand.
var clearSiteDataTypes = map[string]bool{
	"cache":             true,
	"cookies":           true,
	"storage":           true,
	"executioncontexts": true,
	"*":                 true,
}

// checkClearSiteData validates the quoted JSON-string directive list.
func checkClearSiteData(value string, _ Headers) *ConfigIssue {
	for _, token := range strings.Split(value, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		var directive string
		if err := json.Unmarshal([]byte(token), &directive); err != nil {
			return invalidJSONIssue("Clear-Site-Data")
		}
		if !clearSiteDataTypes[strings.ToLower(directive)] {
			return &ConfigIssue{
				Problem:     fmt.Sprintf("unknown directive %q", directive),
				Remediation: `Use the defined directives: "cache", "cookies", "storage", "executionContexts" or "*"`,
				Severity:    SeverityLow,
			}
		}
	}
	return nil
}

func checkAllowOrigin(value string, _ Headers) *ConfigIssue {
	if strings.TrimSpace(value) == "*" {
		return &ConfigIssue{
			Problem:     "any origin may read this response",
			Remediation: "Restrict to explicit trusted origins",
			Severity:    SeverityMedium,
		}
	}
	return nil
}

// checkAllowCredentials is the one validator needing cross-header context:
// credentials combined with a wildcard origin.
func checkAllowCredentials(value string, headers Headers) *ConfigIssue {
	if !strings.EqualFold(strings.TrimSpace(value), "true") {
		return nil
	}
	if strings.TrimSpace(headers.Get("access-control-allow-origin")) == "*" {
		return &ConfigIssue{
			Problem:     "credentials allowed together with wildcard origin",
			Remediation: "Echo a validated origin instead of '*' when allowing credentials",
			Severity:    SeverityHigh,
		}
	}
	return nil
}

var riskyCORSMethods = []string{"PUT", "DELETE", "PATCH"}

func checkAllowMethods(value string, _ Headers) *ConfigIssue {
	var found []string
	for _, method := range strings.Split(value, ",") {
		method = strings.ToUpper(strings.TrimSpace(method))
		for _, risky := range riskyCORSMethods {
			if method == risky {
				found = append(found, method)
			}
		}
	}
	if len(found) > 0 {
		return &ConfigIssue{
			Problem:     "state-changing methods allowed cross-origin: " + strings.Join(found, ", "),
			Remediation: "Only allow state-changing methods cross-origin when strictly required",
			Severity:    SeverityLow,
		}
	}
	return nil
}

// sensitiveExposedHeaders must never be readable by cross-origin scripts.
var sensitiveExposedHeaders = []string{"authorization", "x-api-key", "x-auth-token", "set-cookie"}

func checkExposeHeaders(value string, _ Headers) *ConfigIssue {
	var found []string
	for _, name := range strings.Split(value, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		for _, sensitive := range sensitiveExposedHeaders {
			if name == sensitive {
				found = append(found, name)
			}
		}
	}
	if len(found) > 0 {
		return &ConfigIssue{
			Problem:     "sensitive headers exposed cross-origin: " + strings.Join(found, ", "),
			Remediation: "Remove authentication and session headers from the exposed list",
			Severity:    SeverityMedium,
		}
	}
	return nil
}

func checkCORSMaxAge(value string, _ Headers) *ConfigIssue {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return &ConfigIssue{
			Problem:     fmt.Sprintf("value %q is not a number", value),
			Remediation: "Set a numeric preflight cache lifetime",
			Severity:    SeverityLow,
		}
	}
	if seconds > corsMaxAgeLimit {
		return &ConfigIssue{
			Problem:     fmt.Sprintf("preflight cache of %d exceeds %d seconds", seconds, corsMaxAgeLimit),
			Remediation: "Keep 'Access-Control-Max-Age' at or below 86400",
			Severity:    SeverityInfo,
		}
	}
	return nil
}
