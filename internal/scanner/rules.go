package scanner

import "strings"

// Validator inspects a present header value and returns a ConfigIssue, or
// nil when the configuration is acceptable. The full normalized header map
// is supplied for the few checks that need cross-header context.
type Validator func(value string, headers Headers) *ConfigIssue

// Rule describes one recognized security header.
type Rule struct {
	Name        string   // lowercase header name, unique registry key
	DisplayName string
	Description string
	Remediation string
	Severity    Severity // severity when missing or misconfigured
	Weight      float64
	Category    Category
	Validator   Validator // nil means presence alone earns full weight
}

var essentialRules = []Rule{
	{
		Name:        "strict-transport-security",
		DisplayName: "Strict-Transport-Security",
		Description: "Forces browsers to use HTTPS for all future requests",
		Remediation: "Add 'Strict-Transport-Security: max-age=31536000; includeSubDomains; preload'",
		Severity:    SeverityHigh,
		Weight:      20,
		Category:    CategoryEssential,
		Validator:   checkHSTS,
	},
	{
		Name:        "content-security-policy",
		DisplayName: "Content-Security-Policy",
		Description: "Restricts the sources from which content may be loaded",
		Remediation: "Implement a strict Content-Security-Policy appropriate for your application",
		Severity:    SeverityHigh,
		Weight:      20,
		Category:    CategoryEssential,
		Validator:   checkCSP,
	},
	{
		Name:        "x-frame-options",
		DisplayName: "X-Frame-Options",
		Description: "Prevents the page from being embedded in frames (clickjacking)",
		Remediation: "Add 'X-Frame-Options: DENY' or 'SAMEORIGIN'",
		Severity:    SeverityHigh,
		Weight:      15,
		Category:    CategoryEssential,
		Validator:   checkXFrameOptions,
	},
	{
		Name:        "x-content-type-options",
		DisplayName: "X-Content-Type-Options",
		Description: "Stops browsers from MIME-sniffing responses away from the declared type",
		Remediation: "Add 'X-Content-Type-Options: nosniff'",
		Severity:    SeverityHigh,
		Weight:      15,
		Category:    CategoryEssential,
		Validator:   checkXContentTypeOptions,
	},
	{
		Name:        "x-xss-protection",
		DisplayName: "X-XSS-Protection",
		Description: "Legacy browser XSS filter toggle",
		Remediation: "Add 'X-XSS-Protection: 1; mode=block'",
		Severity:    SeverityMedium,
		Weight:      10,
		Category:    CategoryEssential,
		Validator:   checkXXSSProtection,
	},
	{
		Name:        "referrer-policy",
		DisplayName: "Referrer-Policy",
		Description: "Controls how much referrer information leaves the site",
		Remediation: "Add 'Referrer-Policy: strict-origin-when-cross-origin' or 'no-referrer'",
		Severity:    SeverityMedium,
		Weight:      10,
		Category:    CategoryEssential,
		Validator:   checkReferrerPolicy,
	},
}

var advancedRules = []Rule{
	{
		Name:        "permissions-policy",
		DisplayName: "Permissions-Policy",
		Description: "Controls which browser features the page may use",
		Remediation: "Add 'Permissions-Policy' to lock down unused features (e.g. 'geolocation=(), microphone=()')",
		Severity:    SeverityMedium,
		Weight:      10,
		Category:    CategoryAdvanced,
		Validator:   checkPermissionsPolicy,
	},
	{
		Name:        "cross-origin-opener-policy",
		DisplayName: "Cross-Origin-Opener-Policy",
		Description: "Isolates the browsing context from cross-origin windows",
		Remediation: "Add 'Cross-Origin-Opener-Policy: same-origin'",
		Severity:    SeverityLow,
		Weight:      8,
		Category:    CategoryAdvanced,
		Validator:   checkCOOP,
	},
	{
		Name:        "cross-origin-embedder-policy",
		DisplayName: "Cross-Origin-Embedder-Policy",
		Description: "Blocks cross-origin resources that do not opt in",
		Remediation: "Add 'Cross-Origin-Embedder-Policy: require-corp'",
		Severity:    SeverityLow,
		Weight:      8,
		Category:    CategoryAdvanced,
		Validator:   checkCOEP,
	},
	{
		Name:        "cross-origin-resource-policy",
		DisplayName: "Cross-Origin-Resource-Policy",
		Description: "Declares who may embed this resource",
		Remediation: "Add 'Cross-Origin-Resource-Policy: same-origin'",
		Severity:    SeverityLow,
		Weight:      8,
		Category:    CategoryAdvanced,
		Validator:   checkCORP,
	},
	{
		Name:        "x-permitted-cross-domain-policies",
		DisplayName: "X-Permitted-Cross-Domain-Policies",
		Description: "Restricts Adobe cross-domain policy files",
		Remediation: "Add 'X-Permitted-Cross-Domain-Policies: none'",
		Severity:    SeverityLow,
		Weight:      5,
		Category:    CategoryAdvanced,
		Validator:   checkPermittedCrossDomainPolicies,
	},
	{
		Name:        "expect-ct",
		DisplayName: "Expect-CT",
		Description: "Opts in to Certificate Transparency enforcement",
		Remediation: "Add 'Expect-CT: max-age=86400, enforce'",
		Severity:    SeverityInfo,
		Weight:      5,
		Category:    CategoryAdvanced,
		Validator:   checkExpectCT,
	},
	{
		Name:        "report-to",
		DisplayName: "Report-To",
		Description: "Configures endpoints for browser reporting",
		Remediation: "Add a 'Report-To' header with a reporting endpoint group",
		Severity:    SeverityInfo,
		Weight:      5,
		Category:    CategoryAdvanced,
		Validator:   checkReportTo,
	},
	{
		Name:        "nel",
		DisplayName: "NEL",
		Description: "Enables Network Error Logging",
		Remediation: "Add a 'NEL' header referencing a Report-To group",
		Severity:    SeverityInfo,
		Weight:      5,
		Category:    CategoryAdvanced,
		Validator:   checkNEL,
	},
	{
		Name:        "clear-site-data",
		DisplayName: "Clear-Site-Data",
		Description: "Clears browsing data on logout responses",
		Remediation: "Add 'Clear-Site-Data: \"cache\", \"cookies\", \"storage\"' on logout endpoints",
		Severity:    SeverityInfo,
		Weight:      4,
		Category:    CategoryAdvanced,
		Validator:   checkClearSiteData,
	},
}

var corsRules = []Rule{
	{
		Name:        "access-control-allow-origin",
		DisplayName: "Access-Control-Allow-Origin",
		Description: "Declares which origins may read this response",
		Remediation: "Restrict 'Access-Control-Allow-Origin' to explicit trusted origins",
		Severity:    SeverityMedium,
		Weight:      10,
		Category:    CategoryCORS,
		Validator:   checkAllowOrigin,
	},
	{
		Name:        "access-control-allow-credentials",
		DisplayName: "Access-Control-Allow-Credentials",
		Description: "Allows credentialed cross-origin requests",
		Remediation: "Only combine credentials with an explicit allowed origin",
		Severity:    SeverityHigh,
		Weight:      10,
		Category:    CategoryCORS,
		Validator:   checkAllowCredentials,
	},
	{
		Name:        "access-control-allow-methods",
		DisplayName: "Access-Control-Allow-Methods",
		Description: "Lists methods permitted for cross-origin requests",
		Remediation: "Limit allowed methods to those the API actually needs",
		Severity:    SeverityLow,
		Weight:      6,
		Category:    CategoryCORS,
		Validator:   checkAllowMethods,
	},
	{
		Name:        "access-control-expose-headers",
		DisplayName: "Access-Control-Expose-Headers",
		Description: "Lists response headers readable by cross-origin scripts",
		Remediation: "Do not expose authentication or session headers cross-origin",
		Severity:    SeverityMedium,
		Weight:      5,
		Category:    CategoryCORS,
		Validator:   checkExposeHeaders,
	},
	{
		Name:        "access-control-max-age",
		DisplayName: "Access-Control-Max-Age",
		Description: "Caches preflight responses",
		Remediation: "Keep 'Access-Control-Max-Age' at or below 86400 seconds",
		Severity:    SeverityInfo,
		Weight:      4,
		Category:    CategoryCORS,
		Validator:   checkCORSMaxAge,
	},
}

// Registry is the read-only catalogue of scored header rules. It is built
// once at init and shared by concurrent evaluations without locking.
type Registry struct {
	rules []Rule
	byKey map[string]*Rule
}

// NewRegistry merges the fixed rule groups into a registry. Disclosure
// headers and Set-Cookie are intentionally absent: they are owned by the
// disclosure and cookie analyzers and must not be double-counted here.
func NewRegistry() *Registry {
	r := &Registry{byKey: make(map[string]*Rule)}
	for _, group := range [][]Rule{essentialRules, advancedRules, corsRules} {
		for i := range group {
			rule := group[i]
			rule.Name = strings.ToLower(rule.Name)
			r.rules = append(r.rules, rule)
		}
	}
	for i := range r.rules {
		r.byKey[r.rules[i].Name] = &r.rules[i]
	}
	return r
}

// Lookup returns the rule registered under the given header name.
func (r *Registry) Lookup(name string) (*Rule, bool) {
	rule, ok := r.byKey[strings.ToLower(name)]
	return rule, ok
}

// All returns the rules in deterministic (group) order.
func (r *Registry) All() []Rule {
	return r.rules
}

// defaultRegistry backs Evaluate when the caller does not supply one.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
