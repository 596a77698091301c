package scanner

import (
	"fmt"
	"math"
	"time"
)

// GradeThreshold maps a minimum score to a letter grade.
type GradeThreshold struct {
	Grade string `json:"grade"`
	Min   int    `json:"min"`
}

// Options tunes the scoring model. The zero value is not usable; start
// from DefaultOptions and override.
type Options struct {
	// PenaltyMultipliers reduce a misconfigured header's earned weight:
	// earned = weight * (1 - multiplier[severity]).
	PenaltyMultipliers map[Severity]float64

	// CategoryWeights are the contributions of the scored categories to the
	// base score. They must sum to 100.
	CategoryWeights map[Category]float64

	// PenaltyPoints maps severity to points for the capped analyzers.
	PenaltyPoints map[Severity]float64

	// DisclosureCap and CookieCap bound how much each analyzer may deduct.
	DisclosureCap float64
	CookieCap     float64

	// GradeThresholds are tested highest first; the final fallback grade is
	// the last entry's grade when no threshold is met.
	GradeThresholds []GradeThreshold

	// Registry overrides the default rule registry (mainly for tests).
	Registry *Registry
}

// DefaultOptions returns the documented scoring defaults.
func DefaultOptions() Options {
	return Options{
		PenaltyMultipliers: map[Severity]float64{
			SeverityHigh:   0.8,
			SeverityMedium: 0.6,
			SeverityLow:    0.3,
			SeverityInfo:   0.1,
		},
		CategoryWeights: map[Category]float64{
			CategoryEssential: 60,
			CategoryAdvanced:  25,
			CategoryCORS:      15,
		},
		PenaltyPoints: DefaultPenaltyPoints,
		DisclosureCap: 10,
		CookieCap:     10,
		GradeThresholds: []GradeThreshold{
			{Grade: "A", Min: 90},
			{Grade: "B", Min: 80},
			{Grade: "C", Min: 70},
			{Grade: "D", Min: 60},
			{Grade: "E", Min: 50},
		},
		Registry: DefaultRegistry(),
	}
}

// Validate rejects inconsistent option sets. Called at configuration-load
// time so evaluation never has to fail.
func (o Options) Validate() error {
	var sum float64
	for _, cat := range ScoredCategories {
		sum += o.CategoryWeights[cat]
	}
	if math.Abs(sum-100) > 1e-9 {
		return fmt.Errorf("category weights must sum to 100, got %g", sum)
	}
	for severity, mult := range o.PenaltyMultipliers {
		if mult < 0 || mult > 1 {
			return fmt.Errorf("penalty multiplier for %s must be in [0,1], got %g", severity, mult)
		}
	}
	if o.DisclosureCap < 0 || o.CookieCap < 0 {
		return fmt.Errorf("penalty caps must be non-negative")
	}
	if len(o.GradeThresholds) == 0 {
		return fmt.Errorf("at least one grade threshold is required")
	}
	for i := 1; i < len(o.GradeThresholds); i++ {
		if o.GradeThresholds[i].Min >= o.GradeThresholds[i-1].Min {
			return fmt.Errorf("grade thresholds must be strictly descending")
		}
	}
	return nil
}

// grade returns the first threshold the score meets, falling back to F.
func (o Options) grade(score int) string {
	for _, t := range o.GradeThresholds {
		if score >= t.Min {
			return t.Grade
		}
	}
	return "F"
}

// Evaluate turns a normalized header set into a scored ScanResult. It is a
// pure function of its inputs plus the static registry: no state is
// retained and concurrent calls need no coordination.
func Evaluate(target string, httpStatus int, headers Headers, opts Options) ScanResult {
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}
	if opts.PenaltyMultipliers == nil {
		opts.PenaltyMultipliers = DefaultOptions().PenaltyMultipliers
	}
	if opts.CategoryWeights == nil {
		opts.CategoryWeights = DefaultOptions().CategoryWeights
	}
	if opts.PenaltyPoints == nil {
		opts.PenaltyPoints = DefaultPenaltyPoints
	}
	if len(opts.GradeThresholds) == 0 {
		opts.GradeThresholds = DefaultOptions().GradeThresholds
	}

	result := ScanResult{
		Target:     target,
		CheckedAt:  time.Now().UTC(),
		HTTPStatus: httpStatus,
		Headers:    headers,
	}

	earned := map[Category]float64{}
	total := map[Category]float64{}

	for _, rule := range opts.Registry.All() {
		total[rule.Category] += rule.Weight
		value := headers.Get(rule.Name)

		if value == "" {
			result.Findings = append(result.Findings, Finding{
				Header:         rule.DisplayName,
				Status:         StatusMissing,
				Severity:       rule.Severity,
				Category:       rule.Category,
				Weight:         rule.Weight,
				Earned:         0,
				Issue:          "header not set",
				Recommendation: rule.Remediation,
			})
			continue
		}

		issue := runValidator(rule, value, headers)
		if issue == nil {
			earned[rule.Category] += rule.Weight
			result.Findings = append(result.Findings, Finding{
				Header:   rule.DisplayName,
				Status:   StatusPresent,
				Value:    value,
				Severity: SeverityInfo,
				Category: rule.Category,
				Weight:   rule.Weight,
				Earned:   rule.Weight,
			})
			continue
		}

		severity := issue.Severity
		if severity == "" {
			severity = rule.Severity
		}
		points := rule.Weight * (1 - opts.PenaltyMultipliers[severity])
		if points < 0 {
			points = 0
		}
		earned[rule.Category] += points
		result.Findings = append(result.Findings, Finding{
			Header:         rule.DisplayName,
			Status:         StatusMisconfigured,
			Value:          value,
			Severity:       severity,
			Category:       rule.Category,
			Weight:         rule.Weight,
			Earned:         points,
			Issue:          issue.Problem,
			Recommendation: issue.Remediation,
		})
	}

	breakdown := ScoreBreakdown{Categories: make(map[Category]CategoryScore, len(ScoredCategories))}
	var base float64
	for _, cat := range ScoredCategories {
		score := CategoryScore{Earned: earned[cat], Total: total[cat]}
		if score.Total > 0 {
			score.Contribution = score.Earned / score.Total * opts.CategoryWeights[cat]
		}
		breakdown.Categories[cat] = score
		base += score.Contribution
	}

	disclosureFindings, disclosurePenalty := AnalyzeDisclosure(headers, opts.PenaltyPoints)
	result.Findings = append(result.Findings, disclosureFindings...)
	breakdown.DisclosurePenalty = math.Min(disclosurePenalty, opts.DisclosureCap)

	if headers.Has("set-cookie") {
		cookieFindings, cookiePenalty := AnalyzeCookies(headers.Values("set-cookie"), opts.PenaltyPoints)
		result.Findings = append(result.Findings, cookieFindings...)
		breakdown.CookiePenalty = math.Min(cookiePenalty, opts.CookieCap)
	}

	raw := base - breakdown.DisclosurePenalty - breakdown.CookiePenalty
	result.Score = int(math.Round(math.Min(100, math.Max(0, raw))))
	result.Grade = opts.grade(result.Score)
	result.Breakdown = breakdown

	sortFindings(result.Findings)
	return result
}

// runValidator shields the engine from panicking validators: a panic on a
// malformed value degrades to a reported issue.
func runValidator(rule Rule, value string, headers Headers) (issue *ConfigIssue) {
	if rule.Validator == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			issue = &ConfigIssue{
				Problem:     fmt.Sprintf("value could not be parsed: %v", r),
				Remediation: rule.Remediation,
				Severity:    rule.Severity,
			}
		}
	}()
	return rule.Validator(value, headers)
}

// ErrorResult builds the degenerate result for an unreachable or erroring
// target. The fetch collaborator calls this; the engine never fails.
func ErrorResult(target string, err error) ScanResult {
	return ScanResult{
		Target:    target,
		CheckedAt: time.Now().UTC(),
		Findings:  []Finding{},
		Score:     0,
		Grade:     "F",
		Breakdown: ScoreBreakdown{Categories: map[Category]CategoryScore{}},
		Error:     err.Error(),
	}
}
