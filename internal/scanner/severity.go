package scanner

// Severity rates how much a finding degrades the security posture.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityInfo   Severity = "info"
)

// rank orders severities for presentation (high first).
func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}

// Category is one of the scored header groups.
type Category string

const (
	CategoryEssential Category = "essential"
	CategoryAdvanced  Category = "advanced"
	CategoryCORS      Category = "cors"
	CategoryOther     Category = "other"
)

// ScoredCategories lists the categories whose weighted contributions make up
// the base score, in reporting order.
var ScoredCategories = []Category{CategoryEssential, CategoryAdvanced, CategoryCORS}

// Status describes the evaluation outcome for a single header or cookie.
type Status string

const (
	StatusMissing       Status = "missing"
	StatusPresent       Status = "present"
	StatusMisconfigured Status = "misconfigured"
	StatusDangerous     Status = "dangerous"
)
