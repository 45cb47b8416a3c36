package casenet

import "strings"

// RiskLevel is the visual emphasis tier of a vertex
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Amount thresholds are inclusive on the upper bucket.
const (
	CriticalAmountThreshold = 1_000_000
	HighAmountThreshold     = 500_000
	MediumAmountThreshold   = 100_000
)

// RiskLevels lists every level from most to least severe
var RiskLevels = []RiskLevel{RiskCritical, RiskHigh, RiskMedium, RiskLow}

// RiskFromSeverity maps a case severity to a risk level, case-insensitively.
// Unknown or empty severities are low.
func RiskFromSeverity(severity string) RiskLevel {
	switch strings.ToUpper(strings.TrimSpace(severity)) {
	case "CRITICAL":
		return RiskCritical
	case "HIGH":
		return RiskHigh
	case "MEDIUM":
		return RiskMedium
	default:
		return RiskLow
	}
}

// RiskFromAmount maps a transaction amount to a risk level
func RiskFromAmount(amount float64) RiskLevel {
	switch {
	case amount >= CriticalAmountThreshold:
		return RiskCritical
	case amount >= HighAmountThreshold:
		return RiskHigh
	case amount >= MediumAmountThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ParseRiskLevel parses a serialized risk level
func ParseRiskLevel(s string) (RiskLevel, bool) {
	level := RiskLevel(strings.ToLower(strings.TrimSpace(s)))
	if !level.IsValid() {
		return "", false
	}
	return level, true
}

// IsValid reports whether r is one of the four known levels
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// IsCritical reports whether r is the critical tier
func (r RiskLevel) IsCritical() bool {
	return r == RiskCritical
}
