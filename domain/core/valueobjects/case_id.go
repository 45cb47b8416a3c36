package valueobjects

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"casegraph/domain/config"
	pkgerrors "casegraph/pkg/errors"
)

// CaseID is an opaque fraud-case identifier as issued by the case store
type CaseID struct {
	value string
}

// NewCaseID validates a case identifier using default configuration
func NewCaseID(value string) (CaseID, error) {
	return NewCaseIDWithConfig(value, config.DefaultDomainConfig())
}

// NewCaseIDWithConfig validates a case identifier against the given limits
func NewCaseIDWithConfig(value string, cfg *config.DomainConfig) (CaseID, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return CaseID{}, pkgerrors.NewValidationError("case id is required")
	}
	if utf8.RuneCountInString(value) > cfg.MaxCaseIDLength {
		return CaseID{}, pkgerrors.NewValidationError(
			fmt.Sprintf("case id must be at most %d characters", cfg.MaxCaseIDLength))
	}
	for _, r := range value {
		if unicode.IsControl(r) || r == '/' {
			return CaseID{}, pkgerrors.NewValidationError("case id contains invalid characters")
		}
	}
	return CaseID{value: value}, nil
}

// String returns the raw identifier
func (id CaseID) String() string {
	return id.value
}

// IsZero checks if the CaseID is the zero value
func (id CaseID) IsZero() bool {
	return id.value == ""
}
