package config

import (
	"fmt"
	"time"
)

// DomainConfig holds the business rules for case-network assembly
type DomainConfig struct {
	// Related-transaction window
	SimilarityWindow        time.Duration
	SimilarityAbsTolerance  float64
	SimilarityPctTolerance  float64
	MaxRelatedTransactions  int
	MaxEmployeeTransactions int

	// Identifier constraints
	MaxCaseIDLength int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		SimilarityWindow:        24 * time.Hour,
		SimilarityAbsTolerance:  10000,
		SimilarityPctTolerance:  15,
		MaxRelatedTransactions:  10,
		MaxEmployeeTransactions: 50,

		MaxCaseIDLength: 128,
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.SimilarityWindow <= 0 {
		return fmt.Errorf("similarity window must be positive, got %s", c.SimilarityWindow)
	}
	if c.SimilarityAbsTolerance < 0 || c.SimilarityPctTolerance < 0 {
		return fmt.Errorf("similarity tolerances must not be negative")
	}
	if c.MaxRelatedTransactions <= 0 {
		return fmt.Errorf("max related transactions must be positive, got %d", c.MaxRelatedTransactions)
	}
	if c.MaxEmployeeTransactions <= 0 {
		return fmt.Errorf("max employee transactions must be positive, got %d", c.MaxEmployeeTransactions)
	}
	if c.MaxCaseIDLength <= 0 {
		return fmt.Errorf("max case id length must be positive, got %d", c.MaxCaseIDLength)
	}
	return nil
}
