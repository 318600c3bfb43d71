// Package models defines the core domain entities for bidscope.
//
// Terminology (matching the Korean procurement service's own naming):
//   - Notice: one bid announcement, identified by a notice number plus an
//     ordinal (default "00") for re-announcements.
//   - Base-price estimate: one of the preliminary price variants published
//     per notice (bssamt / bsisPlnprc in the upstream API).
//   - Assessment rate: a bid amount normalized against the reference base
//     price, the success-rate threshold, and the A-value cost offset,
//     expressed as a percentage.
package models

import "errors"

// BasePriceEstimate is one government-published preliminary base-price
// variant for a notice. Immutable once fetched.
type BasePriceEstimate struct {
	BaseAmount float64 `json:"base_amount"` // bssamt
	PlanAmount float64 `json:"plan_amount"` // bsisPlnprc
}

// SelfRate returns PlanAmount / BaseAmount as a percentage.
// Undefined (0) when BaseAmount is not positive.
func (e BasePriceEstimate) SelfRate() float64 {
	if e.BaseAmount <= 0 {
		return 0
	}
	return e.PlanAmount / e.BaseAmount * 100
}

// Validate checks that both amounts are positive.
func (e BasePriceEstimate) Validate() error {
	if e.BaseAmount <= 0 {
		return errors.New("base amount must be positive")
	}
	if e.PlanAmount <= 0 {
		return errors.New("plan amount must be positive")
	}
	return nil
}

// ReferenceBasePrice returns the base amount used as the denominator in rate
// reconstruction: the second estimate's when at least two exist, else the
// first's, else 0.
func ReferenceBasePrice(estimates []BasePriceEstimate) float64 {
	switch {
	case len(estimates) >= 2:
		return estimates[1].BaseAmount
	case len(estimates) == 1:
		return estimates[0].BaseAmount
	default:
		return 0
	}
}
