// Package pricing holds the deterministic credit-token pricing formulas.
// Everything here is pure: no state, no side effects, integer-exact
// arithmetic with explicit overflow rejection.
package pricing

import (
	"math"

	"github.com/opencampus/credisphere/internal/pkg/apperrors"
)

const (
	// UnitScale is the number of scaled token units in one credit
	// (the token carries four decimals).
	UnitScale = 10_000

	// BaseRateWei is the price of one scaled token unit in wei.
	BaseRateWei = 6_800_000_000_000
)

// CreditsToPayment converts a number of credits into the exact wei payment a
// purchase must carry: credits x UnitScale x BaseRateWei. Overflow fails
// rather than wrapping.
func CreditsToPayment(credits int64) (int64, error) {
	if credits <= 0 {
		return 0, apperrors.ErrValidationFailed
	}
	units, err := mul64(credits, UnitScale)
	if err != nil {
		return 0, err
	}
	return mul64(units, BaseRateWei)
}

// CreditsToTokenUnits converts purchased credits into scaled token units.
func CreditsToTokenUnits(credits int64) (int64, error) {
	if credits <= 0 {
		return 0, apperrors.ErrValidationFailed
	}
	return mul64(credits, UnitScale)
}

// CostFn computes the token cost of one enrollment from the course's
// experimental factor, the caller's prior attempt count for the course, and
// the course's base credits. The result is in scaled token units.
//
// The adjustment shape is a business formula; it is pluggable so the product
// owner can confirm or replace it without touching the enrollment path.
type CostFn func(experimentalFactor, priorAttempts, baseCredits int64) (int64, error)

// DefaultCourseTokenCost is the default CostFn:
//
//	baseCredits x UnitScale/100 x (100 + 25 x experimentalFactor) x (priorAttempts + 1)
//
// Each quarter step of experimental factor adds a 25% surcharge, and every
// repetition of the course pays the full price again on top. Exact in
// integers because UnitScale is a multiple of 100.
func DefaultCourseTokenCost(experimentalFactor, priorAttempts, baseCredits int64) (int64, error) {
	if experimentalFactor < 0 || priorAttempts < 0 || baseCredits <= 0 {
		return 0, apperrors.ErrValidationFailed
	}
	cost, err := mul64(baseCredits, UnitScale/100)
	if err != nil {
		return 0, err
	}
	factor, err := mul64(25, experimentalFactor)
	if err != nil {
		return 0, err
	}
	cost, err = mul64(cost, 100+factor)
	if err != nil {
		return 0, err
	}
	return mul64(cost, priorAttempts+1)
}

// mul64 multiplies two non-negative int64 values, failing with
// ErrArithmeticOverflow instead of wrapping.
func mul64(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxInt64/b {
		return 0, apperrors.ErrArithmeticOverflow
	}
	return a * b, nil
}
