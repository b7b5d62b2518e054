package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/opencampus/credisphere/internal/pkg/apperrors"
)

func TestCreditsToPayment(t *testing.T) {
	tests := []struct {
		name    string
		credits int64
		want    int64
		wantErr error
	}{
		{name: "ten credits", credits: 10, want: 680_000_000_000_000_000},
		{name: "one credit", credits: 1, want: 68_000_000_000_000_000},
		{name: "zero credits rejected", credits: 0, wantErr: apperrors.ErrValidationFailed},
		{name: "negative credits rejected", credits: -5, wantErr: apperrors.ErrValidationFailed},
		{name: "overflow rejected", credits: 200, wantErr: apperrors.ErrArithmeticOverflow},
		{name: "max int64 rejected", credits: math.MaxInt64, wantErr: apperrors.ErrArithmeticOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CreditsToPayment(tt.credits)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreditsToPayment(%d) error = %v, want %v", tt.credits, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreditsToPayment(%d) unexpected error: %v", tt.credits, err)
			}
			if got != tt.want {
				t.Fatalf("CreditsToPayment(%d) = %d, want %d", tt.credits, got, tt.want)
			}
		})
	}
}

func TestCreditsToPaymentDeterminism(t *testing.T) {
	first, err := CreditsToPayment(10)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CreditsToPayment(10)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("same input produced different payments: %d vs %d", first, second)
	}
}

func TestDefaultCourseTokenCost(t *testing.T) {
	tests := []struct {
		name          string
		factor        int64
		priorAttempts int64
		baseCredits   int64
		want          int64
		wantErr       error
	}{
		{name: "plain course first attempt", factor: 0, priorAttempts: 0, baseCredits: 7, want: 70_000},
		{name: "experimental surcharge", factor: 2, priorAttempts: 0, baseCredits: 7, want: 105_000},
		{name: "first repetition doubles", factor: 0, priorAttempts: 1, baseCredits: 7, want: 140_000},
		{name: "surcharge and repetition combine", factor: 2, priorAttempts: 1, baseCredits: 7, want: 210_000},
		{name: "zero base credits rejected", factor: 0, priorAttempts: 0, baseCredits: 0, wantErr: apperrors.ErrValidationFailed},
		{name: "negative factor rejected", factor: -1, priorAttempts: 0, baseCredits: 7, wantErr: apperrors.ErrValidationFailed},
		{name: "overflow rejected", factor: 0, priorAttempts: math.MaxInt64 / 2, baseCredits: math.MaxInt64 / 2, wantErr: apperrors.ErrArithmeticOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DefaultCourseTokenCost(tt.factor, tt.priorAttempts, tt.baseCredits)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("cost error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("cost = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCreditsToTokenUnits(t *testing.T) {
	got, err := CreditsToTokenUnits(10)
	if err != nil {
		t.Fatal(err)
	}
	if got != 100_000 {
		t.Fatalf("CreditsToTokenUnits(10) = %d, want 100000", got)
	}
	if _, err := CreditsToTokenUnits(math.MaxInt64); !errors.Is(err, apperrors.ErrArithmeticOverflow) {
		t.Fatalf("expected overflow error, got %v", err)
	}
}
