package fixedpoint

import (
	"math"
	"testing"

	"finova/chain/types"
)

func TestExpMicroZeroIsOne(t *testing.T) {
	if got := ExpMicro(0); got != One {
		t.Errorf("expected ExpMicro(0) == One, got %d", got)
	}
}

func TestExpMicroBeyondDomainClampsToKMin(t *testing.T) {
	if got := ExpMicro(1000 * types.MicroScale); got != KMin {
		t.Errorf("expected clamp to KMin far outside the table domain, got %d", got)
	}
}

func TestExpMicroMatchesMathExpWithinTolerance(t *testing.T) {
	// exp(-10) ~= 4.54e-5, used by the holdings-regression reference case.
	got := ExpMicro(10 * types.MicroScale)
	want := math.Exp(-10) * types.MicroScale
	diff := math.Abs(float64(got) - want)
	if diff > want*0.05 {
		t.Errorf("ExpMicro(10) = %d, want ~%f (within 5%%)", got, want)
	}
}

func TestHoldingsRegressionReferenceCase(t *testing.T) {
	// hold_coef_micro=1000 (0.001), holdings=10000, cap=10000 gives
	// exponent 10 and K ~= 4.54e-5.
	got := HoldingsRegression(10_000, 10_000, 1000)
	want := math.Exp(-10) * types.MicroScale
	diff := math.Abs(float64(got) - want)
	if diff > want*0.1 && got != KMin {
		t.Errorf("HoldingsRegression reference case = %d, want ~%f", got, want)
	}
}

func TestHoldingsRegressionClampsToCap(t *testing.T) {
	unclamped := HoldingsRegression(50_000, 10_000, 1000)
	clamped := HoldingsRegression(10_000, 10_000, 1000)
	if unclamped != clamped {
		t.Errorf("holdings above cap should behave identically to holdings at cap: got %d vs %d", unclamped, clamped)
	}
}
