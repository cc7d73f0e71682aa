package fixedpoint

import (
	"testing"

	"finova/chain/types"
)

func TestMulMicro(t *testing.T) {
	// 1.5 * 2.0 = 3.0
	got, err := MulMicro(1_500_000, 2_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 3_000_000 {
		t.Errorf("expected 3_000_000, got %d", got)
	}
}

func TestMulMicroRejectsNegative(t *testing.T) {
	if _, err := MulMicro(-1, 1); err != types.ErrMathOverflow {
		t.Errorf("expected ErrMathOverflow for negative operand, got %v", err)
	}
}

func TestDivMicro(t *testing.T) {
	// 3.0 / 2.0 = 1.5
	got, err := DivMicro(3_000_000, 2_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1_500_000 {
		t.Errorf("expected 1_500_000, got %d", got)
	}

	if _, err := DivMicro(1, 0); err != types.ErrMathOverflow {
		t.Errorf("expected ErrMathOverflow for division by zero, got %v", err)
	}
}

func TestComposeFactorsClampsToMax(t *testing.T) {
	got := ComposeFactors(MaxRateMicro, 2_000_000)
	if got != MaxRateMicro {
		t.Errorf("expected composition to clamp at MaxRateMicro, got %d", got)
	}
}

func TestComposeFactorsEmpty(t *testing.T) {
	if got := ComposeFactors(); got != 0 {
		t.Errorf("expected 0 for no factors, got %d", got)
	}
}

func TestAccrualBaseUnits(t *testing.T) {
	// 1.0 micro-unit-per-second rate over 10 seconds = 10 base units.
	got, err := AccrualBaseUnits(1_000_000, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
}

func TestAccrualFromHourlyRateReferenceCase(t *testing.T) {
	// 0.234/hr over one hour gives exactly 234_000_000 base units.
	got, err := AccrualFromHourlyRate(234_000, 3600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 234_000_000 {
		t.Errorf("expected 234_000_000, got %d", got)
	}
}

func TestProrateBaseUnits(t *testing.T) {
	got, err := ProrateBaseUnits(1000, 1800, 3600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 500 {
		t.Errorf("expected half of 1000 over half the period, got %d", got)
	}

	if _, err := ProrateBaseUnits(1000, 1, 0); err != types.ErrMathOverflow {
		t.Errorf("expected ErrMathOverflow for zero period, got %v", err)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-5, 0, 10); got != 0 {
		t.Errorf("expected clamp to floor, got %d", got)
	}
	if got := Clamp(15, 0, 10); got != 10 {
		t.Errorf("expected clamp to ceiling, got %d", got)
	}
	if got := Clamp(5, 0, 10); got != 5 {
		t.Errorf("expected value inside range unchanged, got %d", got)
	}
}
