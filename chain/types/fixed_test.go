package types

import "testing"

func TestBaseUnitsAddChecked(t *testing.T) {
	sum, err := BaseUnits(10).AddChecked(20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != 30 {
		t.Errorf("expected 30, got %d", sum)
	}

	max := BaseUnits(1<<64 - 1)
	if _, err := max.AddChecked(1); err != ErrMathOverflow {
		t.Errorf("expected ErrMathOverflow, got %v", err)
	}
}

func TestBaseUnitsSubChecked(t *testing.T) {
	diff, err := BaseUnits(30).SubChecked(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff != 20 {
		t.Errorf("expected 20, got %d", diff)
	}

	if _, err := BaseUnits(10).SubChecked(20); err != ErrMathOverflow {
		t.Errorf("expected ErrMathOverflow, got %v", err)
	}
}

func TestOneTokenDecimals(t *testing.T) {
	if OneToken != 1_000_000_000 {
		t.Errorf("expected OneToken = 1e9, got %d", OneToken)
	}
	if Decimals != 9 {
		t.Errorf("expected Decimals = 9, got %d", Decimals)
	}
}
