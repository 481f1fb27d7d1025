package gasprice

import (
	"math/big"
	"testing"
)

func TestNextBaseFeeAtTarget(t *testing.T) {
	base := big.NewInt(1_000_000_000)
	got := nextBaseFee(base, 15_000_000, 30_000_000)
	if got.Cmp(base) != 0 {
		t.Errorf("nextBaseFee at target = %s, want unchanged %s", got, base)
	}
}

func TestNextBaseFeeAboveTargetIncreases(t *testing.T) {
	base := big.NewInt(1_000_000_000)
	got := nextBaseFee(base, 30_000_000, 30_000_000)
	if got.Cmp(base) <= 0 {
		t.Errorf("nextBaseFee above target = %s, want > %s", got, base)
	}
}

func TestNextBaseFeeBelowTargetDecreases(t *testing.T) {
	base := big.NewInt(1_000_000_000)
	got := nextBaseFee(base, 0, 30_000_000)
	if got.Cmp(base) >= 0 {
		t.Errorf("nextBaseFee below target = %s, want < %s", got, base)
	}
}

func TestNextBaseFeeNeverNegative(t *testing.T) {
	base := big.NewInt(1)
	got := nextBaseFee(base, 0, 30_000_000)
	if got.Sign() < 0 {
		t.Errorf("nextBaseFee = %s, want >= 0", got)
	}
}

func TestNextBaseFeeMinimumIncreaseIsOne(t *testing.T) {
	base := big.NewInt(7)
	got := nextBaseFee(base, 15_000_001, 30_000_000)
	want := big.NewInt(8)
	if got.Cmp(want) != 0 {
		t.Errorf("nextBaseFee = %s, want exactly one wei above %s", got, base)
	}
}
