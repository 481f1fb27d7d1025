package simulation

import (
	"math/big"
	"testing"
)

func TestPackAccountGasLimitsLayout(t *testing.T) {
	got := packAccountGasLimits(big.NewInt(0x1234), big.NewInt(0x5678))

	var want [32]byte
	want[14] = 0x12
	want[15] = 0x34
	want[30] = 0x56
	want[31] = 0x78

	if got != want {
		t.Errorf("packAccountGasLimits() = %x, want %x", got, want)
	}
}

func TestPackGasFeesLayout(t *testing.T) {
	got := packGasFees(big.NewInt(1), big.NewInt(2))

	var want [32]byte
	want[15] = 1
	want[31] = 2

	if got != want {
		t.Errorf("packGasFees() = %x, want %x", got, want)
	}
}

func TestPackPaymasterAndDataNilPaymaster(t *testing.T) {
	got := packPaymasterAndData(nil, big.NewInt(1), big.NewInt(1), []byte("x"))
	if got != nil {
		t.Errorf("packPaymasterAndData(nil paymaster) = %x, want nil", got)
	}
}

func TestPackPaymasterAndDataLayout(t *testing.T) {
	paymaster := [20]byte{0xAA}
	data := []byte{0xDE, 0xAD}
	got := packPaymasterAndData(&paymaster, big.NewInt(1), big.NewInt(2), data)

	wantLen := 20 + 32 + len(data)
	if len(got) != wantLen {
		t.Fatalf("packPaymasterAndData() length = %d, want %d", len(got), wantLen)
	}
	if got[0] != 0xAA {
		t.Errorf("packPaymasterAndData() leading byte = %x, want paymaster address first", got[0])
	}
	if got[len(got)-2] != 0xDE || got[len(got)-1] != 0xAD {
		t.Errorf("packPaymasterAndData() trailing bytes = %x, want opaque data appended", got[len(got)-2:])
	}
}
