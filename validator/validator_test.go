package validator

import (
	"math/big"
	"testing"

	"github.com/aa-bundler/bundler-core/types"
)

func v06Op(maxFeePerGas int64) *types.UserOperation {
	return &types.UserOperation{V06: &types.UserOperationV06{
		Sender:               [20]byte{1},
		Nonce:                big.NewInt(0),
		CallGasLimit:         big.NewInt(100000),
		VerificationGasLimit: big.NewInt(100000),
		PreVerificationGas:   big.NewInt(50000),
		MaxFeePerGas:         big.NewInt(maxFeePerGas),
		MaxPriorityFeePerGas: big.NewInt(1),
	}}
}

func TestCheckSignatureV06Failure(t *testing.T) {
	v := &Validator{}
	result := types.ValidationResult{ReturnInfo: types.ReturnInfo{AccountSigFailed: true}}
	if err := v.checkSignature(v06Op(1), result); err == nil {
		t.Fatal("checkSignature() expected error for SigFailed aggregator")
	}
}

func TestCheckSignatureV06Success(t *testing.T) {
	v := &Validator{}
	result := types.ValidationResult{ReturnInfo: types.ReturnInfo{}}
	if err := v.checkSignature(v06Op(1), result); err != nil {
		t.Errorf("checkSignature() unexpected error = %v", err)
	}
}

func TestCheckExpirationTooSoon(t *testing.T) {
	v := &Validator{cfg: Config{SafetyMarginSeconds: 5, StalenessMarginSeconds: 30}, now: func() int64 { return 1000 }}
	// validAfter in the future relative to (now - safetyMargin): fails.
	result := types.ValidationResult{ReturnInfo: types.ReturnInfo{ValidAfter: 996, ValidUntil: 2000}}
	if err := v.checkExpiration(result); err == nil {
		t.Fatal("checkExpiration() expected error, validAfter not yet elapsed past safety margin")
	}
}

func TestCheckExpirationExpiresShortly(t *testing.T) {
	v := &Validator{cfg: Config{SafetyMarginSeconds: 5, StalenessMarginSeconds: 30}, now: func() int64 { return 1000 }}
	result := types.ValidationResult{ReturnInfo: types.ReturnInfo{ValidAfter: 0, ValidUntil: 1010}}
	if err := v.checkExpiration(result); err == nil {
		t.Fatal("checkExpiration() expected error, validUntil within staleness margin")
	}
}

func TestCheckExpirationOK(t *testing.T) {
	v := &Validator{cfg: Config{SafetyMarginSeconds: 5, StalenessMarginSeconds: 30}, now: func() int64 { return 1000 }}
	result := types.ValidationResult{ReturnInfo: types.ReturnInfo{ValidAfter: 0, ValidUntil: 10000}}
	if err := v.checkExpiration(result); err != nil {
		t.Errorf("checkExpiration() unexpected error = %v", err)
	}
}

// Invariant 1 edge case: validUntil == 0 means "no expiration", but the
// staleness check still rejects it literally rather than special-casing
// the zero sentinel before the comparison.
func TestCheckExpirationZeroValidUntilFails(t *testing.T) {
	v := &Validator{cfg: Config{SafetyMarginSeconds: 5, StalenessMarginSeconds: 30}, now: func() int64 { return 1000 }}
	result := types.ValidationResult{ReturnInfo: types.ReturnInfo{ValidAfter: 0, ValidUntil: 0}}
	if err := v.checkExpiration(result); err == nil {
		t.Fatal("checkExpiration() expected error for validUntil=0")
	}
}

func TestCheckPrefundInsufficientWithPaymaster(t *testing.T) {
	v := &Validator{}
	uo := &types.UserOperation{V06: &types.UserOperationV06{
		Sender:               [20]byte{1},
		Nonce:                big.NewInt(0),
		CallGasLimit:         big.NewInt(100000),
		VerificationGasLimit: big.NewInt(100000),
		PreVerificationGas:   big.NewInt(50000),
		MaxFeePerGas:         big.NewInt(1),
		MaxPriorityFeePerGas: big.NewInt(1),
		PaymasterAndData:     []byte{1, 2, 3},
	}}
	// required = 100000 + 3*100000 + 50000 = 450000, prefund below that.
	result := types.ValidationResult{ReturnInfo: types.ReturnInfo{Prefund: big.NewInt(400000)}}
	if err := v.checkPrefund(uo, result); err == nil {
		t.Fatal("checkPrefund() expected error for insufficient prefund with paymaster")
	}
}

func TestCheckPrefundSufficientWithoutPaymaster(t *testing.T) {
	v := &Validator{}
	uo := v06Op(1)
	// required = 100000 + 1*100000 + 50000 = 250000.
	result := types.ValidationResult{ReturnInfo: types.ReturnInfo{Prefund: big.NewInt(250000)}}
	if err := v.checkPrefund(uo, result); err != nil {
		t.Errorf("checkPrefund() unexpected error = %v", err)
	}
}

func TestErrorKindDefaultsToUnexpected(t *testing.T) {
	if got := errorKind(errPlain{}); got != Unexpected {
		t.Errorf("errorKind() = %v, want Unexpected for a non-*Error error", got)
	}
}

type errPlain struct{}

func (errPlain) Error() string { return "boom" }
