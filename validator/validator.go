// Package validator orchestrates the EntryPoint simulation adapter,
// enforces signature/time/prefund rules, and produces the final admission
// decision for a UserOperation: a sequence of named checks, each returning
// a tagged error immediately on the first failure, rather than accumulating
// a list of problems.
package validator

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aa-bundler/bundler-core/chainclient"
	"github.com/aa-bundler/bundler-core/pvg"
	"github.com/aa-bundler/bundler-core/simulation"
	"github.com/aa-bundler/bundler-core/types"
)

// Error is the tagged error shape this package surfaces, aliasing
// simulation.Error so that a single Kind/Error type spans both packages —
// the validator calls through the simulation adapter and must be able to
// propagate its errors unchanged, and a second parallel taxonomy would
// invite the two to drift.
type Error = simulation.Error

// Kind re-exports simulation.Kind for callers that only import validator.
type Kind = simulation.Kind

const (
	SimulateValidation    = simulation.SimulateValidation
	InvalidSignature      = simulation.InvalidSignature
	ExpiresShortly        = simulation.ExpiresShortly
	UserOperationReverted = simulation.UserOperationReverted
	Transport             = simulation.Transport
	Decode                = simulation.Decode
	Unexpected            = simulation.Unexpected
)

// Mempool is a typed extension point: a mempool storage/reputation layer
// can be handed a *Validator without this core needing an adapter shim.
// Nothing in this module implements it.
type Mempool interface {
	Add(ctx context.Context, uo *types.UserOperation, admission Admission) error
}

// Admission is the result of a successful Validate call: the normalized
// simulation result plus the two placeholders a storage/opcode-tracing
// validator layered on top of this one would populate.
type Admission struct {
	Result              types.ValidationResult
	StorageMap          map[string]interface{}
	ReferencedContracts []common.Hash
}

// Config carries the options this validator consults directly.
type Config struct {
	// APIVersion gates the preVerificationGas check: skipped entirely when
	// set to "v1".
	APIVersion string
	// DisableExpirationCheck globally disables the time-window check.
	DisableExpirationCheck bool
	// BalanceOverrideEnabled adds a synthetic ETH balance override for the
	// sender on the simulation call.
	BalanceOverrideEnabled bool
	// SafetyMarginSeconds/StalenessMarginSeconds bound the time-validity
	// window; defaults 5s and 30s, overridable for testing.
	SafetyMarginSeconds    int64
	StalenessMarginSeconds int64
}

// DefaultConfig returns the defaults: 5s safety margin, 30s staleness
// margin, expiration checking enabled, API version "v2".
func DefaultConfig() Config {
	return Config{APIVersion: "v2", SafetyMarginSeconds: 5, StalenessMarginSeconds: 30}
}

// clock lets tests substitute a fixed "now" without sleeping; production
// code always uses realClock.
type clock func() int64

func realClock() int64 { return time.Now().Unix() }

// Validator is stateless across calls: it holds no state but a config
// snapshot, a simulation adapter, a pre-verification gas estimator, the
// chain id taken at construction, and a telemetry sink.
type Validator struct {
	adapter *simulation.Adapter
	pvg     *pvg.Estimator
	cfg     Config
	sink    simulation.Sink
	chainID int64
	now     clock
}

// New constructs a Validator. sink may be nil (falls back to a no-op).
func New(adapter *simulation.Adapter, estimator *pvg.Estimator, cfg Config, chainID int64, sink simulation.Sink) *Validator {
	if sink == nil {
		sink = simulation.NopSink{}
	}
	if cfg.SafetyMarginSeconds == 0 && cfg.StalenessMarginSeconds == 0 && !cfg.DisableExpirationCheck {
		cfg.SafetyMarginSeconds, cfg.StalenessMarginSeconds = 5, 30
	}
	return &Validator{adapter: adapter, pvg: estimator, cfg: cfg, sink: sink, chainID: chainID, now: realClock}
}

// Validate dispatches to simulation, then enforces signature, time-window,
// pre-verification-gas, and prefund rules in order, incrementing
// validationSuccess or validationFailure exactly once on the terminal path.
func (v *Validator) Validate(ctx context.Context, uo *types.UserOperation, entrypoint common.Address) (Admission, error) {
	if err := uo.Validate(); err != nil {
		v.sink.RecordValidationFailure(Decode)
		return Admission{}, &Error{Kind: Decode, Message: err.Error()}
	}

	result, err := v.adapter.SimulateValidation(ctx, uo, entrypoint, v.simulationOverrides(uo))
	if err != nil {
		v.sink.RecordValidationFailure(errorKind(err))
		return Admission{}, err
	}

	if err := v.checkSignature(uo, result); err != nil {
		v.sink.RecordValidationFailure(InvalidSignature)
		return Admission{}, err
	}

	if !v.cfg.DisableExpirationCheck {
		if err := v.checkExpiration(result); err != nil {
			v.sink.RecordValidationFailure(ExpiresShortly)
			return Admission{}, err
		}
	}

	if v.cfg.APIVersion != "v1" && v.pvg != nil {
		if err := v.checkPreVerificationGas(ctx, uo); err != nil {
			v.sink.RecordValidationFailure(SimulateValidation)
			return Admission{}, err
		}
	}

	if err := v.checkPrefund(uo, result); err != nil {
		v.sink.RecordValidationFailure(SimulateValidation)
		return Admission{}, err
	}

	v.sink.RecordValidationSuccess()
	return Admission{
		Result:     result,
		StorageMap: map[string]interface{}{},
	}, nil
}

// syntheticBalance is the ETH balance granted to the sender when
// balanceOverrideEnabled is set, large enough that any realistic prefund
// check passes during simulation: 10^21 wei (1000 ETH).
var syntheticBalance = new(big.Int).Exp(big.NewInt(10), big.NewInt(21), nil)

// simulationOverrides builds the state-override map for the simulation
// call: a synthetic sender balance when BalanceOverrideEnabled, empty
// otherwise.
func (v *Validator) simulationOverrides(uo *types.UserOperation) map[common.Address]chainclient.CallOverride {
	if !v.cfg.BalanceOverrideEnabled {
		return nil
	}
	return map[common.Address]chainclient.CallOverride{
		uo.Sender(): {Balance: syntheticBalance},
	}
}

// checkSignature requires both sig-failed bits to be clear.
func (v *Validator) checkSignature(uo *types.UserOperation, result types.ValidationResult) error {
	if uo.Version() == types.V07 {
		if result.ReturnInfo.AccountSigFailed {
			return &Error{Kind: InvalidSignature, Message: "Invalid UserOp signature or paymaster signature"}
		}
		if result.ReturnInfo.PaymasterSigFailed {
			return &Error{Kind: InvalidSignature, Message: "Invalid UserOp paymaster signature"}
		}
		return nil
	}
	if result.ReturnInfo.SigFailed() {
		return &Error{Kind: InvalidSignature, Message: "Invalid UserOp signature"}
	}
	return nil
}

// checkExpiration requires validAfter to already be at least safetyMargin
// seconds in the past, and validUntil to still be at least stalenessMargin
// seconds in the future.
func (v *Validator) checkExpiration(result types.ValidationResult) error {
	now := v.now()
	ri := result.ReturnInfo

	if int64(ri.ValidAfter) > now-v.cfg.SafetyMarginSeconds {
		return &Error{Kind: ExpiresShortly, Message: fmt.Sprintf("UserOperation is not valid yet: validAfter=%d, now=%d", ri.ValidAfter, now)}
	}
	if ri.ValidUntil == 0 || int64(ri.ValidUntil) < now+v.cfg.StalenessMarginSeconds {
		return &Error{Kind: ExpiresShortly, Message: fmt.Sprintf("UserOperation expires too soon: validUntil=%d, now=%d", ri.ValidUntil, now)}
	}
	return nil
}

// checkPreVerificationGas requires the declared preVerificationGas to be at
// least the chain-computed minimum.
func (v *Validator) checkPreVerificationGas(ctx context.Context, uo *types.UserOperation) error {
	minimum, err := v.pvg.Estimate(ctx, uo, v.chainID)
	if err != nil {
		return &Error{Kind: SimulateValidation, Message: fmt.Sprintf("failed to compute minimum preVerificationGas: %v", err)}
	}
	declared := uo.PreVerificationGas()
	if declared.Cmp(minimum) < 0 {
		return &Error{Kind: SimulateValidation, Message: fmt.Sprintf("preVerificationGas too low: required: %s, got: %s", minimum, declared)}
	}
	return nil
}

// checkPrefund computes the required prefund with multiplier 3 on the
// verification gas limit when a paymaster is declared, 1 otherwise.
func (v *Validator) checkPrefund(uo *types.UserOperation, result types.ValidationResult) error {
	multiplier := int64(1)
	if uo.HasPaymaster() {
		multiplier = 3
	}

	required := new(big.Int).Add(uo.CallGasLimit(), new(big.Int).Mul(big.NewInt(multiplier), uo.VerificationGasLimit()))
	required.Add(required, uo.PreVerificationGas())

	if required.Cmp(result.ReturnInfo.Prefund) > 0 {
		return &Error{Kind: SimulateValidation, Message: fmt.Sprintf("prefund is not enough, required: %s, got: %s", required, result.ReturnInfo.Prefund)}
	}
	return nil
}

func errorKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return Unexpected
}
