// Package simulation drives eth_call against the v0.6 EntryPoint's
// revert-encoded success path and the v0.7 EntryPointSimulations'
// structured-return path, and normalizes both into types.ValidationResult /
// types.ExecutionResult. The usual abi.JSON → Pack → call → Unpack sequence
// applies, except that here custom *errors* are decoded out of revert data
// rather than a method's declared outputs.
package simulation

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// v06EntryPointABI carries simulateValidation's input shape and the three
// custom errors the v0.6 EntryPoint reverts with from it: FailedOp on
// failure, ValidationResult/ValidationResultWithAggregation on success. It
// also carries simulateHandleOp and its ExecutionResult error.
const v06EntryPointABI = `[
  {
    "type": "function",
    "name": "simulateValidation",
    "stateMutability": "nonpayable",
    "inputs": [
      {
        "name": "userOp",
        "type": "tuple",
        "components": [
          {"name": "sender", "type": "address"},
          {"name": "nonce", "type": "uint256"},
          {"name": "initCode", "type": "bytes"},
          {"name": "callData", "type": "bytes"},
          {"name": "callGasLimit", "type": "uint256"},
          {"name": "verificationGasLimit", "type": "uint256"},
          {"name": "preVerificationGas", "type": "uint256"},
          {"name": "maxFeePerGas", "type": "uint256"},
          {"name": "maxPriorityFeePerGas", "type": "uint256"},
          {"name": "paymasterAndData", "type": "bytes"},
          {"name": "signature", "type": "bytes"}
        ]
      }
    ],
    "outputs": []
  },
  {
    "type": "error",
    "name": "FailedOp",
    "inputs": [
      {"name": "opIndex", "type": "uint256"},
      {"name": "reason", "type": "string"}
    ]
  },
  {
    "type": "error",
    "name": "ValidationResult",
    "inputs": [
      {
        "name": "returnInfo", "type": "tuple",
        "components": [
          {"name": "preOpGas", "type": "uint256"},
          {"name": "prefund", "type": "uint256"},
          {"name": "sigFailed", "type": "bool"},
          {"name": "validAfter", "type": "uint48"},
          {"name": "validUntil", "type": "uint48"},
          {"name": "paymasterContext", "type": "bytes"}
        ]
      },
      {
        "name": "senderInfo", "type": "tuple",
        "components": [
          {"name": "stake", "type": "uint256"},
          {"name": "unstakeDelaySec", "type": "uint256"}
        ]
      },
      {
        "name": "factoryInfo", "type": "tuple",
        "components": [
          {"name": "stake", "type": "uint256"},
          {"name": "unstakeDelaySec", "type": "uint256"}
        ]
      },
      {
        "name": "paymasterInfo", "type": "tuple",
        "components": [
          {"name": "stake", "type": "uint256"},
          {"name": "unstakeDelaySec", "type": "uint256"}
        ]
      }
    ]
  },
  {
    "type": "error",
    "name": "ValidationResultWithAggregation",
    "inputs": [
      {
        "name": "returnInfo", "type": "tuple",
        "components": [
          {"name": "preOpGas", "type": "uint256"},
          {"name": "prefund", "type": "uint256"},
          {"name": "sigFailed", "type": "bool"},
          {"name": "validAfter", "type": "uint48"},
          {"name": "validUntil", "type": "uint48"},
          {"name": "paymasterContext", "type": "bytes"}
        ]
      },
      {
        "name": "senderInfo", "type": "tuple",
        "components": [
          {"name": "stake", "type": "uint256"},
          {"name": "unstakeDelaySec", "type": "uint256"}
        ]
      },
      {
        "name": "factoryInfo", "type": "tuple",
        "components": [
          {"name": "stake", "type": "uint256"},
          {"name": "unstakeDelaySec", "type": "uint256"}
        ]
      },
      {
        "name": "paymasterInfo", "type": "tuple",
        "components": [
          {"name": "stake", "type": "uint256"},
          {"name": "unstakeDelaySec", "type": "uint256"}
        ]
      },
      {
        "name": "aggregatorInfo", "type": "tuple",
        "components": [
          {"name": "aggregator", "type": "address"},
          {
            "name": "stakeInfo", "type": "tuple",
            "components": [
              {"name": "stake", "type": "uint256"},
              {"name": "unstakeDelaySec", "type": "uint256"}
            ]
          }
        ]
      }
    ]
  },
  {
    "type": "function",
    "name": "simulateHandleOp",
    "stateMutability": "nonpayable",
    "inputs": [
      {
        "name": "userOp",
        "type": "tuple",
        "components": [
          {"name": "sender", "type": "address"},
          {"name": "nonce", "type": "uint256"},
          {"name": "initCode", "type": "bytes"},
          {"name": "callData", "type": "bytes"},
          {"name": "callGasLimit", "type": "uint256"},
          {"name": "verificationGasLimit", "type": "uint256"},
          {"name": "preVerificationGas", "type": "uint256"},
          {"name": "maxFeePerGas", "type": "uint256"},
          {"name": "maxPriorityFeePerGas", "type": "uint256"},
          {"name": "paymasterAndData", "type": "bytes"},
          {"name": "signature", "type": "bytes"}
        ]
      },
      {"name": "target", "type": "address"},
      {"name": "targetCallData", "type": "bytes"}
    ],
    "outputs": []
  },
  {
    "type": "error",
    "name": "ExecutionResult",
    "inputs": [
      {"name": "preOpGas", "type": "uint256"},
      {"name": "paid", "type": "uint256"},
      {"name": "validAfter", "type": "uint48"},
      {"name": "validUntil", "type": "uint48"},
      {"name": "targetSuccess", "type": "bool"},
      {"name": "targetResult", "type": "bytes"}
    ]
  }
]`

// v07SimulationsABI carries EntryPointSimulations.simulateValidation, whose
// success path returns a struct directly rather than reverting, and the
// FailedOp error it still reverts with on failure, plus simulateHandleOp
// and its ExecutionResult error.
const v07SimulationsABI = `[
  {
    "type": "function",
    "name": "simulateValidation",
    "stateMutability": "nonpayable",
    "inputs": [
      {
        "name": "userOp", "type": "tuple",
        "components": [
          {"name": "sender", "type": "address"},
          {"name": "nonce", "type": "uint256"},
          {"name": "initCode", "type": "bytes"},
          {"name": "callData", "type": "bytes"},
          {"name": "accountGasLimits", "type": "bytes32"},
          {"name": "preVerificationGas", "type": "uint256"},
          {"name": "gasFees", "type": "bytes32"},
          {"name": "paymasterAndData", "type": "bytes"},
          {"name": "signature", "type": "bytes"}
        ]
      }
    ],
    "outputs": [
      {
        "name": "", "type": "tuple",
        "components": [
          {
            "name": "returnInfo", "type": "tuple",
            "components": [
              {"name": "preOpGas", "type": "uint256"},
              {"name": "prefund", "type": "uint256"},
              {"name": "accountValidationData", "type": "uint256"},
              {"name": "paymasterValidationData", "type": "uint256"},
              {"name": "paymasterContext", "type": "bytes"}
            ]
          },
          {
            "name": "senderInfo", "type": "tuple",
            "components": [
              {"name": "stake", "type": "uint256"},
              {"name": "unstakeDelaySec", "type": "uint256"}
            ]
          },
          {
            "name": "factoryInfo", "type": "tuple",
            "components": [
              {"name": "stake", "type": "uint256"},
              {"name": "unstakeDelaySec", "type": "uint256"}
            ]
          },
          {
            "name": "paymasterInfo", "type": "tuple",
            "components": [
              {"name": "stake", "type": "uint256"},
              {"name": "unstakeDelaySec", "type": "uint256"}
            ]
          },
          {
            "name": "aggregatorInfo", "type": "tuple",
            "components": [
              {"name": "aggregator", "type": "address"},
              {
                "name": "stakeInfo", "type": "tuple",
                "components": [
                  {"name": "stake", "type": "uint256"},
                  {"name": "unstakeDelaySec", "type": "uint256"}
                ]
              }
            ]
          }
        ]
      }
    ]
  },
  {
    "type": "error",
    "name": "FailedOp",
    "inputs": [
      {"name": "opIndex", "type": "uint256"},
      {"name": "reason", "type": "string"}
    ]
  },
  {
    "type": "function",
    "name": "simulateHandleOp",
    "stateMutability": "nonpayable",
    "inputs": [
      {
        "name": "userOp", "type": "tuple",
        "components": [
          {"name": "sender", "type": "address"},
          {"name": "nonce", "type": "uint256"},
          {"name": "initCode", "type": "bytes"},
          {"name": "callData", "type": "bytes"},
          {"name": "accountGasLimits", "type": "bytes32"},
          {"name": "preVerificationGas", "type": "uint256"},
          {"name": "gasFees", "type": "bytes32"},
          {"name": "paymasterAndData", "type": "bytes"},
          {"name": "signature", "type": "bytes"}
        ]
      },
      {"name": "target", "type": "address"},
      {"name": "targetCallData", "type": "bytes"}
    ],
    "outputs": []
  },
  {
    "type": "error",
    "name": "ExecutionResult",
    "inputs": [
      {"name": "preOpGas", "type": "uint256"},
      {"name": "paid", "type": "uint256"},
      {"name": "validAfter", "type": "uint48"},
      {"name": "validUntil", "type": "uint48"},
      {"name": "targetSuccess", "type": "bool"},
      {"name": "targetResult", "type": "bytes"}
    ]
  }
]`

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("simulation: invalid embedded ABI: " + err.Error())
	}
	return parsed
}

var v06ABI = mustParseABI(v06EntryPointABI)
var v07ABI = mustParseABI(v07SimulationsABI)
