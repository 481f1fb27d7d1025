package simulation

import "math/big"

// packAccountGasLimits and packGasFees lay out the two 128-bit-half bytes32
// fields the v0.7 PackedUserOperation uses: the high 16 bytes carry the
// first value, the low 16 bytes the second.
func packAccountGasLimits(verificationGasLimit, callGasLimit *big.Int) [32]byte {
	var result [32]byte
	verificationBytes := verificationGasLimit.Bytes()
	copy(result[16-len(verificationBytes):16], verificationBytes)
	callBytes := callGasLimit.Bytes()
	copy(result[32-len(callBytes):32], callBytes)
	return result
}

func packGasFees(maxPriorityFeePerGas, maxFeePerGas *big.Int) [32]byte {
	var result [32]byte
	priorityBytes := maxPriorityFeePerGas.Bytes()
	copy(result[16-len(priorityBytes):16], priorityBytes)
	maxBytes := maxFeePerGas.Bytes()
	copy(result[32-len(maxBytes):32], maxBytes)
	return result
}

// packPaymasterAndData concatenates the v0.7 paymaster fields into the
// single opaque blob the PackedUserOperation's paymasterAndData carries:
// paymaster address, then its two gas limits packed the same way as
// accountGasLimits, then the opaque paymasterData.
func packPaymasterAndData(paymaster *[20]byte, verificationGasLimit, postOpGasLimit *big.Int, data []byte) []byte {
	if paymaster == nil {
		return nil
	}
	limits := packAccountGasLimits(verificationGasLimit, postOpGasLimit)
	out := make([]byte, 0, 20+32+len(data))
	out = append(out, paymaster[:]...)
	out = append(out, limits[:]...)
	out = append(out, data...)
	return out
}
