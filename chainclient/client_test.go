package chainclient

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

func TestDecodeErrorData(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want []byte
	}{
		{name: "byte slice passthrough", in: []byte{0xde, 0xad}, want: []byte{0xde, 0xad}},
		{name: "hex string", in: "0xdead", want: []byte{0xde, 0xad}},
		{name: "unparseable hex string", in: "not-hex", want: nil},
		{name: "unsupported type", in: 42, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeErrorData(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("decodeErrorData(%v) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("decodeErrorData(%v)[%d] = %x, want %x", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestToCallArg(t *testing.T) {
	to := common.HexToAddress("0x00000000000000000000000000000000000042")
	msg := ethereum.CallMsg{To: &to, Data: []byte{0x01, 0x02}}

	arg := toCallArg(msg)
	if arg["to"] != &to {
		t.Errorf("expected to field to be the To pointer")
	}
	if _, ok := arg["from"]; ok {
		t.Errorf("expected no from field for the zero address")
	}
	data, ok := arg["data"].(hexutil.Bytes)
	if !ok || len(data) != 2 {
		t.Errorf("expected data field to carry the call data, got %v", arg["data"])
	}
}

func TestToCallArgIncludesFromWhenSet(t *testing.T) {
	to := common.HexToAddress("0x00000000000000000000000000000000000042")
	from := common.HexToAddress("0x00000000000000000000000000000000000099")
	msg := ethereum.CallMsg{From: from, To: &to, Data: []byte{}}

	arg := toCallArg(msg)
	if arg["from"] != from {
		t.Errorf("expected from field to be set, got %v", arg["from"])
	}
}

func TestRevertDataError(t *testing.T) {
	r := &RevertData{Raw: []byte{0x01, 0x02, 0x03, 0x04}}
	if r.Error() == "" {
		t.Errorf("expected non-empty error string for raw revert")
	}

	decoded := &RevertData{Decoded: true, Name: "FailedOp", Args: []interface{}{big.NewInt(0), "AA21 didn't pay prefund"}}
	if decoded.Error() == "" {
		t.Errorf("expected non-empty error string for decoded revert")
	}
}
