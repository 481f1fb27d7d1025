package chainclient

import "fmt"

// TransportError wraps a failure reaching or talking to the RPC provider
// itself (dial failure, timeout, connection reset) as distinct from a
// decode failure or an on-chain revert.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("chainclient: transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError wraps a failure to ABI-encode a call's arguments or
// ABI-decode its return/revert data.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("chainclient: decode error during %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RevertData is the result of a reverted eth_call: the raw revert payload,
// plus optional decoded error name and field values. *Client fills only
// Raw; Decoded, Name and Args stay unset unless a caller sets them.
type RevertData struct {
	Raw     []byte
	Decoded bool
	Name    string
	Args    []interface{}
}

func (r *RevertData) Error() string {
	if r.Decoded {
		return fmt.Sprintf("chainclient: reverted with %s%v", r.Name, r.Args)
	}
	return fmt.Sprintf("chainclient: reverted with %d raw bytes", len(r.Raw))
}
