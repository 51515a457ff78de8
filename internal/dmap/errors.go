package dmap

import "errors"

// ErrRejected is returned by Insert (and surfaced through the "insert"
// RPC opcode from a remote owner) when the Shard's InsertPolicy
// declined to store the value, e.g. policy.Reject on a key that is
// already present.
var ErrRejected = errors.New("dmap: insert rejected by policy")
