package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrorKind is the closed set of failure codes a signing request can resolve
// to. The zero value means "no error" and is never serialized into a callback
// URL; every other value is forwarded verbatim as the `error` parameter.
type ErrorKind string

const (
	// ErrorKindNone is the not-an-error sentinel.
	ErrorKindNone ErrorKind = ""

	// ErrorKindInvalidRequest marks a structurally or semantically malformed
	// command (missing or unparsable mandatory field).
	ErrorKindInvalidRequest ErrorKind = "invalidRequest"

	// Signer-reported kinds. The engine does not interpret these, it only
	// encodes them into the callback.
	ErrorKindRejectedByUser ErrorKind = "rejectedByUser"
	ErrorKindUnknownAddress ErrorKind = "unknownAddress"
	ErrorKindSignFailed     ErrorKind = "signFailed"
)

func (k ErrorKind) String() string {
	return string(k)
}

// SigningOutcome is the result of one signing operation: a signed payload on
// success, an ErrorKind on failure. Exactly one outcome is produced per
// dispatched command and it is consumed exactly once.
type SigningOutcome struct {
	Payload []byte
	Err     ErrorKind
}

// Signed builds a successful outcome carrying the signed payload.
func Signed(payload []byte) SigningOutcome {
	return SigningOutcome{Payload: payload}
}

// Failed builds a failure outcome for the given kind.
func Failed(kind ErrorKind) SigningOutcome {
	return SigningOutcome{Err: kind}
}

// OK reports whether the outcome is a success.
func (o SigningOutcome) OK() bool {
	return o.Err == ErrorKindNone
}

// TransactionRequest is a fully decoded transaction to be signed. GasLimit is
// logically a uint64 widened to the transaction's integer width.
type TransactionRequest struct {
	Nonce    uint64
	GasPrice *big.Int
	GasLimit *big.Int
	To       common.Address
	Amount   *big.Int
	Payload  []byte
}
