package commands

import (
	"encoding/base64"
	"encoding/hex"
	"math/big"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/walletcore/deeplink-go/pkg/types"
)

// ParseURL decodes a deep-link URL into a typed Command. ok is false when the
// URL does not belong to the protocol: it cannot be parsed at all, or its
// host names no known operation. A recognized URL always yields a Command,
// even when mandatory fields are missing or malformed; such a command carries
// a ValidationError and is reported as invalidRequest by the dispatcher.
//
// Parsing is pure and synchronous, performs no I/O, and is idempotent: the
// same URL always decodes to a structurally equal Command.
func ParseURL(raw string) (Command, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}

	q := u.Query()
	switch Kind(u.Host) {
	case KindSignMessage:
		return parseSignMessage(q), true
	case KindSignPersonalMessage:
		return parseSignPersonalMessage(q), true
	case KindSignTransaction:
		return parseSignTransaction(q), true
	default:
		return nil, false
	}
}

func parseSignMessage(q url.Values) *SignMessage {
	cmd := &SignMessage{
		Address:  parseOptionalAddress(q.Get("address")),
		Callback: parseCallback(q.Get("callback")),
	}
	cmd.Message, cmd.Invalid = parseMessage(q.Get("message"))
	return cmd
}

func parseSignPersonalMessage(q url.Values) *SignPersonalMessage {
	cmd := &SignPersonalMessage{
		Address:  parseOptionalAddress(q.Get("address")),
		Callback: parseCallback(q.Get("callback")),
	}
	cmd.Message, cmd.Invalid = parseMessage(q.Get("message"))
	return cmd
}

func parseSignTransaction(q url.Values) *SignTransaction {
	cmd := &SignTransaction{
		Callback: parseCallback(q.Get("callback")),
	}

	gasPrice, verr := parseBigInt(q.Get("gasPrice"), "gasPrice")
	if verr != nil {
		cmd.Invalid = verr
		return cmd
	}

	gasLimit, verr := parseGasLimit(q.Get("gasLimit"))
	if verr != nil {
		cmd.Invalid = verr
		return cmd
	}

	to := q.Get("to")
	if !common.IsHexAddress(to) {
		cmd.Invalid = &ValidationError{Field: "to", Reason: "missing or not a valid address"}
		return cmd
	}

	amount, verr := parseBigInt(q.Get("amount"), "amount")
	if verr != nil {
		cmd.Invalid = verr
		return cmd
	}

	cmd.Tx = types.TransactionRequest{
		Nonce:    parseNonce(q.Get("nonce")),
		GasPrice: gasPrice,
		GasLimit: gasLimit,
		To:       common.HexToAddress(to),
		Amount:   amount,
		Payload:  parsePayload(q.Get("data")),
	}
	return cmd
}

// parseCallback decodes the callback target. Invalid or absent values are
// treated as "no callback", never as an error.
func parseCallback(raw string) *url.URL {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return nil
	}
	return u
}

// parseOptionalAddress returns nil for anything that is not a well-formed hex
// address; the signer then chooses its default account.
func parseOptionalAddress(raw string) *common.Address {
	if !common.IsHexAddress(raw) {
		return nil
	}
	addr := common.HexToAddress(raw)
	return &addr
}

func parseMessage(raw string) ([]byte, *ValidationError) {
	if raw == "" {
		return nil, &ValidationError{Field: "message", Reason: "missing"}
	}
	msg, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, &ValidationError{Field: "message", Reason: "not valid base64"}
	}
	return msg, nil
}

func parseBigInt(raw, field string) (*big.Int, *ValidationError) {
	if raw == "" {
		return nil, &ValidationError{Field: field, Reason: "missing"}
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, &ValidationError{Field: field, Reason: "not a base-10 integer"}
	}
	return v, nil
}

// parseGasLimit enforces the uint64 range before widening to big.Int.
func parseGasLimit(raw string) (*big.Int, *ValidationError) {
	if raw == "" {
		return nil, &ValidationError{Field: "gasLimit", Reason: "missing"}
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, &ValidationError{Field: "gasLimit", Reason: "not an unsigned integer"}
	}
	return new(big.Int).SetUint64(v), nil
}

// parseNonce defaults to zero when absent or unparsable.
func parseNonce(raw string) uint64 {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// parsePayload hex-decodes the optional transaction data, tolerating a 0x
// prefix. Undecodable input means no payload.
func parsePayload(raw string) []byte {
	raw = strings.TrimPrefix(raw, "0x")
	if raw == "" {
		return nil
	}
	data, err := hex.DecodeString(raw)
	if err != nil {
		return nil
	}
	return data
}
