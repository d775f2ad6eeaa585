// Package signer defines the collaborator interface the protocol engine
// dispatches signing operations to. Implementations own the actual
// cryptography and key custody; the engine only forwards decoded requests
// and consumes the one-shot completion callback.
package signer

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/walletcore/deeplink-go/pkg/types"
)

// CompletionFunc receives the outcome of one signing operation. It is invoked
// exactly once per accepted request, at a time and on a goroutine chosen by
// the signer. Implementations must not invoke it more than once.
type CompletionFunc func(types.SigningOutcome)

// ISigner is the external signing provider. All methods are asynchronous:
// they return immediately and deliver their result through done.
type ISigner interface {
	// SignMessage signs raw message bytes. A nil address lets the signer
	// choose its default account.
	SignMessage(message []byte, address *common.Address, done CompletionFunc)

	// SignPersonalMessage signs message bytes with the EIP-191 personal
	// message prefix applied.
	SignPersonalMessage(message []byte, address *common.Address, done CompletionFunc)

	// SignTransaction signs a fully populated transaction and returns its
	// serialized signed form through done.
	SignTransaction(tx *types.TransactionRequest, done CompletionFunc)
}
