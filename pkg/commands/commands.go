package commands

import (
	"fmt"
	"net/url"

	"github.com/ethereum/go-ethereum/common"

	"github.com/walletcore/deeplink-go/pkg/types"
)

// Kind identifies the signing operation requested by a deep-link URL. It is
// the host segment of the inbound URL.
type Kind string

const (
	KindSignMessage         Kind = "sign-message"
	KindSignPersonalMessage Kind = "sign-personal-message"
	KindSignTransaction     Kind = "sign-transaction"
)

func (k Kind) String() string {
	return string(k)
}

// ValidationError describes a mandatory field that was missing or failed to
// decode. A command carrying a ValidationError is still a recognized command;
// the dispatcher turns it into an invalidRequest callback.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Command is a decoded, typed signing request extracted from an inbound URL.
// Commands are immutable values once parsed.
type Command interface {
	// Kind returns the operation this command requests.
	Kind() Kind

	// CallbackTarget returns the URL the asynchronous result should be
	// delivered to, or nil for a fire-and-forget request.
	CallbackTarget() *url.URL

	// Validation returns the decode failure for a malformed command, nil for
	// a well-formed one.
	Validation() *ValidationError
}

// SignMessage requests a signature over raw message bytes.
type SignMessage struct {
	Message  []byte
	Address  *common.Address // nil lets the signer pick its default
	Callback *url.URL
	Invalid  *ValidationError
}

func (c *SignMessage) Kind() Kind { return KindSignMessage }
func (c *SignMessage) CallbackTarget() *url.URL { return c.Callback }
func (c *SignMessage) Validation() *ValidationError { return c.Invalid }

// SignPersonalMessage requests an EIP-191 personal-message signature.
type SignPersonalMessage struct {
	Message  []byte
	Address  *common.Address
	Callback *url.URL
	Invalid  *ValidationError
}

func (c *SignPersonalMessage) Kind() Kind { return KindSignPersonalMessage }
func (c *SignPersonalMessage) CallbackTarget() *url.URL { return c.Callback }
func (c *SignPersonalMessage) Validation() *ValidationError { return c.Invalid }

// SignTransaction requests a signature over a fully specified transaction.
type SignTransaction struct {
	Tx       types.TransactionRequest
	Callback *url.URL
	Invalid  *ValidationError
}

func (c *SignTransaction) Kind() Kind { return KindSignTransaction }
func (c *SignTransaction) CallbackTarget() *url.URL { return c.Callback }
func (c *SignTransaction) Validation() *ValidationError { return c.Invalid }

var (
	_ Command = (*SignMessage)(nil)
	_ Command = (*SignPersonalMessage)(nil)
	_ Command = (*SignTransaction)(nil)
)
