// Package localsigner implements the signing provider with in-memory
// secp256k1 keys. It exists for development and testing; production
// deployments should put a real key custodian behind the ISigner interface.
package localsigner

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/walletcore/deeplink-go/pkg/signer"
	"github.com/walletcore/deeplink-go/pkg/types"
)

// LocalSigner holds secp256k1 private keys indexed by their Ethereum address.
// The first key added becomes the default account, used whenever a request
// does not name an address.
type LocalSigner struct {
	logger  *zap.Logger
	chainID *big.Int

	mu          sync.RWMutex
	keys        map[common.Address]*ecdsa.PrivateKey
	defaultAddr common.Address
}

// NewLocalSigner creates a signer with no keys. chainID selects the EIP-155
// transaction signer.
func NewLocalSigner(chainID *big.Int, logger *zap.Logger) *LocalSigner {
	return &LocalSigner{
		logger:  logger,
		chainID: chainID,
		keys:    make(map[common.Address]*ecdsa.PrivateKey),
	}
}

// GenerateKey creates a fresh secp256k1 key and returns its address.
func (s *LocalSigner) GenerateKey() (common.Address, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to generate key: %w", err)
	}
	return s.addKey(key), nil
}

// ImportKey adds a hex-encoded private key (with or without 0x prefix) and
// returns its address.
func (s *LocalSigner) ImportKey(hexKey string) (common.Address, error) {
	if len(hexKey) >= 2 && hexKey[:2] == "0x" {
		hexKey = hexKey[2:]
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to import key: %w", err)
	}
	return s.addKey(key), nil
}

// Addresses lists every account this signer holds.
func (s *LocalSigner) Addresses() []common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	addrs := make([]common.Address, 0, len(s.keys))
	for addr := range s.keys {
		addrs = append(addrs, addr)
	}
	return addrs
}

func (s *LocalSigner) addKey(key *ecdsa.PrivateKey) common.Address {
	addr := crypto.PubkeyToAddress(key.PublicKey)
	s.mu.Lock()
	if len(s.keys) == 0 {
		s.defaultAddr = addr
	}
	s.keys[addr] = key
	s.mu.Unlock()
	s.logger.Sugar().Infow("added signing key", "address", addr.Hex())
	return addr
}

// SignMessage signs the Keccak-256 digest of the raw message bytes.
func (s *LocalSigner) SignMessage(message []byte, address *common.Address, done signer.CompletionFunc) {
	go func() { done(s.signDigest(crypto.Keccak256(message), address)) }()
}

// SignPersonalMessage signs the EIP-191 text hash of the message.
func (s *LocalSigner) SignPersonalMessage(message []byte, address *common.Address, done signer.CompletionFunc) {
	go func() { done(s.signDigest(accounts.TextHash(message), address)) }()
}

// SignTransaction signs the transaction with the EIP-155 signer and delivers
// its binary (RLP) encoding.
func (s *LocalSigner) SignTransaction(tx *types.TransactionRequest, done signer.CompletionFunc) {
	go func() {
		key, kind := s.resolveKey(nil)
		if kind != types.ErrorKindNone {
			done(types.Failed(kind))
			return
		}
		unsigned := gethtypes.NewTx(&gethtypes.LegacyTx{
			Nonce:    tx.Nonce,
			GasPrice: tx.GasPrice,
			Gas:      tx.GasLimit.Uint64(),
			To:       &tx.To,
			Value:    tx.Amount,
			Data:     tx.Payload,
		})
		signed, err := gethtypes.SignTx(unsigned, gethtypes.NewEIP155Signer(s.chainID), key)
		if err != nil {
			s.logger.Sugar().Warnw("transaction signing failed", zap.Error(err))
			done(types.Failed(types.ErrorKindSignFailed))
			return
		}
		raw, err := signed.MarshalBinary()
		if err != nil {
			s.logger.Sugar().Warnw("failed to encode signed transaction", zap.Error(err))
			done(types.Failed(types.ErrorKindSignFailed))
			return
		}
		done(types.Signed(raw))
	}()
}

func (s *LocalSigner) signDigest(digest []byte, address *common.Address) types.SigningOutcome {
	key, kind := s.resolveKey(address)
	if kind != types.ErrorKindNone {
		return types.Failed(kind)
	}
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		s.logger.Sugar().Warnw("signing failed", zap.Error(err))
		return types.Failed(types.ErrorKindSignFailed)
	}
	return types.Signed(sig)
}

// resolveKey picks the key for the requested address, falling back to the
// default account when no address is given. For transactions the address is
// the recipient, not the signing account, so a nil pointer is expected there.
func (s *LocalSigner) resolveKey(address *common.Address) (*ecdsa.PrivateKey, types.ErrorKind) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.keys) == 0 {
		return nil, types.ErrorKindUnknownAddress
	}
	if address == nil {
		return s.keys[s.defaultAddr], types.ErrorKindNone
	}
	key, ok := s.keys[*address]
	if !ok {
		return nil, types.ErrorKindUnknownAddress
	}
	return key, types.ErrorKindNone
}

var _ signer.ISigner = (*LocalSigner)(nil)
