// Package remotesigner implements the signing provider against a
// Web3Signer-compatible JSON-RPC endpoint (eth_sign / eth_signTransaction).
package remotesigner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/walletcore/deeplink-go/pkg/signer"
	"github.com/walletcore/deeplink-go/pkg/types"
)

// Config holds the remote signer connection settings.
type Config struct {
	// URL of the JSON-RPC endpoint.
	URL string

	// FromAddress is the account the endpoint signs with when a request does
	// not name one.
	FromAddress string

	// Timeout bounds each HTTP request. Defaults to 30s.
	Timeout time.Duration
}

// DefaultConfig returns settings suitable for a local Web3Signer instance.
func DefaultConfig() *Config {
	return &Config{
		URL:     "http://localhost:9000",
		Timeout: 30 * time.Second,
	}
}

// RemoteSigner forwards signing operations to the remote endpoint. Any
// transport or endpoint failure resolves the request as signFailed; the
// protocol layer does not retry.
type RemoteSigner struct {
	cfg        *Config
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
	requestID  atomic.Uint64
}

// NewRemoteSigner validates cfg and builds a RemoteSigner.
func NewRemoteSigner(cfg *Config, logger *zap.Logger) (*RemoteSigner, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if _, err := url.Parse(cfg.URL); err != nil || cfg.URL == "" {
		return nil, fmt.Errorf("invalid remote signer URL %q", cfg.URL)
	}
	if cfg.FromAddress != "" && !common.IsHexAddress(cfg.FromAddress) {
		return nil, fmt.Errorf("invalid from address %q", cfg.FromAddress)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteSigner{
		cfg:        cfg,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// SetHttpClient allows setting a custom HTTP client, mainly for testing.
func (s *RemoteSigner) SetHttpClient(client *http.Client) {
	s.httpClient = client
}

// SignMessage signs raw message bytes via eth_sign.
func (s *RemoteSigner) SignMessage(message []byte, address *common.Address, done signer.CompletionFunc) {
	go func() { done(s.ethSign(message, address)) }()
}

// SignPersonalMessage signs via eth_sign as well: the endpoint applies the
// EIP-191 personal-message prefix before signing.
func (s *RemoteSigner) SignPersonalMessage(message []byte, address *common.Address, done signer.CompletionFunc) {
	go func() { done(s.ethSign(message, address)) }()
}

// SignTransaction signs via eth_signTransaction and delivers the signed
// transaction bytes returned by the endpoint.
func (s *RemoteSigner) SignTransaction(tx *types.TransactionRequest, done signer.CompletionFunc) {
	go func() {
		params := map[string]interface{}{
			"from":     s.cfg.FromAddress,
			"to":       tx.To.Hex(),
			"gasPrice": hexutil.EncodeBig(tx.GasPrice),
			"gas":      hexutil.EncodeBig(tx.GasLimit),
			"value":    hexutil.EncodeBig(tx.Amount),
			"nonce":    hexutil.EncodeUint64(tx.Nonce),
		}
		if len(tx.Payload) > 0 {
			params["data"] = hexutil.Encode(tx.Payload)
		}
		result, err := s.call("eth_signTransaction", []interface{}{params})
		done(s.decodeResult(result, err))
	}()
}

func (s *RemoteSigner) ethSign(message []byte, address *common.Address) types.SigningOutcome {
	account := s.cfg.FromAddress
	if address != nil {
		account = address.Hex()
	}
	result, err := s.call("eth_sign", []interface{}{account, hexutil.Encode(message)})
	return s.decodeResult(result, err)
}

func (s *RemoteSigner) decodeResult(result string, err error) types.SigningOutcome {
	if err != nil {
		s.logger.Sugar().Warnw("remote signing failed", zap.Error(err))
		return types.Failed(types.ErrorKindSignFailed)
	}
	payload, err := hexutil.Decode(result)
	if err != nil {
		s.logger.Sugar().Warnw("remote signer returned undecodable result", "result", result, zap.Error(err))
		return types.Failed(types.ErrorKindSignFailed)
	}
	return types.Signed(payload)
}

type jsonrpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      uint64        `json:"id"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type jsonrpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *jsonrpcError   `json:"error"`
}

func (s *RemoteSigner) call(method string, params []interface{}) (string, error) {
	reqBody, err := json.Marshal(jsonrpcRequest{
		Jsonrpc: "2.0",
		Method:  method,
		Params:  params,
		ID:      s.requestID.Add(1),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to encode %s request", method)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(reqBody))
	if err != nil {
		return "", errors.Wrapf(err, "failed to build %s request", method)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", errors.Wrapf(err, "%s request failed", method)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("%s returned status %d", method, resp.StatusCode)
	}

	var rpcResp jsonrpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return "", errors.Wrapf(err, "failed to decode %s response", method)
	}
	if rpcResp.Error != nil {
		return "", errors.Errorf("%s error %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
	}

	var result string
	if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
		return "", errors.Wrapf(err, "unexpected %s result", method)
	}
	return result, nil
}

var _ signer.ISigner = (*RemoteSigner)(nil)
