package remotesigner

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/walletcore/deeplink-go/pkg/types"
)

const testFromAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

type rpcCall struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

// newRPCServer responds to every JSON-RPC request with result and records the
// calls it saw.
func newRPCServer(t *testing.T, result string) (*httptest.Server, chan rpcCall) {
	t.Helper()
	calls := make(chan rpcCall, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call rpcCall
		require.NoError(t, json.NewDecoder(r.Body).Decode(&call))
		calls <- call
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  result,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func newTestSigner(t *testing.T, endpoint string) *RemoteSigner {
	t.Helper()
	s, err := NewRemoteSigner(&Config{
		URL:         endpoint,
		FromAddress: testFromAddress,
		Timeout:     5 * time.Second,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

func await(t *testing.T, run func(done func(types.SigningOutcome))) types.SigningOutcome {
	t.Helper()
	ch := make(chan types.SigningOutcome, 1)
	run(func(o types.SigningOutcome) { ch <- o })
	select {
	case o := <-ch:
		return o
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for signing outcome")
		return types.SigningOutcome{}
	}
}

func TestNewRemoteSigner_Validation(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := NewRemoteSigner(&Config{URL: ""}, logger)
	require.Error(t, err)

	_, err = NewRemoteSigner(&Config{URL: "http://localhost:9000", FromAddress: "nope"}, logger)
	require.Error(t, err)

	s, err := NewRemoteSigner(nil, logger)
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestSignMessage_CallsEthSign(t *testing.T) {
	srv, calls := newRPCServer(t, "0x0102")
	s := newTestSigner(t, srv.URL)

	out := await(t, func(done func(types.SigningOutcome)) {
		s.SignMessage([]byte("hello"), nil, done)
	})

	require.True(t, out.OK())
	require.Equal(t, []byte{0x01, 0x02}, out.Payload)

	call := <-calls
	require.Equal(t, "eth_sign", call.Method)
	require.Equal(t, testFromAddress, call.Params[0])
	require.Equal(t, "0x68656c6c6f", call.Params[1]) // "hello"
}

func TestSignMessage_ExplicitAddressOverridesFrom(t *testing.T) {
	srv, calls := newRPCServer(t, "0x01")
	s := newTestSigner(t, srv.URL)
	addr := common.HexToAddress("0x1234567890123456789012345678901234567890")

	out := await(t, func(done func(types.SigningOutcome)) {
		s.SignPersonalMessage([]byte("hi"), &addr, done)
	})
	require.True(t, out.OK())

	call := <-calls
	require.Equal(t, addr.Hex(), call.Params[0])
}

func TestSignTransaction_Params(t *testing.T) {
	srv, calls := newRPCServer(t, "0xf86b")
	s := newTestSigner(t, srv.URL)

	out := await(t, func(done func(types.SigningOutcome)) {
		s.SignTransaction(&types.TransactionRequest{
			Nonce:    7,
			GasPrice: big.NewInt(1),
			GasLimit: big.NewInt(21000),
			To:       common.HexToAddress("0x1234567890123456789012345678901234567890"),
			Amount:   big.NewInt(100),
			Payload:  []byte{0xde, 0xad},
		}, done)
	})
	require.True(t, out.OK())

	call := <-calls
	require.Equal(t, "eth_signTransaction", call.Method)
	params, isMap := call.Params[0].(map[string]interface{})
	require.True(t, isMap)
	require.Equal(t, testFromAddress, params["from"])
	require.Equal(t, "0x64", params["value"])
	require.Equal(t, "0x1", params["gasPrice"])
	require.Equal(t, "0x5208", params["gas"])
	require.Equal(t, "0x7", params["nonce"])
	require.Equal(t, "0xdead", params["data"])
}

func TestRemoteFailure_ResolvesAsSignFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"locked"}}`))
	}))
	t.Cleanup(srv.Close)
	s := newTestSigner(t, srv.URL)

	out := await(t, func(done func(types.SigningOutcome)) {
		s.SignMessage([]byte("hello"), nil, done)
	})

	require.False(t, out.OK())
	require.Equal(t, types.ErrorKindSignFailed, out.Err)
}

func TestUnreachableEndpoint_ResolvesAsSignFailed(t *testing.T) {
	s, err := NewRemoteSigner(&Config{
		URL:         "http://127.0.0.1:1",
		FromAddress: testFromAddress,
		Timeout:     200 * time.Millisecond,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	out := await(t, func(done func(types.SigningOutcome)) {
		s.SignMessage([]byte("hello"), nil, done)
	})

	require.Equal(t, types.ErrorKindSignFailed, out.Err)
}
