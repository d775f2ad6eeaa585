// Package callback encodes signing outcomes into a caller-supplied callback
// URL and hands the result to a launcher for delivery.
package callback

import (
	"encoding/base64"
	"net/url"

	"github.com/walletcore/deeplink-go/pkg/types"
)

const (
	resultParam = "result"
	errorParam  = "error"
)

// EncodeSuccess returns a copy of cb with a single `result` parameter
// appended carrying the base64-encoded signed payload. The input URL is not
// modified; its existing query parameters are preserved.
func EncodeSuccess(cb *url.URL, payload []byte) *url.URL {
	return appendParam(cb, resultParam, base64.StdEncoding.EncodeToString(payload))
}

// EncodeFailure returns a copy of cb with a single `error` parameter appended
// carrying the error kind identifier.
func EncodeFailure(cb *url.URL, kind types.ErrorKind) *url.URL {
	return appendParam(cb, errorParam, kind.String())
}

func appendParam(cb *url.URL, key, value string) *url.URL {
	out := *cb
	q := out.Query()
	q.Set(key, value)
	out.RawQuery = q.Encode()
	return &out
}
