package callback

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/walletcore/deeplink-go/pkg/types"
)

// recorderLauncher captures launched URLs for assertions.
type recorderLauncher struct {
	mu   sync.Mutex
	urls []*url.URL
}

func (r *recorderLauncher) Launch(u *url.URL) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, u)
}

func (r *recorderLauncher) launched() []*url.URL {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*url.URL(nil), r.urls...)
}

func TestSender_SendSuccess(t *testing.T) {
	rec := &recorderLauncher{}
	s := NewSender(rec, zaptest.NewLogger(t))

	s.SendSuccess(mustParse(t, "app://cb"), []byte{0x01, 0x02})

	urls := rec.launched()
	require.Len(t, urls, 1)
	require.Equal(t, "AQI=", urls[0].Query().Get("result"))
}

func TestSender_SendFailure(t *testing.T) {
	rec := &recorderLauncher{}
	s := NewSender(rec, zaptest.NewLogger(t))

	s.SendFailure(mustParse(t, "app://cb"), types.ErrorKindRejectedByUser)

	urls := rec.launched()
	require.Len(t, urls, 1)
	require.Equal(t, "rejectedByUser", urls[0].Query().Get("error"))
}

func TestSender_NilCallbackDroppedSilently(t *testing.T) {
	rec := &recorderLauncher{}
	s := NewSender(rec, zaptest.NewLogger(t))

	s.SendSuccess(nil, []byte("sig"))
	s.SendFailure(nil, types.ErrorKindInvalidRequest)

	require.Empty(t, rec.launched())
}

func TestHTTPLauncher_DeliversGET(t *testing.T) {
	got := make(chan *http.Request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r
	}))
	defer srv.Close()

	l := NewHTTPLauncher(0, zaptest.NewLogger(t))
	target := mustParse(t, srv.URL+"/done")
	l.Launch(EncodeSuccess(target, []byte{0x01, 0x02}))

	r := <-got
	require.Equal(t, http.MethodGet, r.Method)
	require.Equal(t, "/done", r.URL.Path)
	require.Equal(t, "AQI=", r.URL.Query().Get("result"))
}

func TestHTTPLauncher_UnreachableHostIsSilent(t *testing.T) {
	l := NewHTTPLauncher(100*time.Millisecond, zaptest.NewLogger(t))
	// Reserved TEST-NET address; must not panic or block forever.
	l.Launch(mustParse(t, "http://192.0.2.1:1/cb"))
}

func TestLogLauncher(t *testing.T) {
	l := NewLogLauncher(zaptest.NewLogger(t))
	l.Launch(mustParse(t, "app://cb?result=AQI%3D"))
}
