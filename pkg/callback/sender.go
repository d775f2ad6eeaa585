package callback

import (
	"net/url"

	"go.uber.org/zap"

	"github.com/walletcore/deeplink-go/pkg/types"
)

// Sender composes result encoding with the launch side effect. A nil or
// unusable callback target is dropped silently: once the original request has
// no deliverable return path, there is no one left to report to.
type Sender struct {
	launcher ILauncher
	logger   *zap.Logger
}

func NewSender(launcher ILauncher, logger *zap.Logger) *Sender {
	return &Sender{launcher: launcher, logger: logger}
}

// SendSuccess encodes the signed payload into cb and launches the result.
func (s *Sender) SendSuccess(cb *url.URL, payload []byte) {
	if !s.deliverable(cb) {
		return
	}
	s.launcher.Launch(EncodeSuccess(cb, payload))
}

// SendFailure encodes the error kind into cb and launches the result.
func (s *Sender) SendFailure(cb *url.URL, kind types.ErrorKind) {
	if !s.deliverable(cb) {
		return
	}
	s.launcher.Launch(EncodeFailure(cb, kind))
}

func (s *Sender) deliverable(cb *url.URL) bool {
	if cb == nil || s.launcher == nil {
		return false
	}
	// A target that no longer survives a re-parse cannot be launched.
	if _, err := url.Parse(cb.String()); err != nil {
		s.logger.Sugar().Debugw("dropping undeliverable callback", "url", cb.String())
		return false
	}
	return true
}
