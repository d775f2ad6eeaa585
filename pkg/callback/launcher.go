package callback

import (
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// ILauncher delivers a URL to its destination. Launch is fire-and-forget:
// there is no acknowledgment of delivery and failures are not reported
// upward.
type ILauncher interface {
	Launch(u *url.URL)
}

// ExecLauncher hands the URL to the platform opener so the operating system
// routes it to whatever application owns the scheme.
type ExecLauncher struct {
	logger *zap.Logger
}

func NewExecLauncher(logger *zap.Logger) *ExecLauncher {
	return &ExecLauncher{logger: logger}
}

func (l *ExecLauncher) Launch(u *url.URL) {
	cmd := exec.Command(openCommand(), u.String())
	if err := cmd.Start(); err != nil {
		l.logger.Sugar().Warnw("failed to launch callback URL", "url", u.String(), zap.Error(err))
		return
	}
	// Detach; the opener's exit status is nobody's business here.
	go func() { _ = cmd.Wait() }()
}

func openCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "rundll32"
	default:
		return "xdg-open"
	}
}

// HTTPLauncher delivers http/https callbacks with a GET request. The response
// is discarded.
type HTTPLauncher struct {
	client *http.Client
	logger *zap.Logger
}

func NewHTTPLauncher(timeout time.Duration, logger *zap.Logger) *HTTPLauncher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPLauncher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (l *HTTPLauncher) Launch(u *url.URL) {
	resp, err := l.client.Get(u.String())
	if err != nil {
		l.logger.Sugar().Warnw("callback request failed", "url", u.String(), zap.Error(err))
		return
	}
	_ = resp.Body.Close()
}

// LogLauncher records launched URLs to the logger instead of delivering them.
// Useful for dry runs and tests.
type LogLauncher struct {
	logger *zap.Logger
}

func NewLogLauncher(logger *zap.Logger) *LogLauncher {
	return &LogLauncher{logger: logger}
}

func (l *LogLauncher) Launch(u *url.URL) {
	l.logger.Sugar().Infow("callback URL", "url", u.String())
}

var (
	_ ILauncher = (*ExecLauncher)(nil)
	_ ILauncher = (*HTTPLauncher)(nil)
	_ ILauncher = (*LogLauncher)(nil)
)
