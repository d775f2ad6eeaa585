// Package engine ties the command parser, the signing provider, and the
// callback sender together. One Engine handles any number of independent
// deep-link commands; it holds no state across them.
package engine

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/walletcore/deeplink-go/pkg/callback"
	"github.com/walletcore/deeplink-go/pkg/commands"
	"github.com/walletcore/deeplink-go/pkg/signer"
	"github.com/walletcore/deeplink-go/pkg/types"
)

// Config wires an Engine.
type Config struct {
	// Signer is the external signing provider. It may be nil: with nobody
	// listening, recognized commands are silently ignored.
	Signer signer.ISigner

	// Launcher delivers encoded callback URLs. Required.
	Launcher callback.ILauncher

	Logger *zap.Logger

	// RateLimit caps dispatched commands per second; zero disables limiting.
	// Over-limit commands are declined exactly like the no-signer case.
	RateLimit float64
	RateBurst int
}

// Engine is the deep-link protocol engine.
type Engine struct {
	signer  signer.ISigner
	sender  *callback.Sender
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewEngine validates cfg and builds an Engine. The signer binding is fixed
// at construction and read-only thereafter.
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Launcher == nil {
		return nil, fmt.Errorf("launcher cannot be nil")
	}
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}
	e := &Engine{
		signer: cfg.Signer,
		sender: callback.NewSender(cfg.Launcher, l),
		logger: l,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return e, nil
}

// Handle is the entry point for inbound URLs. The returned boolean means
// recognition only: true when the URL belongs to this protocol (known host),
// false otherwise. It says nothing about whether the request was valid or
// whether signing will succeed. Handle never blocks on the signer.
func (e *Engine) Handle(raw string) bool {
	cmd, ok := commands.ParseURL(raw)
	if !ok {
		return false
	}
	e.Dispatch(cmd)
	return true
}

// Dispatch validates cmd and forwards it to the signer. The returned boolean
// is "accepted": false when no signer is attached (or the dispatch throttle
// declined the command), true otherwise — including for malformed commands,
// which are accepted and answered with an invalidRequest callback.
func (e *Engine) Dispatch(cmd commands.Command) bool {
	if e.signer == nil {
		e.logger.Sugar().Debugw("no signer attached, ignoring command", "kind", cmd.Kind())
		return false
	}
	if e.limiter != nil && !e.limiter.Allow() {
		e.logger.Sugar().Debugw("dispatch rate limited, ignoring command", "kind", cmd.Kind())
		return false
	}

	id := uuid.New().String()

	if verr := cmd.Validation(); verr != nil {
		e.logger.Sugar().Infow("rejecting malformed command",
			"request_id", id, "kind", cmd.Kind(), "reason", verr.Error())
		e.sender.SendFailure(cmd.CallbackTarget(), types.ErrorKindInvalidRequest)
		return true
	}

	done := e.completion(id, cmd.CallbackTarget())
	e.logger.Sugar().Infow("dispatching command", "request_id", id, "kind", cmd.Kind())

	switch c := cmd.(type) {
	case *commands.SignMessage:
		e.signer.SignMessage(c.Message, c.Address, done)
	case *commands.SignPersonalMessage:
		e.signer.SignPersonalMessage(c.Message, c.Address, done)
	case *commands.SignTransaction:
		tx := c.Tx
		e.signer.SignTransaction(&tx, done)
	default:
		// Parser and dispatcher disagree on the command set; nothing sane to
		// forward.
		e.logger.Sugar().Errorw("unknown command type", "request_id", id, "kind", cmd.Kind())
		e.sender.SendFailure(cmd.CallbackTarget(), types.ErrorKindInvalidRequest)
	}
	return true
}

// completion builds the one-shot handler for a dispatched command. Each
// command captures its own callback target; sync.Once guarantees at-most-once
// delivery even against a misbehaving signer.
func (e *Engine) completion(id string, cb *url.URL) signer.CompletionFunc {
	var once sync.Once
	return func(outcome types.SigningOutcome) {
		once.Do(func() {
			if cb == nil {
				e.logger.Sugar().Debugw("discarding outcome, no callback target", "request_id", id)
				return
			}
			if outcome.OK() {
				e.logger.Sugar().Infow("delivering signed result", "request_id", id)
				e.sender.SendSuccess(cb, outcome.Payload)
				return
			}
			e.logger.Sugar().Infow("delivering failure", "request_id", id, "error", outcome.Err.String())
			e.sender.SendFailure(cb, outcome.Err)
		})
	}
}
