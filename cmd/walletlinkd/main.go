package main

import (
	"bufio"
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/walletcore/deeplink-go/pkg/callback"
	"github.com/walletcore/deeplink-go/pkg/config"
	"github.com/walletcore/deeplink-go/pkg/engine"
	"github.com/walletcore/deeplink-go/pkg/logger"
	"github.com/walletcore/deeplink-go/pkg/signer"
	"github.com/walletcore/deeplink-go/pkg/signer/localsigner"
	"github.com/walletcore/deeplink-go/pkg/signer/remotesigner"
)

func main() {
	app := &cli.App{
		Name:  "walletlinkd",
		Usage: "Wallet deep-link signing daemon",
		Description: `Handles wallet deep-link URLs of the form

    scheme://sign-message?message=<base64>&callback=<url>
    scheme://sign-personal-message?message=<base64>&callback=<url>
    scheme://sign-transaction?to=<address>&amount=<wei>&gasPrice=<wei>&gasLimit=<gas>&callback=<url>

URLs are read from the command line, or from stdin (one per line) when no
arguments are given. Signed results are delivered asynchronously by appending
a result/error parameter to the callback URL and launching it.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:    "chain-id",
				Aliases: []string{"chain"},
				Usage:   "EIP-155 chain ID used when signing transactions",
				Value:   uint64(config.ChainId_EthereumMainnet),
				EnvVars: []string{config.EnvDeepLinkChainID},
			},
			&cli.StringFlag{
				Name:    "launcher",
				Usage:   fmt.Sprintf("Callback delivery mechanism: %s", config.SupportedLaunchers()),
				Value:   string(config.LauncherExec),
				EnvVars: []string{config.EnvDeepLinkLauncher},
			},
			&cli.StringFlag{
				Name:    "private-key",
				Usage:   "Hex private key for the local signer (generated when omitted)",
				EnvVars: []string{config.EnvDeepLinkPrivateKey},
			},
			&cli.StringFlag{
				Name:    "remote-signer-url",
				Usage:   "Web3Signer-compatible endpoint to sign with instead of a local key",
				EnvVars: []string{config.EnvDeepLinkRemoteSignerURL},
			},
			&cli.StringFlag{
				Name:    "from-address",
				Usage:   "Signing account for the remote signer",
				EnvVars: []string{config.EnvDeepLinkFromAddress},
			},
			&cli.Float64Flag{
				Name:    "rate-limit",
				Usage:   "Maximum dispatched commands per second (0 disables)",
				EnvVars: []string{config.EnvDeepLinkRateLimit},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvDeepLinkVerbose},
			},
		},
		Action: runDaemon,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func runDaemon(c *cli.Context) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	cfg := &config.DaemonConfig{
		ChainID:         config.ChainId(c.Uint64("chain-id")),
		Launcher:        config.LauncherKind(c.String("launcher")),
		PrivateKey:      c.String("private-key"),
		RemoteSignerURL: c.String("remote-signer-url"),
		FromAddress:     c.String("from-address"),
		RateLimit:       c.Float64("rate-limit"),
		Verbose:         c.Bool("verbose"),
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	signingProvider, err := buildSigner(cfg, l)
	if err != nil {
		return err
	}

	eng, err := engine.NewEngine(&engine.Config{
		Signer:    signingProvider,
		Launcher:  buildLauncher(cfg.Launcher, l),
		Logger:    l,
		RateLimit: cfg.RateLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	if c.NArg() > 0 {
		for _, raw := range c.Args().Slice() {
			handleOne(eng, l, raw)
		}
		return nil
	}

	l.Sugar().Infow("reading deep-link URLs from stdin")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		handleOne(eng, l, raw)
	}
	return scanner.Err()
}

func handleOne(eng *engine.Engine, l *zap.Logger, raw string) {
	if !eng.Handle(raw) {
		l.Sugar().Warnw("URL not recognized by the deep-link protocol", "url", raw)
	}
}

func buildSigner(cfg *config.DaemonConfig, l *zap.Logger) (signer.ISigner, error) {
	if cfg.RemoteSignerURL != "" {
		return remotesigner.NewRemoteSigner(&remotesigner.Config{
			URL:         cfg.RemoteSignerURL,
			FromAddress: cfg.FromAddress,
		}, l)
	}

	local := localsigner.NewLocalSigner(new(big.Int).SetUint64(uint64(cfg.ChainID)), l)
	if cfg.PrivateKey != "" {
		if _, err := local.ImportKey(cfg.PrivateKey); err != nil {
			return nil, fmt.Errorf("failed to import private key: %w", err)
		}
		return local, nil
	}
	addr, err := local.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	l.Sugar().Infow("generated ephemeral signing key", "address", addr.Hex())
	return local, nil
}

func buildLauncher(kind config.LauncherKind, l *zap.Logger) callback.ILauncher {
	switch kind {
	case config.LauncherHTTP:
		return callback.NewHTTPLauncher(0, l)
	case config.LauncherLog:
		return callback.NewLogLauncher(l)
	default:
		return callback.NewExecLauncher(l)
	}
}
