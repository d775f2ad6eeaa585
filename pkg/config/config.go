package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for the deep-link daemon configuration
const (
	EnvDeepLinkChainID         = "DEEPLINK_CHAIN_ID"
	EnvDeepLinkLauncher        = "DEEPLINK_LAUNCHER"
	EnvDeepLinkPrivateKey      = "DEEPLINK_PRIVATE_KEY"
	EnvDeepLinkRemoteSignerURL = "DEEPLINK_REMOTE_SIGNER_URL"
	EnvDeepLinkFromAddress     = "DEEPLINK_FROM_ADDRESS"
	EnvDeepLinkRateLimit       = "DEEPLINK_RATE_LIMIT"
	EnvDeepLinkVerbose         = "DEEPLINK_VERBOSE"
)

// LauncherKind selects how callback URLs leave the process.
type LauncherKind string

const (
	LauncherExec LauncherKind = "exec" // platform URL opener (xdg-open / open)
	LauncherHTTP LauncherKind = "http" // GET the callback URL
	LauncherLog  LauncherKind = "log"  // log only, no delivery
)

func (k LauncherKind) String() string {
	return string(k)
}

// SupportedLaunchers returns every launcher kind, for CLI help text.
func SupportedLaunchers() string {
	return fmt.Sprintf("%s, %s, %s", LauncherExec, LauncherHTTP, LauncherLog)
}

type ChainId uint64

const (
	ChainId_EthereumMainnet ChainId = 1
	ChainId_EthereumSepolia ChainId = 11155111
	ChainId_EthereumAnvil   ChainId = 31337
)

// DaemonConfig is the complete configuration for the deep-link daemon.
type DaemonConfig struct {
	// Chain configuration (EIP-155 replay protection for signed transactions)
	ChainID ChainId `json:"chain_id"`

	// Launcher selects the callback delivery mechanism.
	Launcher LauncherKind `json:"launcher"`

	// Local signer: hex private key. Mutually exclusive with RemoteSignerURL.
	// When both are empty the daemon generates an ephemeral key.
	PrivateKey string `json:"private_key,omitempty"`

	// Remote signer: Web3Signer-compatible endpoint plus signing account.
	RemoteSignerURL string `json:"remote_signer_url,omitempty"`
	FromAddress     string `json:"from_address,omitempty"`

	// RateLimit caps dispatched commands per second; zero disables limiting.
	RateLimit float64 `json:"rate_limit"`

	Verbose bool `json:"verbose"`
}

// Validate checks the configuration and normalizes defaults.
func (c *DaemonConfig) Validate() error {
	var allErrors field.ErrorList

	if c.ChainID == 0 {
		allErrors = append(allErrors, field.Required(field.NewPath("chainID"), "chain ID is required"))
	}

	if c.Launcher == "" {
		c.Launcher = LauncherExec
	}
	switch c.Launcher {
	case LauncherExec, LauncherHTTP, LauncherLog:
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("launcher"), c.Launcher,
			[]LauncherKind{LauncherExec, LauncherHTTP, LauncherLog}))
	}

	if c.PrivateKey != "" && c.RemoteSignerURL != "" {
		allErrors = append(allErrors, field.Invalid(field.NewPath("privateKey"), "(redacted)",
			"local private key and remote signer URL are mutually exclusive"))
	}
	if c.PrivateKey != "" {
		key := strings.TrimPrefix(c.PrivateKey, "0x")
		if len(key) != 64 {
			allErrors = append(allErrors, field.Invalid(field.NewPath("privateKey"), "(redacted)",
				"private key must be 32 bytes (64 hex chars)"))
		}
	}
	if c.RemoteSignerURL != "" {
		if u, err := url.Parse(c.RemoteSignerURL); err != nil || u.Scheme == "" || u.Host == "" {
			allErrors = append(allErrors, field.Invalid(field.NewPath("remoteSignerURL"), c.RemoteSignerURL,
				"must be an absolute URL"))
		}
		if c.FromAddress == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("fromAddress"),
				"fromAddress is required with a remote signer"))
		}
	}
	if c.FromAddress != "" && !common.IsHexAddress(c.FromAddress) {
		allErrors = append(allErrors, field.Invalid(field.NewPath("fromAddress"), c.FromAddress,
			"not a valid Ethereum address"))
	}

	if c.RateLimit < 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("rateLimit"), c.RateLimit,
			"must be zero or positive"))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}
