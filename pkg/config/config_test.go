package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig() *DaemonConfig {
	return &DaemonConfig{
		ChainID:  ChainId_EthereumMainnet,
		Launcher: LauncherLog,
	}
}

func TestValidate_Minimal(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate_DefaultsLauncherToExec(t *testing.T) {
	cfg := validConfig()
	cfg.Launcher = ""
	require.NoError(t, cfg.Validate())
	require.Equal(t, LauncherExec, cfg.Launcher)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DaemonConfig)
	}{
		{"missing chain ID", func(c *DaemonConfig) { c.ChainID = 0 }},
		{"unknown launcher", func(c *DaemonConfig) { c.Launcher = "carrier-pigeon" }},
		{"short private key", func(c *DaemonConfig) { c.PrivateKey = "abcd" }},
		{"relative remote signer URL", func(c *DaemonConfig) {
			c.RemoteSignerURL = "localhost:9000"
			c.FromAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
		}},
		{"remote signer without from address", func(c *DaemonConfig) {
			c.RemoteSignerURL = "http://localhost:9000"
		}},
		{"bad from address", func(c *DaemonConfig) {
			c.RemoteSignerURL = "http://localhost:9000"
			c.FromAddress = "not-an-address"
		}},
		{"local and remote signer together", func(c *DaemonConfig) {
			c.PrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
			c.RemoteSignerURL = "http://localhost:9000"
			c.FromAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
		}},
		{"negative rate limit", func(c *DaemonConfig) { c.RateLimit = -1 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_PrivateKeyWithPrefix(t *testing.T) {
	cfg := validConfig()
	cfg.PrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	require.NoError(t, cfg.Validate())
}
