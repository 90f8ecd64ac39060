// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

// Package settings holds the wallet's persisted node configuration: the
// category tree the UI edits, the canonical defaults, and the
// file-backed store. The argument compiler (lib/nodeargs) diffs a
// Config against Defaults() to decide which command-line flags the node
// binary receives.
package settings

import (
	"errors"
	"fmt"
	"strconv"
)

// Networks the node binary understands. The peer registry and the
// argument compiler are both keyed by these names.
const (
	NetworkMain    = "main"
	NetworkTestnet = "testnet"
	NetworkRegtest = "regtest"
)

// Config is the full settings tree. Every field has a well-defined
// default (see Defaults); a field equal to its default emits no flag.
type Config struct {
	Network     NetworkSettings     `json:"network"`
	Mining      MiningSettings      `json:"mining"`
	Performance PerformanceSettings `json:"performance"`
	Security    SecuritySettings    `json:"security"`
	Data        DataSettings        `json:"data"`
	Advanced    AdvancedSettings    `json:"advanced"`
}

// NetworkSettings selects the chain and the node's listening and RPC
// endpoints.
type NetworkSettings struct {
	// Network is the chain to join: main, testnet, or regtest.
	Network string `json:"network"`

	// ListenAddr is the address the node listens on for peer
	// connections. Empty means the node's built-in default.
	ListenAddr string `json:"listen_addr"`

	// PeerPort is the node's peer-to-peer port.
	PeerPort int `json:"peer_port"`

	// RPCPort is the node's RPC port. The supervisor points the
	// companion process at this port.
	RPCPort int `json:"rpc_port"`

	// CompanionPort is the port the companion's RPC server listens on
	// for the wallet's own calls.
	CompanionPort int `json:"companion_port"`

	// MaxNumPeers caps concurrent peer connections.
	MaxNumPeers int `json:"max_num_peers"`

	// Bootstrap puts the node in bootstrap mode (serve historical
	// blocks aggressively, accept more inbound connections).
	Bootstrap bool `json:"bootstrap"`
}

// MiningSettings controls block composition and guessing. Compose and
// Guess have no flags of their own — either one being set turns on the
// node's single --mine flag; the remaining fields tune it.
type MiningSettings struct {
	Compose bool `json:"compose"`
	Guess   bool `json:"guess"`

	// GuesserFraction is the fraction of CPU spent guessing, as a
	// decimal string (e.g. "0.3").
	GuesserFraction string `json:"guesser_fraction"`

	// SleepyGuessing pauses guessing while the machine is on battery.
	SleepyGuessing bool `json:"sleepy_guessing"`
}

// PerformanceSettings tunes sync and proof maintenance.
type PerformanceSettings struct {
	NumberOfMpsPerUtxo int  `json:"number_of_mps_per_utxo"`
	SyncModeThreshold  int  `json:"sync_mode_threshold"`
	TxProofUpgrading   bool `json:"tx_proof_upgrading"`
}

// SecuritySettings controls RPC exposure.
type SecuritySettings struct {
	// UnrestrictedRPC opens the RPC interface beyond localhost.
	UnrestrictedRPC bool `json:"unrestricted_rpc"`

	// DisableCookieHint suppresses the cookie-path hint the node
	// prints on startup.
	DisableCookieHint bool `json:"disable_cookie_hint"`
}

// DataSettings controls on-disk state.
type DataSettings struct {
	// DataDir overrides the node's data directory. Empty means the
	// node's built-in platform default.
	DataDir string `json:"data_dir"`

	// MaxMempoolSize bounds the mempool, as a size string ("1G").
	MaxMempoolSize string `json:"max_mempool_size"`

	// PruneAbandonedMonitoredUtxos enables pruning of monitored UTXOs
	// that have been abandoned.
	PruneAbandonedMonitoredUtxos bool `json:"prune_abandoned_monitored_utxos"`
}

// AdvancedSettings holds rarely-touched knobs.
type AdvancedSettings struct {
	// FeeNotification selects how change outputs are announced:
	// on-chain or off-chain.
	FeeNotification string `json:"fee_notification"`

	// BanAddresses are peer addresses the node refuses, one --ban
	// flag per entry, in order.
	BanAddresses []string `json:"ban_addresses"`

	// TokioConsole enables the node's async runtime console.
	TokioConsole bool `json:"tokio_console"`

	// NotifyCommand, when non-empty, is passed to the node as its
	// single trailing positional argument and is run by the node on
	// every new block.
	NotifyCommand string `json:"notify_command"`
}

// Defaults returns the canonical default configuration. The argument
// compiler treats any field equal to its default as "let the node use
// its built-in behavior" and emits nothing for it.
func Defaults() *Config {
	return &Config{
		Network: NetworkSettings{
			Network:       NetworkMain,
			ListenAddr:    "",
			PeerPort:      9798,
			RPCPort:       9799,
			CompanionPort: 9800,
			MaxNumPeers:   10,
			Bootstrap:     false,
		},
		Mining: MiningSettings{
			Compose:         false,
			Guess:           false,
			GuesserFraction: "0.5",
			SleepyGuessing:  false,
		},
		Performance: PerformanceSettings{
			NumberOfMpsPerUtxo: 3,
			SyncModeThreshold:  1000,
			TxProofUpgrading:   false,
		},
		Security: SecuritySettings{
			UnrestrictedRPC:   false,
			DisableCookieHint: false,
		},
		Data: DataSettings{
			DataDir:                      "",
			MaxMempoolSize:               "1G",
			PruneAbandonedMonitoredUtxos: false,
		},
		Advanced: AdvancedSettings{
			FeeNotification: "on-chain",
			BanAddresses:    nil,
			TokioConsole:    false,
			NotifyCommand:   "",
		},
	}
}

// Validate checks the configuration for values the node binary would
// reject. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	switch c.Network.Network {
	case NetworkMain, NetworkTestnet, NetworkRegtest:
	default:
		errs = append(errs, fmt.Errorf("network.network must be %s, %s, or %s (got %q)",
			NetworkMain, NetworkTestnet, NetworkRegtest, c.Network.Network))
	}

	for name, port := range map[string]int{
		"network.peer_port":      c.Network.PeerPort,
		"network.rpc_port":       c.Network.RPCPort,
		"network.companion_port": c.Network.CompanionPort,
	} {
		if port < 1 || port > 65535 {
			errs = append(errs, fmt.Errorf("%s must be in 1..65535 (got %d)", name, port))
		}
	}

	if c.Network.MaxNumPeers < 0 {
		errs = append(errs, fmt.Errorf("network.max_num_peers must be non-negative (got %d)", c.Network.MaxNumPeers))
	}

	if c.Mining.GuesserFraction != "" {
		fraction, err := strconv.ParseFloat(c.Mining.GuesserFraction, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("mining.guesser_fraction is not a number: %q", c.Mining.GuesserFraction))
		} else if fraction < 0 || fraction > 1 {
			errs = append(errs, fmt.Errorf("mining.guesser_fraction must be in [0, 1] (got %s)", c.Mining.GuesserFraction))
		}
	}

	switch c.Advanced.FeeNotification {
	case "", "on-chain", "off-chain", "onchain", "offchain":
	default:
		errs = append(errs, fmt.Errorf("advanced.fee_notification must be on-chain or off-chain (got %q)", c.Advanced.FeeNotification))
	}

	return errors.Join(errs...)
}

// Clone returns a deep copy. The store hands clones to callers so
// concurrent readers never alias the stored tree.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Advanced.BanAddresses != nil {
		clone.Advanced.BanAddresses = append([]string(nil), c.Advanced.BanAddresses...)
	}
	return &clone
}
