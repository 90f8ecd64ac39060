// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package nodeargs

import (
	"strconv"

	"github.com/seaoffreedom/neptune-core-wallet/lib/settings"
)

// Kind classifies how a flag descriptor renders its field.
type Kind int

const (
	// Boolean flags emit the bare flag token when the field is true and
	// nothing at all when false. There is no --no-x form.
	Boolean Kind = iota

	// Valued flags emit `flag value` as two tokens.
	Valued

	// Repeated flags emit one `flag element` pair per list element, in
	// list order.
	Repeated
)

// FlagDescriptor maps one settings field to its node command-line flag.
type FlagDescriptor struct {
	Flag string
	Kind Kind

	// Rewrite substitutes specific stringified values before emission.
	// Used to fold UI spellings into the forms the node accepts.
	Rewrite map[string]string
}

// fieldSpec binds one settings field to its descriptor and a value
// extractor. Specs are walked in slice order, which fixes both the
// category order and the field order within a category; compilation
// never iterates a map.
type fieldSpec struct {
	category string
	field    string

	// desc is nil for fields that intentionally have no node flag
	// (wallet-internal fields, and fields folded into computed flags).
	desc *FlagDescriptor

	value func(*settings.Config) any
}

// fieldSpecs is the full descriptor table. One entry per settings
// field, grouped by category in the order the UI shows them.
var fieldSpecs = []fieldSpec{
	// Network
	{"network", "network", &FlagDescriptor{Flag: "--network", Kind: Valued},
		func(c *settings.Config) any { return c.Network.Network }},
	{"network", "listen_addr", &FlagDescriptor{Flag: "--listen-addr", Kind: Valued},
		func(c *settings.Config) any { return c.Network.ListenAddr }},
	{"network", "peer_port", &FlagDescriptor{Flag: "--peer-port", Kind: Valued},
		func(c *settings.Config) any { return c.Network.PeerPort }},
	{"network", "rpc_port", &FlagDescriptor{Flag: "--rpc-port", Kind: Valued},
		func(c *settings.Config) any { return c.Network.RPCPort }},
	// The companion port configures the wallet's own RPC bridge, not
	// the node; no descriptor.
	{"network", "companion_port", nil,
		func(c *settings.Config) any { return c.Network.CompanionPort }},
	{"network", "max_num_peers", &FlagDescriptor{Flag: "--max-num-peers", Kind: Valued},
		func(c *settings.Config) any { return c.Network.MaxNumPeers }},
	{"network", "bootstrap", &FlagDescriptor{Flag: "--bootstrap", Kind: Boolean},
		func(c *settings.Config) any { return c.Network.Bootstrap }},

	// Mining. Compose and Guess have no flags of their own; either one
	// being set activates the computed --mine flag below.
	{"mining", "compose", nil,
		func(c *settings.Config) any { return c.Mining.Compose }},
	{"mining", "guess", nil,
		func(c *settings.Config) any { return c.Mining.Guess }},
	{"mining", "guesser_fraction", &FlagDescriptor{Flag: "--guesser-fraction", Kind: Valued},
		func(c *settings.Config) any { return c.Mining.GuesserFraction }},
	{"mining", "sleepy_guessing", &FlagDescriptor{Flag: "--sleepy-guessing", Kind: Boolean},
		func(c *settings.Config) any { return c.Mining.SleepyGuessing }},

	// Performance
	{"performance", "number_of_mps_per_utxo", &FlagDescriptor{Flag: "--number-of-mps-per-utxo", Kind: Valued},
		func(c *settings.Config) any { return c.Performance.NumberOfMpsPerUtxo }},
	{"performance", "sync_mode_threshold", &FlagDescriptor{Flag: "--sync-mode-threshold", Kind: Valued},
		func(c *settings.Config) any { return c.Performance.SyncModeThreshold }},
	{"performance", "tx_proof_upgrading", &FlagDescriptor{Flag: "--tx-proof-upgrading", Kind: Boolean},
		func(c *settings.Config) any { return c.Performance.TxProofUpgrading }},

	// Security
	{"security", "unrestricted_rpc", &FlagDescriptor{Flag: "--unrestricted-rpc", Kind: Boolean},
		func(c *settings.Config) any { return c.Security.UnrestrictedRPC }},
	{"security", "disable_cookie_hint", &FlagDescriptor{Flag: "--disable-cookie-hint", Kind: Boolean},
		func(c *settings.Config) any { return c.Security.DisableCookieHint }},

	// Data
	{"data", "data_dir", &FlagDescriptor{Flag: "--data-dir", Kind: Valued},
		func(c *settings.Config) any { return c.Data.DataDir }},
	{"data", "max_mempool_size", &FlagDescriptor{Flag: "--max-mempool-size", Kind: Valued},
		func(c *settings.Config) any { return c.Data.MaxMempoolSize }},
	{"data", "prune_abandoned_monitored_utxos", &FlagDescriptor{Flag: "--prune-abandoned-monitored-utxos", Kind: Boolean},
		func(c *settings.Config) any { return c.Data.PruneAbandonedMonitoredUtxos }},

	// Advanced
	{"advanced", "fee_notification", &FlagDescriptor{
		Flag: "--fee-notification", Kind: Valued,
		Rewrite: map[string]string{"onchain": "on-chain", "offchain": "off-chain"},
	}, func(c *settings.Config) any { return c.Advanced.FeeNotification }},
	{"advanced", "ban_addresses", &FlagDescriptor{Flag: "--ban", Kind: Repeated},
		func(c *settings.Config) any { return c.Advanced.BanAddresses }},
	{"advanced", "tokio_console", &FlagDescriptor{Flag: "--tokio-console", Kind: Boolean},
		func(c *settings.Config) any { return c.Advanced.TokioConsole }},
	// The notify command is the trailing positional argument, appended
	// after all flags by Compile itself.
	{"advanced", "notify_command", nil,
		func(c *settings.Config) any { return c.Advanced.NotifyCommand }},
}

// computedFlag activates on a condition spanning multiple fields and
// therefore bypasses the per-field diff against defaults.
type computedFlag struct {
	flag string
	when func(*settings.Config) bool
}

var computedFlags = []computedFlag{
	{"--mine", func(c *settings.Config) bool { return c.Mining.Compose || c.Mining.Guess }},
}

// stringify renders a field value for a Valued flag.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
