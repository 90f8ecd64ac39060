// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package nodeargs

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/seaoffreedom/neptune-core-wallet/lib/settings"
)

func compileOrFail(t *testing.T, config *settings.Config, peers PeerLister) []string {
	t.Helper()
	if peers == nil {
		peers = StaticPeers()
	}
	args, err := Compile(context.Background(), config, settings.Defaults(), peers, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return args
}

func TestDefaultsCompileToEmptyVector(t *testing.T) {
	args := compileOrFail(t, settings.Defaults(), nil)
	if len(args) != 0 {
		t.Errorf("defaults produced %v, want an empty vector", args)
	}
}

func TestDeterminism(t *testing.T) {
	config := settings.Defaults()
	config.Network.Network = settings.NetworkTestnet
	config.Network.MaxNumPeers = 25
	config.Mining.Guess = true
	config.Advanced.BanAddresses = []string{"1.2.3.4:9798", "5.6.7.8:9798"}
	peers := StaticPeers("10.0.0.1:9798", "10.0.0.2:9798")

	first := compileOrFail(t, config, peers)
	for i := 0; i < 20; i++ {
		again := compileOrFail(t, config, peers)
		if !slices.Equal(first, again) {
			t.Fatalf("run %d differed:\n first %v\n again %v", i, first, again)
		}
	}
}

func TestBooleanPolarity(t *testing.T) {
	config := settings.Defaults()
	config.Network.Bootstrap = false
	args := compileOrFail(t, config, nil)
	if slices.Contains(args, "--bootstrap") {
		t.Error("false boolean emitted its flag")
	}

	config.Network.Bootstrap = true
	args = compileOrFail(t, config, nil)
	if !slices.Contains(args, "--bootstrap") {
		t.Errorf("true boolean missing from %v", args)
	}
	// Bare flag: the next token, if any, must itself be a flag.
	i := slices.Index(args, "--bootstrap")
	if i+1 < len(args) && args[i+1][0] != '-' {
		t.Errorf("--bootstrap was followed by a value token %q", args[i+1])
	}
}

func TestValuedFlagEmitsPair(t *testing.T) {
	config := settings.Defaults()
	config.Network.PeerPort = 19798
	args := compileOrFail(t, config, nil)
	want := []string{"--peer-port", "19798"}
	if !slices.Equal(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestValueRewrite(t *testing.T) {
	config := settings.Defaults()
	config.Advanced.FeeNotification = "offchain"
	args := compileOrFail(t, config, nil)
	want := []string{"--fee-notification", "off-chain"}
	if !slices.Equal(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestRepeatedFanOut(t *testing.T) {
	config := settings.Defaults()
	config.Advanced.BanAddresses = []string{"1.1.1.1:9798", "2.2.2.2:9798", "3.3.3.3:9798"}
	args := compileOrFail(t, config, nil)

	want := []string{
		"--ban", "1.1.1.1:9798",
		"--ban", "2.2.2.2:9798",
		"--ban", "3.3.3.3:9798",
	}
	if !slices.Equal(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestPeerFanOut(t *testing.T) {
	config := settings.Defaults()
	args := compileOrFail(t, config, StaticPeers("10.0.0.1:9798", "10.0.0.2:9798"))
	want := []string{
		"--peer", "10.0.0.1:9798",
		"--peer", "10.0.0.2:9798",
	}
	if !slices.Equal(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestPeerListerReceivesSelectedNetwork(t *testing.T) {
	config := settings.Defaults()
	config.Network.Network = settings.NetworkRegtest

	var asked string
	peers := func(_ context.Context, network string) ([]string, error) {
		asked = network
		return nil, nil
	}
	compileOrFail(t, config, peers)
	if asked != settings.NetworkRegtest {
		t.Errorf("peer lister asked for %q, want %q", asked, settings.NetworkRegtest)
	}
}

func TestPeerListerErrorPropagates(t *testing.T) {
	boom := errors.New("database locked")
	peers := func(context.Context, string) ([]string, error) { return nil, boom }

	_, err := Compile(context.Background(), settings.Defaults(), settings.Defaults(), peers, nil)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}

func TestNotifyCommandIsTrailingPositional(t *testing.T) {
	config := settings.Defaults()
	config.Network.Bootstrap = true
	config.Mining.Compose = true
	config.Advanced.NotifyCommand = "notify-send 'new block'"

	args := compileOrFail(t, config, StaticPeers("10.0.0.1:9798"))
	if len(args) == 0 {
		t.Fatal("empty vector")
	}
	last := args[len(args)-1]
	if last != "notify-send 'new block'" {
		t.Errorf("last token = %q, want the notify command", last)
	}
	// Not preceded by a flag expecting a value: the token before it is
	// the bare computed --mine.
	if args[len(args)-2] != "--mine" {
		t.Errorf("token before positional = %q, want --mine", args[len(args)-2])
	}
}

func TestComputedMineFlag(t *testing.T) {
	cases := []struct {
		name    string
		compose bool
		guess   bool
		want    bool
	}{
		{"neither", false, false, false},
		{"compose only", true, false, true},
		{"guess only", false, true, true},
		{"both", true, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			config := settings.Defaults()
			config.Mining.Compose = tc.compose
			config.Mining.Guess = tc.guess
			args := compileOrFail(t, config, nil)
			if got := slices.Contains(args, "--mine"); got != tc.want {
				t.Errorf("args = %v, --mine presence = %v, want %v", args, got, tc.want)
			}
			if n := len(args); tc.want && n != 1 {
				t.Errorf("mining toggles alone should emit only --mine, got %v", args)
			}
		})
	}
}

func TestScenarioTestnetCompose(t *testing.T) {
	config := settings.Defaults()
	config.Network.Network = settings.NetworkTestnet
	config.Mining.Compose = true

	args := compileOrFail(t, config, nil)
	want := []string{"--network", "testnet", "--mine"}
	if !slices.Equal(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestEmptyValuesSuppressed(t *testing.T) {
	config := settings.Defaults()
	config.Data.MaxMempoolSize = ""
	args := compileOrFail(t, config, nil)
	if slices.Contains(args, "--max-mempool-size") {
		t.Errorf("empty string emitted a flag: %v", args)
	}
}

func TestEveryFieldHasAtMostOneDescriptor(t *testing.T) {
	seen := make(map[string]bool)
	for _, spec := range fieldSpecs {
		key := spec.category + "." + spec.field
		if seen[key] {
			t.Errorf("field %s appears twice in the descriptor table", key)
		}
		seen[key] = true
	}
}
