// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestDispatchToSubcommand(t *testing.T) {
	var ran []string
	tree := &Command{
		Name: "wallet",
		Subcommands: []*Command{
			{
				Name: "peer",
				Subcommands: []*Command{
					{Name: "add", Run: func(args []string) error {
						ran = append([]string{"add"}, args...)
						return nil
					}},
				},
			},
		},
	}

	if err := tree.Execute([]string{"peer", "add", "10.0.0.1:9798"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(ran) != 2 || ran[0] != "add" || ran[1] != "10.0.0.1:9798" {
		t.Errorf("ran = %v", ran)
	}
}

func TestUnknownCommand(t *testing.T) {
	tree := &Command{
		Name:        "wallet",
		Subcommands: []*Command{{Name: "status", Run: func([]string) error { return nil }}},
	}
	err := tree.Execute([]string{"staus"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("err = %v", err)
	}
}

func TestFlagParsing(t *testing.T) {
	var network string
	cmd := &Command{
		Name: "list",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.StringVar(&network, "network", "", "network filter")
			return flags
		},
		Run: func(args []string) error { return nil },
	}

	if err := cmd.Execute([]string{"--network", "testnet"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if network != "testnet" {
		t.Errorf("network = %q", network)
	}
}

func TestSubcommandRequired(t *testing.T) {
	tree := &Command{
		Name:        "wallet",
		Subcommands: []*Command{{Name: "status", Run: func([]string) error { return nil }}},
	}
	if err := tree.Execute(nil); err == nil {
		t.Error("bare invocation of a group should fail")
	}
}
