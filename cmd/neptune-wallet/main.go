// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

// neptune-wallet is the command-line client for the walletd daemon. It
// speaks the daemon's CBOR control protocol over the unix socket and
// prints results as JSON for human and script consumption alike.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	socketPath, args := extractSocketFlag(os.Args[1:])
	if socketPath == "" {
		socketPath = defaultSocketPath()
	}
	return rootCommand(socketPath).Execute(args)
}

func defaultSocketPath() string {
	if fromEnv := os.Getenv("NEPTUNE_WALLETD_SOCKET"); fromEnv != "" {
		return fromEnv
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".neptune-wallet", "walletd.sock")
}

// extractSocketFlag pulls a global --socket flag out of the argument
// list before command dispatch, so it can appear anywhere on the line.
func extractSocketFlag(args []string) (socket string, rest []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--socket" && i+1 < len(args):
			socket = args[i+1]
			i++
		case strings.HasPrefix(arg, "--socket="):
			socket = strings.TrimPrefix(arg, "--socket=")
		default:
			rest = append(rest, arg)
		}
	}
	return socket, rest
}
