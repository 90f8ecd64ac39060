// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

// Package nodeargs compiles the wallet's settings tree into the
// argument vector for the node binary. The compiler is deterministic:
// the same settings, defaults, and peer list always produce the same
// vector, token for token. It walks a fixed descriptor table, emits a
// flag only for fields that differ from their defaults, fans eligible
// peers out into repeated --peer flags, appends computed flags, and
// finishes with the notify command as the sole trailing positional.
package nodeargs

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/seaoffreedom/neptune-core-wallet/lib/settings"
)

// PeerLister enumerates the peer addresses eligible for --peer flags on
// a network. The compiler takes a function rather than the registry
// itself so tests can supply a literal list.
type PeerLister func(ctx context.Context, network string) ([]string, error)

// StaticPeers adapts a fixed address list to a PeerLister.
func StaticPeers(addresses ...string) PeerLister {
	return func(context.Context, string) ([]string, error) {
		return addresses, nil
	}
}

// segment is one contiguous run of tokens attributed to a single
// category, used by Preview to group its explanation.
type segment struct {
	category string
	args     []string
}

// Compile builds the node's argument vector. Peer enumeration is the
// only I/O; everything else is a pure function of config and defaults.
func Compile(ctx context.Context, config, defaults *settings.Config, peers PeerLister, logger *slog.Logger) ([]string, error) {
	segments, err := compileSegments(ctx, config, defaults, peers, logger)
	if err != nil {
		return nil, err
	}

	var args []string
	for _, seg := range segments {
		args = append(args, seg.args...)
	}
	return args, nil
}

func compileSegments(ctx context.Context, config, defaults *settings.Config, peers PeerLister, logger *slog.Logger) ([]segment, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var segments []segment
	appendTo := func(category string, tokens ...string) {
		if len(tokens) == 0 {
			return
		}
		n := len(segments)
		if n > 0 && segments[n-1].category == category {
			segments[n-1].args = append(segments[n-1].args, tokens...)
			return
		}
		segments = append(segments, segment{category: category, args: tokens})
	}

	for _, spec := range fieldSpecs {
		current := spec.value(config)
		if valuesEqual(current, spec.value(defaults)) {
			continue
		}
		if isEmpty(current) {
			continue
		}
		if spec.desc == nil {
			logger.Debug("settings field has no node flag",
				"category", spec.category, "field", spec.field)
			continue
		}

		switch spec.desc.Kind {
		case Boolean:
			if current == true {
				appendTo(spec.category, spec.desc.Flag)
			}
		case Valued:
			value := stringify(current)
			if rewritten, ok := spec.desc.Rewrite[value]; ok {
				value = rewritten
			}
			appendTo(spec.category, spec.desc.Flag, value)
		case Repeated:
			list, ok := current.([]string)
			if !ok {
				return nil, fmt.Errorf("nodeargs: field %s.%s is not a string list", spec.category, spec.field)
			}
			for _, element := range list {
				appendTo(spec.category, spec.desc.Flag, element)
			}
		}
	}

	eligible, err := peers(ctx, config.Network.Network)
	if err != nil {
		return nil, fmt.Errorf("nodeargs: enumerating peers: %w", err)
	}
	for _, address := range eligible {
		appendTo("peers", "--peer", address)
	}

	for _, computed := range computedFlags {
		if computed.when(config) {
			appendTo("computed", computed.flag)
		}
	}

	// The notify command is the vector's only positional token and is
	// always last.
	if command := config.Advanced.NotifyCommand; command != "" {
		appendTo("advanced", command)
	}

	return segments, nil
}

// valuesEqual is the deep value comparison of the default diff. List
// order matters: a reordered list is a different value.
func valuesEqual(a, b any) bool {
	listA, okA := a.([]string)
	listB, okB := b.([]string)
	if okA && okB {
		return slices.Equal(listA, listB)
	}
	return a == b
}

// isEmpty reports values that mean "let the node use its built-in
// default" even when they differ from ours.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	}
	return false
}
