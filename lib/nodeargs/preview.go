// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package nodeargs

import (
	"context"
	"log/slog"
	"strings"

	"github.com/apparentlymart/go-shquot/shquot"

	"github.com/seaoffreedom/neptune-core-wallet/lib/settings"
)

// CategoryExplanation groups the tokens a settings category
// contributed, for the UI's "effective command line" view.
type CategoryExplanation struct {
	Category string   `json:"category" cbor:"category"`
	Args     []string `json:"args" cbor:"args"`
}

// Preview is the display form of a compiled argument vector.
type Preview struct {
	// Args is the exact vector Compile would produce.
	Args []string `json:"args" cbor:"args"`

	// Command is the shell-quoted equivalent invocation.
	Command string `json:"command" cbor:"command"`

	// Explanations attribute each run of tokens to the category that
	// produced it, in emission order.
	Explanations []CategoryExplanation `json:"explanations" cbor:"explanations"`
}

// BuildPreview compiles the vector and wraps it with a quoted command
// string and a per-category explanation. Display only; the supervisor
// always spawns from the raw vector.
func BuildPreview(ctx context.Context, binary string, config, defaults *settings.Config, peers PeerLister, logger *slog.Logger) (*Preview, error) {
	segments, err := compileSegments(ctx, config, defaults, peers, logger)
	if err != nil {
		return nil, err
	}

	preview := &Preview{}
	for _, seg := range segments {
		preview.Args = append(preview.Args, seg.args...)
		preview.Explanations = append(preview.Explanations, CategoryExplanation{
			Category: seg.category,
			Args:     seg.args,
		})
	}

	cmdline := append([]string{binary}, preview.Args...)
	preview.Command = strings.TrimSpace(shquot.POSIXShell(cmdline))
	return preview, nil
}
