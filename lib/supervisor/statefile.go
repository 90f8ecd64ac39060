// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/seaoffreedom/neptune-core-wallet/lib/settings"
)

// cachedState is the supervisor's restart cache: enough to recognize a
// still-running node pair from a previous wallet lifetime and skip the
// relaunch. It is a hint only — readers must re-validate the PIDs and
// binary digests against live reality before trusting it. The format is
// internal and carries no migration contract.
type cachedState struct {
	Timestamp   time.Time        `json:"timestamp"`
	Initialized bool             `json:"initialized"`
	Config      *settings.Config `json:"config"`

	NodePID      int `json:"node_pid"`
	CompanionPID int `json:"companion_pid"`

	// Digests of the binaries that were launched. A swapped binary on
	// disk invalidates the cache even when the old processes are still
	// running.
	NodeDigest      string `json:"node_digest"`
	CompanionDigest string `json:"companion_digest"`
}

func loadState(path string) (*cachedState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var state cachedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", path, err)
	}
	return &state, nil
}

// saveState writes the cache atomically: temp file, fsync, rename, then
// parent directory sync so the rename itself is durable.
func saveState(path string, state *cachedState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state file: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".supervisor-state-*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing state file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}

	if parent, err := os.Open(dir); err == nil {
		parent.Sync()
		parent.Close()
	}
	return nil
}
