// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/jsonc"
)

// Store is the file-backed settings store. The file is JSON, but reads
// tolerate comments and trailing commas (users edit this file by hand),
// while writes always produce plain canonical JSON. Writes are atomic:
// temporary file, fsync, rename.
//
// Store is safe for concurrent use; it is the single writer of its
// file.
type Store struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	current *Config
}

// OpenStore loads the settings file at path, creating it with defaults
// if it does not exist. Unknown fields in an existing file are ignored;
// missing fields keep their defaults, so older files survive schema
// growth without migration.
func OpenStore(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	store := &Store{path: path, logger: logger}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		config := Defaults()
		if err := json.Unmarshal(jsonc.ToJSON(data), config); err != nil {
			return nil, fmt.Errorf("parsing settings file %s: %w", path, err)
		}
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("settings file %s: %w", path, err)
		}
		store.current = config
	case os.IsNotExist(err):
		store.current = Defaults()
		if err := store.writeLocked(); err != nil {
			return nil, err
		}
		logger.Info("settings file created with defaults", "path", path)
	default:
		return nil, fmt.Errorf("reading settings file %s: %w", path, err)
	}

	return store, nil
}

// Current returns a copy of the current configuration.
func (s *Store) Current() *Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Update applies mutate to a copy of the current configuration,
// validates the result, persists it, and makes it current. On any
// error the stored configuration is unchanged.
func (s *Store) Update(mutate func(*Config)) (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.current.Clone()
	mutate(updated)

	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("rejecting settings update: %w", err)
	}

	previous := s.current
	s.current = updated
	if err := s.writeLocked(); err != nil {
		s.current = previous
		return nil, err
	}

	return updated.Clone(), nil
}

// Replace swaps in a complete configuration. Used by the IPC
// settings-update handler, which receives whole trees from the UI.
func (s *Store) Replace(config *Config) error {
	if config == nil {
		return fmt.Errorf("nil settings")
	}
	_, err := s.Update(func(c *Config) { *c = *config.Clone() })
	return err
}

// Reset restores defaults and persists them.
func (s *Store) Reset() error {
	_, err := s.Update(func(c *Config) { *c = *Defaults() })
	return err
}

// writeLocked persists s.current atomically. Callers hold s.mu.
func (s *Store) writeLocked() error {
	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	data = append(data, '\n')

	temporaryPath := s.path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary settings file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary settings file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary settings file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary settings file: %w", err)
	}
	if err := os.Rename(temporaryPath, s.path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming settings file into place: %w", err)
	}

	// Sync the parent directory so the rename survives power loss.
	if parent, err := os.Open(filepath.Dir(s.path)); err == nil {
		parent.Sync()
		parent.Close()
	}

	return nil
}
