// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

// Package peers is the persisted peer registry: the list of peer
// addresses per network with enable/ban flags. The argument compiler
// asks it for the eligible peers of the selected network and turns each
// into a --peer flag.
package peers

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/seaoffreedom/neptune-core-wallet/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS peers (
	address        TEXT NOT NULL,
	network        TEXT NOT NULL,
	enabled        INTEGER NOT NULL DEFAULT 1,
	banned         INTEGER NOT NULL DEFAULT 0,
	default_origin INTEGER NOT NULL DEFAULT 0,
	added_at       INTEGER NOT NULL,
	PRIMARY KEY (address, network)
);
`

// Record is one peer entry.
type Record struct {
	Address string `json:"address" cbor:"address"`
	Network string `json:"network" cbor:"network"`
	Enabled bool   `json:"enabled" cbor:"enabled"`
	Banned  bool   `json:"banned" cbor:"banned"`

	// DefaultOrigin marks records seeded from the built-in bootstrap
	// list rather than added by the user.
	DefaultOrigin bool      `json:"default_origin" cbor:"default_origin"`
	AddedAt       time.Time `json:"added_at" cbor:"added_at"`
}

// Registry is the sqlite-backed peer store.
type Registry struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// Open opens (creating if needed) the peer database at path.
func Open(path string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   path,
		Logger: logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("peers: %w", err)
	}

	return &Registry{pool: pool, logger: logger}, nil
}

// Close releases the underlying pool.
func (r *Registry) Close() error {
	return r.pool.Close()
}

// Add inserts a peer for a network, enabled and unbanned. Adding an
// address that already exists for the network is an error.
func (r *Registry) Add(ctx context.Context, address, network string) error {
	if err := validateAddress(address); err != nil {
		return err
	}

	conn, err := r.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO peers (address, network, enabled, banned, default_origin, added_at)
		 VALUES (?, ?, 1, 0, 0, ?)`,
		&sqlitex.ExecOptions{Args: []any{address, network, time.Now().Unix()}})
	if err != nil {
		return fmt.Errorf("peers: adding %s on %s: %w", address, network, err)
	}

	r.logger.Info("peer added", "address", address, "network", network)
	return nil
}

// Remove deletes a peer record. Removing an absent record is a no-op.
func (r *Registry) Remove(ctx context.Context, address, network string) error {
	return r.setColumns(ctx, "DELETE FROM peers WHERE address = ? AND network = ?", address, network)
}

// SetEnabled flips the enabled flag.
func (r *Registry) SetEnabled(ctx context.Context, address, network string, enabled bool) error {
	value := 0
	if enabled {
		value = 1
	}
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn,
		"UPDATE peers SET enabled = ? WHERE address = ? AND network = ?",
		&sqlitex.ExecOptions{Args: []any{value, address, network}})
	if err != nil {
		return fmt.Errorf("peers: updating %s on %s: %w", address, network, err)
	}
	return nil
}

// Ban marks a peer banned. Banned peers never appear in Eligible
// regardless of their enabled flag.
func (r *Registry) Ban(ctx context.Context, address, network string) error {
	return r.setBanned(ctx, address, network, true)
}

// Unban clears the banned flag.
func (r *Registry) Unban(ctx context.Context, address, network string) error {
	return r.setBanned(ctx, address, network, false)
}

func (r *Registry) setBanned(ctx context.Context, address, network string, banned bool) error {
	value := 0
	if banned {
		value = 1
	}
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn,
		"UPDATE peers SET banned = ? WHERE address = ? AND network = ?",
		&sqlitex.ExecOptions{Args: []any{value, address, network}})
	if err != nil {
		return fmt.Errorf("peers: updating %s on %s: %w", address, network, err)
	}
	return nil
}

func (r *Registry) setColumns(ctx context.Context, query string, args ...any) error {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)

	if err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: args}); err != nil {
		return fmt.Errorf("peers: %w", err)
	}
	return nil
}

// List returns all records for a network in insertion order.
func (r *Registry) List(ctx context.Context, network string) ([]Record, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Put(conn)

	var records []Record
	err = sqlitex.Execute(conn,
		`SELECT address, network, enabled, banned, default_origin, added_at
		 FROM peers WHERE network = ? ORDER BY rowid`,
		&sqlitex.ExecOptions{
			Args: []any{network},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				records = append(records, Record{
					Address:       stmt.ColumnText(0),
					Network:       stmt.ColumnText(1),
					Enabled:       stmt.ColumnInt(2) != 0,
					Banned:        stmt.ColumnInt(3) != 0,
					DefaultOrigin: stmt.ColumnInt(4) != 0,
					AddedAt:       time.Unix(stmt.ColumnInt64(5), 0),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("peers: listing %s: %w", network, err)
	}
	return records, nil
}

// Eligible returns the addresses that qualify for --peer flags on the
// given network: enabled, not banned, in insertion order.
func (r *Registry) Eligible(ctx context.Context, network string) ([]string, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Put(conn)

	var addresses []string
	err = sqlitex.Execute(conn,
		`SELECT address FROM peers
		 WHERE network = ? AND enabled = 1 AND banned = 0
		 ORDER BY rowid`,
		&sqlitex.ExecOptions{
			Args: []any{network},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				addresses = append(addresses, stmt.ColumnText(0))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("peers: enumerating eligible peers for %s: %w", network, err)
	}
	return addresses, nil
}

// validateAddress does a loose host:port shape check. Hostnames are
// fine; the node does its own resolution.
func validateAddress(address string) error {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("peers: address %q is not host:port: %w", address, err)
	}
	if host == "" || port == "" {
		return fmt.Errorf("peers: address %q has an empty host or port", address)
	}
	return nil
}
