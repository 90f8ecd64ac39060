// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

// Package addressbook stores labeled receive addresses per network.
// Pure CRUD; the daemon exposes it over IPC for the UI's contacts view.
package addressbook

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/seaoffreedom/neptune-core-wallet/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	label      TEXT NOT NULL,
	address    TEXT NOT NULL,
	network    TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (label, network)
);
`

// Contact is one address-book entry.
type Contact struct {
	Label     string    `json:"label" cbor:"label"`
	Address   string    `json:"address" cbor:"address"`
	Network   string    `json:"network" cbor:"network"`
	CreatedAt time.Time `json:"created_at" cbor:"created_at"`
}

// Book is the sqlite-backed address book.
type Book struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// Open opens (creating if needed) the address book at path.
func Open(path string, logger *slog.Logger) (*Book, error) {
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
		return nil, fmt.Errorf("addressbook: %w", err)
	}

	return &Book{pool: pool, logger: logger}, nil
}

// Close releases the underlying pool.
func (b *Book) Close() error {
	return b.pool.Close()
}

// Add inserts a contact. Labels are unique per network.
func (b *Book) Add(ctx context.Context, label, address, network string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return fmt.Errorf("addressbook: label is required")
	}
	if strings.TrimSpace(address) == "" {
		return fmt.Errorf("addressbook: address is required")
	}

	conn, err := b.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer b.pool.Put(conn)

	err = sqlitex.Execute(conn,
		"INSERT INTO contacts (label, address, network, created_at) VALUES (?, ?, ?, ?)",
		&sqlitex.ExecOptions{Args: []any{label, address, network, time.Now().Unix()}})
	if err != nil {
		return fmt.Errorf("addressbook: adding %q on %s: %w", label, network, err)
	}
	return nil
}

// Remove deletes a contact by label. Removing an absent label is a
// no-op.
func (b *Book) Remove(ctx context.Context, label, network string) error {
	conn, err := b.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer b.pool.Put(conn)

	err = sqlitex.Execute(conn,
		"DELETE FROM contacts WHERE label = ? AND network = ?",
		&sqlitex.ExecOptions{Args: []any{label, network}})
	if err != nil {
		return fmt.Errorf("addressbook: removing %q on %s: %w", label, network, err)
	}
	return nil
}

// List returns all contacts for a network, ordered by label.
func (b *Book) List(ctx context.Context, network string) ([]Contact, error) {
	conn, err := b.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer b.pool.Put(conn)

	var contacts []Contact
	err = sqlitex.Execute(conn,
		`SELECT label, address, network, created_at FROM contacts
		 WHERE network = ? ORDER BY label`,
		&sqlitex.ExecOptions{
			Args: []any{network},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				contacts = append(contacts, Contact{
					Label:     stmt.ColumnText(0),
					Address:   stmt.ColumnText(1),
					Network:   stmt.ColumnText(2),
					CreatedAt: time.Unix(stmt.ColumnInt64(3), 0),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("addressbook: listing %s: %w", network, err)
	}
	return contacts, nil
}
