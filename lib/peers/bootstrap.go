// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package peers

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/seaoffreedom/neptune-core-wallet/lib/settings"
)

// bootstrapPeers is the built-in seed list per network. Only mainnet
// has known-good long-lived bootstrap nodes today; testnet and regtest
// stay empty until such nodes exist.
var bootstrapPeers = map[string][]string{
	settings.NetworkMain: {
		"bootstrap-a.neptune.cash:9798",
		"bootstrap-b.neptune.cash:9798",
		"51.158.204.98:9798",
	},
	settings.NetworkTestnet: {},
	settings.NetworkRegtest: {},
}

// SeedDefaults inserts the built-in bootstrap peers for a network,
// marked default_origin so the UI can distinguish them from
// user-added entries. Idempotent: records that already exist (including
// ones the user has since disabled or banned) are left untouched.
func (r *Registry) SeedDefaults(ctx context.Context, network string) error {
	seeds, ok := bootstrapPeers[network]
	if !ok {
		return fmt.Errorf("peers: unknown network %q", network)
	}

	conn, err := r.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)

	for _, address := range seeds {
		err := sqlitex.Execute(conn,
			`INSERT OR IGNORE INTO peers (address, network, enabled, banned, default_origin, added_at)
			 VALUES (?, ?, 1, 0, 1, ?)`,
			&sqlitex.ExecOptions{Args: []any{address, network, time.Now().Unix()}})
		if err != nil {
			return fmt.Errorf("peers: seeding %s on %s: %w", address, network, err)
		}
	}

	r.logger.Info("bootstrap peers seeded", "network", network, "count", len(seeds))
	return nil
}
