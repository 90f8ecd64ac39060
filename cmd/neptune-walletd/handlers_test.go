// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/seaoffreedom/neptune-core-wallet/lib/addressbook"
	"github.com/seaoffreedom/neptune-core-wallet/lib/ipc"
	"github.com/seaoffreedom/neptune-core-wallet/lib/peers"
	"github.com/seaoffreedom/neptune-core-wallet/lib/settings"
	"github.com/seaoffreedom/neptune-core-wallet/lib/supervisor"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestDaemon wires real stores against an idle supervisor. Lifecycle
// actions are exercised in lib/supervisor's own tests; here we cover
// the dispatch and the data-plane handlers.
func newTestDaemon(t *testing.T) *daemon {
	t.Helper()
	dir := t.TempDir()

	store, err := settings.OpenStore(filepath.Join(dir, "settings.json"), nil)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	registry, err := peers.Open(filepath.Join(dir, "peers.db"), nil)
	if err != nil {
		t.Fatalf("peers.Open: %v", err)
	}
	t.Cleanup(func() { registry.Close() })
	contacts, err := addressbook.Open(filepath.Join(dir, "contacts.db"), nil)
	if err != nil {
		t.Fatalf("addressbook.Open: %v", err)
	}
	t.Cleanup(func() { contacts.Close() })

	config := defaultConfig()
	config.DataDir = dir
	config.NodeBinary = filepath.Join(dir, "neptune-core")
	config.CompanionBinary = filepath.Join(dir, "neptune-cli")

	sup, err := supervisor.New(supervisor.Options{
		NodeBinary:      config.NodeBinary,
		CompanionBinary: config.CompanionBinary,
		Settings:        store,
		Peers:           registry.Eligible,
		StateFile:       filepath.Join(dir, "supervisor-state.json"),
	})
	if err != nil {
		t.Fatalf("supervisor.New: %v", err)
	}

	return &daemon{
		config:     config,
		settings:   store,
		peers:      registry,
		contacts:   contacts,
		supervisor: sup,
		logger:     testLogger(),
	}
}

func TestStatusAction(t *testing.T) {
	d := newTestDaemon(t)
	resp := d.handle(&ipc.Request{Action: ipc.ActionStatus})
	if !resp.OK || resp.Status == nil {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Status.State != "uninitialized" || resp.Status.NodeRunning {
		t.Errorf("status = %+v", resp.Status)
	}
}

func TestCookieUnavailableBeforeInitialize(t *testing.T) {
	d := newTestDaemon(t)
	resp := d.handle(&ipc.Request{Action: ipc.ActionGetCookie})
	if resp.OK || !strings.Contains(resp.Error, "not yet available") {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSettingsGetAndUpdate(t *testing.T) {
	d := newTestDaemon(t)

	resp := d.handle(&ipc.Request{Action: ipc.ActionSettingsGet})
	if !resp.OK || resp.Config == nil {
		t.Fatalf("resp = %+v", resp)
	}

	updated := resp.Config
	updated.Network.Network = settings.NetworkTestnet
	resp = d.handle(&ipc.Request{Action: ipc.ActionSettingsUpdate, Config: updated})
	if !resp.OK {
		t.Fatalf("update failed: %s", resp.Error)
	}
	if resp.Config.Network.Network != settings.NetworkTestnet {
		t.Errorf("config = %+v", resp.Config.Network)
	}

	// Invalid settings are rejected and leave the store untouched.
	bad := resp.Config
	bad.Network.PeerPort = -1
	resp = d.handle(&ipc.Request{Action: ipc.ActionSettingsUpdate, Config: bad})
	if resp.OK {
		t.Fatal("invalid settings accepted")
	}
	if d.settings.Current().Network.PeerPort == -1 {
		t.Error("invalid port persisted")
	}
}

func TestSettingsUpdateRequiresPayload(t *testing.T) {
	d := newTestDaemon(t)
	resp := d.handle(&ipc.Request{Action: ipc.ActionSettingsUpdate})
	if resp.OK {
		t.Error("settings-update without payload accepted")
	}
}

func TestPeerLifecycleViaIPC(t *testing.T) {
	d := newTestDaemon(t)

	resp := d.handle(&ipc.Request{Action: ipc.ActionPeerAdd, Address: "10.0.0.1:9798"})
	if !resp.OK {
		t.Fatalf("peer-add failed: %s", resp.Error)
	}
	if len(resp.Peers) != 1 || resp.Peers[0].Address != "10.0.0.1:9798" {
		t.Errorf("peers = %+v", resp.Peers)
	}
	// Defaulted to the configured network.
	if resp.Peers[0].Network != settings.NetworkMain {
		t.Errorf("network = %q", resp.Peers[0].Network)
	}

	resp = d.handle(&ipc.Request{Action: ipc.ActionPeerBan, Address: "10.0.0.1:9798"})
	if !resp.OK || !resp.Peers[0].Banned {
		t.Errorf("after ban: %+v", resp.Peers)
	}

	resp = d.handle(&ipc.Request{Action: ipc.ActionPeerRemove, Address: "10.0.0.1:9798"})
	if !resp.OK || len(resp.Peers) != 0 {
		t.Errorf("after remove: %+v", resp.Peers)
	}
}

func TestContactLifecycleViaIPC(t *testing.T) {
	d := newTestDaemon(t)

	resp := d.handle(&ipc.Request{
		Action:  ipc.ActionContactAdd,
		Label:   "exchange",
		Address: "nolgam1qy352eu...",
	})
	if !resp.OK || len(resp.Contacts) != 1 {
		t.Fatalf("contact-add: %+v (%s)", resp.Contacts, resp.Error)
	}

	resp = d.handle(&ipc.Request{Action: ipc.ActionContactRemove, Label: "exchange"})
	if !resp.OK || len(resp.Contacts) != 0 {
		t.Errorf("contact-remove: %+v", resp.Contacts)
	}
}

func TestPreviewArgsAction(t *testing.T) {
	d := newTestDaemon(t)
	if _, err := d.settings.Update(func(c *settings.Config) {
		c.Network.Network = settings.NetworkTestnet
		c.Mining.Guess = true
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	resp := d.handle(&ipc.Request{Action: ipc.ActionPreviewArgs})
	if !resp.OK || resp.Preview == nil {
		t.Fatalf("resp = %+v", resp)
	}
	command := resp.Preview.Command
	if !strings.Contains(command, "--network testnet") || !strings.Contains(command, "--mine") {
		t.Errorf("preview command = %q", command)
	}
}

func TestUnknownActionRejected(t *testing.T) {
	d := newTestDaemon(t)
	resp := d.handle(&ipc.Request{Action: "transmogrify"})
	if resp.OK || !strings.Contains(resp.Error, "unknown action") {
		t.Errorf("resp = %+v", resp)
	}
}

func TestVersionAction(t *testing.T) {
	d := newTestDaemon(t)
	resp := d.handle(&ipc.Request{Action: ipc.ActionVersion})
	if !resp.OK || resp.Version == "" {
		t.Errorf("resp = %+v", resp)
	}
}
