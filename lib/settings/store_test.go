// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenStoreCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	store, err := OpenStore(path, nil)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}

	if got := store.Current(); got.Network.Network != NetworkMain {
		t.Errorf("Network = %q, want %q", got.Network.Network, NetworkMain)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("settings file was not created: %v", err)
	}
}

func TestOpenStoreAcceptsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	content := `{
  // hand-edited: join testnet
  "network": {
    "network": "testnet",
  },
}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	store, err := OpenStore(path, nil)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}

	got := store.Current()
	if got.Network.Network != NetworkTestnet {
		t.Errorf("Network = %q, want %q", got.Network.Network, NetworkTestnet)
	}
	// Fields absent from the file keep their defaults.
	if got.Network.RPCPort != 9799 {
		t.Errorf("RPCPort = %d, want 9799", got.Network.RPCPort)
	}
}

func TestOpenStoreRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	content := `{"network": {"network": "moonnet"}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := OpenStore(path, nil); err == nil {
		t.Fatal("OpenStore should reject an unknown network")
	}
}

func TestUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store, err := OpenStore(path, nil)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}

	if _, err := store.Update(func(c *Config) {
		c.Mining.Compose = true
		c.Advanced.BanAddresses = []string{"10.0.0.1:9798"}
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reopened, err := OpenStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := reopened.Current()
	if !got.Mining.Compose {
		t.Error("Mining.Compose not persisted")
	}
	if len(got.Advanced.BanAddresses) != 1 || got.Advanced.BanAddresses[0] != "10.0.0.1:9798" {
		t.Errorf("BanAddresses = %v", got.Advanced.BanAddresses)
	}
}

func TestUpdateRejectedLeavesStoreUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store, err := OpenStore(path, nil)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}

	_, err = store.Update(func(c *Config) { c.Network.RPCPort = -1 })
	if err == nil {
		t.Fatal("Update with invalid port should fail")
	}

	if got := store.Current(); got.Network.RPCPort != 9799 {
		t.Errorf("RPCPort = %d after rejected update, want 9799", got.Network.RPCPort)
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store, err := OpenStore(path, nil)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}

	first := store.Current()
	first.Network.Network = NetworkRegtest

	if got := store.Current(); got.Network.Network != NetworkMain {
		t.Error("mutating a Current() result leaked into the store")
	}
}

func TestSavedFileIsPlainJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store, err := OpenStore(path, nil)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	if _, err := store.Update(func(c *Config) { c.Mining.Guess = true }); err != nil {
		t.Fatalf("Update: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(data), "//") {
		t.Error("saved settings file should be comment-free canonical JSON")
	}
}

func TestValidateGuesserFraction(t *testing.T) {
	tests := []struct {
		name     string
		fraction string
		wantErr  bool
	}{
		{name: "valid", fraction: "0.3", wantErr: false},
		{name: "empty means default", fraction: "", wantErr: false},
		{name: "not a number", fraction: "lots", wantErr: true},
		{name: "above one", fraction: "1.5", wantErr: true},
		{name: "negative", fraction: "-0.1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Defaults()
			config.Mining.GuesserFraction = tt.fraction
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
