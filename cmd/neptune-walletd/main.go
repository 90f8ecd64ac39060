// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

// neptune-walletd supervises the neptune-core node and its companion
// CLI on behalf of the wallet UI. It owns the node's configuration, the
// peer and contact databases, and the process lifecycle, and exposes
// all of it over a unix socket speaking CBOR.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/seaoffreedom/neptune-core-wallet/lib/addressbook"
	"github.com/seaoffreedom/neptune-core-wallet/lib/ipc"
	"github.com/seaoffreedom/neptune-core-wallet/lib/peers"
	"github.com/seaoffreedom/neptune-core-wallet/lib/process"
	"github.com/seaoffreedom/neptune-core-wallet/lib/settings"
	"github.com/seaoffreedom/neptune-core-wallet/lib/supervisor"
	"github.com/seaoffreedom/neptune-core-wallet/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath      string
		nodeBinary      string
		companionBinary string
		dataDir         string
		socketPath      string
		autoInitialize  bool
		showVersion     bool
	)

	flag.StringVar(&configPath, "config", "", "path to walletd YAML config (optional)")
	flag.StringVar(&nodeBinary, "node-binary", "", "path to the neptune-core binary (overrides config)")
	flag.StringVar(&companionBinary, "companion-binary", "", "path to the neptune-cli binary (overrides config)")
	flag.StringVar(&dataDir, "data-dir", "", "wallet data directory (overrides config)")
	flag.StringVar(&socketPath, "socket", "", "control socket path (overrides config)")
	flag.BoolVar(&autoInitialize, "auto-init", false, "start the node immediately instead of waiting for an initialize request")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("neptune-walletd %s\n", version.Info())
		return nil
	}

	config, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if nodeBinary != "" {
		config.NodeBinary = nodeBinary
	}
	if companionBinary != "" {
		config.CompanionBinary = companionBinary
	}
	if dataDir != "" {
		config.DataDir = dataDir
		config.Socket = filepath.Join(dataDir, "walletd.sock")
	}
	if socketPath != "" {
		config.Socket = socketPath
	}
	if autoInitialize {
		config.AutoInitialize = true
	}
	if err := config.validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(config.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(config.DataDir, 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	store, err := settings.OpenStore(filepath.Join(config.DataDir, "settings.json"), logger)
	if err != nil {
		return err
	}

	registry, err := peers.Open(filepath.Join(config.DataDir, "peers.db"), logger)
	if err != nil {
		return err
	}
	defer registry.Close()
	if err := registry.SeedDefaults(ctx, store.Current().Network.Network); err != nil {
		return err
	}

	contacts, err := addressbook.Open(filepath.Join(config.DataDir, "contacts.db"), logger)
	if err != nil {
		return err
	}
	defer contacts.Close()

	sup, err := supervisor.New(supervisor.Options{
		NodeBinary:      config.NodeBinary,
		CompanionBinary: config.CompanionBinary,
		Settings:        store,
		Peers:           registry.Eligible,
		StateFile:       filepath.Join(config.DataDir, "supervisor-state.json"),
		Logger:          logger,
		RefreshInterval: config.RefreshInterval,
		GraceTimeout:    config.GraceTimeout,
		RestartCooldown: config.RestartCooldown,
		Freshness:       config.StateFreshness,
	})
	if err != nil {
		return err
	}

	if config.AutoInitialize {
		if err := sup.Initialize(ctx); err != nil {
			// The daemon stays up so the UI can inspect and retry.
			logger.Error("automatic initialize failed", "error", err)
		}
	}

	daemon := &daemon{
		config:     config,
		settings:   store,
		peers:      registry,
		contacts:   contacts,
		supervisor: sup,
		logger:     logger,
	}

	if err := daemon.serve(ctx); err != nil {
		return err
	}

	// The listener is down; bring the processes down with it.
	return sup.Shutdown(context.Background())
}

// serve accepts one IPC connection at a time per goroutine until ctx is
// cancelled.
func (d *daemon) serve(ctx context.Context) error {
	// A stale socket from an unclean exit blocks the listen.
	if err := os.Remove(d.config.Socket); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket: %w", err)
	}

	listener, err := net.Listen("unix", d.config.Socket)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", d.config.Socket, err)
	}
	if err := os.Chmod(d.config.Socket, 0o600); err != nil {
		listener.Close()
		return fmt.Errorf("restricting socket permissions: %w", err)
	}

	d.logger.Info("walletd listening",
		"socket", d.config.Socket,
		"version", version.Info(),
	)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	var connections sync.WaitGroup
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				break
			}
			d.logger.Warn("accept failed", "error", err)
			continue
		}
		connections.Add(1)
		go func() {
			defer connections.Done()
			defer conn.Close()
			if err := ipc.Serve(conn, d.handle); err != nil {
				d.logger.Warn("ipc connection failed", "error", err)
			}
		}()
	}
	connections.Wait()

	d.logger.Info("walletd shutting down")
	os.Remove(d.config.Socket)
	return nil
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
