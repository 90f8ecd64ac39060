// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"

	"github.com/seaoffreedom/neptune-core-wallet/cmd/neptune-wallet/cli"
	"github.com/seaoffreedom/neptune-core-wallet/lib/ipc"
	"github.com/seaoffreedom/neptune-core-wallet/lib/settings"
	"github.com/seaoffreedom/neptune-core-wallet/lib/version"
)

// requestTimeout bounds a single CLI call. Node init can take minutes.
const requestTimeout = 5 * time.Minute

type client struct {
	socket string
}

func (c *client) do(req *ipc.Request) (*ipc.Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return ipc.Do(ctx, c.socket, req)
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func rootCommand(socketPath string) *cli.Command {
	c := &client{socket: socketPath}
	return &cli.Command{
		Name:    "neptune-wallet",
		Summary: "control the neptune-walletd daemon",
		Subcommands: []*cli.Command{
			nodeCommand(c),
			settingsCommand(c),
			peerCommand(c),
			contactCommand(c),
			versionCommand(c),
		},
	}
}

func nodeCommand(c *client) *cli.Command {
	return &cli.Command{
		Name:    "node",
		Summary: "node process lifecycle",
		Subcommands: []*cli.Command{
			{
				Name:    "init",
				Summary: "start the node and companion processes",
				Run: func([]string) error {
					resp, err := c.do(&ipc.Request{Action: ipc.ActionInitialize})
					if err != nil {
						return err
					}
					return printJSON(resp.Status)
				},
			},
			{
				Name:    "shutdown",
				Summary: "stop the node and companion processes",
				Run: func([]string) error {
					resp, err := c.do(&ipc.Request{Action: ipc.ActionShutdown})
					if err != nil {
						return err
					}
					return printJSON(resp.Status)
				},
			},
			{
				Name:    "restart",
				Summary: "shut down, wait, and start again",
				Run: func([]string) error {
					resp, err := c.do(&ipc.Request{Action: ipc.ActionRestart})
					if err != nil {
						return err
					}
					return printJSON(resp.Status)
				},
			},
			{
				Name:    "status",
				Summary: "show process liveness and lifecycle state",
				Run: func([]string) error {
					resp, err := c.do(&ipc.Request{Action: ipc.ActionStatus})
					if err != nil {
						return err
					}
					return printJSON(resp.Status)
				},
			},
			{
				Name:    "cookie",
				Summary: "print the node's RPC cookie",
				Run: func([]string) error {
					resp, err := c.do(&ipc.Request{Action: ipc.ActionGetCookie})
					if err != nil {
						return err
					}
					fmt.Println(resp.Cookie)
					return nil
				},
			},
			{
				Name:    "summary",
				Summary: "show the most recent wallet summary",
				Run: func([]string) error {
					resp, err := c.do(&ipc.Request{Action: ipc.ActionSummary})
					if err != nil {
						return err
					}
					return printJSON(map[string]any{
						"summary":    resp.Summary,
						"fetched_at": resp.SummaryAt,
					})
				},
			},
			{
				Name:    "preview",
				Summary: "show the command line the node would be launched with",
				Run: func([]string) error {
					resp, err := c.do(&ipc.Request{Action: ipc.ActionPreviewArgs})
					if err != nil {
						return err
					}
					fmt.Println(resp.Preview.Command)
					for _, explanation := range resp.Preview.Explanations {
						fmt.Printf("  %-12s %v\n", explanation.Category, explanation.Args)
					}
					return nil
				},
			},
		},
	}
}

func settingsCommand(c *client) *cli.Command {
	return &cli.Command{
		Name:    "settings",
		Summary: "node configuration",
		Subcommands: []*cli.Command{
			{
				Name:    "show",
				Summary: "print the current settings tree",
				Run: func([]string) error {
					resp, err := c.do(&ipc.Request{Action: ipc.ActionSettingsGet})
					if err != nil {
						return err
					}
					return printJSON(resp.Config)
				},
			},
			{
				Name:    "apply",
				Summary: "replace the settings tree from a JSON file ('-' for stdin)",
				Usage:   "neptune-wallet settings apply <file>",
				Run: func(args []string) error {
					if len(args) != 1 {
						return fmt.Errorf("settings apply takes exactly one file argument")
					}
					var data []byte
					var err error
					if args[0] == "-" {
						data, err = io.ReadAll(os.Stdin)
					} else {
						data, err = os.ReadFile(args[0])
					}
					if err != nil {
						return err
					}

					config := settings.Defaults()
					if err := json.Unmarshal(jsonc.ToJSON(data), config); err != nil {
						return fmt.Errorf("parsing settings: %w", err)
					}
					resp, err := c.do(&ipc.Request{Action: ipc.ActionSettingsUpdate, Config: config})
					if err != nil {
						return err
					}
					return printJSON(resp.Config)
				},
			},
			{
				Name:    "reset",
				Summary: "restore the default settings",
				Run: func([]string) error {
					resp, err := c.do(&ipc.Request{Action: ipc.ActionSettingsReset})
					if err != nil {
						return err
					}
					return printJSON(resp.Config)
				},
			},
		},
	}
}

func peerCommand(c *client) *cli.Command {
	var network string
	networkFlags := func(name string) func() *pflag.FlagSet {
		return func() *pflag.FlagSet {
			flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
			flags.StringVar(&network, "network", "", "network (defaults to the configured one)")
			return flags
		}
	}

	peerAction := func(action ipc.Action, wantArgs int, usage string) func([]string) error {
		return func(args []string) error {
			if len(args) != wantArgs {
				return fmt.Errorf("usage: %s", usage)
			}
			req := &ipc.Request{Action: action, Network: network}
			if wantArgs == 1 {
				req.Address = args[0]
			}
			resp, err := c.do(req)
			if err != nil {
				return err
			}
			return printJSON(resp.Peers)
		}
	}

	return &cli.Command{
		Name:    "peer",
		Summary: "peer registry",
		Subcommands: []*cli.Command{
			{Name: "add", Summary: "add a peer address", Flags: networkFlags("add"),
				Run: peerAction(ipc.ActionPeerAdd, 1, "neptune-wallet peer add <host:port>")},
			{Name: "remove", Summary: "remove a peer", Flags: networkFlags("remove"),
				Run: peerAction(ipc.ActionPeerRemove, 1, "neptune-wallet peer remove <host:port>")},
			{Name: "enable", Summary: "include a peer in node launches", Flags: networkFlags("enable"),
				Run: peerAction(ipc.ActionPeerEnable, 1, "neptune-wallet peer enable <host:port>")},
			{Name: "disable", Summary: "exclude a peer from node launches", Flags: networkFlags("disable"),
				Run: peerAction(ipc.ActionPeerDisable, 1, "neptune-wallet peer disable <host:port>")},
			{Name: "ban", Summary: "ban a peer", Flags: networkFlags("ban"),
				Run: peerAction(ipc.ActionPeerBan, 1, "neptune-wallet peer ban <host:port>")},
			{Name: "unban", Summary: "lift a peer ban", Flags: networkFlags("unban"),
				Run: peerAction(ipc.ActionPeerUnban, 1, "neptune-wallet peer unban <host:port>")},
			{Name: "list", Summary: "list peer records", Flags: networkFlags("list"),
				Run: peerAction(ipc.ActionPeerList, 0, "neptune-wallet peer list")},
		},
	}
}

func contactCommand(c *client) *cli.Command {
	var network string
	networkFlags := func(name string) func() *pflag.FlagSet {
		return func() *pflag.FlagSet {
			flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
			flags.StringVar(&network, "network", "", "network (defaults to the configured one)")
			return flags
		}
	}

	return &cli.Command{
		Name:    "contact",
		Summary: "address book",
		Subcommands: []*cli.Command{
			{
				Name:    "add",
				Summary: "save a labeled address",
				Usage:   "neptune-wallet contact add <label> <address>",
				Flags:   networkFlags("add"),
				Run: func(args []string) error {
					if len(args) != 2 {
						return fmt.Errorf("usage: neptune-wallet contact add <label> <address>")
					}
					resp, err := c.do(&ipc.Request{
						Action:  ipc.ActionContactAdd,
						Label:   args[0],
						Address: args[1],
						Network: network,
					})
					if err != nil {
						return err
					}
					return printJSON(resp.Contacts)
				},
			},
			{
				Name:    "remove",
				Summary: "delete a contact by label",
				Usage:   "neptune-wallet contact remove <label>",
				Flags:   networkFlags("remove"),
				Run: func(args []string) error {
					if len(args) != 1 {
						return fmt.Errorf("usage: neptune-wallet contact remove <label>")
					}
					resp, err := c.do(&ipc.Request{
						Action:  ipc.ActionContactRemove,
						Label:   args[0],
						Network: network,
					})
					if err != nil {
						return err
					}
					return printJSON(resp.Contacts)
				},
			},
			{
				Name:    "list",
				Summary: "list contacts",
				Flags:   networkFlags("list"),
				Run: func([]string) error {
					resp, err := c.do(&ipc.Request{Action: ipc.ActionContactList, Network: network})
					if err != nil {
						return err
					}
					return printJSON(resp.Contacts)
				},
			},
		},
	}
}

func versionCommand(c *client) *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "print client and daemon versions",
		Run: func([]string) error {
			fmt.Printf("neptune-wallet %s\n", version.Info())
			resp, err := c.do(&ipc.Request{Action: ipc.ActionVersion})
			if err != nil {
				fmt.Println("neptune-walletd unreachable")
				return nil
			}
			fmt.Printf("neptune-walletd %s\n", resp.Version)
			return nil
		},
	}
}
