// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/seaoffreedom/neptune-core-wallet/lib/addressbook"
	"github.com/seaoffreedom/neptune-core-wallet/lib/ipc"
	"github.com/seaoffreedom/neptune-core-wallet/lib/nodeargs"
	"github.com/seaoffreedom/neptune-core-wallet/lib/peers"
	"github.com/seaoffreedom/neptune-core-wallet/lib/settings"
	"github.com/seaoffreedom/neptune-core-wallet/lib/supervisor"
	"github.com/seaoffreedom/neptune-core-wallet/lib/version"
)

type daemon struct {
	config     *Config
	settings   *settings.Store
	peers      *peers.Registry
	contacts   *addressbook.Book
	supervisor *supervisor.Supervisor
	logger     *slog.Logger
}

// requestTimeout bounds each IPC request's work. Initialize dominates:
// it can legitimately poll the node for a couple of minutes.
const requestTimeout = 5 * time.Minute

func (d *daemon) handle(req *ipc.Request) *ipc.Response {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	d.logger.Debug("ipc request", "action", req.Action)

	switch req.Action {
	case ipc.ActionInitialize:
		if err := d.supervisor.Initialize(ctx); err != nil {
			return ipc.Fail(err)
		}
		return d.statusResponse()

	case ipc.ActionShutdown:
		if err := d.supervisor.Shutdown(ctx); err != nil {
			return ipc.Fail(err)
		}
		return d.statusResponse()

	case ipc.ActionRestart:
		if err := d.supervisor.Restart(ctx); err != nil {
			return ipc.Fail(err)
		}
		return d.statusResponse()

	case ipc.ActionStatus:
		return d.statusResponse()

	case ipc.ActionGetCookie:
		cookie, ok := d.supervisor.Cookie()
		if !ok {
			return ipc.Fail(errors.New("cookie not yet available"))
		}
		return ipc.Ok(func(resp *ipc.Response) { resp.Cookie = cookie })

	case ipc.ActionSummary:
		summary, fetchedAt, ok := d.supervisor.LastSummary()
		if !ok {
			return ipc.Fail(errors.New("no wallet summary fetched yet"))
		}
		return ipc.Ok(func(resp *ipc.Response) {
			resp.Summary = summary
			resp.SummaryAt = fetchedAt
		})

	case ipc.ActionVersion:
		return ipc.Ok(func(resp *ipc.Response) { resp.Version = version.Info() })

	case ipc.ActionPreviewArgs:
		preview, err := nodeargs.BuildPreview(ctx, d.config.NodeBinary,
			d.settings.Current(), settings.Defaults(), d.peers.Eligible, d.logger)
		if err != nil {
			return ipc.Fail(err)
		}
		return ipc.Ok(func(resp *ipc.Response) { resp.Preview = preview })

	case ipc.ActionSettingsGet:
		return ipc.Ok(func(resp *ipc.Response) { resp.Config = d.settings.Current() })

	case ipc.ActionSettingsUpdate:
		if req.Config == nil {
			return ipc.Fail(errors.New("settings-update requires a config payload"))
		}
		if err := d.settings.Replace(req.Config); err != nil {
			return ipc.Fail(err)
		}
		return ipc.Ok(func(resp *ipc.Response) { resp.Config = d.settings.Current() })

	case ipc.ActionSettingsReset:
		if err := d.settings.Reset(); err != nil {
			return ipc.Fail(err)
		}
		return ipc.Ok(func(resp *ipc.Response) { resp.Config = d.settings.Current() })

	case ipc.ActionPeerAdd, ipc.ActionPeerRemove, ipc.ActionPeerEnable,
		ipc.ActionPeerDisable, ipc.ActionPeerBan, ipc.ActionPeerUnban,
		ipc.ActionPeerList:
		return d.handlePeers(ctx, req)

	case ipc.ActionContactAdd, ipc.ActionContactRemove, ipc.ActionContactList:
		return d.handleContacts(ctx, req)

	default:
		return ipc.Fail(fmt.Errorf("unknown action %q", req.Action))
	}
}

func (d *daemon) statusResponse() *ipc.Response {
	status := d.supervisor.Status()
	return ipc.Ok(func(resp *ipc.Response) { resp.Status = &status })
}

// network resolves the request's network, defaulting to the configured
// one so the CLI can omit it in the common case.
func (d *daemon) network(req *ipc.Request) string {
	if req.Network != "" {
		return req.Network
	}
	return d.settings.Current().Network.Network
}

func (d *daemon) handlePeers(ctx context.Context, req *ipc.Request) *ipc.Response {
	network := d.network(req)

	var err error
	switch req.Action {
	case ipc.ActionPeerAdd:
		err = d.peers.Add(ctx, req.Address, network)
	case ipc.ActionPeerRemove:
		err = d.peers.Remove(ctx, req.Address, network)
	case ipc.ActionPeerEnable:
		err = d.peers.SetEnabled(ctx, req.Address, network, true)
	case ipc.ActionPeerDisable:
		err = d.peers.SetEnabled(ctx, req.Address, network, false)
	case ipc.ActionPeerBan:
		err = d.peers.Ban(ctx, req.Address, network)
	case ipc.ActionPeerUnban:
		err = d.peers.Unban(ctx, req.Address, network)
	}
	if err != nil {
		return ipc.Fail(err)
	}

	records, err := d.peers.List(ctx, network)
	if err != nil {
		return ipc.Fail(err)
	}
	return ipc.Ok(func(resp *ipc.Response) { resp.Peers = records })
}

func (d *daemon) handleContacts(ctx context.Context, req *ipc.Request) *ipc.Response {
	network := d.network(req)

	var err error
	switch req.Action {
	case ipc.ActionContactAdd:
		err = d.contacts.Add(ctx, req.Label, req.Address, network)
	case ipc.ActionContactRemove:
		err = d.contacts.Remove(ctx, req.Label, network)
	}
	if err != nil {
		return ipc.Fail(err)
	}

	list, err := d.contacts.List(ctx, network)
	if err != nil {
		return ipc.Fail(err)
	}
	return ipc.Ok(func(resp *ipc.Response) { resp.Contacts = list })
}
