// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

// Package ipc defines the control protocol between the wallet CLI and
// the walletd daemon: one CBOR-encoded Request per connection on the
// daemon's unix socket, answered by one Response.
package ipc

import (
	"time"

	"github.com/seaoffreedom/neptune-core-wallet/lib/addressbook"
	"github.com/seaoffreedom/neptune-core-wallet/lib/nodeargs"
	"github.com/seaoffreedom/neptune-core-wallet/lib/peers"
	"github.com/seaoffreedom/neptune-core-wallet/lib/settings"
	"github.com/seaoffreedom/neptune-core-wallet/lib/supervisor"
	"github.com/seaoffreedom/neptune-core-wallet/lib/walletrpc"
)

// Action names one daemon operation.
type Action string

const (
	ActionInitialize Action = "initialize"
	ActionShutdown   Action = "shutdown"
	ActionRestart    Action = "restart"
	ActionStatus     Action = "status"
	ActionGetCookie  Action = "get-cookie"
	ActionSummary    Action = "summary"
	ActionVersion    Action = "version"

	ActionPreviewArgs Action = "preview-args"

	ActionSettingsGet    Action = "settings-get"
	ActionSettingsUpdate Action = "settings-update"
	ActionSettingsReset  Action = "settings-reset"

	ActionPeerAdd     Action = "peer-add"
	ActionPeerRemove  Action = "peer-remove"
	ActionPeerEnable  Action = "peer-enable"
	ActionPeerDisable Action = "peer-disable"
	ActionPeerBan     Action = "peer-ban"
	ActionPeerUnban   Action = "peer-unban"
	ActionPeerList    Action = "peer-list"

	ActionContactAdd    Action = "contact-add"
	ActionContactRemove Action = "contact-remove"
	ActionContactList   Action = "contact-list"
)

// Request is the client-to-daemon message. Only the fields relevant to
// the action are set.
type Request struct {
	Action Action `cbor:"action"`

	// Config carries the full settings tree for settings-update.
	Config *settings.Config `cbor:"config,omitempty"`

	// Address and Network select a peer record for peer operations.
	// Network defaults to the currently configured network when empty.
	Address string `cbor:"address,omitempty"`
	Network string `cbor:"network,omitempty"`

	// Label names a contact for contact operations.
	Label string `cbor:"label,omitempty"`
}

// Response is the daemon-to-client message. OK is false exactly when
// Error is non-empty; the payload fields are action-specific.
type Response struct {
	OK    bool   `cbor:"ok"`
	Error string `cbor:"error,omitempty"`

	Status    *supervisor.Status    `cbor:"status,omitempty"`
	Config    *settings.Config      `cbor:"config,omitempty"`
	Cookie    string                `cbor:"cookie,omitempty"`
	Preview   *nodeargs.Preview     `cbor:"preview,omitempty"`
	Peers     []peers.Record        `cbor:"peers,omitempty"`
	Contacts  []addressbook.Contact `cbor:"contacts,omitempty"`
	Summary   *walletrpc.Summary    `cbor:"summary,omitempty"`
	SummaryAt time.Time             `cbor:"summary_at,omitempty"`
	Version   string                `cbor:"version,omitempty"`
}

// Ok wraps a successful response.
func Ok(mutate func(*Response)) *Response {
	resp := &Response{OK: true}
	if mutate != nil {
		mutate(resp)
	}
	return resp
}

// Fail wraps an error into a response.
func Fail(err error) *Response {
	return &Response{Error: err.Error()}
}
