// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

// Package walletrpc is the JSON-RPC 2.0 client for the companion
// process's RPC server. The supervisor creates one client per
// successful startup, authenticated with the readiness cookie, and
// closes it before tearing the processes down so in-flight calls fail
// fast instead of hanging on a dead socket.
package walletrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("walletrpc: client is closed")

// Summary is the periodic wallet snapshot the refresh loop fetches.
type Summary struct {
	AvailableBalance   string `json:"available_balance" cbor:"available_balance"`
	TimelockedBalance  string `json:"timelocked_balance" cbor:"timelocked_balance"`
	UnconfirmedBalance string `json:"unconfirmed_balance" cbor:"unconfirmed_balance"`
	BlockHeight        uint64 `json:"block_height" cbor:"block_height"`
	IsSynced           bool   `json:"is_synced" cbor:"is_synced"`
	PeerCount          int    `json:"peer_count" cbor:"peer_count"`
	MempoolSize        int    `json:"mempool_size" cbor:"mempool_size"`
}

// Client talks to the companion's RPC endpoint on localhost.
type Client struct {
	url    string
	cookie string
	http   *http.Client
	logger *slog.Logger

	nextID atomic.Uint64
	closed atomic.Bool
}

// New builds a client for the companion listening on port,
// authenticating with the given readiness cookie.
func New(port int, cookie string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		url:    fmt.Sprintf("http://127.0.0.1:%d/rpc", port),
		cookie: cookie,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("walletrpc: rpc error %d: %s", e.Code, e.Message)
}

func (c *Client) call(ctx context.Context, method string, params, result any) error {
	if c.closed.Load() {
		return ErrClosed
	}

	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("walletrpc: encoding %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("walletrpc: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cookie)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("walletrpc: calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("walletrpc: %s returned HTTP %d", method, resp.StatusCode)
	}

	var envelope response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("walletrpc: decoding %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("walletrpc: decoding %s result: %w", method, err)
		}
	}
	return nil
}

// Summary fetches the current wallet summary.
func (c *Client) Summary(ctx context.Context) (*Summary, error) {
	var summary Summary
	if err := c.call(ctx, "wallet.summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Close marks the client closed and drops idle connections. Calls in
// flight or made afterwards fail with ErrClosed rather than waiting on
// a socket whose server is about to be killed.
func (c *Client) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.http.CloseIdleConnections()
}
