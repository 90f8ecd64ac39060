// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/seaoffreedom/neptune-core-wallet/lib/codec"
)

// Do dials the daemon socket, sends one request, and reads the
// response. Each call is its own connection; the daemon closes it after
// answering.
func Do(ctx context.Context, socketPath string, req *Request) (*Response, error) {
	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("ipc: dialing %s: %w", socketPath, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(2 * time.Minute))
	}

	if err := codec.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("ipc: sending %s: %w", req.Action, err)
	}

	var resp Response
	if err := codec.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("ipc: reading %s response: %w", req.Action, err)
	}
	if !resp.OK {
		return &resp, fmt.Errorf("ipc: %s: %s", req.Action, resp.Error)
	}
	return &resp, nil
}

// Serve reads one request from conn, dispatches it through handle, and
// writes the response. Used by the daemon's accept loop; the connection
// is closed by the caller.
func Serve(conn net.Conn, handle func(*Request) *Response) error {
	var req Request
	if err := codec.NewDecoder(conn).Decode(&req); err != nil {
		return fmt.Errorf("ipc: decoding request: %w", err)
	}
	if req.Action == "" {
		return writeResponse(conn, Fail(errors.New("missing action")))
	}
	return writeResponse(conn, handle(&req))
}

func writeResponse(conn net.Conn, resp *Response) error {
	if err := codec.NewEncoder(conn).Encode(resp); err != nil {
		return fmt.Errorf("ipc: encoding response: %w", err)
	}
	return nil
}
