// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package walletrpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

// testServer runs a JSON-RPC endpoint and returns a client pointed at
// it. The handler receives the decoded request and returns the result
// payload or an rpcError.
func testServer(t *testing.T, handler func(req request) (any, *rpcError)) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+strings.Repeat("ab", 32) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		result, rpcErr := handler(req)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	// Rewrite the client's URL at the test server's port.
	port, err := strconv.Atoi(server.URL[strings.LastIndex(server.URL, ":")+1:])
	if err != nil {
		t.Fatalf("parsing test server port: %v", err)
	}
	client := New(port, strings.Repeat("ab", 32), nil)
	client.url = server.URL
	t.Cleanup(client.Close)
	return client
}

func TestSummary(t *testing.T) {
	client := testServer(t, func(req request) (any, *rpcError) {
		if req.Method != "wallet.summary" {
			t.Errorf("method = %q", req.Method)
		}
		return Summary{
			AvailableBalance: "42.5",
			BlockHeight:      12345,
			IsSynced:         true,
			PeerCount:        8,
		}, nil
	})

	summary, err := client.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.AvailableBalance != "42.5" || summary.BlockHeight != 12345 || !summary.IsSynced {
		t.Errorf("summary = %+v", summary)
	}
}

func TestRPCErrorSurfaced(t *testing.T) {
	client := testServer(t, func(request) (any, *rpcError) {
		return nil, &rpcError{Code: -32601, Message: "method not found"}
	})

	_, err := client.Summary(context.Background())
	if err == nil || !strings.Contains(err.Error(), "method not found") {
		t.Errorf("err = %v, want rpc error", err)
	}
}

func TestBadCookieIsHTTPError(t *testing.T) {
	client := testServer(t, func(request) (any, *rpcError) { return Summary{}, nil })
	client.cookie = "wrong"

	_, err := client.Summary(context.Background())
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("err = %v, want HTTP 401", err)
	}
}

func TestClosedClientFailsFast(t *testing.T) {
	client := testServer(t, func(request) (any, *rpcError) { return Summary{}, nil })
	client.Close()

	_, err := client.Summary(context.Background())
	if !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
	// Closing twice is fine.
	client.Close()
}

func TestRequestIDsIncrement(t *testing.T) {
	var ids []uint64
	client := testServer(t, func(req request) (any, *rpcError) {
		ids = append(ids, req.ID)
		return Summary{}, nil
	})

	for i := 0; i < 3; i++ {
		if _, err := client.Summary(context.Background()); err != nil {
			t.Fatalf("Summary: %v", err)
		}
	}
	if len(ids) != 3 || ids[0] >= ids[1] || ids[1] >= ids[2] {
		t.Errorf("ids = %v, want strictly increasing", ids)
	}
}
