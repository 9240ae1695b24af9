package mcp_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolhub/ynabhub/internal/core"
	"github.com/toolhub/ynabhub/internal/mcp"
	"github.com/toolhub/ynabhub/internal/tools"
	"github.com/toolhub/ynabhub/internal/ynab"
)

const accountsBody = `{"data":{"accounts":[{"id":"acc1","name":"Checking","type":"checking","balance":100000,"closed":false}]}}`

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newServer(t *testing.T, opts ...tools.RegistryOption) (*mcp.Server, *atomic.Int64) {
	t.Helper()
	hits := new(atomic.Int64)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(accountsBody))
	}))
	t.Cleanup(upstream.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := ynab.NewClient("tok", ynab.WithBaseURL(upstream.URL))
	registry := tools.NewRegistry(tools.NewToolset(client, logger), append(opts, tools.WithLogger(logger))...)
	return mcp.NewServer("127.0.0.1:0", registry, "test", logger), hits
}

func exchange(t *testing.T, srv *mcp.Server, lines ...string) []response {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, srv.Serve(context.Background(), in, &out))

	var resps []response
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var r response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r), "line: %s", scanner.Text())
		resps = append(resps, r)
	}
	return resps
}

func TestServe_Initialize(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t)

	resps := exchange(t, srv, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)

	require.Len(t, resps, 1)
	assert.Equal(t, "1", string(resps[0].ID))
	assert.Nil(t, resps[0].Error)
	assert.JSONEq(t, `{
		"protocolVersion":"2024-11-05",
		"capabilities":{"tools":{"listChanged":false}},
		"serverInfo":{"name":"ynabhub","version":"test"}
	}`, string(resps[0].Result))
}

func TestServe_NotificationsGetNoResponse(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t)

	resps := exchange(t, srv,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":"p","method":"ping"}`,
	)

	require.Len(t, resps, 1)
	assert.Equal(t, `"p"`, string(resps[0].ID))
	assert.JSONEq(t, `{}`, string(resps[0].Result))
}

func TestServe_ProtocolErrors(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t)

	resps := exchange(t, srv,
		`{not json`,
		`{"jsonrpc":"1.0","id":2,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"mcp_ynab_delete_budget","arguments":{}}}`,
		`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"mcp_ynab_list_accounts","arguments":{}}}`,
		`{"jsonrpc":"2.0","id":6,"method":"tools/call","params":"oops"}`,
	)

	require.Len(t, resps, 6)
	wantCodes := []int{core.RPCParseError, core.RPCInvalidRequest, core.RPCMethodNotFound, core.RPCInvalidParams, core.RPCInvalidParams, core.RPCInvalidParams}
	for i, code := range wantCodes {
		require.NotNil(t, resps[i].Error, "response %d", i)
		assert.Equal(t, code, resps[i].Error.Code, "response %d", i)
	}
	assert.Equal(t, "null", string(resps[0].ID))
	assert.Contains(t, resps[3].Error.Message, "unknown tool")
	assert.Contains(t, resps[4].Error.Message, "budget_id")
}

func TestServe_ToolsListAndCall(t *testing.T) {
	t.Parallel()
	srv, hits := newServer(t)

	resps := exchange(t, srv,
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"mcp_ynab_list_accounts","arguments":{"budget_id":"b1"}}}`,
	)
	require.Len(t, resps, 2)

	var listed struct {
		Tools []struct {
			Name        string         `json:"name"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resps[0].Result, &listed))
	require.Len(t, listed.Tools, len(tools.Definitions()))
	assert.Equal(t, "mcp_ynab_list_budgets", listed.Tools[0].Name)
	assert.Equal(t, "object", listed.Tools[0].InputSchema["type"])

	assert.Equal(t, int64(1), hits.Load())
	assert.JSONEq(t,
		`{"content":[{"type":"text","text":"Open Accounts:\n- Checking (Type: checking, Balance: 100.00, ID: acc1)"}]}`,
		string(resps[1].Result))
}

func TestServe_ReadOnlyPolicy(t *testing.T) {
	t.Parallel()
	srv, hits := newServer(t, tools.WithPolicy(core.NewPolicy("", true)))

	resps := exchange(t, srv,
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"mcp_ynab_create_transaction","arguments":{"budget_id":"b","account_id":"a","amount":-1000,"date":"2026-01-02"}}}`,
	)
	require.Len(t, resps, 2)

	assert.NotContains(t, string(resps[0].Result), "mcp_ynab_create_transaction")
	require.NotNil(t, resps[1].Error)
	assert.Equal(t, core.RPCToolDenied, resps[1].Error.Code)
	assert.Equal(t, int64(0), hits.Load())
}

func TestListenAndServe_TCP(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t)

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe() }()

	var addr net.Addr
	require.Eventually(t, func() bool {
		addr = srv.Addr()
		return addr != nil
	}, 2*time.Second, 10*time.Millisecond)

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(`{"jsonrpc":"2.0","id":7,"method":"ping"}` + "\n"))
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":7,"result":{}}`, string(line))

	require.NoError(t, srv.Shutdown(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ListenAndServe did not return after Shutdown")
	}
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t)

	r, w := io.Pipe()
	defer w.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, r, io.Discard) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
