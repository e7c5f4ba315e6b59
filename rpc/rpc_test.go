package rpc

import (
	"encoding/json"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"studbook/horse"
)

type handlerFunc func(req jsonRPCRequest) (result interface{}, rpcErr *RPCError)

// testNet routes dials by host to in-memory listeners. Unknown hosts fail to dial.
type testNet struct {
	mu        sync.Mutex
	listeners map[string]*fasthttputil.InmemoryListener
	dialed    map[string]int
}

func newTestNet() *testNet {
	return &testNet{
		listeners: make(map[string]*fasthttputil.InmemoryListener),
		dialed:    make(map[string]int),
	}
}

func (n *testNet) serve(t *testing.T, host string, h handlerFunc) {
	ln := fasthttputil.NewInmemoryListener()
	t.Cleanup(func() { ln.Close() })

	go fasthttp.Serve(ln, func(ctx *fasthttp.RequestCtx) {
		req := jsonRPCRequest{}
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			return
		}

		result, rpcErr := h(req)
		body, _ := json.Marshal(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
			"error":   rpcErr,
		})
		ctx.SetContentType("application/json")
		ctx.SetBody(body)
	})

	n.mu.Lock()
	n.listeners[host] = ln
	n.mu.Unlock()
}

func (n *testNet) dial(addr string) (net.Conn, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.dialed[addr]++
	ln, ok := n.listeners[addr]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return ln.Dial()
}

func (n *testNet) dialedHosts() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.dialed)
}

func newTestClient(n *testNet, urls ...string) *Client {
	c := NewClient(urls)
	c.client.Dial = n.dial
	c.timeout = 2 * time.Second
	return c
}

func TestRegisterAsset(t *testing.T) {
	n := newTestNet()
	var got jsonRPCRequest
	n.serve(t, "ledger-a:10332", func(req jsonRPCRequest) (interface{}, *RPCError) {
		got = req
		return 7, nil
	})

	c := newTestClient(n, "http://ledger-a:10332")
	id, err := c.RegisterAsset("AKQjaQ7Hor11BfRnXUBvYYiY1CwUkLywyc", 3, horse.Szabo, "QmHash")

	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	assert.Equal(t, "2.0", got.JSONRPC)
	assert.Equal(t, "registerasset", got.Method)
	assert.Equal(t, []interface{}{"AKQjaQ7Hor11BfRnXUBvYYiY1CwUkLywyc", float64(3), "S", "QmHash"}, got.Params)
	assert.Len(t, got.ID, 36)
}

func TestGetAttributes(t *testing.T) {
	n := newTestNet()
	n.serve(t, "ledger-a:10332", func(req jsonRPCRequest) (interface{}, *RPCError) {
		if req.Params[0].(float64) != 2 {
			return nil, nil
		}
		return RawAttributes{
			ID:          2,
			Owner:       "AKQjaQ7Hor11BfRnXUBvYYiY1CwUkLywyc",
			ContentHash: "QmHash",
			Genotype:    8,
			Bloodline:   "B",
			Sex:         "male",
		}, nil
	})

	c := newTestClient(n, "http://ledger-a:10332")

	attrs, err := c.GetAttributes(2)
	require.NoError(t, err)
	assert.True(t, attrs.Exists())
	assert.Equal(t, horse.Attributes{
		ID:          2,
		Owner:       "AKQjaQ7Hor11BfRnXUBvYYiY1CwUkLywyc",
		ContentHash: "QmHash",
		Traits: horse.Traits{
			Genotype:  8,
			Bloodline: horse.Buterin,
			Sex:       horse.Male,
		},
	}, attrs)

	attrs, err = c.GetAttributes(99)
	require.NoError(t, err)
	assert.False(t, attrs.Exists())
	assert.Equal(t, horse.Attributes{ID: 99}, attrs)
}

func TestRPCError(t *testing.T) {
	n := newTestNet()
	n.serve(t, "ledger-a:10332", func(req jsonRPCRequest) (interface{}, *RPCError) {
		return nil, &RPCError{Code: -32602, Message: "invalid owner"}
	})

	c := newTestClient(n, "http://ledger-a:10332")
	_, err := c.RegisterAsset("nobody", 1, horse.Nakamoto, "")

	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32602, rpcErr.Code)

	// Node answered, so it stays healthy.
	assert.Equal(t, map[string]bool{"http://ledger-a:10332": true}, c.ServerStatus())
}

func TestFailover(t *testing.T) {
	n := newTestNet()
	n.serve(t, "ledger-b:10332", func(req jsonRPCRequest) (interface{}, *RPCError) {
		return RawAttributes{ID: 1, Owner: "owner", Sex: "female"}, nil
	})

	c := newTestClient(n, "http://ledger-a:10332", "http://ledger-b:10332")

	// Nodes are picked at random, keep calling until the dead one is hit.
	for i := 0; i < 64 && c.ServerStatus()["http://ledger-a:10332"]; i++ {
		attrs, err := c.GetAttributes(1)
		require.NoError(t, err)
		assert.Equal(t, horse.Female, attrs.Sex)
	}

	assert.Equal(t, map[string]bool{
		"http://ledger-a:10332": false,
		"http://ledger-b:10332": true,
	}, c.ServerStatus())
}

func TestRegisterAssetIsNotResent(t *testing.T) {
	n := newTestNet()
	c := newTestClient(n, "http://ledger-a:10332", "http://ledger-b:10332")

	_, err := c.RegisterAsset("owner", 1, horse.Nakamoto, "")
	assert.Error(t, err)
	assert.Equal(t, 1, n.dialedHosts())

	_, err = c.GetAttributes(0)
	assert.Equal(t, ErrNoServer, err)
	assert.Equal(t, 2, n.dialedHosts())
}

func TestRefreshServers(t *testing.T) {
	n := newTestNet()
	version := func(req jsonRPCRequest) (interface{}, *RPCError) {
		assert.Equal(t, "getversion", req.Method)
		return map[string]interface{}{"port": 10332, "nonce": 1, "useragent": "/ledger:1.0/"}, nil
	}
	n.serve(t, "ledger-a:10332", version)

	urls := []string{"http://ledger-a:10332", "http://ledger-b:10332"}
	c := newTestClient(n)

	assert.Equal(t, 1, c.RefreshServers(urls))
	assert.Equal(t, map[string]bool{
		"http://ledger-a:10332": true,
		"http://ledger-b:10332": false,
	}, c.ServerStatus())

	n.serve(t, "ledger-b:10332", version)
	assert.Equal(t, 2, c.RefreshServers(urls))
}

func TestSetServersKeepsHealth(t *testing.T) {
	c := NewClient([]string{"http://a:1", "http://b:1"})
	c.serverUnavailable("http://a:1")

	c.SetServers([]string{"http://a:1", "http://c:1"})
	assert.Equal(t, map[string]bool{
		"http://a:1": false,
		"http://c:1": true,
	}, c.ServerStatus())
}

func TestResponseIDMismatch(t *testing.T) {
	ln := fasthttputil.NewInmemoryListener()
	defer ln.Close()
	go fasthttp.Serve(ln, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBody([]byte(`{"jsonrpc":"2.0","id":"stale","result":1}`))
	})

	c := NewClient([]string{"http://ledger-a:10332"})
	c.client.Dial = func(addr string) (net.Conn, error) { return ln.Dial() }

	_, err := c.RegisterAsset("owner", 1, horse.Nakamoto, "")
	assert.Error(t, err)
}

func TestRequestBody(t *testing.T) {
	body := getRPCRequestBody("getattributes", "req-1", []interface{}{uint64(5), "x\"y"})
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"getattributes","params":[5,"x\"y"],"id":"req-1"}`, string(body))

	body = getRPCRequestBody("getversion", "req-2", nil)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"getversion","params":[],"id":"req-2"}`, string(body))

	assert.Panics(t, func() {
		getRPCRequestBody("registerasset", "req-3", []interface{}{1.5})
	})
}
