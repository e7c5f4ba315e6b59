package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	eParser "github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"studbook/log"
)

// ErrNoServer is returned when every ledger node is marked unavailable.
var ErrNoServer = errors.New("rpc: no ledger node available")

type jsonRPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      string        `json:"id"`
}

// jsonRPCResponse is the envelope shared by all responses.
type jsonRPCResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      string    `json:"id"`
	Error   *RPCError `json:"error"`
}

func (r *jsonRPCResponse) envelope() *jsonRPCResponse {
	return r
}

type response interface {
	envelope() *jsonRPCResponse
}

// RPCError is the error object returned by a ledger node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func getRPCRequestBody(method string, id string, params []interface{}) []byte {
	for _, param := range params {
		switch param.(type) {
		case int8, uint8,
			int16, uint16,
			int, uint,
			int32, uint32,
			int64, uint64,
			string:
		default:
			err := fmt.Errorf("the RPC parameter type must be integer or string. current type=%T, value=%v", param, param)
			panic(err)
		}
	}

	if params == nil {
		params = []interface{}{}
	}

	body, _ := json.Marshal(jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      id,
	})
	return body
}

// call sends the request to a healthy node. Nodes that fail at the transport
// level are marked unavailable, and the next one is tried only if retry is set.
func (c *Client) call(method string, params []interface{}, target response, retry bool) error {
	tried := make(map[string]bool)

	for {
		url, ok := c.getServer(tried)
		if !ok {
			return ErrNoServer
		}
		tried[url] = true

		err := c.do(url, method, params, target)
		if err == nil || !isTransportErr(err) {
			return err
		}

		log.Error.Printf("%s: %v\n", url, err)
		c.serverUnavailable(url)
		if !retry {
			return err
		}

		time.Sleep(50 * time.Millisecond)
	}
}

type transportErr struct {
	err error
}

func (e transportErr) Error() string {
	return e.err.Error()
}

func isTransportErr(err error) bool {
	_, ok := err.(transportErr)
	return ok
}

// do performs a single request against url.
func (c *Client) do(url string, method string, params []interface{}, target response) error {
	id := uuid.New().String()
	requestBody := getRPCRequestBody(method, id, params)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod("POST")
	req.Header.SetContentType("application/json")
	req.SetRequestURI(url)
	req.SetBody(requestBody)

	if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
		return transportErr{err}
	}

	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return transportErr{fmt.Errorf("unexpected status code %d", code)}
	}

	bodyBytes := resp.Body()

	err := json.Unmarshal(bodyBytes, target)
	if err != nil {
		log.Error.Println(errors.New(eParser.Wrap(err, 0).ErrorStack()))
		log.Error.Printf("Request body: %s\n", requestBody)
		log.Error.Printf("Response: %s\n", bodyBytes)
		return err
	}

	env := target.envelope()
	if env.Error != nil {
		return env.Error
	}

	if env.ID != id {
		return fmt.Errorf("rpc: response id %q does not match request id %q", env.ID, id)
	}

	return nil
}
