// Package rpcfake provides an in-memory JSON-RPC endpoint for tests. The same
// handlers back both the Fake client (satisfying blockchain.RPC) and an
// httptest server that go-ethereum's rpc client can dial.
package rpcfake

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Handler answers one JSON-RPC method. Params are the raw positional args.
type Handler func(params []json.RawMessage) (interface{}, error)

// Call records a method invocation.
type Call struct {
	Method string
	Params []json.RawMessage
}

// Error is a JSON-RPC error object returned by handlers.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// ErrorCode satisfies go-ethereum's rpc.Error.
func (e *Error) ErrorCode() int { return e.Code }

// Fake is a scripted JSON-RPC endpoint.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{handlers: make(map[string]Handler)}
}

// Handle registers h for method, replacing any previous handler.
func (f *Fake) Handle(method string, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = h
	return f
}

// Result registers a handler that always returns v.
func (f *Fake) Result(method string, v interface{}) *Fake {
	return f.Handle(method, func([]json.RawMessage) (interface{}, error) { return v, nil })
}

// Calls returns the recorded invocations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded invocations of method.
func (f *Fake) CallsTo(method string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) dispatch(method string, params []json.RawMessage) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Method: method, Params: params})
	h, ok := f.handlers[method]
	f.mu.Unlock()
	if !ok {
		return nil, &Error{Code: -32601, Message: fmt.Sprintf("method %s not found", method)}
	}
	v, err := h(params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// CallContext satisfies blockchain.RPC.
func (f *Fake) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := make([]json.RawMessage, len(args))
	for i, a := range args {
		raw, err := json.Marshal(a)
		if err != nil {
			return err
		}
		params[i] = raw
	}
	raw, err := f.dispatch(method, params)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(raw, result)
}

// Close satisfies blockchain.RPC.
func (f *Fake) Close() {}

type request struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Server serves f over HTTP. Batches are not supported.
func (f *Fake) Server() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := response{JSONRPC: "2.0", ID: req.ID}
		raw, err := f.dispatch(req.Method, req.Params)
		if err != nil {
			rpcErr, ok := err.(*Error)
			if !ok {
				rpcErr = &Error{Code: -32000, Message: err.Error()}
			}
			resp.Error = rpcErr
		} else {
			resp.Result = raw
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

// AccountInfo builds a getAccountInfo result holding data. A nil data
// yields the "no account" result.
func AccountInfo(data []byte) interface{} {
	if data == nil {
		return map[string]interface{}{"context": map[string]interface{}{"slot": 1}, "value": nil}
	}
	return map[string]interface{}{
		"context": map[string]interface{}{"slot": 1},
		"value":   accountValue(data),
	}
}

// ProgramAccount builds one entry of a getProgramAccounts result.
func ProgramAccount(pubkey string, data []byte) interface{} {
	return map[string]interface{}{"pubkey": pubkey, "account": accountValue(data)}
}

func accountValue(data []byte) map[string]interface{} {
	return map[string]interface{}{
		"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
		"executable": false,
		"lamports":   1_000_000,
		"owner":      "2e1wdyNhUvE76y6yUCvah2KaviavMJYKoRun8acMRBZZ",
		"rentEpoch":  0,
	}
}

// Blockhash builds a getLatestBlockhash result.
func Blockhash(hash string) interface{} {
	return map[string]interface{}{
		"context": map[string]interface{}{"slot": 1},
		"value":   map[string]interface{}{"blockhash": hash, "lastValidBlockHeight": 100},
	}
}

// SignatureStatus builds a getSignatureStatuses result for one signature.
// An empty status yields a null entry; a non-nil txErr marks it failed.
func SignatureStatus(status string, txErr interface{}) interface{} {
	if status == "" && txErr == nil {
		return map[string]interface{}{"context": map[string]interface{}{"slot": 1}, "value": []interface{}{nil}}
	}
	return map[string]interface{}{
		"context": map[string]interface{}{"slot": 1},
		"value": []interface{}{map[string]interface{}{
			"slot":               10,
			"confirmations":      nil,
			"err":                txErr,
			"confirmationStatus": status,
		}},
	}
}

// TokenBalance builds a getTokenAccountBalance result.
func TokenBalance(amount string, decimals int) interface{} {
	return map[string]interface{}{
		"context": map[string]interface{}{"slot": 1},
		"value":   map[string]interface{}{"amount": amount, "decimals": decimals},
	}
}
