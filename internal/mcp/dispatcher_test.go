// ABOUTME: Tests for the JSON-RPC dispatcher.
// ABOUTME: Covers routing, envelope rules, error codes, isError results and fault recovery.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/news-mcp/internal/auth"
	"github.com/2389/news-mcp/internal/news"
	"github.com/2389/news-mcp/internal/store"
	"github.com/2389/news-mcp/internal/tools"
)

const (
	testSecret = "s3cret-token"
	testPhone  = "919901470297"
)

type fakeProvider struct {
	result news.Result
	err    error
}

func (p *fakeProvider) Fetch(context.Context, []string) (news.Result, error) {
	return p.result, p.err
}

type memoryRecorder struct {
	mu    sync.Mutex
	calls []store.ToolCall
	err   error
}

func (m *memoryRecorder) RecordToolCall(_ context.Context, c *store.ToolCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, *c)
	return m.err
}

type observation struct {
	method string
	code   int
}

type recordingObserver struct {
	mu       sync.Mutex
	requests []observation
	tools    map[string]int
}

func (o *recordingObserver) ObserveRequest(method string, code int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, observation{method, code})
}

func (o *recordingObserver) ObserveToolCall(tool string, _ bool, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.tools == nil {
		o.tools = make(map[string]int)
	}
	o.tools[tool]++
}

func defaultProvider() *fakeProvider {
	return &fakeProvider{result: news.Result{
		{Source: "BBC", Headlines: []string{"b1", "b2"}},
		{Source: "CNN", Headlines: []string{}},
	}}
}

func newTestDispatcher(t *testing.T, extra ...*tools.Tool) (*Dispatcher, *memoryRecorder, *recordingObserver) {
	t.Helper()
	provider := defaultProvider()
	registry, err := tools.NewRegistry(
		[]*tools.Tool{tools.ValidateTool(auth.NewGate(testSecret), testPhone), tools.NewsTool(provider)},
		append([]*tools.Tool{tools.LatestNewsAlias(provider)}, extra...)...,
	)
	require.NoError(t, err)

	rec := &memoryRecorder{}
	obs := &recordingObserver{}
	d, err := NewDispatcher(DispatcherConfig{Registry: registry, Recorder: rec, Observer: obs})
	require.NoError(t, err)
	return d, rec, obs
}

// roundTrip dispatches body and decodes the wire form of the response.
func roundTrip(t *testing.T, d *Dispatcher, body string) map[string]any {
	t.Helper()
	resp := d.Handle(context.Background(), []byte(body))
	require.NotNil(t, resp)

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "2.0", out["jsonrpc"])

	_, hasResult := out["result"]
	_, hasError := out["error"]
	assert.True(t, hasResult != hasError, "exactly one of result and error must be present: %s", data)
	return out
}

func errorCode(t *testing.T, out map[string]any) int {
	t.Helper()
	e, ok := out["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %v", out)
	return int(e["code"].(float64))
}

func toolText(t *testing.T, out map[string]any) (string, bool) {
	t.Helper()
	result, ok := out["result"].(map[string]any)
	require.True(t, ok, "expected result envelope, got %v", out)
	content := result["content"].([]any)
	require.Len(t, content, 1)
	block := content[0].(map[string]any)
	assert.Equal(t, "text", block["type"])
	isError, _ := result["isError"].(bool)
	return block["text"].(string), isError
}

func TestDispatcher_Initialize(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	out := roundTrip(t, d, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)

	assert.Equal(t, float64(1), out["id"])
	result := out["result"].(map[string]any)
	assert.Equal(t, "2024-11-05", result["protocolVersion"])
	assert.Equal(t, map[string]any{"tools": map[string]any{}, "logging": map[string]any{}}, result["capabilities"])
	assert.Equal(t, map[string]any{
		"name":        "News MCP Server",
		"version":     "1.0.0",
		"description": "MCP server for fetching news headlines and user validation",
	}, result["serverInfo"])
}

func TestDispatcher_ToolsListExactlyTwoTools(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
	first := roundTrip(t, d, body)
	second := roundTrip(t, d, body)

	assert.Equal(t, first, second)

	toolList := first["result"].(map[string]any)["tools"].([]any)
	require.Len(t, toolList, 2)
	assert.Equal(t, "validate", toolList[0].(map[string]any)["name"])
	assert.Equal(t, "getNews", toolList[1].(map[string]any)["name"])

	schema := toolList[0].(map[string]any)["inputSchema"].(map[string]any)
	assert.Equal(t, []any{"token"}, schema["required"])
}

func TestDispatcher_ValidateCorrectToken(t *testing.T) {
	d, rec, _ := newTestDispatcher(t)

	out := roundTrip(t, d, `{"jsonrpc":"2.0","id":"abc","method":"tools/call","params":{"name":"validate","arguments":{"token":"s3cret-token"}}}`)

	assert.Equal(t, "abc", out["id"])
	text, isError := toolText(t, out)
	assert.False(t, isError)
	assert.Equal(t, `{"phone":"919901470297"}`, text)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "validate", rec.calls[0].Tool)
	assert.Equal(t, "abc", rec.calls[0].RPCID)
	assert.False(t, rec.calls[0].IsError)
}

func TestDispatcher_ValidateWrongToken(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	out := roundTrip(t, d, `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"validate","arguments":{"token":"wrong"}}}`)

	assert.Equal(t, float64(7), out["id"])
	text, isError := toolText(t, out)
	assert.True(t, isError)
	assert.Equal(t, `{"error":"Invalid bearer token"}`, text)
	assert.NotContains(t, text, testPhone)
}

func TestDispatcher_ValidateMissingToken(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	for _, params := range []string{
		`{"name":"validate"}`,
		`{"name":"validate","arguments":null}`,
		`{"name":"validate","arguments":{}}`,
		`{"name":"validate","arguments":["s3cret-token"]}`,
	} {
		out := roundTrip(t, d, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":`+params+`}`)
		text, isError := toolText(t, out)
		assert.True(t, isError, params)
		assert.NotContains(t, text, testPhone, params)
	}
}

func TestDispatcher_GetNews(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	out := roundTrip(t, d, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"getNews","arguments":{"sources":["BBC","Nowhere"]}}}`)

	text, isError := toolText(t, out)
	assert.False(t, isError)

	var env map[string]map[string][]string
	require.NoError(t, json.Unmarshal([]byte(text), &env))
	assert.Equal(t, []string{"b1", "b2"}, env["news"]["BBC"])
	assert.Equal(t, []string{}, env["news"]["CNN"])
}

func TestDispatcher_LatestNewsAliasCallableButUnlisted(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	out := roundTrip(t, d, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"get_latest_news"}}`)
	text, isError := toolText(t, out)
	assert.False(t, isError)
	assert.Contains(t, text, "**BBC:**\n1. b1\n2. b2\n")

	list := roundTrip(t, d, `{"jsonrpc":"2.0","id":5,"method":"tools/list"}`)
	for _, tool := range list["result"].(map[string]any)["tools"].([]any) {
		assert.NotEqual(t, "get_latest_news", tool.(map[string]any)["name"])
	}
}

func TestDispatcher_UnknownTool(t *testing.T) {
	d, rec, _ := newTestDispatcher(t)

	out := roundTrip(t, d, `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":{"name":"launch_rockets","arguments":{}}}`)

	assert.Equal(t, JSONRPCInvalidParams, errorCode(t, out))
	e := out["error"].(map[string]any)
	assert.Equal(t, "Unknown tool", e["message"])
	assert.Equal(t, map[string]any{"tool": "launch_rockets"}, e["data"])
	assert.Equal(t, float64(9), out["id"])

	require.Len(t, rec.calls, 1)
	assert.Equal(t, JSONRPCInvalidParams, rec.calls[0].ErrorCode)
}

func TestDispatcher_UnknownMethod(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	for _, method := range []string{"resources/list", "prompts/get", "", "TOOLS/LIST"} {
		out := roundTrip(t, d, `{"jsonrpc":"2.0","id":1,"method":"`+method+`"}`)
		assert.Equal(t, JSONRPCMethodNotFound, errorCode(t, out), method)
		e := out["error"].(map[string]any)
		assert.Equal(t, "Method not found", e["message"])
		assert.Equal(t, map[string]any{"method": method}, e["data"])
	}
}

func TestDispatcher_InvalidVersion(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	tests := []string{
		`{"jsonrpc":"1.0","id":11,"method":"tools/list"}`,
		`{"jsonrpc":"","id":11,"method":"tools/list"}`,
		`{"jsonrpc":"2.0 ","id":11,"method":"initialize"}`,
	}

	for _, body := range tests {
		out := roundTrip(t, d, body)
		assert.Equal(t, JSONRPCInvalidRequest, errorCode(t, out), body)
		assert.Equal(t, float64(11), out["id"], body)
	}
}

func TestDispatcher_VersionOmitted_ToolsList(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	out := roundTrip(t, d, `{"method":"tools/list","id":1}`)

	assert.Equal(t, float64(1), out["id"])
	result, ok := out["result"].(map[string]any)
	require.True(t, ok, "expected result envelope, got %v", out)
	listed := result["tools"].([]any)
	require.Len(t, listed, 2)
	assert.Equal(t, "validate", listed[0].(map[string]any)["name"])
	assert.Equal(t, "getNews", listed[1].(map[string]any)["name"])
}

func TestDispatcher_VersionOmitted_ValidateWrongToken(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	out := roundTrip(t, d, `{"method":"tools/call","id":7,"params":{"name":"validate","arguments":{"token":"wrong"}}}`)

	assert.Equal(t, float64(7), out["id"])
	text, isError := toolText(t, out)
	assert.True(t, isError)
	assert.NotContains(t, text, testPhone)
}

func TestDispatcher_VersionNull(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	out := roundTrip(t, d, `{"jsonrpc":null,"id":3,"method":"initialize"}`)
	_, hasResult := out["result"]
	assert.True(t, hasResult)
}

func TestDispatcher_ParseError(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	for _, body := range []string{``, `{`, `not json`, `{"jsonrpc":"2.0",}`} {
		out := roundTrip(t, d, body)
		assert.Equal(t, JSONRPCParseError, errorCode(t, out), body)
		assert.Nil(t, out["id"], body)
	}
}

func TestDispatcher_ValidJSONNotARequest(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	for _, body := range []string{`[]`, `42`, `"tools/list"`, `{"jsonrpc":"2.0","method":7}`} {
		out := roundTrip(t, d, body)
		assert.Equal(t, JSONRPCInvalidRequest, errorCode(t, out), body)
	}
}

func TestDispatcher_NotificationStillAnswered(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	out := roundTrip(t, d, `{"jsonrpc":"2.0","method":"tools/list"}`)

	id, present := out["id"]
	assert.True(t, present)
	assert.Nil(t, id)
	assert.Contains(t, out, "result")
}

func TestDispatcher_InvalidParams(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	out := roundTrip(t, d, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":"validate"}`)
	assert.Equal(t, JSONRPCInvalidParams, errorCode(t, out))

	out = roundTrip(t, d, `{"jsonrpc":"2.0","id":1,"method":"tools/call"}`)
	assert.Equal(t, JSONRPCInvalidParams, errorCode(t, out))
	assert.Equal(t, map[string]any{"tool": ""}, out["error"].(map[string]any)["data"])
}

func TestDispatcher_ToolPanicRecovered(t *testing.T) {
	boom := &tools.Tool{
		Descriptor: tools.Descriptor{Name: "boom"},
		Handler: func(context.Context, json.RawMessage) (*tools.Result, error) {
			panic("secret internal state at 0xdeadbeef")
		},
	}
	d, rec, _ := newTestDispatcher(t, boom)

	out := roundTrip(t, d, `{"jsonrpc":"2.0","id":13,"method":"tools/call","params":{"name":"boom"}}`)

	assert.Equal(t, JSONRPCInternalError, errorCode(t, out))
	e := out["error"].(map[string]any)
	assert.Equal(t, "Internal error", e["message"])
	details := e["data"].(map[string]any)["details"].(string)
	assert.NotEmpty(t, details)
	assert.NotContains(t, details, "0xdeadbeef")
	assert.NotContains(t, details, "goroutine")
	assert.Equal(t, float64(13), out["id"])

	require.Len(t, rec.calls, 1)
	assert.True(t, rec.calls[0].IsError)
}

func TestDispatcher_ToolErrorIsInternalError(t *testing.T) {
	failing := &tools.Tool{
		Descriptor: tools.Descriptor{Name: "failing"},
		Handler: func(context.Context, json.RawMessage) (*tools.Result, error) {
			return nil, errors.New("upstream exploded")
		},
	}
	d, _, _ := newTestDispatcher(t, failing)

	out := roundTrip(t, d, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"failing"}}`)

	assert.Equal(t, JSONRPCInternalError, errorCode(t, out))
	assert.Equal(t, "upstream exploded", out["error"].(map[string]any)["data"].(map[string]any)["details"])
}

func TestDispatcher_RecorderFailureDoesNotAffectResponse(t *testing.T) {
	d, rec, _ := newTestDispatcher(t)
	rec.err = errors.New("disk full")

	out := roundTrip(t, d, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"validate","arguments":{"token":"s3cret-token"}}}`)

	text, isError := toolText(t, out)
	assert.False(t, isError)
	assert.Contains(t, text, testPhone)
}

func TestDispatcher_Observer(t *testing.T) {
	d, _, obs := newTestDispatcher(t)

	roundTrip(t, d, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	roundTrip(t, d, `{"jsonrpc":"2.0","id":2,"method":"nope"}`)
	roundTrip(t, d, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"getNews"}}`)

	require.Len(t, obs.requests, 3)
	assert.Equal(t, observation{"tools/list", 0}, obs.requests[0])
	assert.Equal(t, observation{"nope", JSONRPCMethodNotFound}, obs.requests[1])
	assert.Equal(t, 1, obs.tools["getNews"])
}

func TestDispatcher_ConcurrentCalls(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := d.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"validate","arguments":{"token":"wrong"}}}`))
			assert.Nil(t, resp.Error)
		}()
	}
	wg.Wait()
}

func TestNewDispatcher_RequiresRegistry(t *testing.T) {
	_, err := NewDispatcher(DispatcherConfig{})
	assert.Error(t, err)
}
