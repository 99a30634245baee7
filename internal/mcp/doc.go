// Package mcp implements the Model Context Protocol dispatcher and its HTTP
// bindings for news-mcp.
//
// # Overview
//
// MCP (Model Context Protocol) is a JSON-RPC 2.0 convention for exposing
// callable tools to AI-agent hosts. The Dispatcher is the protocol core: it
// parses one envelope, routes it by method and shapes exactly one response.
// It knows nothing about HTTP, so every transport shares it.
//
// # Methods
//
//   - initialize: static protocol version, capabilities and serverInfo
//   - tools/list: the registry's listed tools, identical on every call
//   - tools/call: runs a tool by name with its arguments object
//
// # Error Codes
//
//	-32700  Parse error        body is not JSON (id is null)
//	-32600  Invalid Request    declared jsonrpc is not "2.0", or not a request object
//	-32601  Method not found   data.method names the method
//	-32602  Unknown tool       data.tool names the tool
//	-32603  Internal error     data.details carries a safe message
//
// A tool that runs but fails (a rejected token, an aborted fetch) is not a
// protocol error. The response is a normal result with isError set:
//
//	{
//	  "jsonrpc": "2.0",
//	  "id": 7,
//	  "result": {
//	    "content": [{"type": "text", "text": "{\"error\":\"Invalid bearer token\"}"}],
//	    "isError": true
//	  }
//	}
//
// Panics inside tool handlers are recovered and reported as -32603. Requests
// without an id are still answered, with "id": null.
//
// # HTTP Bindings
//
// Server mounts the dispatcher on:
//
//   - POST /mcp, /api/mcp, /api/mcp-v2 - one JSON-RPC message per request
//   - GET on the same paths - discovery document
//   - GET /mcp/sse, /api/mcp-sse - event stream (POST dispatches)
//
// Protocol errors are always returned with HTTP 200. Other HTTP methods get
// 405 with {"error":"Method not allowed"}.
//
// # SSE Stream
//
// A GET on an SSE path receives a server/ready notification carrying
// serverInfo, then a ping notification every keep-alive interval:
//
//	data: {"jsonrpc":"2.0","method":"server/ready","params":{"serverInfo":{...}}}
//
//	data: {"jsonrpc":"2.0","method":"ping"}
//
// The ticker stops when the client disconnects or Server.Close is called.
//
// # Usage
//
//	d, err := mcp.NewDispatcher(mcp.DispatcherConfig{Registry: registry, Logger: logger})
//	srv, err := mcp.NewServer(mcp.Config{Dispatcher: d, KeepAliveInterval: 30 * time.Second})
//	srv.RegisterRoutes(mux)
package mcp
