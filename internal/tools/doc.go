// Package tools defines the tools news-mcp exposes over MCP.
//
// A Registry is built once at startup and never changes. Two tools are
// listed by tools/list:
//
//   - validate: checks a bearer token against the configured secret and
//     returns {"phone": "..."} on success
//   - getNews: returns {"news": {"<source>": [...]}} as indented JSON text
//
// get_latest_news is registered as an alias. It renders the same headlines
// as a short markdown digest and does not appear in tools/list.
//
// Handlers report application failures (a rejected token, an aborted fetch,
// arguments that are not an object) as a Result with IsError set. A non-nil
// error from a handler means something unexpected went wrong and is mapped
// to an internal error by the dispatcher.
package tools
