// Package config handles configuration loading for news-mcp.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file with environment variable
// expansion. The package fills in defaults and validates the result.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from NEWS_MCP_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/news-mcp/config.yaml
//  3. ~/.config/news-mcp/config.yaml
//
// Files ending in .toml are decoded with BurntSushi/toml; anything else is YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  bearer_token: "${MCP_BEARER_TOKEN}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string. When
// auth.bearer_token ends up empty, MCP_BEARER_TOKEN is read directly.
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:3000"
//	  debug_endpoint: false   # expose /api/mcp-debug
//
// Authentication:
//
//	auth:
//	  bearer_token: "${MCP_BEARER_TOKEN}"   # empty means validate never succeeds
//	  phone_number: "919901470297"          # identity returned on success (default)
//
// Headline sources:
//
//	news:
//	  timeout: "10s"
//	  cache_ttl: "5m"      # "0s" disables caching
//	  max_headlines: 5
//	  sources:
//	    - name: "BBC"
//	      url: "https://www.bbc.com/news"
//	      selector: "h3"
//
// Server-sent events:
//
//	sse:
//	  keepalive_interval: "30s"
//
// Call log (SQLite):
//
//	database:
//	  path: "/var/lib/news-mcp/calls.db"   # empty disables the call log
//
// Tailscale, logging and metrics:
//
//	tailscale:
//	  enabled: false
//	  hostname: "news-mcp"
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//	metrics:
//	  enabled: true
//	  path: "/metrics"   # must not be a built-in route such as /health or /mcp
//
// # Usage
//
//	cfg, err := config.Load("/etc/news-mcp/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
