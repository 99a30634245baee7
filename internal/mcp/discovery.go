// ABOUTME: Discovery document served on GET by the root and JSON-RPC endpoints
// ABOUTME: Lists server identity, protocol and the available endpoint paths

package mcp

// Discovery describes the server to clients probing it with GET.
type Discovery struct {
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	Description  string    `json:"description"`
	Protocol     string    `json:"protocol"`
	Capabilities []string  `json:"capabilities"`
	Endpoints    Endpoints `json:"endpoints"`
	Status       string    `json:"status"`
	Instructions string    `json:"instructions"`
}

// Endpoints lists the paths served by news-mcp.
type Endpoints struct {
	Primary  string `json:"primary"`
	Root     string `json:"root"`
	SSE      string `json:"sse"`
	Validate string `json:"validate"`
	News     string `json:"news"`
}

// Endpoint paths.
const (
	PathRPC      = "/mcp"
	PathAPIRPC   = "/api/mcp"
	PathRPCv2    = "/api/mcp-v2"
	PathSSE      = "/mcp/sse"
	PathAPISSE   = "/api/mcp-sse"
	PathIndex    = "/api/index"
	PathValidate = "/api/validate"
	PathNews     = "/api/getNews"
)

// NewDiscovery builds the discovery document for info.
func NewDiscovery(info ServerInfo) Discovery {
	return Discovery{
		Name:         info.Name,
		Version:      info.Version,
		Description:  info.Description,
		Protocol:     "mcp/1.0",
		Capabilities: []string{"tools"},
		Endpoints: Endpoints{
			Primary:  PathAPIRPC,
			Root:     PathIndex,
			SSE:      PathAPISSE,
			Validate: PathValidate,
			News:     PathNews,
		},
		Status:       "ready",
		Instructions: "Use " + PathAPIRPC + " as the primary MCP endpoint",
	}
}
