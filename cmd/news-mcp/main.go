// ABOUTME: Entry point for the news-mcp server
// ABOUTME: Dispatches serve, init, health and calls subcommands

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/news-mcp/internal/config"
	"github.com/2389/news-mcp/internal/gateway"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
  _ __   _____      _____       _ __ ___   ___ _ __
 | '_ \ / _ \ \ /\ / / __|_____| '_ ' _ \ / __| '_ \
 | | | |  __/\ V  V /\__ \_____| | | | | | (__| |_) |
 |_| |_|\___| \_/\_/ |___/     |_| |_| |_|\___| .__/
                                              |_|
`

// getConfigPath returns the path to the config file.
// Priority: NEWS_MCP_CONFIG env var > XDG_CONFIG_HOME/news-mcp/config.yaml > ~/.config/news-mcp/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("NEWS_MCP_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "news-mcp", "config.yaml")
}

// getDataPath returns the news-mcp data directory.
// Priority: XDG_DATA_HOME/news-mcp > ~/.local/share/news-mcp
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "news-mcp")
}

func usage() {
	fmt.Println("Usage: news-mcp <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                  Start the MCP server")
	fmt.Println("  init                   Create a new config file interactively")
	fmt.Println("  health                 Check server health")
	fmt.Println("  calls [flags]          Show recent tool calls from the call log")
	fmt.Println("        --limit N        number of calls (default 20)")
	fmt.Println("        --tool NAME      only calls to NAME")
	fmt.Println("        --errors         only failed calls")
	fmt.Println("        --since DUR      only calls newer than DUR (e.g. 1h)")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	case "calls":
		err = runCalls(ctx, os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Funnel {
			yellow.Print(" [funnel]")
		}
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	} else {
		green.Print("    ▶ ")
		fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	}
	green.Print("    ▶ ")
	fmt.Printf("Sources:   %d\n", len(cfg.News.Sources))
	if cfg.Database.Path != "" {
		green.Print("    ▶ ")
		fmt.Printf("Call log:  %s\n", cfg.Database.Path)
	}
	if cfg.Auth.BearerToken == "" {
		yellow.Print("    ! ")
		fmt.Printf("No bearer token set (%s); validate will fail\n", config.BearerTokenEnv)
	}
	fmt.Println()

	logger.Info("starting news-mcp",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"tailscale", cfg.Tailscale.Enabled,
	)

	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

// healthURL returns the local health endpoint. A tailscale-only server has
// no local address to probe.
func healthURL(cfg *config.Config) (string, error) {
	if cfg.Tailscale.Enabled {
		scheme := "http"
		if cfg.Tailscale.Funnel {
			scheme = "https"
		}
		return "", fmt.Errorf("tailscale is enabled and the server has no local address; check %s://%s/health from the tailnet instead", scheme, cfg.Tailscale.Hostname)
	}
	if cfg.Server.HTTPAddr == "" {
		return "", fmt.Errorf("server.http_addr is not set")
	}
	return fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr), nil
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url, err := healthURL(cfg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
