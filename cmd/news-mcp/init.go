// ABOUTME: The init subcommand, writing a config file from interactive prompts
// ABOUTME: The bearer secret stays in the environment and is referenced, never written

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/2389/news-mcp/internal/config"
)

// initAnswers holds the values collected by runInit.
type initAnswers struct {
	HTTPAddr      string
	PhoneNumber   string
	DatabasePath  string
	CacheTTL      string
	Tailscale     bool
	TSHostname    string
	TSFunnel      bool
	LogLevel      string
	LogFormat     string
	EnableMetrics bool
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("news-mcp configuration setup")
	fmt.Println("============================")
	fmt.Println()

	outputFile := prompt(reader, "Config file path", getConfigPath())

	if _, err := os.Stat(outputFile); err == nil {
		if !yes(prompt(reader, "File exists. Overwrite?", "no")) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	var a initAnswers

	fmt.Println("\n--- Server Configuration ---")
	a.HTTPAddr = prompt(reader, "HTTP address", config.DefaultHTTPAddr)
	a.PhoneNumber = prompt(reader, "Phone number returned by validate", config.DefaultPhoneNumber)

	fmt.Println("\n--- News Configuration ---")
	a.CacheTTL = prompt(reader, "Headline cache TTL (0s disables)", config.DefaultCacheTTL.String())

	fmt.Println("\n--- Call Log ---")
	a.DatabasePath = prompt(reader, "SQLite database path (empty disables)", filepath.Join(getDataPath(), "calls.db"))

	fmt.Println("\n--- Tailscale Configuration ---")
	a.Tailscale = yes(prompt(reader, "Enable Tailscale?", "no"))
	if a.Tailscale {
		a.TSHostname = prompt(reader, "Tailscale hostname", "news-mcp")
		a.TSFunnel = yes(prompt(reader, "Enable Funnel (public HTTPS)?", "no"))
	}

	fmt.Println("\n--- Logging and Metrics ---")
	a.LogLevel = prompt(reader, "Log level (debug/info/warn/error)", "info")
	a.LogFormat = prompt(reader, "Log format (text/json)", "text")
	a.EnableMetrics = yes(prompt(reader, "Expose Prometheus metrics?", "yes"))

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(outputFile, []byte(renderConfig(a)), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  export %s=<secret>\n", config.BearerTokenEnv)
	fmt.Println("  news-mcp serve")

	return nil
}

// renderConfig produces the YAML config file for the collected answers.
func renderConfig(a initAnswers) string {
	var cfg strings.Builder
	cfg.WriteString("# news-mcp configuration\n")
	cfg.WriteString("# Generated by news-mcp init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n", a.HTTPAddr))
	cfg.WriteString("  debug_endpoint: false\n\n")

	cfg.WriteString("auth:\n")
	cfg.WriteString(fmt.Sprintf("  bearer_token: \"${%s}\"\n", config.BearerTokenEnv))
	cfg.WriteString(fmt.Sprintf("  phone_number: %q\n\n", a.PhoneNumber))

	cfg.WriteString("news:\n")
	cfg.WriteString(fmt.Sprintf("  timeout: %q\n", config.DefaultNewsTimeout.String()))
	cfg.WriteString(fmt.Sprintf("  cache_ttl: %q\n", a.CacheTTL))
	cfg.WriteString(fmt.Sprintf("  max_headlines: %d\n", config.DefaultMaxHeadlines))
	cfg.WriteString("  sources:\n")
	for _, src := range config.DefaultSources() {
		cfg.WriteString(fmt.Sprintf("    - name: %q\n", src.Name))
		cfg.WriteString(fmt.Sprintf("      url: %q\n", src.URL))
		cfg.WriteString(fmt.Sprintf("      selector: %q\n", src.Selector))
	}
	cfg.WriteString("\n")

	cfg.WriteString("sse:\n")
	cfg.WriteString(fmt.Sprintf("  keepalive_interval: %q\n\n", config.DefaultKeepAliveInterval.String()))

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: %q\n\n", a.DatabasePath))

	cfg.WriteString("tailscale:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", a.Tailscale))
	if a.Tailscale {
		cfg.WriteString(fmt.Sprintf("  hostname: %q\n", a.TSHostname))
		cfg.WriteString(fmt.Sprintf("  funnel: %t\n", a.TSFunnel))
	}
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", a.LogLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n\n", a.LogFormat))

	cfg.WriteString("metrics:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", a.EnableMetrics))
	cfg.WriteString(fmt.Sprintf("  path: %q\n", config.DefaultMetricsPath))

	return cfg.String()
}

func yes(s string) bool {
	s = strings.ToLower(s)
	return s == "yes" || s == "y"
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	return promptTo(os.Stdout, reader, question, defaultVal)
}

func promptTo(out io.Writer, reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		// On EOF or error, return default
		fmt.Fprintln(out)
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
