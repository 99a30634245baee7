// ABOUTME: The calls subcommand, reading recent tool calls from the SQLite call log
// ABOUTME: Parses --limit, --tool, --errors and --since into a store filter

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/2389/news-mcp/internal/config"
	"github.com/2389/news-mcp/internal/store"
)

const defaultCallsLimit = 20

// parseCallsArgs builds a call filter from command line flags.
// Supports both "--flag value" and "--flag=value" forms.
func parseCallsArgs(args []string, now time.Time) (store.CallFilter, error) {
	filter := store.CallFilter{Limit: defaultCallsLimit}

	for i := 0; i < len(args); i++ {
		name, value, hasValue := strings.Cut(args[i], "=")

		needValue := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", name)
			}
			i++
			return args[i], nil
		}

		switch name {
		case "--limit", "-n":
			v, err := needValue()
			if err != nil {
				return filter, err
			}
			limit, err := strconv.Atoi(v)
			if err != nil || limit <= 0 {
				return filter, fmt.Errorf("--limit must be a positive integer, got %q", v)
			}
			filter.Limit = limit
		case "--tool", "-t":
			v, err := needValue()
			if err != nil {
				return filter, err
			}
			filter.Tool = &v
		case "--since":
			v, err := needValue()
			if err != nil {
				return filter, err
			}
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				return filter, fmt.Errorf("--since must be a positive duration, got %q", v)
			}
			since := now.Add(-d)
			filter.Since = &since
		case "--errors", "-e":
			if hasValue {
				return filter, fmt.Errorf("%s takes no value", name)
			}
			filter.ErrorsOnly = true
		default:
			if strings.HasPrefix(name, "-") {
				return filter, fmt.Errorf("unknown flag: %s", name)
			}
			return filter, fmt.Errorf("unexpected argument: %s", args[i])
		}
	}

	return filter, nil
}

func runCalls(ctx context.Context, args []string) error {
	filter, err := parseCallsArgs(args, time.Now().UTC())
	if err != nil {
		return err
	}

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path is not set in %s; the call log is disabled", configPath)
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	calls, err := s.ListToolCalls(ctx, filter)
	if err != nil {
		return fmt.Errorf("listing calls: %w", err)
	}

	printCalls(os.Stdout, calls)
	return nil
}

func printCalls(out io.Writer, calls []store.ToolCall) {
	cyan := color.New(color.FgCyan)
	fmt.Fprintln(out)
	cyan.Fprintln(out, "  Tool Calls")
	cyan.Fprintln(out, "  ----------")

	if len(calls) == 0 {
		fmt.Fprintln(out, "  (no calls)")
		fmt.Fprintln(out)
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  TIME\tTOOL\tRPC ID\tSTATUS\tDURATION")
	fmt.Fprintln(w, "  ----\t----\t------\t------\t--------")

	for _, c := range calls {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
			c.Timestamp.Local().Format("Jan 02 15:04:05"),
			c.Tool,
			orDash(c.RPCID),
			callStatus(c),
			c.Duration.Round(time.Millisecond),
		)
	}
	w.Flush()
	fmt.Fprintln(out)
}

func callStatus(c store.ToolCall) string {
	switch {
	case c.ErrorCode != 0:
		return fmt.Sprintf("rpc %d", c.ErrorCode)
	case c.IsError:
		return "error"
	default:
		return "ok"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
