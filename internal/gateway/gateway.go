// ABOUTME: Gateway orchestrator that wires config into the news-mcp HTTP server
// ABOUTME: Builds the tool stack, mounts every binding and manages listener lifecycle

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/cors"
	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/2389/news-mcp/internal/auth"
	"github.com/2389/news-mcp/internal/config"
	"github.com/2389/news-mcp/internal/mcp"
	"github.com/2389/news-mcp/internal/metrics"
	"github.com/2389/news-mcp/internal/news"
	"github.com/2389/news-mcp/internal/store"
	"github.com/2389/news-mcp/internal/tools"
)

// headlineCacheSize bounds the number of cached source entries.
const headlineCacheSize = 1000

// Gateway orchestrates the news-mcp server components.
type Gateway struct {
	config     *config.Config
	httpServer *http.Server
	handler    http.Handler
	logger     *slog.Logger

	gate       *auth.Gate
	aggregator *news.Aggregator
	dispatcher *mcp.Dispatcher
	mcpServer  *mcp.Server

	// optional components, nil when disabled
	cache       *news.Cache
	store       *store.SQLiteStore
	metrics     *metrics.Metrics
	tsnetServer *tsnet.Server
}

// initStore opens the call log when database.path is set.
func initStore(cfg *config.Config) (*store.SQLiteStore, error) {
	if cfg.Database.Path == "" {
		return nil, nil
	}
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}
	return s, nil
}

// sourcesFromConfig converts configured sources into news sources.
func sourcesFromConfig(cfg *config.Config) []news.Source {
	sources := make([]news.Source, 0, len(cfg.News.Sources))
	for _, src := range cfg.News.Sources {
		sources = append(sources, news.Source{Name: src.Name, URL: src.URL, Selector: src.Selector})
	}
	return sources
}

// buildFetcher creates the scraper, wrapped in a cache when news.cache_ttl is positive.
func (g *Gateway) buildFetcher(cfg *config.Config, logger *slog.Logger) news.HeadlineFetcher {
	var observer news.FetchObserver
	if g.metrics != nil {
		observer = g.metrics
	}

	scraper := news.NewScraper(news.ScraperConfig{
		Timeout:      cfg.News.Timeout,
		UserAgent:    cfg.News.UserAgent,
		MaxHeadlines: cfg.News.MaxHeadlines,
		Logger:       logger,
		Observer:     observer,
	})
	if cfg.News.CacheTTL <= 0 {
		return scraper
	}

	g.cache = news.NewCache(cfg.News.CacheTTL, headlineCacheSize)
	return news.NewCachedFetcher(scraper, g.cache, observer)
}

// New creates a new Gateway instance with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	gw := &Gateway{
		config: cfg,
		logger: logger.With("component", "gateway"),
		store:  s,
	}
	if cfg.Metrics.Enabled {
		gw.metrics = metrics.New()
	}

	gw.gate = auth.NewGate(cfg.Auth.BearerToken)
	if !gw.gate.Configured() {
		gw.logger.Warn("no bearer token configured; validate will reject every token",
			"env", config.BearerTokenEnv,
		)
	}

	fetcher := gw.buildFetcher(cfg, logger)
	gw.aggregator = news.NewAggregator(sourcesFromConfig(cfg), fetcher, logger)

	registry, err := tools.NewDefaultRegistry(gw.gate, cfg.Auth.PhoneNumber, gw.aggregator)
	if err != nil {
		gw.closeOptionalComponents()
		return nil, fmt.Errorf("building tool registry: %w", err)
	}

	dispatcherCfg := mcp.DispatcherConfig{
		Registry:   registry,
		ServerInfo: mcp.DefaultServerInfo,
		Logger:     logger,
	}
	if gw.store != nil {
		dispatcherCfg.Recorder = gw.store
	}
	if gw.metrics != nil {
		dispatcherCfg.Observer = gw.metrics
	}
	gw.dispatcher, err = mcp.NewDispatcher(dispatcherCfg)
	if err != nil {
		gw.closeOptionalComponents()
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}

	gw.mcpServer, err = mcp.NewServer(mcp.Config{
		Dispatcher:        gw.dispatcher,
		Logger:            logger,
		KeepAliveInterval: cfg.SSE.KeepAliveInterval,
	})
	if err != nil {
		gw.closeOptionalComponents()
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	mux := http.NewServeMux()

	// Health endpoint - no auth required
	mux.HandleFunc("/health", gw.handleHealth)

	// JSON-RPC and SSE bindings
	gw.mcpServer.RegisterRoutes(mux)

	// REST bindings and discovery
	gw.registerAPIRoutes(mux)

	if gw.metrics != nil {
		mux.Handle(cfg.Metrics.Path, gw.metrics.Handler())
		gw.logger.Info("metrics enabled", "path", cfg.Metrics.Path)
	}

	gw.handler = newCORS(cfg.CORS).Handler(mux)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           gw.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	gw.logger.Info("tools registered", "count", len(registry.List()), "sources", len(cfg.News.Sources))
	return gw, nil
}

// newCORS builds the CORS middleware. Preflights answer 200 for clients
// that reject 204.
func newCORS(cfg config.CORSConfig) *cors.Cors {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:       origins,
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		MaxAge:               86400,
		OptionsSuccessStatus: http.StatusOK,
	})
}

// Handler returns the root HTTP handler with CORS applied.
func (g *Gateway) Handler() http.Handler {
	return g.handler
}

// setupTCPListener creates a standard TCP listener for HTTP.
func (g *Gateway) setupTCPListener() (net.Listener, error) {
	g.logger.Info("starting gateway", "http_addr", g.config.Server.HTTPAddr)

	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// warnIgnoredAddress logs a warning if a server address is configured but Tailscale is enabled.
func (g *Gateway) warnIgnoredAddress() {
	if g.config.Server.HTTPAddr != "" {
		g.logger.Warn("server.http_addr is ignored when tailscale is enabled",
			"http_addr", g.config.Server.HTTPAddr,
		)
	}
}

// setupListener creates the HTTP listener based on configuration (Tailscale or TCP).
func (g *Gateway) setupListener(ctx context.Context) (net.Listener, error) {
	if g.config.Tailscale.Enabled {
		g.warnIgnoredAddress()
		return g.setupTailscaleListener(ctx)
	}
	return g.setupTCPListener()
}

// startServer starts the HTTP server in a goroutine, returning an error channel.
func (g *Gateway) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		return err
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown (context canceled), or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := g.setupListener(ctx)
	if err != nil {
		g.closeOptionalComponents()
		return err
	}

	errCh := g.startServer(ln)
	serverErr := g.waitForShutdownSignal(ctx, errCh)

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "news-mcp", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable")
	}
	return authKey, nil
}

// setupTailscaleListener starts a tsnet node and listens on :80, or on :443
// through Funnel when tailscale.funnel is set.
func (g *Gateway) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := g.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	g.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	g.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := g.tsnetServer.Up(ctx)
	if err != nil {
		_ = g.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}
	g.logTailscaleStatus(tsCfg.Hostname, status)

	var ln net.Listener
	if tsCfg.Funnel {
		g.logger.Info("enabling tailscale funnel (public HTTPS) on :443")
		ln, err = g.tsnetServer.ListenFunnel("tcp", ":443")
	} else {
		ln, err = g.tsnetServer.Listen("tcp", ":80")
	}
	if err != nil {
		_ = g.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
	}
	return ln, nil
}

// logTailscaleStatus logs info about the tailscale node status.
func (g *Gateway) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		g.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	g.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// closeOptionalComponents closes optional components that may be nil.
func (g *Gateway) closeOptionalComponents() []error {
	var errs []error
	if g.mcpServer != nil {
		g.mcpServer.Close()
	}
	if g.cache != nil {
		g.cache.Close()
	}
	if g.store != nil {
		errs = appendCloseError(errs, "store close", g.store.Close())
		g.store = nil
	}
	return errs
}

// Shutdown gracefully stops the HTTP server and releases resources.
// Open SSE streams are ended first so they do not hold up the drain.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	if g.mcpServer != nil {
		g.mcpServer.Close()
	}

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))

	if g.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", g.tsnetServer.Close())
	}

	errs = append(errs, g.closeOptionalComponents()...)

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
