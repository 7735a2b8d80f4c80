// Command gridpath serves the weighted-grid pathfinding engine.
//
// Commands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket and an /mcp endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "find" generates one grid and prints a path over it
//  4. "validate" checks the scenario presets in a directory
//
// Flags control host/port, config and session directories, log level,
// and optional ngrok tunneling for external access during development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/gridpath/api"
	"github.com/wricardo/mcp-training/gridpath/game/config"
	"github.com/wricardo/mcp-training/gridpath/game/engine"
	"github.com/wricardo/mcp-training/gridpath/game/service"
	"github.com/wricardo/mcp-training/gridpath/game/session"
	"github.com/wricardo/mcp-training/gridpath/internal/log"
	"github.com/wricardo/mcp-training/gridpath/transport/mcp"
	"github.com/wricardo/mcp-training/gridpath/transport/websocket"
	"github.com/wricardo/mcp-training/gridpath/validate"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "gridpath"
)

const (
	sessionCleanupInterval = time.Hour
	sessionMaxAge          = 24 * time.Hour
	shutdownTimeout        = 10 * time.Second
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Error loading .env file: %v", err)
		}
	} else {
		log.Infof("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

// newApp builds the command tree. Root flags are visible to every subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:           AppName,
		Usage:          "weighted grid pathfinding with animated playback",
		Version:        Version,
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "directory containing scenario presets", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "directory for persisted sessions", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn, error or none", Sources: cli.EnvVars("LOG_LEVEL")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log.Default().SetLevel(log.LevelFromString(cmd.String("log-level")))
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			findCommand(),
			validateCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"server", "http"},
		Usage:   "run the HTTP server with API, WebSocket and MCP endpoint",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "frame", Value: service.DefaultFrameInterval, Usage: "playback tick interval"},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log.Infof("Starting %s v%s (mode: serve)", AppName, Version)

			hub := websocket.NewHub()
			svcs, err := initializeServices(cmd.String("config-dir"), cmd.String("sessions-dir"), hub)
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}

			return runHTTPServer(ctx, svcs, hub, serveOptions{
				addr:        fmt.Sprintf("%s:%d", cmd.String("host"), int(cmd.Int("port"))),
				frame:       cmd.Duration("frame"),
				ngrok:       cmd.Bool("ngrok"),
				ngrokAuth:   cmd.String("ngrok-auth"),
				ngrokDomain: cmd.String("ngrok-domain"),
			})
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "run an MCP stdio server backed by the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Value: "http://localhost:8080", Usage: "external API to reuse when reachable"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log.Infof("Starting %s v%s (mode: mcp)", AppName, Version)

			hub := websocket.NewHub()
			svcs, err := initializeServices(cmd.String("config-dir"), cmd.String("sessions-dir"), hub)
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			return runStdioMCP(ctx, svcs, hub, cmd.String("api"))
		},
	}
}

func findCommand() *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "generate a grid and print a path across it",
		ArgsUsage: "X,Y",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "classic", Usage: "scenario preset"},
			&cli.IntFlag{Name: "seed", Usage: "terrain seed, 0 for random"},
			&cli.StringFlag{Name: "start", Usage: "start cell as x,y (defaults to the scenario start)"},
			&cli.BoolFlag{Name: "diagonal", Usage: "allow eight-way movement"},
			&cli.StringFlag{Name: "heuristic", Usage: "manhattan or chebyshev"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected one end cell argument, got %d", cmd.Args().Len())
			}
			end, err := parsePosition(cmd.Args().First())
			if err != nil {
				return err
			}

			configs, err := config.NewManager(cmd.String("config-dir"))
			if err != nil {
				return fmt.Errorf("failed to create config manager: %w", err)
			}
			scenario, err := configs.LoadConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			if seed := int64(cmd.Int("seed")); seed != 0 {
				scenario.Seed = seed
			}

			req := engine.PathRequest{End: end}
			if s := cmd.String("start"); s != "" {
				start, err := parsePosition(s)
				if err != nil {
					return err
				}
				req.Start = &start
			}
			if cmd.IsSet("diagonal") || cmd.IsSet("heuristic") {
				opts := scenario.SearchOptions()
				if cmd.IsSet("diagonal") {
					opts.Diagonal = cmd.Bool("diagonal")
				}
				if cmd.IsSet("heuristic") {
					opts.Heuristic = engine.Heuristic(cmd.String("heuristic"))
				}
				req.Options = &opts
			}

			return findPath(ctx, os.Stdout, scenario, req)
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check scenario presets",
		ArgsUsage: "[DIR]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.String("config-dir")
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}
			return runValidate(os.Stdout, dir)
		},
	}
}

// services bundles the components shared by the HTTP and MCP modes
type services struct {
	path     service.PathService
	sessions *session.Manager
}

// initializeServices wires session/config managers and the path service.
func initializeServices(configDir, sessionsDir string, events service.EventPublisher) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(sessionsDir, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Warnf("Failed to load persisted sessions: %v", err)
	}

	var opts []service.Option
	if events != nil {
		opts = append(opts, service.WithEvents(events))
	}

	return &services{
		path:     service.NewPathService(sessionManager, configManager, opts...),
		sessions: sessionManager,
	}, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				log.Infof("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

type serveOptions struct {
	addr        string
	frame       time.Duration
	ngrok       bool
	ngrokAuth   string
	ngrokDomain string
}

// newRouter mounts the API at the root and the MCP message endpoint at /mcp
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	router := http.NewServeMux()
	router.Handle("/", apiServer)
	router.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Errorf("Failed to encode MCP response: %v", err)
		}
	})
	return router
}

// runHTTPServer serves until ctx is cancelled, then shuts down and persists sessions.
// If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, svcs *services, hub *websocket.Hub, opts serveOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	background := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	background(func() { hub.Run(ctx) })
	background(func() { service.NewAnimator(svcs.path, opts.frame).Run(ctx) })
	background(func() { sessionCleanupRoutine(ctx, svcs.sessions) })

	router := newRouter(api.NewServer(svcs.path, hub), mcp.NewClient("http://"+opts.addr))
	httpServer := &http.Server{
		Addr:         opts.addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s", opts.addr)
		log.Infof("REST API: http://%s/api", opts.addr)
		log.Infof("WebSocket: ws://%s/ws?session=<session_id>", opts.addr)
		log.Infof("MCP endpoint: http://%s/mcp", opts.addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	if opts.ngrok {
		background(func() { runNgrokTunnel(ctx, router, opts.ngrokAuth, opts.ngrokDomain) })
	}

	var err error
	select {
	case <-ctx.Done():
		log.Infof("Shutting down...")
	case err = <-serveErr:
		if err != nil {
			err = fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warnf("HTTP server shutdown error: %v", shutdownErr)
	}

	wg.Wait()

	if saveErr := svcs.sessions.SaveAllSessions(); saveErr != nil {
		log.Warnf("Failed to persist sessions: %v", saveErr)
	}
	log.Infof("Server stopped")
	return err
}

// runNgrokTunnel exposes handler through an ngrok endpoint until ctx is cancelled
func runNgrokTunnel(ctx context.Context, handler http.Handler, authToken, domain string) {
	if authToken == "" {
		log.Warnf("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	log.Infof("Starting ngrok tunnel...")

	tunnel := ngrokConfig.HTTPEndpoint()
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Infof("Using custom ngrok domain: %s", domain)
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Errorf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warnf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	url := tun.URL()
	log.Infof("Ngrok tunnel established: %s", url)
	log.Infof("  REST API (ngrok): %s/api", url)
	log.Infof("  WebSocket (ngrok): %s/ws?session=<session_id>", url)
	log.Infof("  MCP endpoint (ngrok): %s/mcp", url)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Errorf("Ngrok server error: %v", err)
	}
	log.Infof("Ngrok tunnel closed")
}

// apiReachable reports whether an API answers at baseURL
func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses an external API at
// externalURL when one answers; otherwise it starts an internal HTTP API on a
// random loopback port and targets that.
func runStdioMCP(ctx context.Context, svcs *services, hub *websocket.Hub, externalURL string) error {
	baseURL := strings.TrimRight(externalURL, "/")
	log.Infof("Checking for external API server at %s...", baseURL)

	if apiReachable(ctx, baseURL) {
		log.Infof("External API server found at %s, using it for MCP", baseURL)
	} else {
		log.Infof("No external API server found, starting internal HTTP server")

		internalURL, stop, err := startInternalAPI(ctx, svcs, hub)
		if err != nil {
			return err
		}
		defer stop()
		baseURL = internalURL

		log.Infof("Internal HTTP server listening on %s", baseURL)
	}

	log.Infof("MCP stdio server ready (API at %s)", baseURL)
	if err := server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// startInternalAPI serves the REST API on a random loopback port together
// with the hub and the animator. stop halts all of them before persisting
// sessions, so no tick races the save.
func startInternalAPI(ctx context.Context, svcs *services, hub *websocket.Hub) (string, func(), error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	background := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	background(func() { hub.Run(ctx) })
	background(func() { service.NewAnimator(svcs.path, service.DefaultFrameInterval).Run(ctx) })

	httpServer := &http.Server{Handler: api.NewServer(svcs.path, hub)}
	background(func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Errorf("Internal HTTP server error: %v", err)
		}
	})

	stop := func() {
		cancel()
		httpServer.Close()
		wg.Wait()
		if err := svcs.sessions.SaveAllSessions(); err != nil {
			log.Warnf("Failed to persist sessions: %v", err)
		}
	}
	return "http://" + listener.Addr().String(), stop, nil
}

// findPath runs a single path request on a fresh engine and prints the result
func findPath(ctx context.Context, w io.Writer, scenario *engine.ScenarioConfig, req engine.PathRequest) error {
	eng, err := engine.NewEngine(scenario)
	if err != nil {
		return err
	}

	outcome, err := eng.RequestPath(ctx, req)
	if err != nil {
		return err
	}

	state := eng.GetState()
	fmt.Fprintf(w, "Scenario: %s | %dx%d | Seed: %d\n", scenario.Name, state.Width, state.Height, state.Seed)

	record := outcome.Record
	if !outcome.Result.Found() {
		fmt.Fprintf(w, "No path from %s to %s (%d nodes expanded)\n", record.Start, record.End, outcome.Result.Expanded)
		fmt.Fprint(w, engine.RenderASCII(eng.GetGrid(), scenario.Weights, nil, nil))
		return nil
	}

	// Settles the anchor on the end cell
	eng.Drain(0)

	anchor := eng.GetAnchor()
	fmt.Fprintf(w, "Path %s -> %s: %d cells, cost %d, %d nodes expanded\n",
		record.Start, record.End, len(outcome.Result.Steps), outcome.Result.Cost, outcome.Result.Expanded)
	fmt.Fprint(w, engine.RenderASCII(eng.GetGrid(), scenario.Weights, engine.StepPositions(outcome.Result.Steps), &anchor))
	return nil
}

// runValidate prints a report for every preset and fails when any is invalid
func runValidate(w io.Writer, dir string) error {
	results, err := validate.Dir(dir)
	if err != nil {
		return err
	}

	for _, r := range results {
		status := "OK"
		if !r.Valid {
			status = "INVALID"
		}
		fmt.Fprintf(w, "%-8s %s", status, r.File)
		if r.Stats != nil {
			fmt.Fprintf(w, " (seed %d, %d/%d traversable, %d reachable)",
				r.Stats.Seed, r.Stats.Traversable, r.Stats.Cells, r.Stats.Reachable)
		}
		fmt.Fprintln(w)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  error: %s\n", e)
		}
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warning)
		}
	}

	valid, invalid := validate.Summary(results)
	fmt.Fprintf(w, "%d valid, %d invalid\n", valid, invalid)
	if invalid > 0 {
		return fmt.Errorf("%d invalid presets in %s", invalid, dir)
	}
	return nil
}

// parsePosition parses "x,y" into a Position
func parsePosition(s string) (engine.Position, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return engine.Position{}, fmt.Errorf("invalid position %q: expected x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return engine.Position{}, fmt.Errorf("invalid position %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return engine.Position{}, fmt.Errorf("invalid position %q: %w", s, err)
	}
	return engine.Position{X: x, Y: y}, nil
}
