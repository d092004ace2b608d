package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/sokoban/api"
	"github.com/wricardo/mcp-training/sokoban/game/session"
	"github.com/wricardo/mcp-training/sokoban/transport/mcp"
	"github.com/wricardo/mcp-training/sokoban/transport/websocket"
)

const (
	shutdownTimeout    = 10 * time.Second
	sessionMaxAge      = 24 * time.Hour
	cleanupInterval    = time.Hour
	fsSyncInterval     = 5 * time.Second
	externalProbeDelay = 2 * time.Second
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP server with REST API, WebSocket and MCP endpoint (default)",
		Action: runServe,
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "Run an MCP stdio server backed by the HTTP API",
		Action:  runStdioMCP,
	}
}

// newRouter mounts the API server and the /mcp endpoint
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
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
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return mainRouter
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp
// proxy endpoint. If ngrok is enabled it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	svc, err := initializeServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.close()
	logger := svc.logger

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	apiServer := api.NewServer(svc.game, hub, logger)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr), logger)
	mainRouter := newRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening", "addr", addr,
			"api", fmt.Sprintf("http://%s/api", addr),
			"websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp", fmt.Sprintf("http://%s/mcp", addr))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	go sessionCleanupRoutine(ctx, svc.sessions, logger)
	go filesystemSyncRoutine(ctx, svc.sessions, svc.persistence, logger)
	go func() {
		if err := svc.levels.Watch(ctx); err != nil {
			logger.Warn("level watcher stopped", "error", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd, mainRouter, logger)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errCh:
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := svc.sessions.SaveAllSessions(); err != nil {
		logger.Warn("failed to save sessions on shutdown", "error", err)
	}

	wg.Wait()
	logger.Info("server stopped")
	return runErr
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, cmd *cli.Command, handler http.Handler, logger *slog.Logger) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	logger.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", "error", err)
		return
	}

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established", "url", ngrokURL,
		"api", ngrokURL+"/api",
		"websocket", ngrokURL+"/ws?session=<session_id>",
		"mcp", ngrokURL+"/mcp")

	srv := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("ngrok server error", "error", err)
	}
	logger.Info("ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within sessionMaxAge
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, logger *slog.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				logger.Info("cleaned up expired sessions", "removed", removed)
			}
		}
	}
}

// filesystemSyncRoutine drops sessions from memory when their files were
// deleted from the sessions directory
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, logger *slog.Logger) {
	if persistence == nil {
		return
	}
	ticker := time.NewTicker(fsSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneOrphanedSessions(manager, persistence, logger)
		}
	}
}

func pruneOrphanedSessions(manager *session.Manager, persistence session.SessionPersistence, logger *slog.Logger) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			logger.Info("pruned session from memory (file deleted)", "session_id", sess.ID)
		}
	}
	return pruned
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening
// on --host/--port; otherwise it starts an internal HTTP API on a random
// loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	svc, err := initializeServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.close()
	logger := svc.logger

	externalURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), cmd.Int("port"))
	baseURL := externalURL

	probe := &http.Client{Timeout: externalProbeDelay}
	resp, err := probe.Get(externalURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		logger.Info("external API server found, using it for MCP", "url", externalURL)
	} else {
		logger.Info("no external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())

		hub := websocket.NewHub(logger)
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(svc.game, hub, logger)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", "error", err)
			}
		}()
		defer httpServer.Close()

		logger.Info("internal HTTP server started", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL, logger)
	logger.Info("MCP stdio server ready", "api", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
