// Command sokoban runs the Sokoban puzzle server.
//
// Commands:
//  1. "serve" (default): the HTTP server exposing the REST API, WebSocket
//     updates and an /mcp HTTP endpoint, optionally tunnelled through ngrok
//  2. "mcp": an MCP stdio server that spins up an internal HTTP API if none
//     is reachable
//  3. "validate": checks level files against the parser and editor rules
//  4. "play": a line-oriented terminal game
//
// Flags control host/port, level and session directories, debug logging,
// tracing and ngrok. Values may also come from the environment or a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/sokoban/game/levels"
	"github.com/wricardo/mcp-training/sokoban/game/service"
	"github.com/wricardo/mcp-training/sokoban/game/session"
	"github.com/wricardo/mcp-training/sokoban/telemetry"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Sokoban Server"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "sokoban",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "levels-dir",
				Value:   "levels",
				Usage:   "Directory containing level files",
				Sources: cli.EnvVars("LEVELS_DIR"),
			},
			&cli.StringFlag{
				Name:    "sessions-dir",
				Value:   "sessions",
				Usage:   "Directory where sessions are persisted",
				Sources: cli.EnvVars("SESSIONS_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.StringFlag{
				Name:    "trace",
				Value:   telemetry.ExporterNone,
				Usage:   "Trace exporter: none or stdout (written to stderr)",
				Sources: cli.EnvVars("TRACE_EXPORTER"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			validateCommand(),
			playCommand(),
		},
		Action: runServe,
	}
}

// newLogger builds the process logger. Logs always go to stderr so stdout
// stays free for MCP stdio and command output.
func newLogger(debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
	slog.SetDefault(logger)
	return logger
}

// services bundles everything the serving commands need
type services struct {
	game        service.GameService
	levels      *levels.Manager
	sessions    *session.Manager
	persistence session.SessionPersistence
	logger      *slog.Logger
	shutdown    telemetry.ShutdownFunc
}

// initializeServices wires the level catalogue, session store and game
// service, and installs tracing
func initializeServices(ctx context.Context, cmd *cli.Command) (*services, error) {
	logger := newLogger(cmd.Bool("debug"))

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "sokoban",
		ServiceVersion: Version,
		Exporter:       cmd.String("trace"),
	})
	if err != nil {
		return nil, err
	}

	levelManager, err := levels.NewManager(cmd.String("levels-dir"), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create level manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(cmd.String("sessions-dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence, logger)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		logger.Warn("failed to load persisted sessions", "error", err)
	}

	return &services{
		game:        service.NewGameService(sessionManager, levelManager, logger),
		levels:      levelManager,
		sessions:    sessionManager,
		persistence: persistence,
		logger:      logger,
		shutdown:    shutdown,
	}, nil
}

// close flushes pending spans
func (s *services) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.shutdown(ctx); err != nil {
		s.logger.Warn("telemetry shutdown failed", "error", err)
	}
}
