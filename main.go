// Command tilegame serves the sliding tile merge game.
//
// It supports two modes:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Every flag can also be set from the environment or a .env file, and an
// optional ngrok tunnel exposes the server publicly during development.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tile Merge Game Server"
)

// options holds the resolved command line configuration.
type options struct {
	host        string
	port        int
	configDir   string
	sessionsDir string
	debug       bool

	ngrokEnabled bool
	ngrokAuth    string
	ngrokDomain  string
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.host, o.port)
}

func main() {
	// A missing .env file is fine.
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if envErr != nil && !os.IsNotExist(envErr) {
		fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", envErr)
	}

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "tilegame",
		Usage:     AppName,
		Version:   Version,
		ArgsUsage: "[server|stdio-mcp]",
		Description: "Modes:\n" +
			"  server, http            HTTP server with API, WebSocket and MCP endpoint (default)\n" +
			"  stdio-mcp, mcp-stdio    MCP over stdio, backed by an internal HTTP server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "sessions-dir",
				Value:   "sessions",
				Usage:   "directory where sessions are persisted",
				Sources: cli.EnvVars("SESSIONS_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "expose the server through an ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := optionsFrom(cmd)
			logger := newLogger(opts.debug)

			mode := cmd.Args().First()
			if mode == "" {
				mode = "server"
			}
			logger.Info("starting", "app", AppName, "version", Version, "mode", mode)

			switch mode {
			case "server", "http":
				svc, err := initializeServices(opts, logger)
				if err != nil {
					return fmt.Errorf("initialize services: %w", err)
				}
				return runHTTPServer(ctx, opts, svc, logger)
			case "stdio-mcp", "mcp-stdio", "mcp":
				svc, err := initializeServices(opts, logger)
				if err != nil {
					return fmt.Errorf("initialize services: %w", err)
				}
				return runStdioMCP(ctx, opts, svc, logger)
			default:
				return fmt.Errorf("unknown mode %q, use 'server' (default) or 'stdio-mcp'", mode)
			}
		},
	}
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		host:         cmd.String("host"),
		port:         int(cmd.Int("port")),
		configDir:    cmd.String("config-dir"),
		sessionsDir:  cmd.String("sessions-dir"),
		debug:        cmd.Bool("debug"),
		ngrokEnabled: cmd.Bool("ngrok"),
		ngrokAuth:    cmd.String("ngrok-auth"),
		ngrokDomain:  cmd.String("ngrok-domain"),
	}
}

// newLogger writes to stderr so stdout stays free for the MCP stdio transport.
func newLogger(debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "tilegame",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
		logger.SetReportCaller(true)
	}
	return logger
}
