package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/tilegame/api"
	"github.com/wricardo/mcp-training/tilegame/transport/mcp"
	"github.com/wricardo/mcp-training/tilegame/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"
)

// newRouter mounts the REST API at / and the MCP tools at POST /mcp. The MCP
// tools call back into the API at baseURL.
func newRouter(apiServer *api.Server, baseURL string, logger *log.Logger) *mux.Router {
	mcpClient := mcp.NewClient(baseURL)

	router := mux.NewRouter()
	router.HandleFunc("/mcp", mcpHandler(mcpClient, logger)).Methods("POST")
	router.PathPrefix("/").Handler(apiServer)
	return router
}

func mcpHandler(client *mcp.Client, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no reply.
			w.WriteHeader(http.StatusAccepted)
			return
		}

		data, err := json.Marshal(response)
		if err != nil {
			logger.Error("failed to marshal MCP response", "err", err)
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

// runHTTPServer serves the API, WebSocket hub and /mcp endpoint until ctx is
// cancelled, then shuts everything down and flushes sessions to disk.
func runHTTPServer(ctx context.Context, opts options, svcs *services, logger *log.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	hub := websocket.NewHub(websocket.WithLogger(logger.WithPrefix("ws")))
	g.Go(func() error { return hub.Run(ctx) })

	addr := opts.addr()
	apiServer := api.NewServer(svcs.game, hub, api.WithLogger(logger.WithPrefix("api")))
	router := newRouter(apiServer, "http://"+addr, logger)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", addr)
		logger.Info("endpoints",
			"api", "http://"+addr+"/api",
			"ws", "ws://"+addr+"/ws?session=<session_id>",
			"mcp", "http://"+addr+"/mcp")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP server shutdown error", "err", err)
		}
		return nil
	})

	if opts.ngrokEnabled {
		g.Go(func() error {
			return runNgrok(ctx, opts, router, logger.WithPrefix("ngrok"))
		})
	}

	svcs.startMaintenance(ctx, g)

	err := g.Wait()
	svcs.flush()
	logger.Info("server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel. A missing token or a
// failed tunnel is logged and does not stop the local server.
func runNgrok(ctx context.Context, opts options, handler http.Handler, logger *log.Logger) error {
	if opts.ngrokAuth == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return nil
	}

	var endpointOpts []ngrokConfig.HTTPEndpointOption
	if opts.ngrokDomain != "" {
		endpointOpts = append(endpointOpts, ngrokConfig.WithDomain(opts.ngrokDomain))
		logger.Info("using custom domain", "domain", opts.ngrokDomain)
	}

	tun, err := ngrok.Listen(ctx,
		ngrokConfig.HTTPEndpoint(endpointOpts...),
		ngrok.WithAuthtoken(opts.ngrokAuth),
	)
	if err != nil {
		logger.Error("failed to start tunnel", "err", err)
		return nil
	}

	url := tun.URL()
	logger.Info("tunnel established", "url", url)
	logger.Info("public endpoints",
		"api", url+"/api",
		"ws", url+"/ws?session=<session_id>",
		"mcp", url+"/mcp")

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close tunnel", "err", err)
		}
	}()

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		logger.Error("tunnel server error", "err", err)
	}
	logger.Info("tunnel closed")
	return nil
}

// runStdioMCP serves the MCP tools over stdin and stdout. It reuses an API
// already listening on the configured address, otherwise it starts an
// internal one on a random loopback port.
func runStdioMCP(ctx context.Context, opts options, svcs *services, logger *log.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	baseURL := "http://" + opts.addr()
	if !apiAvailable(ctx, baseURL) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()
		logger.Info("no external API found, starting internal HTTP server", "addr", listener.Addr().String())

		hub := websocket.NewHub(websocket.WithLogger(logger.WithPrefix("ws")))
		g.Go(func() error { return hub.Run(ctx) })

		httpServer := &http.Server{Handler: api.NewServer(svcs.game, hub, api.WithLogger(logger.WithPrefix("api")))}
		g.Go(func() error {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("internal HTTP server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return httpServer.Close()
		})

		svcs.startMaintenance(ctx, g)
		defer svcs.flush()
	} else {
		logger.Info("using external API server", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready", "api", baseURL)

	// ServeStdio returns on EOF or signal and has no context of its own.
	stdioErr := mcpClient.ServeStdio()
	if stdioErr != nil {
		stdioErr = fmt.Errorf("MCP stdio server: %w", stdioErr)
	}

	// Stop the internal server once stdio is done.
	cancel()
	if err := g.Wait(); err != nil && stdioErr == nil {
		return err
	}
	return stdioErr
}

func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
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
