package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/geonosis/console/internal/config"
	"github.com/geonosis/console/internal/devapi"
	"github.com/geonosis/console/internal/web"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(cfg *config.Config, apiURL *string, stdout io.Writer) *cobra.Command {
	var (
		addr        string
		withDevAPI  bool
		devAPIAddr  string
		sqlitePath  string
		corsOrigins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Geonosis web console.",
		Long: strings.TrimSpace(`Runs the server-rendered web console. With --with-dev-api a local
sqlite-backed API is started alongside it and the console talks to it
unless a backend URL is configured.`),
		Example: strings.TrimSpace(`geonosis serve
geonosis serve --addr 0.0.0.0:3000
geonosis serve --with-dev-api --sqlite-path /tmp/geonosis.db
API_URL_INTERNAL=http://backend:8000 PUBLIC_API_URL=https://api.example.com geonosis serve`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Web.Addr
			}
			if !cmd.Flags().Changed("dev-api-addr") {
				devAPIAddr = cfg.DevAPI.Addr
			}
			if !cmd.Flags().Changed("sqlite-path") {
				sqlitePath = cfg.DevAPI.SQLitePath
			}
			if !cmd.Flags().Changed("cors-origins") {
				corsOrigins = cfg.DevAPI.CORSOrigins
			}
			if strings.TrimSpace(addr) == "" {
				return wrapCLIError(http.StatusBadRequest, "--addr cannot be empty")
			}

			logger := newLogger(cfg.LogLevel, stdout)
			internalURL := firstNonEmpty(strings.TrimSpace(*apiURL), cfg.API.InternalURL)
			var servers []*http.Server

			if withDevAPI {
				if strings.TrimSpace(devAPIAddr) == "" {
					return wrapCLIError(http.StatusBadRequest, "--dev-api-addr cannot be empty")
				}
				app, err := devapi.New(devapi.Options{SQLitePath: sqlitePath, CORSOrigins: corsOrigins, Logger: logger})
				if err != nil {
					return fmt.Errorf("init dev api failed: %w", err)
				}
				defer func() {
					if closeErr := app.Close(); closeErr != nil {
						logger.Error("close dev api failed", "error", closeErr)
					}
				}()
				servers = append(servers, newHTTPServer(devAPIAddr, app.Handler()))
				if internalURL == "" {
					internalURL = "http://" + dialAddr(devAPIAddr)
				}
			}

			console, err := web.New(web.Options{
				InternalAPIURL: internalURL,
				PublicAPIURL:   cfg.API.PublicURL,
				SessionKey:     []byte(cfg.Web.SessionKey),
				Logger:         logger,
			})
			if err != nil {
				return fmt.Errorf("init web console failed: %w", err)
			}
			servers = append(servers, newHTTPServer(addr, console.Handler()))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServers(ctx, logger, servers...)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", cfg.Web.Addr, "web console listen address")
	cmd.Flags().BoolVar(&withDevAPI, "with-dev-api", false, "also run the sqlite-backed dev API")
	cmd.Flags().StringVar(&devAPIAddr, "dev-api-addr", cfg.DevAPI.Addr, "dev API listen address")
	cmd.Flags().StringVar(&sqlitePath, "sqlite-path", cfg.DevAPI.SQLitePath, "dev API sqlite database path")
	cmd.Flags().StringSliceVar(&corsOrigins, "cors-origins", cfg.DevAPI.CORSOrigins, "origins allowed to call the dev API")
	return cmd
}

func newDevAPICommand(cfg *config.Config, stdout io.Writer) *cobra.Command {
	var (
		addr        string
		sqlitePath  string
		corsOrigins []string
	)

	cmd := &cobra.Command{
		Use:   "dev-api",
		Short: "Start the local Geonosis API stand-in.",
		Long:  "Runs the projects and features API over a sqlite database for local development.",
		Example: strings.TrimSpace(`geonosis dev-api
geonosis dev-api --addr 127.0.0.1:8000 --sqlite-path /tmp/geonosis.db
geonosis dev-api --cors-origins http://localhost:3000,https://console.example.com`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = cfg.DevAPI.Addr
			}
			if !cmd.Flags().Changed("sqlite-path") {
				sqlitePath = cfg.DevAPI.SQLitePath
			}
			if !cmd.Flags().Changed("cors-origins") {
				corsOrigins = cfg.DevAPI.CORSOrigins
			}
			if strings.TrimSpace(addr) == "" {
				return wrapCLIError(http.StatusBadRequest, "--addr cannot be empty")
			}
			if strings.TrimSpace(sqlitePath) == "" {
				return wrapCLIError(http.StatusBadRequest, "--sqlite-path cannot be empty")
			}

			logger := newLogger(cfg.LogLevel, stdout)
			app, err := devapi.New(devapi.Options{SQLitePath: sqlitePath, CORSOrigins: corsOrigins, Logger: logger})
			if err != nil {
				return fmt.Errorf("init dev api failed: %w", err)
			}
			defer func() {
				if closeErr := app.Close(); closeErr != nil {
					logger.Error("close dev api failed", "error", closeErr)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServers(ctx, logger, newHTTPServer(addr, app.Handler()))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", cfg.DevAPI.Addr, "listen address")
	cmd.Flags().StringVar(&sqlitePath, "sqlite-path", cfg.DevAPI.SQLitePath, "sqlite database path")
	cmd.Flags().StringSliceVar(&corsOrigins, "cors-origins", cfg.DevAPI.CORSOrigins, "origins allowed to call the API")
	return cmd
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              strings.TrimSpace(addr),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// runServers serves until ctx is cancelled or any server fails, then shuts
// all of them down.
func runServers(ctx context.Context, logger *slog.Logger, servers ...*http.Server) error {
	group, ctx := errgroup.WithContext(ctx)

	for _, srv := range servers {
		group.Go(func() error {
			logger.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen on %s failed: %w", srv.Addr, err)
			}
			return nil
		})
		group.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown %s failed: %w", srv.Addr, err)
			}
			return nil
		})
	}

	err := group.Wait()
	logger.Info("server stopped")
	return err
}

// dialAddr turns a listen address into one a client can connect to.
func dialAddr(addr string) string {
	host, port, err := net.SplitHostPort(strings.TrimSpace(addr))
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
