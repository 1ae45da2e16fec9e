package cli

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"SIMAPRO-backend/internal/app"
	"SIMAPRO-backend/internal/platform/db"
	"SIMAPRO-backend/internal/platform/ratelimit"
)

var autoMigrate bool

func newServeCommand(public fs.FS) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), public)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "apply pending migrations before serving")
	return cmd
}

func runServe(ctx context.Context, public fs.FS) error {
	cfg, log, done, err := bootstrap()
	if err != nil {
		return err
	}
	defer done()
	log.Info("starting server", "mode", cfg.Mode, "version", cfg.Version)

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Info("connected to DB", "dbname", cfg.DB.DBName)

	if autoMigrate {
		if err := db.MigrateUp(conn); err != nil {
			return err
		}
	}

	rdb, err := ratelimit.NewClient(ctx, cfg.Redis)
	if err != nil {
		// レート制限なしで起動を続ける
		log.Warn("redis unavailable, rate limiting disabled", "error", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, drain, err := app.NewRouter(app.Deps{Config: cfg, DB: conn, Redis: rdb, Log: log, Public: public})
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: engine}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Server.Addr, "tls", cfg.Server.TLS)
		var err error
		if cfg.Server.TLS {
			err = srv.ListenAndServeTLS(cfg.Certificate.Cert, cfg.Certificate.Key)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	log.Info("shutting down...")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	err = srv.Shutdown(sctx)
	drain()
	return err
}
