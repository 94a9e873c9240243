package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-engine/internal/auth"
	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/handlers"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

const shutdownTimeout = 10 * time.Second

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve games over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := setupLogging(cfg); err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.AddCommand(serveCmd)
}

func newIssuer(cfg *config.Config) (*auth.Issuer, error) {
	secret := cfg.Auth.Secret
	if secret == "" {
		log.Warn("auth.secret is not set, tokens will not survive a restart")
		var err error
		if secret, err = auth.RandomSecret(); err != nil {
			return nil, err
		}
	}
	return auth.NewIssuer(secret, cfg.Auth.TokenLifetime)
}

func serve(ctx context.Context, cfg *config.Config) error {
	mainCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting up, mode = ", cfg.Mode)
	log.WithFields(cfg.Fields()).Debug("config")

	issuer, err := newIssuer(cfg)
	if err != nil {
		return err
	}

	store := session.NewStore(session.Options{
		TTL:         cfg.Session.TTL,
		MaxSessions: cfg.Session.MaxSessions,
		Log:         log,
	})

	server := &http.Server{
		Addr: cfg.Addr,
		Handler: handlers.NewRouter(handlers.RouterOptions{
			Log:    log,
			Store:  store,
			Issuer: issuer,
			Limits: handlers.Limits{
				MaxWidth:  cfg.Limits.MaxWidth,
				MaxHeight: cfg.Limits.MaxHeight,
			},
			AllowedOrigins: cfg.Cors.AllowedOrigins,
		}),
		BaseContext: func(l net.Listener) context.Context {
			return mainCtx
		},
	}

	log.Infof("ready to serve @ %s", cfg.Addr)

	g, gCtx := errgroup.WithContext(mainCtx)
	g.Go(func() error {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if cfg.Session.TTL > 0 {
		g.Go(func() error {
			return store.RunSweeper(gCtx, cfg.Session.SweepInterval)
		})
	}

	err = g.Wait()
	log.Info("shut down, sessions dropped: ", store.Len())
	return err
}
