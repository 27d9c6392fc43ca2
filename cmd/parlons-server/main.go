// parlons-server serves the category document over HTTP.
//
// Usage:
//
//	parlons-server [-config file] [-verbose] [-quiet]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hammamikhairi/parlons/internal/api"
	"github.com/hammamikhairi/parlons/internal/config"
	"github.com/hammamikhairi/parlons/internal/logger"
	"github.com/hammamikhairi/parlons/internal/store"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a config file (default: ./config.yaml if present)")
	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logLevel, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}
	log := logger.New(logLevel, nil)
	stdlog.SetOutput(log.Output())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := store.NewFileStore(cfg.Server.DataFile, log)
	if cfg.Server.Seed {
		seeded, err := fs.Seed(ctx, store.Defaults())
		if err != nil {
			log.Error("seeding %s: %v", fs.Path(), err)
			os.Exit(1)
		}
		if seeded {
			log.Info("created %s with the built-in categories", fs.Path())
		}
	}

	var opts []api.RouterOption
	if cfg.Server.StaticDir != "" {
		if st, err := os.Stat(cfg.Server.StaticDir); err == nil && st.IsDir() {
			opts = append(opts, api.WithStaticDir(cfg.Server.StaticDir))
		} else {
			log.Debug("static dir %s not found, serving API only", cfg.Server.StaticDir)
		}
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(fs, log, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running on http://localhost%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server: %v", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown: %v", err)
		}
	}
}
