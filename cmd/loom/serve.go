package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/loom-ui/loom/internal/config"
	"github.com/loom-ui/loom/pkg/export"
	"github.com/loom-ui/loom/pkg/metrics"
	"github.com/loom-ui/loom/pkg/web"
)

func serveCmd() *cobra.Command {
	var (
		addr    string
		cfgPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo application",
		Long: `Serve the built-in demo application over WebSocket.

The demo mounts a counter, a removable item list, and a status
line driven by an effect hook. Each browser connection gets its
own engine and scheduler loop.

Examples:
  loom serve
  loom serve --addr=0.0.0.0:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, cfgPath)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from loom.json)")
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to loom.json")

	return cmd
}

func runServe(addr, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	opts := []web.ServerOption{
		web.WithServerLogger(logger),
		web.WithSlice(cfg.Slice()),
		web.WithAppName(cfg.Name),
	}
	if cfg.Metrics {
		opts = append(opts, web.WithRecorder(metrics.NewRecorder()))
	}
	if cfg.Snapshot.Bucket != "" {
		client := s3.New(s3.Options{Region: cfg.Snapshot.Region})
		store := export.NewS3Store(client, cfg.Snapshot.Bucket, cfg.Snapshot.Prefix)
		opts = append(opts, web.WithSnapshotStore(store))
		info("snapshots: s3://%s/%s", cfg.Snapshot.Bucket, cfg.Snapshot.Prefix)
	}

	srv := web.NewServer(demoApp, opts...)
	httpSrv := &http.Server{Addr: cfg.Addr, Handler: srv.Handler()}

	printBanner()
	success("listening on http://%s", cfg.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}

	info("shutting down")
	srv.CloseAll()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default loom.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(config.ConfigFileName); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", config.ConfigFileName)
			}
			if err := config.New().Save(config.ConfigFileName); err != nil {
				return err
			}
			success("wrote %s", config.ConfigFileName)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")

	return cmd
}
