package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/eleventy-go/devserver/internal/config"
	"github.com/eleventy-go/devserver/internal/errors"
	"github.com/eleventy-go/devserver/internal/logger"
	"github.com/eleventy-go/devserver/internal/server"
	"github.com/eleventy-go/devserver/internal/watch"
)

func serveCmd() *cobra.Command {
	var (
		port         int
		output       string
		pathPrefix   string
		showAllHosts bool
		watchOutput  bool
		noReload     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the output directory with live reload",
		Long: `Serve the generated site locally.

Examples:
  devserver serve
  devserver serve --output=_site --port=8081
  devserver serve --prefix=/docs/ --show-all-hosts
  devserver serve --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, port, output, pathPrefix, showAllHosts, watchOutput, noReload)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Starting port (default from devserver.json, else 8080)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory to serve (default _site)")
	cmd.Flags().StringVar(&pathPrefix, "prefix", "", "URL path prefix to serve under")
	cmd.Flags().BoolVar(&showAllHosts, "show-all-hosts", false, "List every local interface address when ready")
	cmd.Flags().BoolVarP(&watchOutput, "watch", "w", false, "Watch the output directory and push reload events")
	cmd.Flags().BoolVar(&noReload, "no-reload", false, "Disable script injection and the reload channel")

	return cmd
}

func runServe(cmd *cobra.Command, port int, output, pathPrefix string, showAllHosts, watchOutput, noReload bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	// Command-line overrides.
	if port > 0 {
		cfg.Port = port
	}
	if output != "" {
		cfg.Output = output
	}
	if pathPrefix != "" {
		cfg.PathPrefix = pathPrefix
	}
	if showAllHosts {
		cfg.ShowAllHosts = true
	}
	if watchOutput {
		enabled := true
		cfg.Watch = &enabled
	}
	if noReload {
		disabled := false
		cfg.Enabled = &disabled
	}
	cfg.Finalize()

	if info, err := os.Stat(cfg.Output); err != nil || !info.IsDir() {
		return errors.New(errors.CodeMissingOutputDir).
			WithDetailf("%q is not a directory", cfg.Output).
			WithSuggestion("run your build first, or pass --output")
	}

	log := logger.New()
	registry := server.NewRegistry()

	srv, err := registry.GetOrCreate(cfg.Name, server.Options{
		Config: cfg,
		Logger: log,
	})
	if err != nil {
		return err
	}

	if err := srv.Listen(); err != nil {
		var se *errors.ServerError
		if stderrors.As(err, &se) && se.Suggestion != "" {
			return fmt.Errorf("%s (%s)", se.Error(), se.Suggestion)
		}
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if cfg.WatchEnabled() {
		watcher := watch.New(watch.Config{Dir: cfg.Output})
		watcher.OnChange(func(files []string) {
			srv.Reload().NotifyReload(server.ReloadEvent{Files: files})
		})
		go func() {
			if err := watcher.Start(ctx); err != nil {
				log.Error(fmt.Sprintf("Watcher error: %v", err))
			}
		}()
	}

	// Block until interrupted; Close notifies clients before teardown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	srv.Close()
	return nil
}
