package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sebastienferry/site-purge/internal/pkg/api"
	"github.com/sebastienferry/site-purge/internal/pkg/config"
	"github.com/sebastienferry/site-purge/internal/pkg/log"
	"github.com/sebastienferry/site-purge/internal/pkg/runner"
	"github.com/sebastienferry/site-purge/internal/pkg/stats"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the metrics, health and purge command API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), config.Current, func(d *Deps) error {
				return serve(cmd.Context(), d)
			})
		},
	}
}

func serve(ctx context.Context, d *Deps) error {
	cfg := d.Config
	gin.SetMode(gin.ReleaseMode)

	// Purge jobs, one at a time
	jobs := runner.NewRunner(d.Purger, 1)

	var cmdsApi *api.CommandApi
	if cfg.IsFeatureEnabled(config.ApiPurge) {
		confirmations := api.NewConfirmations(cfg.Api.ConfirmationTtl)
		cmdsApi = api.NewCommandApi(jobs, confirmations, "DELETE "+cfg.Store.Target(), d.Purger.Collections())
	}

	// Everything that can fail is built before any goroutine starts
	router, err := api.NewRouter(api.Options{
		JwtSecret: cfg.Api.JwtSecret,
		AdminRole: cfg.Api.AdminRole,
		Version:   version,
		Driver:    cfg.Store.Driver,
	}, d.Store, cmdsApi)
	if err != nil {
		return fmt.Errorf("creating the api: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Api.Listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return jobs.Run(gctx)
	})

	// Collection stats
	if cfg.IsFeatureEnabled(config.CollectionStats) {
		collStats := stats.NewCollectionStats(d.Store, d.Purger.Collections(), cfg.Stats.Interval)
		collStats.StartCollectionStats(gctx)
		defer collStats.StopCollectionStats()
	}

	g.Go(func() error {
		log.InfoWithFields("api listening", log.Fields{"address": cfg.Api.Listen})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
