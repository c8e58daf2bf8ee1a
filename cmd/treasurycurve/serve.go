package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seenimoa/treasurycurve/api"
	"github.com/seenimoa/treasurycurve/internal/infra"
	"github.com/seenimoa/treasurycurve/internal/scheduler"
)

// --- Serve Command (dashboard server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Start the HTTP server: the dashboard page at /, the JSON and SVG API
under /api/v1, and the WebSocket date-selection channel at /api/v1/ws.

When cache.warm_cron is set, the panel is refetched on that schedule and
connected pages are told to reload.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}
		noUI, _ := cmd.Flags().GetBool("no-ui")

		a, err := newApp(cfg)
		if err != nil {
			return err
		}

		api.Version = version
		srv, err := api.NewServer(cfg, a.boards)
		if err != nil {
			return fmt.Errorf("server setup failed: %w", err)
		}
		if noUI {
			srv.SetServeUI(false)
		}

		if cfg.Cache.WarmCron != "" {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sched := scheduler.NewScheduler(ctx, a.primary(), srv.Hub())
			if err := sched.Register(cfg.Cache.WarmCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()
			srv.SetWarmer(sched)

			// Warm once at startup so the first page view is served from cache.
			go func() {
				if err := sched.RunNow(); err != nil {
					infra.Warnf("initial cache warm failed: %v", err)
				}
			}()
		}

		infra.Infof("Starting treasurycurve dashboard on %s (provider %s, %d-year window)",
			cfg.Addr(), cfg.Data.Provider, cfg.Data.WindowYears)
		return srv.ListenAndServe(cfg.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port override (default: api.port)")
	serveCmd.Flags().Bool("no-ui", false, "serve only the API, without the dashboard page")
}
