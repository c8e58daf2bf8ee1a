package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/treasurycurve/internal/config"
	"github.com/seenimoa/treasurycurve/internal/provider"
	"github.com/seenimoa/treasurycurve/internal/providers"
	"github.com/seenimoa/treasurycurve/internal/report"
	"github.com/seenimoa/treasurycurve/pkg/utils"
)

// --- Providers Command ---

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered yield data providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := provider.NewRegistry()
		if err := providers.RegisterAllTo(reg, cfg.Data.FREDAPIKey); err != nil {
			return err
		}
		for _, info := range reg.List() {
			marker := " "
			if info.Name == cfg.Data.Provider {
				marker = "*"
			}
			fmt.Printf("%s %-16s %s\n", marker, info.Name, info.Description)
			fmt.Printf("  %-16s %s\n", "", info.Website)
			for _, m := range info.Models {
				fmt.Printf("  %-16s %s (%s)\n", "", m, provider.ModelCategory(m))
			}
		}

		fmt.Println()
		fmt.Println("Defaults:")
		for _, m := range provider.AllModels() {
			def, ok := reg.DefaultProvider(m)
			if !ok {
				def = "none"
			}
			fmt.Printf("  %-20s %s\n", m, def)
		}
		if cfg.Data.FREDAPIKey == "" {
			fmt.Println("\nfred reads the public CSV download; set FRED_API_KEY to use the JSON API")
		}
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ping, _ := cmd.Flags().GetBool("ping")

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  treasurycurve — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		now := utils.NowET()
		fmt.Printf("  Time (ET):     %s\n", utils.FormatDateTimeET(now))
		fmt.Printf("  Prev session:  %s\n", utils.FormatDate(utils.PrevBusinessDay(now)))
		fmt.Println()

		// Config summary
		fmt.Println("  Configuration:")
		fmt.Printf("    Config file:   %s\n", orNone(config.ConfigFilePath()))
		fmt.Printf("    Provider:      %s (%d-year window)\n", cfg.Data.Provider, cfg.Data.WindowYears)
		fmt.Printf("    Cache TTL:     %s\n", report.FormatDuration(cfg.CacheTTL()))
		fmt.Printf("    Cache warmer:  %s\n", orNone(cfg.Cache.WarmCron))
		fmt.Printf("    Headlines:     %v (%d feeds)\n", cfg.News.Enabled, len(cfg.News.Feeds))
		fmt.Printf("    API Server:    %s\n", cfg.Addr())
		fmt.Println()

		// API keys status
		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			if k.Required {
				status += " (required)"
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		if ping {
			fmt.Println()
			fmt.Println("  Providers:")
			if err := pingProviders(cmd.Context()); err != nil {
				return err
			}
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

func init() {
	statusCmd.Flags().Bool("ping", false, "check connectivity to every registered provider")
}

// pingProviders pings every registered provider concurrently and prints
// one line each.
func pingProviders(ctx context.Context) error {
	reg := provider.NewRegistry()
	if err := providers.RegisterAllTo(reg, cfg.Data.FREDAPIKey); err != nil {
		return err
	}
	infos := reg.List()
	results := make([]string, len(infos))

	g, gctx := errgroup.WithContext(ctx)
	for i, info := range infos {
		g.Go(func() error {
			p, err := reg.Get(info.Name)
			if err != nil {
				results[i] = "❌ " + err.Error()
				return nil
			}
			pctx, cancel := context.WithTimeout(gctx, 15*time.Second)
			defer cancel()
			start := time.Now()
			if err := p.Ping(pctx); err != nil {
				results[i] = "❌ " + err.Error()
				return nil
			}
			results[i] = fmt.Sprintf("✅ ok (%s)", time.Since(start).Round(time.Millisecond))
			return nil
		})
	}
	_ = g.Wait()

	for i, info := range infos {
		fmt.Printf("    %-25s %s\n", info.Name+":", results[i])
	}
	return nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}
