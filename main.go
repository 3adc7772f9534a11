// ArcAudit — Monitoring-agent coverage report for CMDB server inventories.
// Author: vesaa | License: MIT | https://github.com/vesaa/arcaudit
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/vesaa/arcaudit/internal/audit"
	"github.com/vesaa/arcaudit/internal/config"
	"github.com/vesaa/arcaudit/internal/logger"
	"github.com/vesaa/arcaudit/internal/metrics"
	"github.com/vesaa/arcaudit/internal/pipeline"
	"github.com/vesaa/arcaudit/internal/report"
	"github.com/vesaa/arcaudit/internal/server"
)

const asciiLogo = `
  █████╗ ██████╗  ██████╗ █████╗ ██╗   ██╗██████╗ ██╗████████╗
 ██╔══██╗██╔══██╗██╔════╝██╔══██╗██║   ██║██╔══██╗██║╚══██╔══╝
 ███████║██████╔╝██║     ███████║██║   ██║██║  ██║██║   ██║
 ██╔══██║██╔══██╗██║     ██╔══██║██║   ██║██║  ██║██║   ██║
 ██║  ██║██║  ██║╚██████╗██║  ██║╚██████╔╝██████╔╝██║   ██║
 ╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝╚═╝  ╚═╝ ╚═════╝ ╚═════╝ ╚═╝   ╚═╝
`

const version = "v0.1.0"

func printBanner(mode string) {
	fmt.Print(asciiLogo)
	fmt.Printf("  ► ArcAudit %s  |  Author: vesaa  |  Mode: %s\n\n", version, mode)
}

// setup loads config (explicit file wins over the search path) and
// initializes the global logger from it.
func setup(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}

func main() {
	root := &cobra.Command{
		Use:   "arcaudit",
		Short: "ArcAudit — monitoring-agent coverage report for CMDB servers",
		Long: `ArcAudit cross-references a CMDB workbook with an agent status export
and reports which in-scope Windows servers are missing a monitoring agent.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "Path to a config file (default ./config.yaml or ~/.arcaudit/config.yaml)")

	// ── serve subcommand ──────────────────────────────────────────────────────
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the interactive report UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner("SERVE")

			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			if port, _ := cmd.Flags().GetInt("port"); port != 0 {
				cfg.Port = port
			}

			m := metrics.NewMetrics()
			svc, err := audit.NewService(cfg, m)
			if err != nil {
				return err
			}
			// A bad source must not keep the UI down: it shows the error and
			// offers a reload once the files are fixed.
			if err := svc.Reload(); err != nil {
				logger.Warn().Err(err).Msg("initial load failed, serving the error until a reload succeeds")
			}

			gin.SetMode(gin.ReleaseMode)
			engine := gin.New()
			engine.Use(gin.Recovery())
			server.RegisterRoutes(engine, svc, m)
			server.RegisterStaticFiles(engine)

			addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.Port)
			fmt.Printf("  ✓ Report UI  → http://%s\n", addr)
			fmt.Printf("  ✓ CMDB       → %s [%s]\n", cfg.PrimaryPath, cfg.PrimarySheet)
			fmt.Printf("  ✓ Agents     → %s\n\n", cfg.SecondaryPath)

			logger.Info().Str("addr", addr).Msg("report UI listening")
			srv := &http.Server{Addr: addr, Handler: engine}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				logger.Error().Err(err).Msg("report UI stopped")
				return err
			case <-quit:
				fmt.Println("\n  → Shutting down gracefully…")
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
	serveCmd.Flags().Int("port", 0, "Listen port (overrides config)")

	// ── report subcommand ─────────────────────────────────────────────────────
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Run the report once and print the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			var sel pipeline.Selection
			sel.OS, _ = flags.GetStringArray("os")
			sel.States, _ = flags.GetStringArray("state")
			sel.Environments, _ = flags.GetStringArray("env")
			sel.ExcludeLocations, _ = flags.GetStringArray("exclude-location")
			sel.ExcludeHosts, _ = flags.GetStringArray("exclude-host")

			formatFlag, _ := flags.GetString("format")
			format, err := report.ParseFormat(formatFlag)
			if err != nil {
				return err
			}

			svc, err := audit.NewService(cfg, metrics.NewMetrics())
			if err != nil {
				return err
			}
			if err := svc.Reload(); err != nil {
				return err
			}
			res, err := svc.Report(sel)
			if err != nil {
				return err
			}
			logger.Debug().
				Str("run_id", res.RunID).
				Int("total", res.Report.Summary.Total).
				Msg("report rendered")
			if err := report.WriteText(cmd.OutOrStdout(), res.Report); err != nil {
				return err
			}

			out, _ := flags.GetString("out")
			if out == "" {
				return nil
			}
			file, err := svc.Export(sel, format)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, file.Data, 0o644); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n  ✓ Exported %s (%d bytes)\n", out, len(file.Data))
			return nil
		},
	}
	reportCmd.Flags().StringArray("os", nil, "Keep only this operating system (repeatable)")
	reportCmd.Flags().StringArray("state", nil, "Keep only this operational state (repeatable)")
	reportCmd.Flags().StringArray("env", nil, "Keep only this environment (repeatable)")
	reportCmd.Flags().StringArray("exclude-location", nil, "Drop servers at this location (repeatable)")
	reportCmd.Flags().StringArray("exclude-host", nil, "Drop this hostname (repeatable)")
	reportCmd.Flags().String("format", "xlsx", "Export format: xlsx or csv")
	reportCmd.Flags().String("out", "", "Write the export to this file")

	// ── version subcommand ────────────────────────────────────────────────────
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print ArcAudit version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ArcAudit %s  |  Author: vesaa\n", version)
		},
	}

	root.AddCommand(serveCmd, reportCmd, versionCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
