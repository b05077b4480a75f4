// Command territorio runs the territorial analysis dashboard.
//
// Serves the census/business dashboard and offers client commands that
// drive the same dashboard core against a running server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"territorio/internal/api"
	"territorio/internal/client"
	"territorio/internal/config"
	"territorio/internal/dashboard"
	"territorio/internal/engine"
	"territorio/internal/report"
)

var cfg *config.Config

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "territorio",
	Short:         "Territorial analysis dashboard (census + business directory)",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if url, _ := cmd.Flags().GetString("server"); url != "" {
			cfg.Client.BaseURL = url
		}
		return cfg.Logging.ConfigureLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("server", "", "API base URL for client commands")

	viewCmd.Flags().Bool("json", false, "print the full view, figures included, as JSON")
	exportCmd.Flags().StringP("output", "o", "", "output file (default: <region>.html)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(regionsCmd)
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log := logrus.StandardLogger()

		// The API is "live" immediately but answers 503 until the ETL is done
		h, err := api.NewHandler(nil, log)
		if err != nil {
			return err
		}
		e := api.NewEcho(cfg.Server.CORSOrigins, log)
		h.RegisterRoutes(e)

		go func() {
			log.Info("BACKGROUND: Starting ETL pipeline...")
			t0 := time.Now()

			data, err := engine.Load(ctx, cfg.Data.CensusPath, cfg.Data.BusinessPath)
			if err != nil {
				log.WithError(err).Error("BACKGROUND: ETL failed, data endpoints stay unavailable")
				return
			}
			h.SetData(data)

			log.WithFields(logrus.Fields{
				"regions": len(data.Regions()),
				"took":    time.Since(t0),
			}).Info("BACKGROUND: ETL complete, API is fully ready")
		}()

		errc := make(chan error, 1)
		go func() {
			log.Infof("Server ready on %s (data loading in background...)", cfg.Server.Addr)
			errc <- e.Start(cfg.Server.Addr)
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	},
}

// --- View Command ---

var viewCmd = &cobra.Command{
	Use:   "view <region>",
	Short: "Run one dashboard refresh against the server and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page := dashboard.NewPage()
		ctrl := dashboard.NewController(client.New(cfg.Client.BaseURL, cfg.Client.Timeout), page, logrus.StandardLogger())

		ctrl.Select(args[0])
		ctrl.Wait()
		snap := page.Snapshot()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", snap.Title)
		fmt.Fprintf(out, "  Población: %s\n", snap.KPIs[dashboard.KPIPoblacion])
		fmt.Fprintf(out, "  Viviendas: %s\n", snap.KPIs[dashboard.KPIViviendas])
		fmt.Fprintf(out, "  Negocios:  %s\n", snap.KPIs[dashboard.KPINegocios])
		for _, slot := range []dashboard.Slot{dashboard.SlotActividades, dashboard.SlotEducacion, dashboard.SlotPiramide} {
			status := "not rendered"
			if fig, ok := snap.Charts[slot]; ok && fig != nil {
				status = fmt.Sprintf("%d series", len(fig.Data))
			}
			fmt.Fprintf(out, "  %-18s %s\n", slot, status)
		}
		if snap.Failure != dashboard.FailureNone {
			return fmt.Errorf("refresh failed (%s)", snap.Failure)
		}
		return nil
	},
}

// --- Export Command ---

var exportCmd = &cobra.Command{
	Use:   "export <region>",
	Short: "Write a standalone HTML report for a region",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		region := args[0]
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = region + ".html"
		}

		p, err := client.New(cfg.Client.BaseURL, cfg.Client.Timeout).Fetch(cmd.Context(), region)
		if err != nil {
			return err
		}

		f, err := os.Create(output)
		if err != nil {
			return err
		}
		if err := report.Render(f, region, p); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logrus.WithField("file", output).Info("report written")
		return nil
	},
}

// --- Regions Command ---

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the regions the server knows",
	RunE: func(cmd *cobra.Command, args []string) error {
		regions, err := client.New(cfg.Client.BaseURL, cfg.Client.Timeout).Regions(cmd.Context())
		if err != nil {
			return err
		}
		for _, r := range regions {
			fmt.Fprintln(cmd.OutOrStdout(), r)
		}
		return nil
	},
}
