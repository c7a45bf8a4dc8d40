package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/fluidreport/internal/pipeline"
	"github.com/KaramelBytes/fluidreport/internal/server"
	"github.com/KaramelBytes/fluidreport/internal/utils"
)

var (
	serveAddr     string
	serveKeepRuns bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report upload form over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		addr := c.ServeAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		workDir, err := utils.ExpandHome(c.WorkDir)
		if err != nil {
			return err
		}
		sender, err := newSender(c)
		if err != nil {
			return err
		}
		logger := slog.Default()
		if sender == nil {
			logger.Warn("smtp_host not configured; reports will not be mailed")
		}

		srv := server.New(server.Config{
			Addr:           addr,
			WorkDir:        workDir,
			OutputName:     c.OutputName,
			MaxUploadMB:    c.MaxUploadMB,
			DPI:            c.ChartDPI,
			ParallelCharts: c.ParallelCharts,
			KeepRuns:       serveKeepRuns,
		}, pipeline.New(pipeline.WithLogger(logger)), sender, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides serve_addr)")
	serveCmd.Flags().BoolVar(&serveKeepRuns, "keep-runs", false, "keep per-request run directories after responding")
}
