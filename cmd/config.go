package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/fluidreport/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set fluidreport configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		fmt.Printf("work_dir: %s\n", c.WorkDir)
		fmt.Printf("output_name: %s\n", c.OutputName)
		fmt.Printf("chart_dpi: %d\n", c.ChartDPI)
		fmt.Printf("parallel_charts: %t\n", c.ParallelCharts)
		fmt.Printf("log_level: %s\n", c.LogLevel)
		fmt.Printf("log_format: %s\n", c.LogFormat)
		fmt.Printf("smtp_host: %s\n", c.SMTPHost)
		fmt.Printf("smtp_port: %d\n", c.SMTPPort)
		if c.SMTPFrom != "" {
			fmt.Printf("smtp_from: %s\n", c.SMTPFrom)
		}
		fmt.Printf("serve_addr: %s\n", c.ServeAddr)
		fmt.Printf("max_upload_mb: %d\n", c.MaxUploadMB)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk.\n\nKeys: " + strings.Join(cfgpkg.Keys, ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := cfg.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
