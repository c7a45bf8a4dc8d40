package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// MaxChartDPI bounds chart_dpi; a 10x6 inch chart at this resolution is
// already a 6000x3600 pixel PNG.
const MaxChartDPI = 600

// Global configuration structure.
type Global struct {
	WorkDir        string `mapstructure:"work_dir" yaml:"work_dir"`
	OutputName     string `mapstructure:"output_name" yaml:"output_name"`
	ChartDPI       int    `mapstructure:"chart_dpi" yaml:"chart_dpi"`
	ParallelCharts bool   `mapstructure:"parallel_charts" yaml:"parallel_charts"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// SMTP transport; credentials come from FLUIDREPORT_SMTP_USERNAME/PASSWORD only
	SMTPHost string `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port" yaml:"smtp_port"`
	SMTPFrom string `mapstructure:"smtp_from" yaml:"smtp_from"`

	// HTTP form
	ServeAddr   string `mapstructure:"serve_addr" yaml:"serve_addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

// Keys lists the settable configuration keys.
var Keys = []string{
	"work_dir", "output_name", "chart_dpi", "parallel_charts",
	"log_level", "log_format",
	"smtp_host", "smtp_port", "smtp_from",
	"serve_addr", "max_upload_mb",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("work_dir", ".")
	v.SetDefault("output_name", "data_report.docx")
	v.SetDefault("chart_dpi", 100)
	v.SetDefault("parallel_charts", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("smtp_host", "")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_from", "")
	v.SetDefault("serve_addr", ":8080")
	v.SetDefault("max_upload_mb", 32)
}

// Default returns the built-in configuration.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	// defaults are plain scalars, decoding cannot fail
	_ = v.Unmarshal(&c)
	return &c
}

// Dir returns ~/.fluidreport.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".fluidreport"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.fluidreport/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; flags override per command.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("FLUIDREPORT")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		// an explicit file must exist; the home config is optional
		if cfgFile != "" || !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.OutputName == "" {
		c.OutputName = "data_report.docx"
	}
	if c.ChartDPI <= 0 {
		c.ChartDPI = 100
	}
	if c.ChartDPI > MaxChartDPI {
		return nil, fmt.Errorf("chart_dpi %d exceeds %d", c.ChartDPI, MaxChartDPI)
	}
	return &c, nil
}

// Set assigns one key from its string form.
func (c *Global) Set(key, val string) error {
	switch key {
	case "work_dir":
		c.WorkDir = val
	case "output_name":
		if val == "" || filepath.Base(val) != val {
			return fmt.Errorf("invalid output_name: %q (a file name, no directories)", val)
		}
		c.OutputName = val
	case "chart_dpi":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 || i > MaxChartDPI {
			return fmt.Errorf("invalid chart_dpi: %v (1-%d)", val, MaxChartDPI)
		}
		c.ChartDPI = i
	case "parallel_charts":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for parallel_charts: %w", err)
		}
		c.ParallelCharts = b
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	case "smtp_host":
		c.SMTPHost = val
	case "smtp_port":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 || i > 65535 {
			return fmt.Errorf("invalid port for smtp_port: %v", val)
		}
		c.SMTPPort = i
	case "smtp_from":
		c.SMTPFrom = val
	case "serve_addr":
		c.ServeAddr = val
	case "max_upload_mb":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for max_upload_mb: %v", val)
		}
		c.MaxUploadMB = i
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
