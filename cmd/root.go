package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/chelma/cloud-demo/internal/config"
	"github.com/chelma/cloud-demo/internal/logging"
)

var (
	cfgFile string
	cfg     config.Config
	verbose bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "capturefit",
	Short: "Capacity planner for traffic capture clusters on AWS",
	Long: `capturefit sizes the AWS infrastructure of a traffic capture cluster from the
sustained traffic it must capture: capture nodes on ECS, an OpenSearch domain for
session metadata, an S3 bucket for raw packets, and viewer nodes.

Plans are deterministic. They can be stored per cluster, diffed against the last
applied plan, and rendered as deployment-tool context.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		return initLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: capturefit.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	// Global flags that map to config
	rootCmd.PersistentFlags().String("cluster", "", "capture cluster name")
	rootCmd.PersistentFlags().String("region", "", "AWS region")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console, json")
	rootCmd.PersistentFlags().String("store", "", "plan store backend: none, file, s3")

	_ = viper.BindPFlag("cluster.name", rootCmd.PersistentFlags().Lookup("cluster"))
	_ = viper.BindPFlag("cluster.region", rootCmd.PersistentFlags().Lookup("region"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("store"))
}

func loadConfig() error {
	// A missing .env is fine
	_ = godotenv.Load()

	// Start with defaults
	cfg = config.Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("capturefit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.capturefit")
	}

	// Environment variable overrides, e.g. CAPTUREFIT_CAPACITY_EXPECTED_TRAFFIC
	viper.SetEnvPrefix("CAPTUREFIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (not an error if missing)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	// Seed every key so env overrides apply and unchanged flags keep the defaults
	for key, value := range cfg.Settings() {
		viper.SetDefault(key, value)
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	return cfg.Validate()
}

func initLogger() error {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	l, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logger = l
	return nil
}
