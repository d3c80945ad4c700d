package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ecommerce-api/internal/config"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configPath string

	cmd := &cobra.Command{
		Use:     "api",
		Short:   "E-Commerce product and order API",
		Version: Version,
		Long: `Serve the product/order HTTP API backed by a document store.

Configuration comes from environment variables (PORT, DATABASE_URL,
DATABASE_NAME, STORE_DRIVER, REDIS_URL, GRPC_PORT, DIAGNOSTICS_PORT,
OTEL_EXPORTER_OTLP_ENDPOINT, LOG_LEVEL) or a YAML file given with --config.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.Flags().Int("port", 8000, "HTTP listen port")
	_ = v.BindPFlag("PORT", cmd.Flags().Lookup("port"))

	return cmd
}
