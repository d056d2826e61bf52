package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/mintbay/marketplace/internal/adapter"
	"github.com/mintbay/marketplace/internal/config"
	"github.com/mintbay/marketplace/internal/deploy"
	"github.com/mintbay/marketplace/internal/logger"
)

var (
	configFile string
	envPath    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Deploy marketplace contracts and emit a development environment",
		Long: `Deploys the NFT and Marketplace contracts to the configured chain,
publishes their ABIs to the artifacts directory, and prints an environment
bundle for the other marketplace services between well-known markers.`,
		SilenceUsage: true,
		RunE:         runBootstrap,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", "config/", "Path to environment files")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	config.ChdirRepoRoot()
	cfg, err := config.LoadBootstrapConfig(configFile, envPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "bootstrap",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Flush(2 * time.Second)

	pipeline := deploy.NewPipeline(cfg, adapter.NewEthClientDialer(), adapter.NewFileSystem(), cmd.OutOrStdout())
	return pipeline.Run(cmd.Context())
}
