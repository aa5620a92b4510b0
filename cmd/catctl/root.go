package main

import (
	"fmt"
	"os"
	"time"

	"cat-shelter/internal/platform/httpclient"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultServer = "http://localhost:8080"

type app struct {
	server  string
	timeout time.Duration
	verbose bool

	client *httpclient.Client
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "catctl",
		Short: "Cliente de la API del refugio de gatos",
		Long: `catctl consulta y da de alta gatos contra una instancia de cat-shelter.

El servidor se toma de --server o de CAT_SHELTER_URL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := zap.NewProductionConfig()
			cfg.OutputPaths = []string{"stderr"}
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if a.verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			l, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = l

			if a.server == "" {
				a.server = os.Getenv("CAT_SHELTER_URL")
			}
			if a.server == "" {
				a.server = defaultServer
			}
			c, err := httpclient.NewWithBaseURL(a.server, a.timeout)
			if err != nil {
				return err
			}
			a.client = c
			a.logger.Debug("using server", zap.String("server", c.BaseURL))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.server, "server", "", "URL base de la API (default "+defaultServer+")")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", httpclient.DefaultTimeout, "timeout por request")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "logs de debug en stderr")

	root.AddCommand(
		a.optionsCmd(),
		a.listCmd(),
		a.recentCmd(),
		a.featuredCmd(),
		a.addCmd(),
		a.watchCmd(),
	)
	return root
}
