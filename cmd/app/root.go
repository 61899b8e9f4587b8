package main

import (
	"context"

	"RiskReturn/internal/di"
	"RiskReturn/pkg/config"

	"github.com/spf13/cobra"
)

// Execute runs the CLI. Without a subcommand it starts the server.
func Execute(ctx context.Context) error {
	var configPath string

	root := &cobra.Command{
		Use:           "riskreturn",
		Short:         "Period return vs. annualized volatility for a set of tickers",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "config file path")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(analyzeCmd(&configPath))
	return root.ExecuteContext(ctx)
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web page, JSON API and websocket stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *configPath)
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return err
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
