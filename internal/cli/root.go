package cli

import (
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"SIMAPRO-backend/internal/platform/config"
	"SIMAPRO-backend/internal/platform/logger"
)

var configPath string

// NewRootCommand は serve / migrate / create-user をまとめる。public は埋め込んだフロント
func NewRootCommand(public fs.FS) *cobra.Command {
	root := &cobra.Command{
		Use:          "simapro",
		Short:        "SIMAPRO asset inventory and borrow-request tracker",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to config.yaml")

	root.AddCommand(
		newServeCommand(public),
		newMigrateCommand(),
		newCreateUserCommand(),
	)
	return root
}

// bootstrap は設定を読んでロガーを既定に設定する
func bootstrap() (*config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	log, closer, err := logger.New(cfg.Log, cfg.Mode)
	if err != nil {
		return nil, nil, nil, err
	}
	slog.SetDefault(log)
	return cfg, log, func() { _ = closer.Close() }, nil
}
