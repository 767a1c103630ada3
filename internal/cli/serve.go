package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ppiankov/langbench/internal/config"
	"github.com/ppiankov/langbench/internal/server"
)

// NewServeCmd builds the langserve command.
func NewServeCmd() *cobra.Command {
	var (
		verbose bool
		envFile string
	)

	cmd := &cobra.Command{
		Use:   "langserve",
		Short: "Serve the web bundle under a base path",
		Long: "langserve serves the entry file and its assets under BASE_URL and redirects\n" +
			"every other request to BASE_URL. Configuration comes from the environment:\n\n" +
			config.ServerEnvUsage(),
		Args:    cobra.NoArgs,
		Version: versionString(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerEnv(envFile)
			if err != nil {
				return err
			}

			level := parseLogLevel(cfg.LogLevel)
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
			if level == slog.LevelDebug {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			srv, err := server.New(*cfg)
			if err != nil {
				return err
			}
			addr, err := srv.Start()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "serving %s on http://%s%s\n", cfg.Root, addr, cfg.BaseURL)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			sig := <-sigCh
			slog.Info("shutting down", "signal", sig.String())

			if err := srv.Stop(); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().StringVar(&envFile, "env-file", "", "dotenv file (.env extension) loaded before reading the environment")

	return cmd
}

// parseLogLevel maps LOG_LEVEL to a slog level. Unknown values fall back to warn.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}
