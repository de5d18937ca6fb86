package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/appdriver/appdriver/internal/capture"
	"github.com/appdriver/appdriver/internal/config"
	"github.com/appdriver/appdriver/internal/host"
	"github.com/appdriver/appdriver/internal/input"
	"github.com/appdriver/appdriver/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the automation handlers as MCP tools",
	Long: "Connect to the host application backend and serve the automation handlers\n" +
		"over MCP (stdio or streamable-http).",
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("config", "", "Config file path (default: ~/.config/appdriver/config.yaml)")
	serveCmd.Flags().String("transport", "", "MCP transport: stdio or streamable-http (overrides config)")
	serveCmd.Flags().Int("port", 0, "Port for streamable-http transport (overrides config)")
	serveCmd.Flags().String("app-name", "", "Owning-application hint for window matching (overrides config)")
	serveCmd.Flags().Bool("debug", false, "Enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	appName, _ := cmd.Flags().GetString("app-name")
	debug, _ := cmd.Flags().GetBool("debug")

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	// MCP stdio owns stdout, so logs go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if transport != "" {
		cfg.MCP.Transport = transport
	}
	if port != 0 {
		cfg.MCP.Port = port
	}
	if appName != "" {
		cfg.ApplicationName = appName
	}

	h, err := host.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to host application: %w", err)
	}

	deps := server.Deps{
		Host:    h,
		AppName: cfg.ApplicationName,
	}

	if engine, err := capture.NewPlatformEngine(); err != nil {
		slog.Warn("native capture unavailable", "err", err)
	} else {
		deps.Engine = engine
	}

	if inj, err := input.NewInjector(); err != nil {
		slog.Warn("input simulation unavailable", "err", err)
	} else {
		deps.Simulator = input.NewSimulator(inj)
	}

	service := server.NewService(deps)
	slog.Info("serving automation handlers", "transport", cfg.MCP.Transport,
		"commands", len(service.Commands()))

	return server.NewMCPServer(service).Serve(server.MCPConfig{
		Transport: cfg.MCP.Transport,
		Port:      cfg.MCP.Port,
	})
}
