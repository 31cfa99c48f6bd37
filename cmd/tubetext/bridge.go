package main

import (
	"github.com/spf13/cobra"

	"tubetext/internal/bootstrap"
	"tubetext/internal/bridge"
	applog "tubetext/internal/log"
)

func newBridgeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Serve the orchestrator to a local web UI",
		Long: `Serve the orchestrator over HTTP and push its events to connected
WebSocket clients. The listener stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := applog.WithComponent("bridge")
			hub := bridge.NewHub(logger)

			services, err := bootstrap.BuildWithConfig(a.cfg, bridge.NewEvents(hub, logger))
			if err != nil {
				return err
			}
			defer services.Close()

			cfg := bridge.Config{
				Addr:              a.cfg.Bridge.Addr,
				RequestsPerMinute: a.cfg.Bridge.RequestsPerMinute,
				AllowedOrigins:    a.cfg.Bridge.AllowedOrigins,
				ExportDir:         a.cfg.Bridge.ExportDir,
			}
			if addr != "" {
				cfg.Addr = addr
			}

			return bridge.NewServer(cfg, services.Orchestrator, services.Backend, hub, logger).
				ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides bridge.addr)")
	return cmd
}
