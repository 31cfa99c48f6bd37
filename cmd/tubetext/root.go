package main

import (
	"github.com/spf13/cobra"

	"tubetext/internal/bootstrap"
	"tubetext/internal/config"
	applog "tubetext/internal/log"
)

// app carries state shared by every command of one invocation.
type app struct {
	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "tubetext",
		Short:         "Fetch, summarize and translate YouTube transcripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applog.Configure(applog.Config{Level: cfg.Log.Level, Output: cmd.ErrOrStderr()})
			a.cfg = cfg
			return nil
		},
	}

	root.AddCommand(
		newTranscriptCmd(a),
		newSummaryCmd(a),
		newTranslateCmd(a),
		newPDFCmd(a),
		newWhoamiCmd(a),
		newLogoutCmd(a),
		newLoginURLCmd(a),
		newUpgradeCmd(a),
		newHistoryCmd(a),
		newBridgeCmd(a),
	)
	return root
}

// build wires the runtime graph with a terminal event sink.
func (a *app) build(cmd *cobra.Command) (bootstrap.Services, *terminalSink, error) {
	sink := newTerminalSink(cmd.OutOrStdout(), cmd.ErrOrStderr())
	services, err := bootstrap.BuildWithConfig(a.cfg, sink)
	if err != nil {
		return bootstrap.Services{}, nil, err
	}
	sink.loginURL = services.Backend.LoginURL()
	return services, sink, nil
}
