package main

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/coursecast/internal/config"
	"github.com/stwalsh4118/coursecast/internal/logger"
	"github.com/stwalsh4118/coursecast/internal/player"
)

// tokenEnvVar lets scripts pass a viewer token without touching the keyring
const tokenEnvVar = "COURSECAST_TOKEN"

// app carries the configuration shared by every subcommand
type app struct {
	cfg   *config.Config
	creds player.CredentialSource
}

func newRootCmd() *cobra.Command {
	a := &app{}

	var (
		apiURL    string
		placement string
		timeout   time.Duration
		logLevel  string
	)

	root := &cobra.Command{
		Use:           "playerctl",
		Short:         "Drive the lesson player from the terminal",
		Long:          "playerctl resolves lesson references, probes stream availability and plays lessons headlessly while reporting progress.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("api") {
				cfg.Player.APIBaseURL = apiURL
			}
			if flags.Changed("placement") {
				cfg.Player.TokenPlacement = placement
			}
			if flags.Changed("timeout") {
				cfg.Player.PrecheckTimeout = timeout
			}
			if flags.Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger.InitWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, true)

			a.cfg = cfg
			a.creds = player.ChainCredentials{
				player.MapCredentials{player.DefaultCredentialKeys[0]: os.Getenv(tokenEnvVar)},
				player.KeyringCredentials{Service: cfg.Player.KeyringService},
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&apiURL, "api", "", "Lessons API base URL (overrides player.apibaseurl)")
	pf.StringVar(&placement, "placement", "", "Token placement for the stream probe: header or query")
	pf.DurationVar(&timeout, "timeout", 0, "Availability probe timeout")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newResolveCmd(a),
		newCheckCmd(a),
		newWatchCmd(a),
		newTokenCmd(a),
	)
	return root
}

// prechecker builds the availability checker from the loaded configuration
func (a *app) prechecker() *player.Prechecker {
	return player.NewPrechecker(player.PrecheckConfig{
		BaseURL:        a.cfg.Player.APIBaseURL,
		CredentialKeys: a.cfg.Player.CredentialKeys,
		Placement:      player.TokenPlacement(a.cfg.Player.TokenPlacement),
		Timeout:        a.cfg.Player.PrecheckTimeout,
	}, a.creds, nil)
}

// parseReference treats anything that looks like a link as an external URL
// and everything else as a content id
func parseReference(arg string) player.Reference {
	arg = strings.TrimSpace(arg)
	if strings.Contains(arg, "://") || strings.HasPrefix(arg, "www.") || strings.HasPrefix(arg, "youtu") {
		return player.Reference{ExternalURL: arg}
	}
	return player.Reference{ContentID: arg}
}
