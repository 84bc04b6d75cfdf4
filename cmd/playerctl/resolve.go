package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/coursecast/internal/player"
)

func newResolveCmd(a *app) *cobra.Command {
	var html bool

	cmd := &cobra.Command{
		Use:   "resolve <content-id|url>",
		Short: "Show how a lesson reference would be played",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			source := player.Resolve(parseReference(args[0]))

			switch source.Kind {
			case player.SourceLocal:
				fmt.Fprintf(out, "mode:   %s\n", source.Kind)
				fmt.Fprintf(out, "stream: %s\n", player.StreamURL(a.cfg.Player.APIBaseURL, source.ContentID))
			case player.SourceExternal:
				frame := player.NewEmbedFrame(a.cfg.Player.EmbedHost, source.EmbedID, "Lesson video")
				if html {
					return player.RenderEmbed(out, frame)
				}
				fmt.Fprintf(out, "mode:   %s\n", source.Kind)
				fmt.Fprintf(out, "embed:  %s\n", frame.Src)
			default:
				fmt.Fprintln(out, "mode:   none (nothing to render)")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&html, "html", false, "Print the embed frame markup for external videos")
	return cmd
}
