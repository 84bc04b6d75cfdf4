package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/coursecast/internal/player"
)

// errUnavailable signals a failed probe after its explanation was printed
var errUnavailable = errors.New("lesson unavailable")

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <content-id>",
		Short: "Probe whether a lesson stream can be played",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			result := a.prechecker().Check(cmd.Context(), args[0])

			if result.OK() {
				fmt.Fprintf(out, "available (HTTP %d)\n", result.Status)
				return nil
			}

			view := player.Present(result.Kind)
			fmt.Fprintf(out, "%s: %s\n", view.Title, view.Message)
			if result.Status != 0 {
				fmt.Fprintf(out, "HTTP %d\n", result.Status)
			}
			return errUnavailable
		},
	}
}
