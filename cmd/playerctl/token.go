package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/coursecast/internal/player"
)

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the viewer token stored in the system keyring",
	}

	var key string
	setCmd := &cobra.Command{
		Use:   "set <token>",
		Short: "Store a viewer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(args[0])
			if token == "" {
				return fmt.Errorf("token must not be blank")
			}
			kr := player.KeyringCredentials{Service: a.cfg.Player.KeyringService}
			if err := kr.Store(key, token); err != nil {
				return fmt.Errorf("store token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token stored under %q\n", key)
			return nil
		},
	}
	setCmd.Flags().StringVar(&key, "key", player.DefaultCredentialKeys[0], "Credential key to store the token under")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every stored viewer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kr := player.KeyringCredentials{Service: a.cfg.Player.KeyringService}
			for _, k := range a.cfg.Player.CredentialKeys {
				if err := kr.Remove(k); err != nil {
					return fmt.Errorf("remove %s: %w", k, err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "tokens cleared")
			return nil
		},
	}

	cmd.AddCommand(setCmd, clearCmd)
	return cmd
}
