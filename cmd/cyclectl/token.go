package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/services"
)

func newTokenCmd(g *globalFlags) *cobra.Command {
	var (
		secret string
		issuer string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token [client id]",
		Short: "Issue a service token for a chat integration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if len(secret) < 16 {
				return fmt.Errorf("a secret of at least 16 characters is required (--secret or JWT_SECRET)")
			}

			issued, err := services.NewTokenService(secret, issuer, ttl).Issue(args[0])
			if err != nil {
				return err
			}
			return g.render(cmd.OutOrStdout(), issued)
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "signing secret (defaults to $JWT_SECRET)")
	cmd.Flags().StringVar(&issuer, "issuer", "kanso-accountability-engine", "token issuer")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime")
	return cmd
}
