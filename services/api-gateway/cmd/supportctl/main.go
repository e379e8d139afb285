// Command supportctl issues support tokens for the activation lookup endpoint
// and hashes device API keys for API_KEY_HASH.
package main

import (
	"fmt"
	"os"
	"time"

	"licenseplatform/services/api-gateway/internal/security"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "supportctl",
		Short:        "Operator tooling for the activation api-gateway",
		SilenceUsage: true,
	}
	root.AddCommand(newTokenCmd(), newHashKeyCmd())
	return root
}

func newTokenCmd() *cobra.Command {
	var (
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue a support token for GET /api/v1/activations/:serialNo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("SUPPORT_JWT_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("--secret or SUPPORT_JWT_SECRET is required")
			}

			token, err := security.NewTokenManager(secret).Generate(args[0], ttl)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "HS256 signing secret (defaults to $SUPPORT_JWT_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", 8*time.Hour, "Token lifetime")

	return cmd
}

func newHashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key <api-key>",
		Short: "Print the bcrypt hash to use as API_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := security.NewAPIKeyHasher().Hash(args[0])
			if err != nil {
				return fmt.Errorf("hash key: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
