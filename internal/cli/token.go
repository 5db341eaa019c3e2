package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/reservation-service/internal/auth"
	"github.com/spec-kit/reservation-service/internal/config"
	"github.com/spec-kit/reservation-service/internal/domain"
)

func newTokenCmd() *cobra.Command {
	var (
		id   string
		name string
		role string
		ttl  int
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a staff bearer token for the staff API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			staffRole, ok := domain.ParseStaffRole(role)
			if !ok {
				return fmt.Errorf("unknown role %q (admin, manager, host, server)", role)
			}
			if ttl <= 0 {
				ttl = cfg.Auth.AccessTokenTTLMinutes
			}

			tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, ttl)
			token, expiresAt, err := tokens.GenerateToken(domain.StaffMember{ID: id, Name: name, Role: staffRole})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "staff id (required)")
	cmd.Flags().StringVar(&name, "name", "", "staff display name")
	cmd.Flags().StringVar(&role, "role", string(domain.StaffRoleManager), "staff role")
	cmd.Flags().IntVar(&ttl, "ttl-minutes", 0, "token lifetime; defaults to AUTH_ACCESS_TOKEN_TTL_MINUTES")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
