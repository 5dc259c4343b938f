package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/notifyhub/jobboard/internal/auth"
	"github.com/notifyhub/jobboard/internal/domain"
)

var tokenOpts struct {
	subject string
	role    string
	name    string
	email   string
	ttl     time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token signed with JWT_SECRET",
	Example: `  jobboard token --sub E1 --role employer --name "Acme" --email hr@acme.test
  jobboard token --sub S1 --role jobSeeker --ttl 24h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			return errors.New("JWT_SECRET is required")
		}
		role := domain.Role(tokenOpts.role)
		if !role.IsValid() {
			return domain.ErrInvalidRole
		}
		tok, err := auth.NewTokenManager(secret).Issue(auth.Principal{
			ID:    tokenOpts.subject,
			Role:  role,
			Name:  tokenOpts.name,
			Email: tokenOpts.email,
		}, tokenOpts.ttl)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	f := tokenCmd.Flags()
	f.StringVar(&tokenOpts.subject, "sub", "", "user id carried as the token subject")
	f.StringVar(&tokenOpts.role, "role", string(domain.RoleJobSeeker), "jobSeeker, employer or admin")
	f.StringVar(&tokenOpts.name, "name", "", "display name claim")
	f.StringVar(&tokenOpts.email, "email", "", "email claim")
	f.DurationVar(&tokenOpts.ttl, "ttl", time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("sub")
}
