package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/and161185/movie-admin/internal/model"
	"github.com/and161185/movie-admin/internal/session"
	"github.com/and161185/movie-admin/internal/tui"
)

func newLoginCmd(a *app) *cobra.Command {
	var creds model.Credentials
	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Sign in and keep the session on this machine",
		Args:        cobra.NoArgs,
		Annotations: routed("/login"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			creds.Username = strings.TrimSpace(creds.Username)
			if err := tui.PromptCredentials(ctx, &creds); err != nil {
				return err
			}
			store := session.FromContext(ctx)
			if err := store.Login(ctx, creds); err != nil {
				return err
			}
			return a.done("logged in as %s", store.User().Email)
		},
	}
	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "password (prompted when empty)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session.FromContext(cmd.Context()).Logout(cmd.Context())
			return a.done("logged out")
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "whoami",
		Short:       "Show the signed-in user and permissions",
		Args:        cobra.NoArgs,
		Annotations: routed("/movies"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := session.FromContext(cmd.Context()).User()
			return a.emit(u, []string{"field", "value"}, [][]string{
				{"user", u.UserID},
				{"email", u.Email},
				{"name", u.FullName},
				{"role", u.Role},
				{"permissions", strings.Join(u.Permissions, ", ")},
				{"expires", u.ExpiresAt.Local().Format(time.DateTime)},
			})
		},
	}
}
