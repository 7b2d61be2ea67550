package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/memberportal/core/guard"
	"github.com/dmitrymomot/memberportal/core/logger"
)

func newLoginCmd(st *state) *cobra.Command {
	var email, password string
	var force bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := st.awaitHydration(ctx); err != nil {
				return err
			}
			// The rules send signed-in users away from the login path.
			d := st.rules.Decide(st.rules.LoginPath, st.holder.State())
			if d.Outcome == guard.Redirect && !force {
				return ErrAlreadyLoggedIn
			}

			in := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Email: ")
				line, err := in.ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read email: %w", err)
				}
				email = strings.TrimSpace(line)
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := in.ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return ErrEmptyPassword
			}

			user, token, err := st.anon.Auth.Login(ctx, email, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			st.holder.Login(ctx, user, token)
			st.logger.DebugContext(ctx, "session stored", logger.UserID(user.ID), logger.Key("path", st.store.Path()))

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted if omitted)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (read from stdin if omitted)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing session")
	return cmd
}

func newLogoutCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := st.awaitHydration(ctx); err != nil {
				return err
			}
			st.holder.Logout(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(st *state) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := st.authorize(ctx, st.rules.HomePath); err != nil {
				return err
			}

			if !offline {
				user, err := st.api.Auth.Me(ctx)
				if err != nil {
					return apiError("whoami", err)
				}
				st.holder.SetUser(ctx, user)
			}

			u := st.holder.User()
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s (id %s)\n", u.Name, u.Email, u.Role, u.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Print the stored user without asking the API")
	return cmd
}
