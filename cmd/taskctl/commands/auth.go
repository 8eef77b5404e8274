package commands

import (
	"fmt"
	"time"

	"taskmanager/internal/dto"

	"github.com/spf13/cobra"
)

func newRegisterCommand(a *app) *cobra.Command {
	var req dto.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			resp, err := c.Register(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", resp.Message, resp.UserID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "e-mail address")
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCommand(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			resp, err := c.Login(ctx, username, password)
			if err != nil {
				return err
			}
			s := &Session{
				Token:     resp.Token,
				UserID:    resp.UserID,
				Username:  resp.User.Username,
				ExpiresAt: time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
			}
			if err := SaveSession(a.sessionPath, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (role %s), session valid until %s\n",
				resp.User.Username, resp.User.Role, s.ExpiresAt.Format(time.Kitchen))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the stored token and delete the session file",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, s, err := a.client()
			if err != nil {
				return err
			}
			if s != nil && !s.Expired(time.Now()) {
				ctx, cancel := a.ctx(cmd)
				defer cancel()
				if err := c.Logout(ctx); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				}
			}
			if err := ClearSession(a.sessionPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
