// Package commands implements the taskctl command tree.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"taskmanager/internal/client"

	"github.com/spf13/cobra"
)

// app holds the persistent flags shared by every subcommand.
type app struct {
	apiURL      string
	sessionPath string
	timeout     time.Duration
}

func (a *app) client() (*client.Client, *Session, error) {
	c := client.New(a.apiURL)
	s, err := LoadSession(a.sessionPath)
	if err != nil {
		return nil, nil, err
	}
	if s != nil {
		c.SetToken(s.Token)
	}
	return c, s, nil
}

// authed returns a client carrying a stored, unexpired token.
func (a *app) authed() (*client.Client, *Session, error) {
	c, s, err := a.client()
	if err != nil {
		return nil, nil, err
	}
	if s == nil || s.Token == "" {
		return nil, nil, fmt.Errorf("no active session, run 'taskctl login' first")
	}
	if s.Expired(time.Now()) {
		_ = ClearSession(a.sessionPath)
		return nil, nil, fmt.Errorf("session expired, run 'taskctl login' again")
	}
	return c, s, nil
}

func (a *app) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

// NewRootCmd creates the taskctl root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "Command line client for the task manager API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	apiDefault := os.Getenv("TASKCTL_API")
	if apiDefault == "" {
		apiDefault = "http://localhost:3000"
	}
	cmd.PersistentFlags().StringVar(&a.apiURL, "api", apiDefault, "API base URL")
	cmd.PersistentFlags().StringVar(&a.sessionPath, "session", DefaultSessionPath(), "session file path")
	cmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "request timeout")

	cmd.AddCommand(
		newRegisterCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
		newTasksCommand(a),
		newGroupsCommand(a),
		newGroupTasksCommand(a),
		newUsersCommand(a),
		newShellCommand(a),
	)
	return cmd
}

// printJSON writes v indented, the output format of every read command.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
