package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"taskmanager/internal/session"

	"github.com/spf13/cobra"
)

func newShellCommand(a *app) *cobra.Command {
	var idle, warn time.Duration

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive prompt that logs out after a period of inactivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := a.authed(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			w := session.NewWatcher(idle, warn,
				func(remaining time.Duration) {
					fmt.Fprintf(out, "\nSession closes in %s without activity; run any command to stay logged in.\n", remaining)
				},
				func() {
					_ = ClearSession(a.sessionPath)
					fmt.Fprintln(out, "\nSession closed due to inactivity.")
				},
			)
			w.Start(cmd.Context())
			defer w.Stop()

			done := make(chan struct{})
			defer close(done)
			lines := readLines(cmd.InOrStdin(), done)
			for {
				fmt.Fprint(out, "taskctl> ")
				select {
				case <-w.Done():
					return nil
				case line, ok := <-lines:
					if !ok {
						return nil
					}
					argv := splitArgs(line)
					if len(argv) == 0 {
						continue
					}
					if argv[0] == "exit" || argv[0] == "quit" {
						return nil
					}
					if !w.Touch() {
						return nil
					}
					runLine(cmd, a, argv)
				}
			}
		},
	}

	cmd.Flags().DurationVar(&idle, "idle", 10*time.Minute, "inactivity before the session is closed")
	cmd.Flags().DurationVar(&warn, "warn", 10*time.Second, "how long before closing to print a warning")
	return cmd
}

// runLine executes one shell line on a fresh command tree that shares the
// parent's persistent flags.
func runLine(parent *cobra.Command, a *app, argv []string) {
	root := NewRootCmd()
	root.SetArgs(append(argv, "--api", a.apiURL, "--session", a.sessionPath, "--timeout", a.timeout.String()))
	root.SetOut(parent.OutOrStdout())
	root.SetErr(parent.ErrOrStderr())
	root.SetIn(parent.InOrStdin())
	if err := root.ExecuteContext(parent.Context()); err != nil {
		fmt.Fprintln(parent.ErrOrStderr(), "error:", err)
	}
}

// readLines feeds scanned lines to the returned channel until r is exhausted
// or done is closed.
func readLines(r io.Reader, done <-chan struct{}) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-done:
				return
			}
		}
	}()
	return ch
}

// splitArgs splits on whitespace, keeping double-quoted runs together.
func splitArgs(line string) []string {
	var (
		args    []string
		current strings.Builder
		quoted  bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case (r == ' ' || r == '\t') && !quoted:
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if started {
		args = append(args, current.String())
	}
	return args
}
