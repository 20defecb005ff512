// Package console is the local transport: a line-based REPL over stdin
// that feeds the same dispatcher the Discord adapter uses.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"pursebot/internal/command"

	"github.com/rs/zerolog"
)

// Messenger satisfies the dispatcher's messaging contract for local runs.
// There is no remote session, so profile checks are skipped and outbound
// texts are printed.
type Messenger struct {
	Out io.Writer
}

func (m *Messenger) IsSessionActive() bool { return false }

func (m *Messenger) ResolveProfile(string) (bool, error) { return true, nil }

func (m *Messenger) SendText(username, text string) error {
	_, err := fmt.Fprintf(m.Out, "[dm -> %s] %s\n", username, text)
	return err
}

// REPL drives the dispatcher from an input stream. Lines missing the
// command prefix get it prepended, so the operator can type "balance"
// instead of "*balance".
type REPL struct {
	Dispatcher *command.Dispatcher
	User       string
	Prefix     string
	In         io.Reader
	Out        io.Writer
	Log        zerolog.Logger
}

// Run reads lines until EOF, "exit"/"quit" or ctx cancellation.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintf(r.Out, "pursebot console, acting as %q. Type %shelp for commands, exit to leave.\n", r.User, r.Prefix)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r.In)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		fmt.Fprint(r.Out, "> ")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, okCh := <-lines:
			if !okCh {
				if err := <-scanErr; err != nil {
					return err
				}
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				return nil
			}
			if !strings.HasPrefix(line, r.Prefix) {
				line = r.Prefix + line
			}

			res := r.Dispatcher.Dispatch(r.User, line, time.Now())
			if res == nil {
				continue
			}
			if res.Message != "" {
				fmt.Fprintln(r.Out, res.Message)
			} else if res.Success {
				fmt.Fprintln(r.Out, "ok")
			}
		}
	}
}
