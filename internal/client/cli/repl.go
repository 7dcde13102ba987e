package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL drives.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands from reader until EOF or "exit"/"quit".
//
//	Not logged in: help, login, exit
//	Logged in:     help, whoami, logout, exit
//
// Handlers report their own errors to out.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "gauth %s> ", statusFn())

		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}

		switch parts[0] {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, "Available commands: whoami, logout, exit")
			} else {
				fmt.Fprintln(out, "Available commands: login, exit")
			}
		case "login":
			_ = a.Login(ctx)
		case "whoami":
			if !a.isLoggedIn() {
				fmt.Fprintln(out, "Please log in first")
				break
			}
			_ = a.WhoAmI(ctx)
		case "logout":
			_ = a.Logout(ctx)
			fmt.Fprintln(out, "Logged out")
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintf(out, "Unknown command: %s\n", parts[0])
		}

		if err != nil {
			return
		}
	}
}
