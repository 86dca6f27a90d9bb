package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL reads commands from in and dispatches them to a until EOF,
// "exit" or "quit", or until ctx is done.
//
//	Not logged in:  help, login, status, exit | quit
//	Logged in:      help, status, logout, exit | quit
//
// Command errors are printed and the loop carries on. Commands read their
// own prompts from the same reader, so in is never wrapped in a Scanner.
func runREPL(ctx context.Context, a execIface, statusFn func(ctx context.Context) string, in *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("mw %s> ", statusFn(ctx)))
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		err = nil
		switch cmd := parts[0]; cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: status, logout, exit")
			} else {
				printlnFn("Available commands: login, status, exit")
			}

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "status", "s":
			err = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("error:", err)
		}
	}
}
