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
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	Open(ctx context.Context, surface string) error
	Surfaces(ctx context.Context) error
	Stats(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the RoadWatch client.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF, when ctx is cancelled or
// when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - register, login, reset-password
//
//	Logged in:
//	  - logout, change-password, delete-account
//
//	Always:
//	  - help, whoami, open <surface>, surfaces, stats, exit | quit
//
// Errors returned by command handlers are ignored here: the session reports
// outcomes through its notifier.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("rw %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: open <surface>, surfaces, whoami, change-password, delete-account, logout, stats, exit")
			} else {
				printlnFn("Available commands: login, register, reset-password, open <surface>, surfaces, whoami, stats, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "reset-password":
			_ = a.ResetPassword(ctx)

		case "change-password":
			_ = a.ChangePassword(ctx)

		case "delete-account":
			_ = a.DeleteAccount(ctx)

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <surface>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "surfaces":
			_ = a.Surfaces(ctx)

		case "stats":
			_ = a.Stats(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
