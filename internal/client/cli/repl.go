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
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Overview(ctx context.Context) error
	Users(ctx context.Context, args []string) error
	Logs(ctx context.Context, args []string) error
	Errors(ctx context.Context) error
	Emails(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Page(ctx context.Context, args []string) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Refresh(ctx context.Context) error
	Settings(ctx context.Context) error
	Functions(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: login, help, exit"
	helpSignedIn  = "Available commands: overview, users [google|microsoft], logs <function> [today|yesterday|last10days|week|recent|custom <from> <to>], " +
		"functions, errors, emails [term], search <term>, page <n>, (n)ext, (p)rev, show <n>, refresh, settings, logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// Screen commands need a signed-in session. The loop ends on EOF, "exit" or
// "quit". Handlers report their own errors, so returned errors are dropped.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("opsdash %s > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}
			continue
		case "login":
			_ = a.Login(ctx)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn() {
			if knownCommand(cmd) {
				printlnFn("Please log in first.")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "overview", "o":
			_ = a.Overview(ctx)
		case "users", "u":
			_ = a.Users(ctx, args)
		case "logs":
			_ = a.Logs(ctx, args)
		case "functions", "f":
			_ = a.Functions(ctx)
		case "errors":
			_ = a.Errors(ctx)
		case "emails", "e":
			_ = a.Emails(ctx, args)
		case "search", "s":
			_ = a.Search(ctx, args)
		case "page":
			_ = a.Page(ctx, args)
		case "next", "n":
			_ = a.Next(ctx)
		case "prev", "p":
			_ = a.Prev(ctx)
		case "show":
			_ = a.Show(ctx, args)
		case "refresh", "r":
			_ = a.Refresh(ctx)
		case "settings":
			_ = a.Settings(ctx)
		case "logout":
			_ = a.Logout(ctx)
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func knownCommand(cmd string) bool {
	switch cmd {
	case "overview", "o", "users", "u", "logs", "functions", "f", "errors", "emails", "e",
		"search", "s", "page", "next", "n", "prev", "p", "show", "refresh", "r", "settings", "logout":
		return true
	}
	return false
}
