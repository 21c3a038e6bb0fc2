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
	Categories(ctx context.Context) error
	Open(ctx context.Context, name string) error
	List(ctx context.Context) error
	Select(ctx context.Context, id string) error
	Deselect(ctx context.Context) error
	Show(ctx context.Context) error
	Versions(ctx context.Context) error
	Download(ctx context.Context, fileName, format string) error
	CopyLink(ctx context.Context) error
	NewResource(ctx context.Context) error
	NewVersion(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Refresh(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login, exit"
	helpLoggedIn  = "Available commands: categories, open <name>, (l)ist, select <id>, deselect, show, versions, " +
		"download <fileName> svg|png, copylink, new, version <id>, delete <id>, refresh, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the DBX console.
//
// It reads a line from the provided reader, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands and commands
// that need a login are reported back to the user. The loop exits on
// EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers notify the
// user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("dbx %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "login":
			if a.isLoggedIn() {
				printlnFn("Already logged in")
				continue
			}
			_ = a.Login(ctx)
			continue
		}

		if !a.isLoggedIn() {
			if isKnownCommand(cmd) {
				printlnFn("Please login first")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		dispatch(ctx, a, cmd, args)
	}
}

var loggedInCommands = map[string]struct{}{
	"categories": {}, "open": {}, "l": {}, "list": {}, "select": {}, "deselect": {},
	"show": {}, "versions": {}, "download": {}, "copylink": {}, "new": {},
	"version": {}, "delete": {}, "refresh": {}, "logout": {},
}

func isKnownCommand(cmd string) bool {
	_, ok := loggedInCommands[cmd]
	return ok
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) {
	switch cmd {
	case "categories":
		_ = a.Categories(ctx)
	case "open":
		_ = a.Open(ctx, strings.Join(args, " "))
	case "l", "list":
		_ = a.List(ctx)
	case "select":
		if len(args) != 1 {
			printlnFn("Usage: select <id>")
			return
		}
		_ = a.Select(ctx, args[0])
	case "deselect":
		_ = a.Deselect(ctx)
	case "show":
		_ = a.Show(ctx)
	case "versions":
		_ = a.Versions(ctx)
	case "download":
		if len(args) != 2 || (args[1] != "svg" && args[1] != "png") {
			printlnFn("Usage: download <fileName> svg|png")
			return
		}
		_ = a.Download(ctx, args[0], args[1])
	case "copylink":
		_ = a.CopyLink(ctx)
	case "new":
		_ = a.NewResource(ctx)
	case "version":
		if len(args) != 1 {
			printlnFn("Usage: version <id>")
			return
		}
		_ = a.NewVersion(ctx, args[0])
	case "delete":
		if len(args) != 1 {
			printlnFn("Usage: delete <id>")
			return
		}
		_ = a.Delete(ctx, args[0])
	case "refresh":
		_ = a.Refresh(ctx)
	case "logout":
		_ = a.Logout(ctx)
	default:
		printlnFn("Unknown command:", cmd)
	}
}

func (a *App) getStatus() string {
	snap := a.session.Read()
	if snap.Email == "" {
		return "(logged out)"
	}
	if route := a.gallery.View().Route; route != "" {
		return fmt.Sprintf("(%s @ %s)", snap.Email, route)
	}
	return fmt.Sprintf("(%s)", snap.Email)
}

// Root greets the user, starts on the login screen and runs the REPL until
// the user leaves.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to DBX (type 'help' for commands)")

	_ = a.Login(ctx)

	// forms prompt through a.reader as well
	runREPL(ctx, a, a.getStatus, a.reader)
}
