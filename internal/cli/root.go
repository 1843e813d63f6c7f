package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the minimal command surface the REPL needs. The real App
// satisfies it; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ListMobs(ctx context.Context) error
	ListPaddocks(ctx context.Context) error
	AddMob(ctx context.Context, args []string) error
	AddPaddock(ctx context.Context, args []string) error
	ImportBoundary(ctx context.Context, args []string) error
	Split(ctx context.Context, args []string) error
	Merge(ctx context.Context, args []string) error
	Move(ctx context.Context, args []string) error
	Join(ctx context.Context, args []string) error
	EndJoin(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
}

func (a *App) getStatus() string {
	s := ""
	if a.isLoggedIn() {
		s = "signed-in "
	}
	s += string(a.currentMode())
	return "(" + s + ")"
}

func (a *App) Root(ctx context.Context) {
	fmt.Println("Muster CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	_ = a.Login(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, scanner)
}

// runREPL reads a line, parses the first token as the command and
// dispatches. Handler errors are printed, never fatal: the loop survives
// offline failures and server rejections alike. Exits on EOF, "exit" or
// "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("muster %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: mobs, paddocks, addmob, addpaddock, split, merge, move, join, endjoin, sync, status, logout, exit")
			} else {
				printlnFn("Available commands: login, status, exit")
			}

		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)

		case "mobs":
			err = a.ListMobs(ctx)
		case "paddocks":
			err = a.ListPaddocks(ctx)
		case "addmob":
			err = a.AddMob(ctx, args)
		case "addpaddock":
			err = a.AddPaddock(ctx, args)
		case "boundary":
			err = a.ImportBoundary(ctx, args)

		case "split":
			err = a.Split(ctx, args)
		case "merge":
			err = a.Merge(ctx, args)
		case "move":
			err = a.Move(ctx, args)
		case "join":
			err = a.Join(ctx, args)
		case "endjoin":
			err = a.EndJoin(ctx, args)

		case "sync":
			err = a.Sync(ctx)
		case "status":
			err = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
