package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) Root(ctx context.Context) {

	fmt.Println("Welcome to meterbook (type 'help' for commands)")

	for {
		fmt.Printf("mb (%s)> ", a.mode())
		line, err := a.reader.ReadString('\n')
		if err != nil {
			break
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Println("Available commands: list, add, delete <id>, delete-all, pending, sync, import <file>, status, exit")
		case "list":
			a.list(ctx)
		case "add":
			a.add(ctx)
		case "delete":
			if len(args) == 0 {
				fmt.Println("Usage: delete <id>")
				continue
			}
			a.delete(ctx, args[0])
		case "delete-all":
			a.deleteAll(ctx)
		case "pending":
			a.pending(ctx)
		case "sync":
			a.sync(ctx)
		case "import":
			if len(args) == 0 {
				fmt.Println("Usage: import <file.csv>")
				continue
			}
			a.importCSV(ctx, args[0])
		case "status":
			fmt.Printf("mode: %s, pending: %d\n", a.mode(), len(a.engine.GetUnsyncedEntries(ctx)))
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
