package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dsbrowser/internal/ui"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL needs. The real App satisfies
// it; tests provide a lightweight stub.
type execIface interface {
	SetField(ctx context.Context, field ui.Field, value string) error
	PromptSecret(ctx context.Context) error
	ShowForm(ctx context.Context) error
	Connect(ctx context.Context) error
	Save(ctx context.Context) error
	Clear(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Status(ctx context.Context) error
}

var fieldCommands = map[string]ui.Field{
	"server":     ui.FieldServerURL,
	"site":       ui.FieldSiteName,
	"token-name": ui.FieldTokenName,
}

const helpText = `Available commands:
  server <url>        set the server URL
  site <name>         set the site content URL
  token-name <name>   set the token name
  token [secret]      set the token secret (prompted without echo if omitted)
  form                show the form
  connect             sign in and list data sources
  save                save server URL, site and token name
  clear               erase saved settings and reset the form
  disconnect          sign out and hide the results
  status              show the status message and results
  exit | quit         leave the program`

// runREPL reads commands line by line and dispatches them to a until EOF or
// "exit"/"quit". Handler errors are already surfaced as status messages by
// the controller, so they are not printed again here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("dsb %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), cmd))

		if field, ok := fieldCommands[cmd]; ok {
			if rest == "" {
				printlnFn(fmt.Sprintf("Usage: %s <value>", cmd))
				continue
			}
			_ = a.SetField(ctx, field, rest)
			continue
		}

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "token":
			if rest != "" {
				_ = a.SetField(ctx, ui.FieldTokenSecret, rest)
			} else if err := a.PromptSecret(ctx); err != nil {
				printlnFn("error:", err)
			}

		case "form":
			_ = a.ShowForm(ctx)

		case "connect":
			_ = a.Connect(ctx)

		case "save":
			_ = a.Save(ctx)

		case "clear":
			_ = a.Clear(ctx)

		case "disconnect":
			_ = a.Disconnect(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// Root runs the interactive popup until the user exits.
func (a *App) Root(ctx context.Context, scanner *bufio.Scanner) {
	printlnFn("dsbrowser: browse Tableau data sources (type 'help' for commands)")
	a.ctrl.Init(ctx)
	runREPL(ctx, a, a.getStatus, scanner)
}
