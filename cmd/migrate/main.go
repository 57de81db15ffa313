// Command migrate applies, reverts and lists the SQL schema migrations.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"yatube/internal/config"
	"yatube/internal/database"
)

var errUsage = errors.New("usage: go run ./cmd/migrate <up|down|status>")

func main() {
	if len(os.Args) != 2 {
		log.Fatal(errUsage)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := run(context.Background(), database.NewRunner(db), os.Args[1], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, runner *database.Runner, command string, out io.Writer) error {
	switch command {
	case "up":
		n, err := runner.Up(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "applied %d migration(s)\n", n)
	case "down":
		m, err := runner.Down(ctx)
		if err != nil {
			return err
		}
		if m == nil {
			fmt.Fprintln(out, "nothing to roll back")
			return nil
		}
		fmt.Fprintf(out, "rolled back %s\n", m.String())
	case "status":
		statuses, err := runner.Status(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, st := range statuses {
			state := "pending"
			if st.Applied {
				state = "applied"
			}
			fmt.Fprintf(w, "%s\t%s\n", st.Migration.String(), state)
		}
		return w.Flush()
	default:
		return errUsage
	}
	return nil
}
