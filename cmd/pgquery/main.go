// Command pgquery runs one statement with named parameters and prints the
// rows as JSON.
//
//	pgquery --config db.yaml --sql 'select * from :!table where id = :id' -p table=users -p id=7
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/Konsultn-Engineering/pgquery/connector"
	"github.com/Konsultn-Engineering/pgquery/database"
	"github.com/Konsultn-Engineering/pgquery/engine"
	"github.com/Konsultn-Engineering/pgquery/logging"
	"github.com/Konsultn-Engineering/pgquery/params"
	"github.com/Konsultn-Engineering/pgquery/query"
)

// invocation is one parsed command line.
type invocation struct {
	ConfigPath string
	SQL        string
	Named      map[string]any
	Options    query.Options
	Verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newCommand(run).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "pgquery:", err)
		os.Exit(1)
	}
}

func newCommand(exec func(context.Context, invocation) error) *cli.Command {
	return &cli.Command{
		Name:  "pgquery",
		Usage: "Run one statement with :name / :!name placeholders and print the rows as JSON",

		// -p values may contain commas.
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML config file; PGQUERY_* env and .env are used when empty",
			},
			&cli.StringFlag{
				Name:     "sql",
				Usage:    "statement with :name / :!name placeholders",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "group-by",
				Usage: "GROUP BY clause text",
			},
			&cli.StringFlag{
				Name:  "order-by",
				Usage: "ORDER BY clause text",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "LIMIT",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log statements and pool statistics",
			},
			&cli.StringSliceFlag{
				Name:    "param",
				Aliases: []string{"p"},
				Usage:   "named parameter name=value (repeatable)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			named, err := parseParams(cmd.StringSlice("param"))
			if err != nil {
				return err
			}
			return exec(ctx, invocation{
				ConfigPath: cmd.String("config"),
				SQL:        cmd.String("sql"),
				Named:      named,
				Options: query.Options{
					GroupBy: cmd.String("group-by"),
					OrderBy: cmd.String("order-by"),
					Limit:   int(cmd.Int("limit")),
				},
				Verbose: cmd.Bool("verbose"),
			})
		},
	}
}

// parseParams turns name=value pairs into a named map. Values stay strings;
// the server casts them.
func parseParams(pairs []string) (map[string]any, error) {
	named := make(map[string]any, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name=value, got %q", p)
		}
		named[name] = value
	}
	return named, nil
}

// bagFor picks the bag for sql. A statement with placeholders is always
// rewritten, so a missing -p fails fast instead of reaching the server.
func bagFor(sql string, named map[string]any) params.Bag {
	if len(named) > 0 || params.Parse(sql).Placeholders() > 0 {
		return params.Named(named)
	}
	return params.None
}

func run(ctx context.Context, inv invocation) error {
	cfg, err := loadConfig(inv.ConfigPath)
	if err != nil {
		return err
	}

	pool, err := connector.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	console := logging.NewConsole(os.Stderr)
	dbOpts := []engine.Option{engine.WithConsole(console)}
	if inv.Verbose {
		dbOpts = append(dbOpts, engine.WithLoggerDB(console))
	}
	db := engine.New(pool, dbOpts...)

	sql := inv.SQL
	if clause := strings.TrimSpace(inv.Options.Clause()); clause != "" {
		sql = strings.TrimRight(sql, " ;") + " " + clause
	}

	rows, err := db.Query(ctx, sql, bagFor(sql, inv.Named))
	if inv.Verbose {
		logStats(console, connector.Stats(pool))
	}
	if err != nil {
		return err
	}
	return printRows(os.Stdout, rows)
}

func logStats(l logging.Logger, s connector.ConnectionStats) {
	l.Log("pool stats", fmt.Sprintf("open=%d in_use=%d idle=%d", s.OpenConnections, s.InUse, s.Idle))
}

func loadConfig(path string) (connector.Config, error) {
	if path != "" {
		return connector.LoadConfig(path)
	}
	return connector.ConfigFromEnv(".env")
}

func printRows(w io.Writer, rows []database.Row) error {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = r.Map()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
