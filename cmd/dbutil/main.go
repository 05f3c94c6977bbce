package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nikola-chen/dbutils/config"
	"github.com/nikola-chen/dbutils/engine"
	"github.com/nikola-chen/dbutils/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Connection and logging flags shared by every subcommand.
type options struct {
	configPath string
	driver     string
	username   string
	password   string
	database   string
	host       string
	port       int
	verbosity  int
	logFile    string
	logSQL     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "dbutil",
		Short: "dbutil - run quick queries and inserts against a database",
		Long: `dbutil opens one connection, runs a single statement and closes it again.
Connection settings come from flags, then DBUTIL_* environment variables, then an optional YAML file.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Apply(opts.verbosity, opts.logFile)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML file with connection settings")
	pf.StringVar(&opts.driver, "driver", "", "Database driver: mysql, postgres or sqlite (or set DBUTIL_DRIVER)")
	pf.StringVarP(&opts.username, "user", "u", "", "Database user (or set DBUTIL_USERNAME)")
	pf.StringVarP(&opts.password, "password", "P", "", "Database password (or set DBUTIL_PASSWORD)")
	pf.StringVarP(&opts.database, "db", "d", "", "Database name, or file path for sqlite (or set DBUTIL_DB)")
	pf.StringVarP(&opts.host, "host", "H", "", "Database host (default 127.0.0.1, or set DBUTIL_HOST)")
	pf.IntVarP(&opts.port, "port", "p", 0, "Database port (default 3306, 5432 for postgres, or set DBUTIL_PORT)")
	pf.CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	pf.StringVar(&opts.logFile, "log-file", "", "Also write logs to this rotating file")
	pf.BoolVar(&opts.logSQL, "log-sql", false, "Log every statement")

	rootCmd.AddCommand(newQueryCmd(opts), newInsertCmd(opts))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dbutil %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})

	return rootCmd
}

func newQueryCmd(opts *options) *cobra.Command {
	var fetchAll bool
	cmd := &cobra.Command{
		Use:   "query <statement>",
		Short: "Run a statement and print its rows as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			return engine.Do(ctx, cfg, func(ctx context.Context, cur *engine.Cursor) error {
				return printRows(ctx, cmd.OutOrStdout(), cur, args[0], fetchAll)
			}, engine.WithLogger(engine.StdLogger()))
		},
	}
	cmd.Flags().BoolVar(&fetchAll, "all", false, "Print the rows as one JSON array instead of one object per line")
	return cmd
}

func printRows(ctx context.Context, w io.Writer, cur *engine.Cursor, stmt string, fetchAll bool) error {
	enc := json.NewEncoder(w)
	if fetchAll {
		rows, err := engine.QueryAll(ctx, cur, stmt)
		if err != nil {
			return err
		}
		return enc.Encode(rows)
	}

	rows, err := engine.Query(ctx, cur, stmt)
	if err != nil {
		return err
	}
	for row := range rows.All() {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

func newInsertCmd(opts *options) *cobra.Command {
	var (
		table string
		cols  []string
		vals  []string
		bind  bool
	)
	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Insert one row",
		Long: `Insert one row. By default the values are pasted into the statement text
unescaped; pass --bind to send them as bound parameters instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(cols) != len(vals) {
				return fmt.Errorf("got %d columns and %d values", len(cols), len(vals))
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			insert := engine.WithDB(cfg, func(ctx context.Context, cur *engine.Cursor, row []string) (int64, error) {
				if bind {
					args := make([]any, len(row))
					for i, v := range row {
						args[i] = v
					}
					return engine.InsertArgs(ctx, cur, table, cols, args)
				}
				return engine.Insert(ctx, cur, table, cols, row)
			}, engine.WithLogger(engine.StdLogger()))

			n, err := insert(ctx, vals)
			if err != nil {
				return err
			}
			log.Info().Str("table", table).Int64("rows", n).Msg("Row inserted")
			return nil
		},
	}
	cmd.Flags().StringVarP(&table, "table", "t", "", "Target table")
	cmd.Flags().StringSliceVar(&cols, "col", nil, "Column name (repeatable, comma separated)")
	cmd.Flags().StringSliceVar(&vals, "val", nil, "Value matched positionally to --col (repeatable, comma separated)")
	cmd.Flags().BoolVar(&bind, "bind", false, "Send values as bound parameters")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("col")
	return cmd
}

// load merges flags over DBUTIL_* environment variables over the YAML file.
func (o *options) load() (engine.Config, error) {
	flags := config.MapSource{}
	set := func(key, v string) {
		if v != "" {
			flags[key] = v
		}
	}
	set("driver", o.driver)
	set("username", o.username)
	set("password", o.password)
	set("db", o.database)
	set("host", o.host)
	if o.port != 0 {
		flags["port"] = o.port
	}
	if o.logSQL {
		flags["log_sql"] = true
	}

	sources := config.Sources{flags, config.EnvSource{Prefix: "DBUTIL_"}}
	if o.configPath != "" {
		file, err := config.LoadFile(o.configPath)
		if err != nil {
			return engine.Config{}, err
		}
		sources = append(sources, file)
	}

	cfg, err := config.NewLoader(sources).Load()
	if err != nil {
		return engine.Config{}, fmt.Errorf("invalid connection settings: %w", err)
	}
	return cfg, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
