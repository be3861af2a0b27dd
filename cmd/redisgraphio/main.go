// Package main provides the redisgraphio CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/orneryd/redisgraphio/pkg/client"
	"github.com/orneryd/redisgraphio/pkg/config"
	"github.com/orneryd/redisgraphio/pkg/query"
	"github.com/orneryd/redisgraphio/pkg/replay"
	"github.com/orneryd/redisgraphio/pkg/schema"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries state shared by all commands of one invocation.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
	schemas    *schema.Cache

	closers []func() error
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "redisgraphio",
		Short: "redisgraphio - query RedisGraph/FalkorDB graphs from the command line",
		Long: `redisgraphio sends GRAPH.QUERY commands to a Redis server running a graph
module and prints the decoded results.

Features:
  • Injection-safe $parameters (--param name=<literal>)
  • Table, JSON and YAML output
  • Schema listings (labels, property keys, relationship types)
  • Record replies to a local store and replay them offline`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { _ = a.logger.Sync() },
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.String("addr", "", "Redis address (host:port)")
	flags.String("password", "", "Redis password")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("record", "", "Record replies into this directory")
	flags.String("replay", "", "Answer from replies recorded in this directory")
	rootCmd.MarkFlagsMutuallyExclusive("record", "replay")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "redisgraphio v%s (%s)\n", version, commit)
		},
	})

	// Query command
	queryCmd := &cobra.Command{
		Use:   "query [graph] <cypher>",
		Short: "Run a query and print its result",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  a.runQuery,
	}
	queryCmd.Flags().StringArrayP("param", "p", nil, "Query parameter as name=<literal>, e.g. team='Yamaha'")
	queryCmd.Flags().Bool("read-only", false, "Send as GRAPH.RO_QUERY")
	queryCmd.Flags().StringP("output", "o", "table", "Output format (table, json, yaml)")
	rootCmd.AddCommand(queryCmd)

	// Exec command
	execCmd := &cobra.Command{
		Use:   "exec [graph] <cypher>",
		Short: "Run a query and print only its statistics",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  a.runExec,
	}
	execCmd.Flags().StringArrayP("param", "p", nil, "Query parameter as name=<literal>")
	rootCmd.AddCommand(execCmd)

	// Schema listings
	for _, l := range []struct {
		use, short string
		list       func(*client.Graph, context.Context) ([]string, error)
	}{
		{"labels", "List node labels", (*client.Graph).LabelsContext},
		{"property-keys", "List property keys", (*client.Graph).PropertyKeysContext},
		{"relationship-types", "List relationship types", (*client.Graph).RelationshipTypesContext},
	} {
		list := l.list
		listCmd := &cobra.Command{
			Use:   l.use + " [graph]",
			Short: l.short,
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withGraph(a.graphName(args), func(g *client.Graph) error {
					names, err := list(g, cmd.Context())
					if err != nil {
						return err
					}
					format, _ := cmd.Flags().GetString("output")
					return renderNames(cmd.OutOrStdout(), names, format)
				})
			},
		}
		listCmd.Flags().StringP("output", "o", "table", "Output format (table, json, yaml)")
		rootCmd.AddCommand(listCmd)
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "delete [graph]",
		Short: "Delete a graph and all its data",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGraph(a.graphName(args), func(g *client.Graph) error {
				if err := g.Delete(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "graph %q deleted\n", g.Name())
				return nil
			})
		},
	})

	return rootCmd
}

// setup loads configuration and builds the logger. Flags win over the
// environment, which wins over the config file.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFromEnvOrFile(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Redis.Address, _ = flags.GetString("addr")
	}
	if flags.Changed("password") {
		cfg.Redis.Password, _ = flags.GetString("password")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("record") {
		cfg.Replay.Mode = config.ReplayRecord
		cfg.Replay.Dir, _ = flags.GetString("record")
	}
	if flags.Changed("replay") {
		cfg.Replay.Mode = config.ReplayReplay
		cfg.Replay.Dir, _ = flags.GetString("replay")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.schemas = schema.NewCache(cfg.Graph.SchemaCacheSize, cfg.Graph.SchemaCacheTTL)

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	a.logger.Debug("configuration loaded", zap.Stringer("config", cfg))
	return nil
}

// close releases everything connect opened, newest first.
func (a *app) close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// connect opens the transport selected by the replay mode.
func (a *app) connect() (client.Conn, error) {
	switch a.cfg.Replay.Mode {
	case config.ReplayReplay:
		store, err := replay.Open(replay.Options{Dir: a.cfg.Replay.Dir})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return replay.NewPlayer(store, a.logger), nil

	case config.ReplayRecord:
		store, err := replay.Open(replay.Options{Dir: a.cfg.Replay.Dir, SyncWrites: true})
		if err != nil {
			return nil, err
		}
		pool := client.Dial(a.cfg.Redis, a.cfg.Pool)
		a.closers = append(a.closers, store.Close, pool.Close)
		return replay.NewRecorder(pool, store, a.logger), nil

	default:
		pool := client.Dial(a.cfg.Redis, a.cfg.Pool)
		a.closers = append(a.closers, pool.Close)
		return pool, nil
	}
}

// graphName returns the graph named on the command line, or the configured
// default when rest holds no name.
func (a *app) graphName(rest []string) string {
	if len(rest) > 0 {
		return rest[0]
	}
	return a.cfg.Graph.Name
}

// splitQueryArgs separates the optional graph name from the query text.
func (a *app) splitQueryArgs(args []string) (graphName, text string) {
	return a.graphName(args[:len(args)-1]), args[len(args)-1]
}

// withGraph connects, runs fn against graph name and closes the connection
// whatever fn returns.
func (a *app) withGraph(name string, fn func(*client.Graph) error) (err error) {
	conn, err := a.connect()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); err == nil {
			err = cerr
		}
	}()
	return fn(client.New(name, conn,
		client.WithLogger(a.logger),
		client.WithSchemaCache(a.schemas),
	))
}

func (a *app) runQuery(cmd *cobra.Command, args []string) error {
	name, text := a.splitQueryArgs(args)
	q, err := buildQuery(cmd, text)
	if err != nil {
		return err
	}
	ro, _ := cmd.Flags().GetBool("read-only")
	q.ReadOnly(ro || a.cfg.Graph.ReadOnly)

	return a.withGraph(name, func(g *client.Graph) error {
		res, err := g.QueryContext(cmd.Context(), q)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("output")
		return renderResult(cmd.OutOrStdout(), res, format)
	})
}

func (a *app) runExec(cmd *cobra.Command, args []string) error {
	name, text := a.splitQueryArgs(args)
	q, err := buildQuery(cmd, text)
	if err != nil {
		return err
	}
	return a.withGraph(name, func(g *client.Graph) error {
		stats, err := g.ExecContext(cmd.Context(), q)
		if err != nil {
			return err
		}
		for _, line := range stats {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	})
}

func buildQuery(cmd *cobra.Command, text string) (*query.Query, error) {
	raw, _ := cmd.Flags().GetStringArray("param")
	params, err := parseParams(raw)
	if err != nil {
		return nil, err
	}
	q := query.New(text)
	if params != nil {
		q.WithParams(params)
	}
	return q, nil
}

// parseParams turns name=<literal> flags into parameters. It returns nil when
// no flag was given so the query text is sent verbatim.
func parseParams(raw []string) (query.Params, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make(query.Params, len(raw))
	for _, p := range raw {
		name, literal, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected name=<literal>", p)
		}
		v, err := query.ParseLiteral(literal)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		params[name] = v
	}
	return params, nil
}

func newLogger(lc config.LoggingConfig) (*zap.Logger, error) {
	cfgZap := zap.NewProductionConfig()
	cfgZap.Level.SetLevel(parseLogLevel(lc.Level))
	cfgZap.Encoding = lc.Format
	if lc.Format == "console" {
		cfgZap.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	cfgZap.OutputPaths = []string{lc.Output}
	cfgZap.ErrorOutputPaths = []string{"stderr"}
	return cfgZap.Build()
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
