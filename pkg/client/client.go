// Package client sends graph queries over a Redis connection and decodes the
// replies.
//
// A Graph binds a graph name to a connection. Every query goes through the
// same path:
//
//  1. query.Query.Command builds the GRAPH.QUERY / GRAPH.RO_QUERY arguments
//     (a missing parameter fails here, before anything is sent)
//  2. the connection sends the command
//  3. reply.Decode turns the reply into a graph.QueryResult, resolving
//     compact label, property key and relationship type ids through the
//     graph's schema.Catalog
//
// When a reply mentions an id the catalog does not know yet, the catalog is
// refreshed with db.labels(), db.propertyKeys() and db.relationshipTypes() and
// the same reply is decoded once more. The query itself is never resent.
//
// Example:
//
//	conn := client.Dial(cfg.Redis, cfg.Pool)
//	defer conn.Close()
//
//	g := client.New("motogp", conn, client.WithLogger(logger))
//	res, err := g.QueryContext(ctx, query.New(
//		"MATCH (r:Rider)-[:rides]->(t:Team {name: $team}) RETURN r.name",
//	).Set("team", "Yamaha").ReadOnly(true))
//	if err != nil {
//		return err
//	}
//	names, err := extract.Rows(res, extract.Row1(extract.String))
//
// Query and Exec block until the reply arrives. QueryContext and ExecContext
// give up when ctx is done. Both forms share the build and decode logic.
//
// A Graph is safe for concurrent use when its connection is, which holds for
// *PoolConn but not for a single redis.Conn.
package client

import (
	"context"
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/orneryd/redisgraphio/pkg/graph"
	"github.com/orneryd/redisgraphio/pkg/query"
	"github.com/orneryd/redisgraphio/pkg/reply"
	"github.com/orneryd/redisgraphio/pkg/schema"
)

// Span names and attribute keys.
const (
	SpanQuery  = "redisgraphio.query"
	SpanDelete = "redisgraphio.delete"

	AttrGraph    = attribute.Key("redisgraph.graph")
	AttrCommand  = attribute.Key("redisgraph.command")
	AttrReadOnly = attribute.Key("redisgraph.read_only")
	AttrRows     = attribute.Key("redisgraph.rows")
)

const tracerName = "github.com/orneryd/redisgraphio/pkg/client"

// Conn sends one command and returns its reply. redis.Conn satisfies it.
type Conn interface {
	Do(cmd string, args ...interface{}) (interface{}, error)
}

// ContextConn is a Conn that can abandon a command when ctx is done.
// Connections from redis.Dial and redis.Pool satisfy it.
type ContextConn interface {
	Conn
	DoContext(ctx context.Context, cmd string, args ...interface{}) (interface{}, error)
}

// Graph runs queries against one named graph.
type Graph struct {
	name    string
	conn    Conn
	logger  *zap.Logger
	tracer  trace.Tracer
	schemas *schema.Cache
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithTracer sets the tracer. The default is the global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(g *Graph) {
		if t != nil {
			g.tracer = t
		}
	}
}

// WithSchemaCache shares a schema cache between Graphs, so several handles
// on the same graph name refresh one catalog.
func WithSchemaCache(c *schema.Cache) Option {
	return func(g *Graph) {
		if c != nil {
			g.schemas = c
		}
	}
}

// New creates a Graph named name that sends commands through conn.
func New(name string, conn Conn, opts ...Option) *Graph {
	g := &Graph{
		name:   name,
		conn:   conn,
		logger: zap.NewNop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.schemas == nil {
		g.schemas = schema.NewCache(1, 0)
	}
	return g
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// Catalog returns the schema catalog used to resolve compact ids.
func (g *Graph) Catalog() *schema.Catalog { return g.schemas.Catalog(g.name) }

// Query runs q and blocks until the decoded result is available.
func (g *Graph) Query(q *query.Query) (*graph.QueryResult, error) {
	return g.QueryContext(context.Background(), q)
}

// Exec runs q and returns only its statistics.
func (g *Graph) Exec(q *query.Query) (graph.Statistics, error) {
	return g.ExecContext(context.Background(), q)
}

// QueryContext runs q, giving up when ctx is done.
func (g *Graph) QueryContext(ctx context.Context, q *query.Query) (*graph.QueryResult, error) {
	return g.run(ctx, q, g.Catalog())
}

// ExecContext runs q and returns only its statistics, giving up when ctx is
// done.
func (g *Graph) ExecContext(ctx context.Context, q *query.Query) (graph.Statistics, error) {
	res, err := g.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	return res.Statistics, nil
}

// Delete removes the graph and everything in it from the server.
func (g *Graph) Delete(ctx context.Context) error {
	ctx, span := g.tracer.Start(ctx, SpanDelete, trace.WithAttributes(
		AttrGraph.String(g.name),
		AttrCommand.String(query.CmdDelete),
	))
	defer span.End()

	if _, err := g.do(ctx, query.CmdDelete, g.name); err != nil {
		err = &TransportError{Graph: g.name, Command: query.CmdDelete, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	g.schemas.Forget(g.name)
	g.logger.Info("graph deleted", zap.String("graph", g.name))
	return nil
}

// run is the single build, send and decode path. A nil resolver is used for
// the schema procedures themselves, whose replies carry no compact ids.
func (g *Graph) run(ctx context.Context, q *query.Query, cat *schema.Catalog) (*graph.QueryResult, error) {
	verb, args, err := q.Command(g.name)
	if err != nil {
		return nil, err
	}

	ctx, span := g.tracer.Start(ctx, SpanQuery, trace.WithAttributes(
		AttrGraph.String(g.name),
		AttrCommand.String(verb),
		AttrReadOnly.Bool(q.IsReadOnly()),
	))
	defer span.End()

	start := time.Now()
	res, err := g.send(ctx, verb, args, cat)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.logger.Debug("graph command failed",
			zap.String("graph", g.name),
			zap.String("command", verb),
			zap.Duration("took", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetAttributes(AttrRows.Int(res.Len()))
	g.logger.Debug("graph command",
		zap.String("graph", g.name),
		zap.String("command", verb),
		zap.Int("rows", res.Len()),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}

func (g *Graph) send(ctx context.Context, verb string, args []interface{}, cat *schema.Catalog) (*graph.QueryResult, error) {
	raw, err := g.do(ctx, verb, args...)
	if err != nil {
		return nil, &TransportError{Graph: g.name, Command: verb, Err: err}
	}

	var resolver reply.Resolver
	if cat != nil {
		resolver = cat
	}
	res, err := decode(raw, resolver)

	var unknown *reply.UnknownIDError
	if cat != nil && errors.As(err, &unknown) {
		g.logger.Warn("unknown schema id in reply, refreshing catalog",
			zap.String("graph", g.name),
			zap.Stringer("kind", unknown.Kind),
			zap.Int64("id", unknown.ID),
		)
		if rerr := cat.Refresh(ctx, g.names); rerr != nil {
			return nil, rerr
		}
		res, err = decode(raw, resolver)
	}

	if err != nil {
		if _, ok := ServerError(err); ok {
			return nil, &TransportError{Graph: g.name, Command: verb, Err: err}
		}
		return nil, err
	}
	return res, nil
}

// decode accepts the one-element [statistics] reply sent for queries without
// a RETURN clause as an empty result.
func decode(raw interface{}, r reply.Resolver) (*graph.QueryResult, error) {
	if top, ok := raw.([]interface{}); ok && len(top) == 1 {
		stats, err := reply.DecodeStatistics(raw)
		if err != nil {
			return nil, err
		}
		return &graph.QueryResult{Statistics: stats}, nil
	}
	return reply.Decode(raw, r)
}

// do sends one command. Without DoContext support the blocking Do runs on
// its own goroutine; if ctx ends first the reply is dropped.
func (g *Graph) do(ctx context.Context, cmd string, args ...interface{}) (interface{}, error) {
	if cc, ok := g.conn.(ContextConn); ok {
		return cc.DoContext(ctx, cmd, args...)
	}
	if ctx.Done() == nil {
		return g.conn.Do(cmd, args...)
	}

	type result struct {
		reply interface{}
		err   error
	}
	done := make(chan result, 1)
	go func() {
		r, err := g.conn.Do(cmd, args...)
		done <- result{r, err}
	}()

	select {
	case r := <-done:
		return r.reply, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

var _ ContextConn = redis.ConnWithContext(nil)
