package replay

import (
	"context"
	"io"
	"testing"

	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/orneryd/redisgraphio/pkg/client"
	"github.com/orneryd/redisgraphio/pkg/extract"
	"github.com/orneryd/redisgraphio/pkg/query"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// scriptedConn replies from a map keyed by the query text argument.
type scriptedConn struct {
	replies map[string]interface{}
	err     error
	calls   int
}

func (c *scriptedConn) Do(_ string, args ...interface{}) (interface{}, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	r := c.replies[args[1].(string)]
	if serr, ok := r.(redis.Error); ok {
		return nil, serr
	}
	return r, nil
}

func teamsReply() []interface{} {
	return []interface{}{
		[]interface{}{[]interface{}{int64(1), []byte("t.name")}},
		[]interface{}{
			[]interface{}{[]interface{}{int64(2), []byte("Yamaha")}},
			[]interface{}{[]interface{}{int64(2), []byte("Ducati")}},
		},
		[]interface{}{[]byte("Cached execution: 0")},
	}
}

// =============================================================================
// Store Tests
// =============================================================================

func TestStore_PutGet(t *testing.T) {
	s := newTestStore(t)
	args := []interface{}{"motogp", "RETURN 1", "--compact"}

	_, err := s.Get("GRAPH.QUERY", args)
	assert.ErrorIs(t, err, ErrNotRecorded)

	reply := []interface{}{
		nil,
		[]byte("bulk"),
		"status",
		int64(-7),
		[]byte{},
		[]interface{}{redis.Error("nested"), []interface{}{}},
	}
	require.NoError(t, s.Put("GRAPH.QUERY", args, Entry{Reply: reply}))

	e, err := s.Get("GRAPH.QUERY", args)
	require.NoError(t, err)
	assert.Equal(t, reply, e.Reply)
	assert.Equal(t, redis.Error(""), e.Err)

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_ServerErrorEntry(t *testing.T) {
	s := newTestStore(t)
	args := []interface{}{"motogp", "RETURN x", "--compact"}

	require.NoError(t, s.Put("GRAPH.QUERY", args, Entry{Err: redis.Error("Invalid input 'x'")}))
	e, err := s.Get("GRAPH.QUERY", args)
	require.NoError(t, err)
	assert.Nil(t, e.Reply)
	assert.Equal(t, redis.Error("Invalid input 'x'"), e.Err)
}

func TestStore_UnsupportedReply(t *testing.T) {
	s := newTestStore(t)
	err := s.Put("GRAPH.QUERY", []interface{}{"g"}, Entry{Reply: 3.14})
	assert.ErrorIs(t, err, ErrUnsupportedReply)

	err = s.Put("GRAPH.QUERY", []interface{}{struct{}{}}, Entry{})
	assert.ErrorIs(t, err, ErrUnsupportedReply)
}

func TestStore_Closed(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Get("GRAPH.QUERY", nil)
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, s.Put("GRAPH.QUERY", nil, Entry{}), ErrStoreClosed)
	_, err = s.Len()
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestStore_OnDisk(t *testing.T) {
	dir := t.TempDir()
	args := []interface{}{"motogp"}

	s, err := Open(Options{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, s.Put("GRAPH.DELETE", args, Entry{Reply: "OK"}))
	require.NoError(t, s.Close())

	s, err = Open(Options{Dir: dir})
	require.NoError(t, err)
	defer s.Close()
	e, err := s.Get("GRAPH.DELETE", args)
	require.NoError(t, err)
	assert.Equal(t, "OK", e.Reply)

	_, err = Open(Options{})
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	k1, err := Key("GRAPH.QUERY", []interface{}{"g", "RETURN 1", "--compact"})
	require.NoError(t, err)
	assert.Len(t, k1, 33)
	assert.Equal(t, prefixReply, k1[0])

	same, _ := Key("GRAPH.QUERY", []interface{}{"g", []byte("RETURN 1"), "--compact"})
	assert.Equal(t, k1, same, "string and bulk arguments are interchangeable")

	tests := []struct {
		name string
		cmd  string
		args []interface{}
	}{
		{"other verb", "GRAPH.RO_QUERY", []interface{}{"g", "RETURN 1", "--compact"}},
		{"other graph", "GRAPH.QUERY", []interface{}{"h", "RETURN 1", "--compact"}},
		{"shifted boundary", "GRAPH.QUERY", []interface{}{"gR", "ETURN 1", "--compact"}},
		{"no flag", "GRAPH.QUERY", []interface{}{"g", "RETURN 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := Key(tt.cmd, tt.args)
			require.NoError(t, err)
			assert.NotEqual(t, k1, k)
		})
	}
}

// =============================================================================
// Recorder / Player Tests
// =============================================================================

func TestRecordThenReplay(t *testing.T) {
	s := newTestStore(t)
	live := &scriptedConn{replies: map[string]interface{}{
		"MATCH (t:Team) RETURN t.name": teamsReply(),
		"RETURN x":                     redis.Error("Invalid input 'x'"),
	}}

	core, logs := observer.New(zapcore.DebugLevel)
	rec := NewRecorder(live, s, zap.New(core))
	g := client.New("motogp", rec)

	res, err := g.Query(query.New("MATCH (t:Team) RETURN t.name"))
	require.NoError(t, err)
	want, err := extract.Rows(res, extract.Row1(extract.String))
	require.NoError(t, err)
	assert.Equal(t, []string{"Yamaha", "Ducati"}, want)

	_, err = g.Query(query.New("RETURN x"))
	_, isServer := client.ServerError(err)
	assert.True(t, isServer)
	assert.Equal(t, 2, logs.FilterMessage("recorded reply").Len())

	// Connection failures are passed through and not recorded.
	live.err = io.EOF
	_, err = g.Query(query.New("RETURN 2"))
	assert.ErrorIs(t, err, io.EOF)
	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Replay without the live connection.
	p := client.New("motogp", NewPlayer(s, nil))
	res, err = p.QueryContext(context.Background(), query.New("MATCH (t:Team) RETURN t.name"))
	require.NoError(t, err)
	got, err := extract.Rows(res, extract.Row1(extract.String))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = p.Query(query.New("RETURN x"))
	serr, isServer := client.ServerError(err)
	require.True(t, isServer)
	assert.Equal(t, "Invalid input 'x'", serr.Error())

	_, err = p.Query(query.New("RETURN 2"))
	assert.ErrorIs(t, err, ErrNotRecorded)
	assert.ErrorIs(t, err, client.ErrTransport)
}

func TestPlayer_ContextDone(t *testing.T) {
	p := NewPlayer(newTestStore(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.DoContext(ctx, "GRAPH.QUERY", "g", "RETURN 1", "--compact")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecorder_DoContextFallsBackToDo(t *testing.T) {
	live := &scriptedConn{replies: map[string]interface{}{"RETURN 1": teamsReply()}}
	rec := NewRecorder(live, newTestStore(t), nil)

	_, err := rec.DoContext(context.Background(), "GRAPH.QUERY", "g", "RETURN 1", "--compact")
	require.NoError(t, err)
	assert.Equal(t, 1, live.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = rec.DoContext(ctx, "GRAPH.QUERY", "g", "RETURN 1", "--compact")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, live.calls)
}
