package replay

import (
	"context"
	"errors"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
)

// Conn is the transport a Recorder wraps. redis.Conn satisfies it.
type Conn interface {
	Do(cmd string, args ...interface{}) (interface{}, error)
}

type contextConn interface {
	DoContext(ctx context.Context, cmd string, args ...interface{}) (interface{}, error)
}

// Recorder forwards commands to a connection and records the replies.
type Recorder struct {
	next   Conn
	store  *Store
	logger *zap.Logger
}

// NewRecorder wraps next. A nil logger discards output.
func NewRecorder(next Conn, store *Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{next: next, store: store, logger: logger}
}

// Do implements client.Conn.
func (r *Recorder) Do(cmd string, args ...interface{}) (interface{}, error) {
	reply, err := r.next.Do(cmd, args...)
	return r.record(cmd, args, reply, err)
}

// DoContext implements client.ContextConn. The wrapped connection's
// DoContext is used when it has one.
func (r *Recorder) DoContext(ctx context.Context, cmd string, args ...interface{}) (interface{}, error) {
	var (
		reply interface{}
		err   error
	)
	if cc, ok := r.next.(contextConn); ok {
		reply, err = cc.DoContext(ctx, cmd, args...)
	} else {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		reply, err = r.next.Do(cmd, args...)
	}
	return r.record(cmd, args, reply, err)
}

func (r *Recorder) record(cmd string, args []interface{}, reply interface{}, err error) (interface{}, error) {
	var e Entry
	if err != nil {
		var serr redis.Error
		if !errors.As(err, &serr) {
			return reply, err
		}
		e.Err = serr
	} else {
		e.Reply = reply
	}

	if perr := r.store.Put(cmd, args, e); perr != nil {
		r.logger.Warn("failed to record reply", zap.String("command", cmd), zap.Error(perr))
	} else {
		r.logger.Debug("recorded reply", zap.String("command", cmd), zap.Bool("server_error", e.Err != ""))
	}
	return reply, err
}

// Player answers commands from a store.
type Player struct {
	store  *Store
	logger *zap.Logger
}

// NewPlayer creates a Player. A nil logger discards output.
func NewPlayer(store *Store, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{store: store, logger: logger}
}

// Do implements client.Conn. Commands that were never recorded fail with
// ErrNotRecorded; recorded server errors come back as redis.Error.
func (p *Player) Do(cmd string, args ...interface{}) (interface{}, error) {
	e, err := p.store.Get(cmd, args)
	if err != nil {
		p.logger.Debug("replay miss", zap.String("command", cmd), zap.Error(err))
		return nil, err
	}
	if e.Err != "" {
		return nil, e.Err
	}
	return e.Reply, nil
}

// DoContext implements client.ContextConn.
func (p *Player) DoContext(ctx context.Context, cmd string, args ...interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.Do(cmd, args...)
}
