package client

import (
	"context"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/orneryd/redisgraphio/pkg/config"
)

// idleCheckAfter is how long a pooled connection may sit idle before it is
// pinged on borrow.
const idleCheckAfter = time.Minute

// PoolConn adapts a redis.Pool to ContextConn. Each command borrows one
// connection and returns it right after the reply.
type PoolConn struct {
	pool *redis.Pool
}

// NewPoolConn wraps an existing pool.
func NewPoolConn(p *redis.Pool) *PoolConn {
	return &PoolConn{pool: p}
}

// Dial builds a pool from configuration. No connection is opened until the
// first command.
func Dial(rc config.RedisConfig, pc config.PoolConfig) *PoolConn {
	opts := DialOptions(rc)
	return NewPoolConn(&redis.Pool{
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialContext(ctx, "tcp", rc.Address, opts...)
		},
		TestOnBorrowContext: func(ctx context.Context, c redis.Conn, lastUsed time.Time) error {
			if time.Since(lastUsed) < idleCheckAfter {
				return nil
			}
			_, err := redis.DoContext(c, ctx, "PING")
			return err
		},
		MaxIdle:         pc.MaxIdle,
		MaxActive:       pc.MaxActive,
		IdleTimeout:     pc.IdleTimeout,
		MaxConnLifetime: pc.MaxConnLifetime,
		Wait:            pc.Wait,
	})
}

// DialOptions converts connection settings to redigo dial options.
func DialOptions(rc config.RedisConfig) []redis.DialOption {
	opts := []redis.DialOption{
		redis.DialDatabase(rc.Database),
		redis.DialUseTLS(rc.TLS),
	}
	if rc.Username != "" {
		opts = append(opts, redis.DialUsername(rc.Username))
	}
	if rc.Password != "" {
		opts = append(opts, redis.DialPassword(rc.Password))
	}
	if rc.ClientName != "" {
		opts = append(opts, redis.DialClientName(rc.ClientName))
	}
	if rc.ConnectTimeout > 0 {
		opts = append(opts, redis.DialConnectTimeout(rc.ConnectTimeout))
	}
	if rc.ReadTimeout > 0 {
		opts = append(opts, redis.DialReadTimeout(rc.ReadTimeout))
	}
	if rc.WriteTimeout > 0 {
		opts = append(opts, redis.DialWriteTimeout(rc.WriteTimeout))
	}
	return opts
}

// Do implements Conn.
func (p *PoolConn) Do(cmd string, args ...interface{}) (interface{}, error) {
	return p.DoContext(context.Background(), cmd, args...)
}

// DoContext implements ContextConn.
func (p *PoolConn) DoContext(ctx context.Context, cmd string, args ...interface{}) (interface{}, error) {
	c, err := p.pool.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return redis.DoContext(c, ctx, cmd, args...)
}

// Stats returns pool statistics.
func (p *PoolConn) Stats() redis.PoolStats { return p.pool.Stats() }

// Close closes the pool and its idle connections.
func (p *PoolConn) Close() error { return p.pool.Close() }
