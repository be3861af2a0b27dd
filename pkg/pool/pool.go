// Package pool reuses the byte buffers the query builder renders text into.
//
// Every parameterised query is rendered twice per call: once per literal and
// once for the substituted text. Reusing the buffers keeps that off the
// allocator for clients that send many small queries.
//
// Usage:
//
//	b := pool.GetBuilder()
//	defer pool.PutBuilder(b)
//
//	b.WriteString("MATCH (r:Rider) RETURN r")
//	text := b.String()
package pool

import (
	"sync"
)

// Config configures buffer pooling.
type Config struct {
	// Enabled controls whether pooling is active
	Enabled bool

	// MaxSize is the largest buffer capacity, in bytes, returned to the pool
	MaxSize int
}

var (
	configMu     sync.RWMutex
	globalConfig = Config{
		Enabled: true,
		MaxSize: 64 << 10,
	}
)

// Configure sets the global pool configuration.
func Configure(config Config) {
	configMu.Lock()
	globalConfig = config
	configMu.Unlock()
}

func current() Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}

// IsEnabled returns whether pooling is enabled.
func IsEnabled() bool {
	return current().Enabled
}

// Builder is a reusable string builder. Unlike strings.Builder it may be
// reset and reused after String has been called.
type Builder struct {
	buf []byte
}

// WriteString appends s.
func (b *Builder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteByte appends c. It never fails.
func (b *Builder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// Grow ensures room for n more bytes.
func (b *Builder) Grow(n int) {
	if cap(b.buf)-len(b.buf) < n {
		grown := make([]byte, len(b.buf), 2*cap(b.buf)+n)
		copy(grown, b.buf)
		b.buf = grown
	}
}

// String returns a copy of the accumulated text.
func (b *Builder) String() string {
	return string(b.buf)
}

// Len returns the number of accumulated bytes.
func (b *Builder) Len() int {
	return len(b.buf)
}

// Reset empties the builder, keeping its capacity.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

var builderPool = sync.Pool{
	New: func() any {
		return &Builder{buf: make([]byte, 0, 256)}
	},
}

// GetBuilder returns an empty builder. Call PutBuilder when done.
func GetBuilder() *Builder {
	if !IsEnabled() {
		return &Builder{buf: make([]byte, 0, 256)}
	}
	b := builderPool.Get().(*Builder)
	b.Reset()
	return b
}

// PutBuilder returns b to the pool. Oversized buffers are dropped.
func PutBuilder(b *Builder) {
	if b == nil {
		return
	}
	cfg := current()
	if !cfg.Enabled || cap(b.buf) > cfg.MaxSize {
		return
	}
	b.Reset()
	builderPool.Put(b)
}
