package client

import (
	"errors"
	"fmt"

	"github.com/gomodule/redigo/redis"
)

// ErrTransport matches every *TransportError:
//
//	if errors.Is(err, client.ErrTransport) { ... }
var ErrTransport = errors.New("graph transport failure")

// TransportError wraps a failure of the connection or an error reply from the
// server. The original error is available through Unwrap, so errors.As with a
// redis.Error or errors.Is with context.Canceled see through it.
type TransportError struct {
	Graph   string
	Command string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Command, e.Graph, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports ErrTransport as a match.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ServerError returns the error reply sent by the server, if err carries one.
func ServerError(err error) (redis.Error, bool) {
	var re redis.Error
	if errors.As(err, &re) {
		return re, true
	}
	return "", false
}
