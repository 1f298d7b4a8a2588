package panel

import (
	"errors"
	"fmt"
)

// Error kinds. Operation errors wrap one of these, so callers classify with
// errors.Is.
var (
	ErrInput        = errors.New("invalid input")
	ErrNotConnected = errors.New("not connected to robot")
	ErrTransport    = errors.New("bridge transport error")
	ErrRequest      = errors.New("bridge request failed")
	ErrInvalidState = errors.New("invalid connection state")
	ErrBusy         = errors.New("operation already in flight")
)

var (
	ErrEmptyEndpoint = fmt.Errorf("%w: bridge endpoint is empty", ErrInput)
	ErrEmptyScript   = fmt.Errorf("%w: script is empty", ErrInput)
	// ErrChannelReleased is returned by a channel used after the connection
	// that bound it went away.
	ErrChannelReleased = fmt.Errorf("%w: channel released", ErrNotConnected)
)
