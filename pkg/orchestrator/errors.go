package orchestrator

import "errors"

// ErrClosed is returned by any operation attempted after Close.
var ErrClosed = errors.New("orchestrator: closed")
