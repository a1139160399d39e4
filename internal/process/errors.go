package process

import "errors"

// ErrInvalidPID is returned for pids that would target init or the caller's
// own process group.
var ErrInvalidPID = errors.New("process: refusing to kill pid <= 1")
