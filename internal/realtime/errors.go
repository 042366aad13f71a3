package realtime

import "errors"

// ErrUnauthenticated aborts auth-required hub methods when the connection
// carries no logical user.
var ErrUnauthenticated = errors.New("user not authenticated")
