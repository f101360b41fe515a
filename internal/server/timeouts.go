package server

import "time"

// The ops surface serves small JSON bodies only, so read and write stay
// tight while idle keep-alives may linger.
const (
	readTimeout  = 5 * time.Second
	writeTimeout = 10 * time.Second
	idleTimeout  = 120 * time.Second
)

// shutdownTimeout bounds graceful shutdown, including the monitor's final
// checkpoint write. A var so tests can shorten it.
var shutdownTimeout = 15 * time.Second
