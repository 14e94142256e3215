// Package lifecycle holds shared constants for component start/stop
// behavior managed through fx hooks.
package lifecycle

import "time"

// DefaultTimeout bounds graceful startup and shutdown work such as the
// initial database ping and HTTP server drain.
const DefaultTimeout = 10 * time.Second
