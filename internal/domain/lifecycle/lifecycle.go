// Package lifecycle holds shared timeouts for fx lifecycle hooks.
package lifecycle

import "time"

// DefaultTimeout bounds OnStart/OnStop hooks so a stuck dependency cannot
// hang process startup or shutdown.
const DefaultTimeout = 10 * time.Second
