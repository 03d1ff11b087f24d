// Package delivery defines the contract every transport entrypoint satisfies.
package delivery

import "context"

// Delivery is a serving surface (HTTP API, worker endpoint). Serve blocks
// until the server stops; shutdown is handled by fx lifecycle hooks.
type Delivery interface {
	Serve(ctx context.Context) error
}
