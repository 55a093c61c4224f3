// Package connectivity tracks whether the remote store is reachable and
// notifies subscribers when connectivity comes back.
package connectivity

import "context"

// Handler runs after an offline→online transition. The returned count is
// used purely for observability (e.g. a "synced N entries" notice); it
// never drives control flow here.
type Handler func(ctx context.Context) int

// Oracle exposes the current online state and a regained-connectivity
// subscription. Unsubscribing is the caller's responsibility via the
// function returned from OnRegained.
type Oracle interface {
	Online() bool
	OnRegained(h Handler) (unsubscribe func())
}
