// Package sources adapts the time, weather, and air-quality services to forecast types.
package sources

import "context"

// JSONGetter is the network client contract the adapters rely on.
type JSONGetter interface {
	GetJSON(ctx context.Context, rawURL string, dest any) error
}
