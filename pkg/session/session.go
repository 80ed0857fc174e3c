// Package session tracks ended sessions so their tokens stop resolving
// before they expire.
package session

import (
	"context"
	"time"
)

// Store records revoked session IDs until the moment their token would have
// expired anyway.
type Store interface {
	Revoke(ctx context.Context, sessionID string, until time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}
