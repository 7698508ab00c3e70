package out

import "context"

// KVStore is the key-value persistence port. GetItem returns (nil, nil)
// for a missing key so callers can distinguish absence from failure.
// Implementations must behave identically regardless of backing store.
type KVStore interface {
	GetItem(ctx context.Context, key string) ([]byte, error)
	SetItem(ctx context.Context, key string, value []byte) error
	RemoveItem(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
