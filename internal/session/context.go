package session

import "context"

type ctxKey string

const storeKey ctxKey = "ma.sessionStore"

// WithStore attaches the session store to ctx for the rest of the command tree.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey, s)
}

// FromContext returns the store attached by WithStore.
// It panics when none is attached: reading session state outside the
// tree that owns the store is a programming error.
func FromContext(ctx context.Context) *Store {
	s, ok := ctx.Value(storeKey).(*Store)
	if !ok || s == nil {
		panic("session: FromContext called without a Store; wrap the context with WithStore")
	}
	return s
}
