package session

import "context"

type storeContextKey struct{}

// WithStore adds a Store to the context.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, s)
}

// FromContext returns the request's Store.
func FromContext(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(storeContextKey{}).(*Store)
	return s, ok && s != nil
}

// StateFromContext returns a snapshot of the request's Store, or an empty
// State when there is none.
func StateFromContext(ctx context.Context) State {
	if s, ok := FromContext(ctx); ok {
		return s.Snapshot()
	}
	return State{}
}
