package querycache

import (
	"context"

	"go.uber.org/zap"
)

// Mutation names a write and the result sets it makes stale.
type Mutation struct {
	Name    string
	Affects []Key
}

// Run calls fn and, only if it succeeds, invalidates every affected key
// before returning. A failed refetch is logged; the mutation result stands.
func Run[T any](ctx context.Context, c *Cache, m Mutation, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	if err := c.Invalidate(ctx, m.Affects...); err != nil {
		c.logger.Warn("refetch after mutation failed",
			zap.String("mutation", m.Name),
			zap.Error(err),
		)
	}
	return v, nil
}
