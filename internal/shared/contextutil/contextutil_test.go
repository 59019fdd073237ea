package contextutil_test

import (
	"context"
	"testing"

	"timetrack/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMetadataRoundTrip(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "rid-1")
	ctx = contextutil.WithUserID(ctx, "user-1")
	ctx = contextutil.WithRole(ctx, "manager")

	md := contextutil.ExtractMetadata(ctx)
	assert.Equal(t, "rid-1", md.RequestID)
	assert.Equal(t, "user-1", md.UserID)
	assert.Equal(t, "manager", md.Role)
}

func TestGetLoggerFallbacks(t *testing.T) {
	assert.NotNil(t, contextutil.GetLogger(context.Background(), nil))

	def := zap.NewExample()
	assert.Same(t, def, contextutil.GetLogger(context.Background(), def))

	scoped := zap.NewExample().Named("scoped")
	ctx := contextutil.WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, contextutil.GetLogger(ctx, def))
}
