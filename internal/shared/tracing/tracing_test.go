package tracing_test

import (
	"context"
	"testing"

	"timetrack/internal/config"
	"timetrack/internal/shared/tracing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := tracing.Init(context.Background(), config.TracingConfig{Enabled: false}, "test", zap.NewNop())

	assert.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
