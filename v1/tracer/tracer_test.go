package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_DisabledIsInert(t *testing.T) {
	tr, err := NewClient(DefaultConfig())
	require.NoError(t, err)
	assert.False(t, tr.Enabled())

	ctx, span := tr.Start(context.Background(), "ingest.process")
	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	require.NoError(t, cfg.Validate())

	cfg.SampleRatio = 1.5
	assert.Error(t, cfg.Validate())

	cfg.SampleRatio = 0.5
	cfg.Endpoint = ""
	assert.Error(t, cfg.Validate())

	// A disabled tracer never validates exporter settings.
	assert.NoError(t, Config{}.Validate())
}
