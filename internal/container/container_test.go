package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvdash/internal/config"
)

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestContainerWiring(t *testing.T) {
	c, err := New(config.Default(), nil)
	require.NoError(t, err)

	assert.NotNil(t, c.Dashboard)
	assert.Nil(t, c.Server)
	assert.Equal(t, "image/png", c.Dashboard.ContentType())

	require.NoError(t, c.InitServer(context.Background()))
	assert.NotNil(t, c.Server)
	assert.NotNil(t, c.Store)
	assert.Error(t, c.InitServer(context.Background()))

	require.NoError(t, c.Shutdown(context.Background()))
}
