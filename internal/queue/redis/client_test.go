package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClient(t *testing.T) {
	c, err := NewClient("redis://localhost:6379/2", zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.NoError(t, c.Close())
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("localhost:6379", zap.NewNop())
	assert.Error(t, err)
}
