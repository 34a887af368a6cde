package state

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedis_Success(t *testing.T) {
	mockRedis := miniredis.RunT(t)
	defer mockRedis.Close()

	client, err := InitRedis(mockRedis.Addr(), "", 0)
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestInitRedis_WithPassword(t *testing.T) {
	mockRedis := miniredis.RunT(t)
	defer mockRedis.Close()
	mockRedis.RequireAuth("testpassword")

	client, err := InitRedis(mockRedis.Addr(), "testpassword", 0)
	require.NoError(t, err)
	require.NotNil(t, client)
	client.Close()
}

func TestInitRedis_WithWrongPassword(t *testing.T) {
	mockRedis := miniredis.RunT(t)
	defer mockRedis.Close()
	mockRedis.RequireAuth("correctPassword")

	client, err := InitRedis(mockRedis.Addr(), "wrongpassword", 0)
	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestInitRedis_InvalidAddress(t *testing.T) {
	client, err := InitRedis("invalid-address:6379", "", 0)

	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
