package cli

import (
	"path/filepath"
	"testing"

	"github.com/alexanderramin/atelier/internal/config"
	"github.com/alexanderramin/atelier/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenLog(t *testing.T) {
	for _, path := range []string{"", config.LogOff} {
		obs, closer, err := openLog(path)
		require.NoError(t, err)
		assert.IsType(t, service.NoopUseCaseObserver{}, obs)
		assert.Nil(t, closer)
	}

	obs, closer, err := openLog(config.LogStderr)
	require.NoError(t, err)
	assert.NotNil(t, obs)
	assert.Nil(t, closer, "stderr is never closed")

	path := filepath.Join(t.TempDir(), "nested", "atelier.log")
	obs, closer, err = openLog(path)
	require.NoError(t, err)
	require.NotNil(t, closer)
	assert.NotNil(t, obs)
	require.NoError(t, closer.Close())
	assert.FileExists(t, path)
}
