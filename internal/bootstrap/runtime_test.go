package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"warbler/internal/config"
	"warbler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRuntimeSQLite(t *testing.T) {
	cfg := &config.Config{
		Env:          "test",
		DBDriver:     config.DriverSQLite,
		DBSQLitePath: filepath.Join(t.TempDir(), "warbler.db"),
		DBSchemaMode: "hybrid",
	}

	rt, err := InitRuntime(cfg, Options{SkipRedis: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	assert.Nil(t, rt.Redis)
	assert.True(t, rt.DB.Migrator().HasTable(&models.User{}))
	assert.True(t, rt.DB.Migrator().HasTable(&models.Like{}))
}

func TestInitRuntimeRejectsBadDriver(t *testing.T) {
	_, err := InitRuntime(&config.Config{DBDriver: "oracle"}, Options{SkipRedis: true, SkipTracing: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database connection failed")
}

func TestCloseWithoutConnections(t *testing.T) {
	rt := &Runtime{shutdownTrace: func(context.Context) error { return nil }}
	assert.NoError(t, rt.Close(context.Background()))
}
