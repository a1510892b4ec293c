package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type probe struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "repository", "noop")
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("ignored by the noop tracer"))
}

func TestRegisterQueryMetrics(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:obs_metrics?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, RegisterQueryMetrics(db))
	require.NoError(t, db.AutoMigrate(&probe{}))

	require.NoError(t, db.Create(&probe{Name: "a"}).Error)
	var got []probe
	require.NoError(t, db.Find(&got).Error)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(DatabaseQueryLatency), 2)
}
