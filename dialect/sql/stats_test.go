package sql

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/rowmap"
)

func TestStatsDriver(t *testing.T) {
	ctx := context.Background()
	inner := &countingDriver{rows: []rowmap.Row{}}

	var slow []string
	drv := NewStatsDriver(inner,
		WithSlowThreshold(0),
		WithSlowQueryHook(func(_ context.Context, query string, _ []rowmap.Value, _ time.Duration) {
			slow = append(slow, query)
		}),
	)

	_, err := drv.Query(ctx, "SELECT * FROM product", nil)
	require.NoError(t, err)
	_, err = drv.QueryOne(ctx, "SELECT * FROM product WHERE id = $1", []rowmap.Value{rowmap.Bigint(1)})
	require.NoError(t, err)
	_, err = drv.Exec(ctx, "DELETE FROM product", nil)
	require.NoError(t, err)

	s := drv.QueryStats().Stats()
	assert.Equal(t, int64(2), s.TotalQueries)
	assert.Equal(t, int64(1), s.TotalExecs)
	assert.Equal(t, int64(0), s.Errors)
	assert.Equal(t, int64(3), s.SlowQueries)
	assert.Len(t, slow, 3)
	assert.NotEmpty(t, s.String())

	drv.QueryStats().Reset()
	assert.Equal(t, int64(0), drv.QueryStats().Stats().TotalQueries)
}

func TestStatsDriverThreshold(t *testing.T) {
	drv := NewStatsDriver(&countingDriver{})
	assert.Equal(t, 100*time.Millisecond, drv.SlowThreshold())
	drv.SetSlowThreshold(time.Second)
	assert.Equal(t, time.Second, drv.SlowThreshold())
}

func TestStatsSnapshotAvg(t *testing.T) {
	assert.Equal(t, time.Duration(0), StatsSnapshot{}.AvgQueryDuration())
	s := StatsSnapshot{TotalQueries: 2, TotalDuration: 10 * time.Millisecond}
	assert.Equal(t, 5*time.Millisecond, s.AvgQueryDuration())
}

func TestDebugDriver(t *testing.T) {
	ctx := context.Background()
	inner := &countingDriver{rows: []rowmap.Row{}}

	var logged []string
	drv := NewDebugDriver(inner, DebugWithLog(func(_ context.Context, v ...any) {
		for _, x := range v {
			logged = append(logged, x.(string))
		}
	}))

	_, err := drv.Query(ctx, "SELECT * FROM product", nil)
	require.NoError(t, err)
	_, err = drv.Exec(ctx, "DELETE FROM product", nil)
	require.NoError(t, err)
	require.NoError(t, drv.Begin(ctx))
	require.NoError(t, drv.Commit(ctx))
	require.NoError(t, drv.Rollback(ctx))

	require.Len(t, logged, 5)
	assert.Contains(t, logged[0], "query: SELECT * FROM product")
	assert.Contains(t, logged[1], "exec: DELETE FROM product")
	assert.Equal(t, "begin transaction", logged[2])
	assert.Equal(t, "commit transaction", logged[3])
	assert.Equal(t, "rollback transaction", logged[4])
}
