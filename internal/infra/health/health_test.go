package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthService_RegisterAndCheckAll(t *testing.T) {
	service := NewHealthService(time.Minute)
	service.Register(NewLivenessChecker())
	service.Register(NewComponentHealthChecker("cabin_controller", func(ctx context.Context) (bool, string, map[string]interface{}) {
		return true, "doors closed at floor 3", map[string]interface{}{"floor": 3}
	}))

	results := service.CheckAll(context.Background())
	require.Contains(t, results, "liveness")
	require.Contains(t, results, "cabin_controller")
	assert.Equal(t, StatusHealthy, results["cabin_controller"].Status)
}

func TestHealthService_CheckUnknownName(t *testing.T) {
	service := NewHealthService(time.Minute)

	_, err := service.Check(context.Background(), "does_not_exist")
	assert.Error(t, err)
}

func TestHealthService_CachesResultWithinTTL(t *testing.T) {
	service := NewHealthService(time.Hour)

	calls := 0
	service.Register(NewComponentHealthChecker("counter", func(ctx context.Context) (bool, string, map[string]interface{}) {
		calls++
		return true, "ok", nil
	}))

	_, err := service.Check(context.Background(), "counter")
	require.NoError(t, err)
	_, err = service.Check(context.Background(), "counter")
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second check within TTL must hit the cache")
}

func TestComponentHealthChecker_ReportsUnhealthy(t *testing.T) {
	checker := NewComponentHealthChecker("circuit_breaker", func(ctx context.Context) (bool, string, map[string]interface{}) {
		return false, "breaker open", map[string]interface{}{"state": "open"}
	})

	result := checker.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Equal(t, "breaker open", result.Message)
}

func TestHealthService_GetOverallStatus(t *testing.T) {
	t.Run("healthy when all checkers pass", func(t *testing.T) {
		service := NewHealthService(time.Minute)
		service.Register(NewLivenessChecker())

		status, _ := service.GetOverallStatus(context.Background())
		assert.Equal(t, StatusHealthy, status)
	})

	t.Run("unhealthy when any checker fails", func(t *testing.T) {
		service := NewHealthService(time.Minute)
		service.Register(NewComponentHealthChecker("hardware", func(ctx context.Context) (bool, string, map[string]interface{}) {
			return false, "circuit breaker open", nil
		}))

		status, _ := service.GetOverallStatus(context.Background())
		assert.Equal(t, StatusUnhealthy, status)
	})
}

func TestReadinessChecker_AggregatesDependencies(t *testing.T) {
	healthyDep := NewComponentHealthChecker("a", func(ctx context.Context) (bool, string, map[string]interface{}) {
		return true, "ok", nil
	})
	unhealthyDep := NewComponentHealthChecker("b", func(ctx context.Context) (bool, string, map[string]interface{}) {
		return false, "down", nil
	})

	readiness := NewReadinessChecker(healthyDep, unhealthyDep)
	result := readiness.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Contains(t, result.Message, "1 unhealthy")
}

func TestLivenessChecker_ReportsUptime(t *testing.T) {
	checker := NewLivenessChecker()
	time.Sleep(5 * time.Millisecond)

	result := checker.Check(context.Background())
	assert.Equal(t, StatusHealthy, result.Status)
	uptime, ok := result.Details["uptime_seconds"].(float64)
	require.True(t, ok)
	assert.Greater(t, uptime, 0.0)
}
