package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/service"
)

func TestHealthHandler_Healthy(t *testing.T) {
	ta := newTestApp(t, appOptions{})
	ta.seedSession(t, "Refunds", true)

	resp, env := ta.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health dto.HealthResponse
	decodeData(t, env, &health)
	require.Equal(t, service.HealthHealthy, health.Status)
	require.True(t, health.Database.Connected)
	require.Equal(t, int64(1), health.Tables["sessions"].Count)
	require.Equal(t, int64(1), health.Tables["sessions"].ActiveCount)
	require.NotNil(t, health.Schema)
	require.True(t, health.Schema.HasDynamicCriteria)
	require.Equal(t, service.MigrationNewOnly, health.Schema.MigrationStatus)
}

func TestHealthHandler_MemoryModeDegraded(t *testing.T) {
	ta := newTestApp(t, appOptions{memory: true})

	resp, env := ta.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health dto.HealthResponse
	decodeData(t, env, &health)
	require.Equal(t, service.HealthDegraded, health.Status)
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	ta := newTestApp(t, appOptions{})
	sqlDB, err := ta.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	resp, env := ta.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	require.False(t, env.Success)
	require.Equal(t, "database_unavailable", env.Code)

	var health dto.HealthResponse
	decodeData(t, env, &health)
	require.Equal(t, service.HealthUnhealthy, health.Status)
	require.False(t, health.Database.Connected)
	require.NotEmpty(t, health.Database.Error)
}
