package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/prompt-workshop-api/internal/config"
	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/handler"
)

func TestAnalyticsHandler_Summary(t *testing.T) {
	ta := newTestApp(t, appOptions{})
	session := ta.seedSession(t, "Refunds", true)

	first := evaluatePayload()
	resp, _ := ta.do(t, http.MethodPost, "/api/evaluate", first)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	second := evaluatePayload()
	second.Stage = 2
	ta.evaluator.result.EffectivenessScore = 90
	resp, _ = ta.do(t, http.MethodPost, "/api/evaluate", second)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, env := ta.do(t, http.MethodGet, fmt.Sprintf("/api/analytics?session=%d", session.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summary dto.AnalyticsResponse
	decodeData(t, env, &summary)
	require.Equal(t, 2, summary.TotalSubmissions)
	require.Equal(t, 2500, summary.TotalTokens)
	require.Len(t, summary.Users, 1)
	require.Equal(t, "User 1", summary.Users[0].User)
	require.NotNil(t, summary.Users[0].Improvement)
	require.InDelta(t, 8.0, *summary.Users[0].Improvement, 1e-9)
	require.Equal(t, "+8.0", summary.Users[0].ImprovementDisplay)
}

func TestAnalyticsHandler_GuardedAndValidated(t *testing.T) {
	ta := newTestApp(t, appOptions{cfg: config.Config{AdminJWTSecret: adminSecret}})

	resp, _ := ta.do(t, http.MethodGet, "/api/analytics", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, env := ta.do(t, http.MethodGet, "/api/analytics?session=0", nil, "Authorization", bearer(t, "admin"))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, handler.CodeValidationFailed, env.Code)
}
