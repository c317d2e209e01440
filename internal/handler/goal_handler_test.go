package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/handler"
	"github.com/noah-isme/prompt-workshop-api/internal/service"
)

func TestGoalHandler_DefaultsWithoutSession(t *testing.T) {
	ta := newTestApp(t, appOptions{})

	resp, env := ta.do(t, http.MethodGet, "/api/goal", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var goals dto.GoalsResponse
	decodeData(t, env, &goals)
	require.Equal(t, service.DefaultStage1Goal, goals.Stage1)
	require.Nil(t, goals.SessionID)

	resp, env = ta.do(t, http.MethodPost, "/api/goal", dto.UpdateGoalsRequest{Stage1: "New goal"})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, handler.CodeSessionClosed, env.Code)
}

func TestGoalHandler_UpdatesActiveSession(t *testing.T) {
	ta := newTestApp(t, appOptions{})
	session := ta.seedSession(t, "Refunds", true)

	resp, env := ta.do(t, http.MethodPost, "/api/goal", dto.UpdateGoalsRequest{Stage2: "Plan a holiday campaign"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var goals dto.GoalsResponse
	decodeData(t, env, &goals)
	require.Equal(t, "Write a refund email", goals.Stage1)
	require.Equal(t, "Plan a holiday campaign", goals.Stage2)
	require.NotNil(t, goals.SessionID)
	require.Equal(t, session.ID, *goals.SessionID)

	resp, env = ta.do(t, http.MethodGet, "/api/goal", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeData(t, env, &goals)
	require.Equal(t, "Plan a holiday campaign", goals.Stage2)
}
