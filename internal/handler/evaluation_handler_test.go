package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/prompt-workshop-api/internal/config"
	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/handler"
	"github.com/noah-isme/prompt-workshop-api/internal/repository"
	"github.com/noah-isme/prompt-workshop-api/pkg/ai"
)

func evaluatePayload() dto.EvaluateRequest {
	return dto.EvaluateRequest{
		Prompt:       "Write a refund email for order 1234",
		TargetOutput: "Write a refund email",
		UserID:       "user-1",
		Stage:        1,
	}
}

func TestEvaluateHandler_Success(t *testing.T) {
	ta := newTestApp(t, appOptions{})
	session := ta.seedSession(t, "Refunds", true)

	resp, env := ta.do(t, http.MethodPost, "/api/evaluate", evaluatePayload())
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, env.Success)
	require.Equal(t, "Prompt Workshop API", resp.Header.Get("X-Application"))

	var result dto.EvaluateResponse
	decodeData(t, env, &result)
	require.True(t, result.Persisted)
	require.NotNil(t, result.SubmissionID)
	require.Equal(t, session.ID, result.SessionID)
	require.Equal(t, 82.0, result.EffectivenessScore)
	require.Equal(t, map[string]float64{"Clarity": 90, "Specificity": 75}, result.CriteriaScores)
	require.Equal(t, 1250, result.EnergyConsumption.Tokens)
	require.InDelta(t, 0.5, result.EnergyConsumption.EstimatedCO2, 1e-9)

	stored, err := ta.repos.Submissions.List(context.Background(), repository.SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, "user-1", stored[0].UserID)
}

func TestEvaluateHandler_SessionClosed(t *testing.T) {
	ta := newTestApp(t, appOptions{})
	ta.seedSession(t, "Closed", false)

	resp, env := ta.do(t, http.MethodPost, "/api/evaluate", evaluatePayload())
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.False(t, env.Success)
	require.Equal(t, handler.CodeSessionClosed, env.Code)
	require.Empty(t, ta.evaluator.inputs)
}

func TestEvaluateHandler_ValidationFailure(t *testing.T) {
	ta := newTestApp(t, appOptions{})
	ta.seedSession(t, "Refunds", true)

	payload := evaluatePayload()
	payload.Stage = 3
	resp, env := ta.do(t, http.MethodPost, "/api/evaluate", payload)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, handler.CodeValidationFailed, env.Code)
	require.Contains(t, env.Message, "Stage")
}

func TestEvaluateHandler_MalformedBody(t *testing.T) {
	ta := newTestApp(t, appOptions{})

	resp, env := ta.do(t, http.MethodPost, "/api/evaluate", "{not json")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, handler.CodeValidationFailed, env.Code)
}

func TestEvaluateHandler_EvaluatorFailure(t *testing.T) {
	ta := newTestApp(t, appOptions{})
	ta.seedSession(t, "Refunds", true)
	ta.evaluator.err = errors.Join(ai.ErrEvaluationFailed, errors.New("upstream 529"))

	resp, env := ta.do(t, http.MethodPost, "/api/evaluate", evaluatePayload())
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, handler.CodeEvaluationFailed, env.Code)
	require.Equal(t, "Failed to generate evaluation. Please try again.", env.Message)
	require.NotContains(t, env.Message, "529")

	stored, err := ta.repos.Submissions.List(context.Background(), repository.SubmissionFilter{})
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestEvaluateHandler_EvaluatorUnavailable(t *testing.T) {
	ta := newTestApp(t, appOptions{noEvaluator: true})
	ta.seedSession(t, "Refunds", true)

	resp, env := ta.do(t, http.MethodPost, "/api/evaluate", evaluatePayload())
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, handler.CodeEvaluatorUnavailable, env.Code)
}

func TestEvaluateHandler_RateLimited(t *testing.T) {
	ta := newTestApp(t, appOptions{cfg: config.Config{EvaluateRateLimit: 1}})
	ta.seedSession(t, "Refunds", true)

	resp, _ := ta.do(t, http.MethodPost, "/api/evaluate", evaluatePayload())
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, env := ta.do(t, http.MethodPost, "/api/evaluate", evaluatePayload())
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "rate_limited", env.Code)
}
