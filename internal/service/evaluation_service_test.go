package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/prompt-workshop-api/internal/config"
	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/models"
	"github.com/noah-isme/prompt-workshop-api/internal/repository"
	"github.com/noah-isme/prompt-workshop-api/pkg/ai"
)

func refundRequest() dto.EvaluateRequest {
	return dto.EvaluateRequest{
		Prompt:       "Draft a refund email",
		TargetOutput: "Write a refund email",
		UserID:       "user-1",
		Stage:        1,
	}
}

func TestEvaluationServicePersistsScoresPerSessionCriterion(t *testing.T) {
	store := repository.NewMemoryStore()
	session := refundSession(true)
	require.NoError(t, store.Sessions().Create(context.Background(), &session))

	evaluator := &stubEvaluator{result: refundResult()}
	observer := &recordingObserver{}
	svc := NewEvaluationService(store.Sessions(), store.Submissions(), evaluator, newValidator(), EvaluationOptions{Observers: []SubmissionObserver{observer}}, testLogger())

	response, err := svc.Evaluate(context.Background(), refundRequest())
	require.NoError(t, err)
	require.True(t, response.Persisted)
	require.NotNil(t, response.SubmissionID)
	require.Equal(t, session.ID, response.SessionID)
	require.Equal(t, "Write a refund email", response.TargetOutput)
	require.Equal(t, map[string]float64{"Clarity": 80, "Specificity": 65, "Efficiency": 70}, response.CriteriaScores)
	require.Equal(t, 1250, response.EnergyConsumption.Tokens)
	require.Equal(t, float64(1250)*0.0004, response.EnergyConsumption.EstimatedCO2)
	require.Equal(t, float64(1250)*0.00002, response.EnergyConsumption.EstimatedCost)

	require.Len(t, evaluator.inputs, 1)
	require.Len(t, evaluator.inputs[0].Criteria, 3)

	stored, err := store.Submissions().GetByID(context.Background(), *response.SubmissionID)
	require.NoError(t, err)
	require.Equal(t, session.ID, stored.SessionID)
	require.Equal(t, 1, stored.Stage)
	require.Len(t, stored.Scores(), 3)
	require.Contains(t, stored.Scores(), "Clarity")
	require.Contains(t, stored.Scores(), "Specificity")
	require.Contains(t, stored.Scores(), "Efficiency")
	require.Len(t, observer.submissions, 1)
}

func TestEvaluationServiceRejectsWhenNoSessionIsOpen(t *testing.T) {
	store := repository.NewMemoryStore()
	closed := refundSession(false)
	require.NoError(t, store.Sessions().Create(context.Background(), &closed))

	evaluator := &stubEvaluator{result: refundResult()}
	svc := NewEvaluationService(store.Sessions(), store.Submissions(), evaluator, newValidator(), EvaluationOptions{}, testLogger())

	_, err := svc.Evaluate(context.Background(), refundRequest())
	require.ErrorIs(t, err, ErrSessionClosed)
	require.Zero(t, evaluator.calls())

	submissions, err := store.Submissions().List(context.Background(), repository.SubmissionFilter{})
	require.NoError(t, err)
	require.Empty(t, submissions)
}

func TestEvaluationServiceValidatesBeforeEvaluating(t *testing.T) {
	store := repository.NewMemoryStore()
	session := refundSession(true)
	require.NoError(t, store.Sessions().Create(context.Background(), &session))

	evaluator := &stubEvaluator{result: refundResult()}
	svc := NewEvaluationService(store.Sessions(), store.Submissions(), evaluator, newValidator(), EvaluationOptions{}, testLogger())

	cases := map[string]func(*dto.EvaluateRequest){
		"blank prompt":  func(r *dto.EvaluateRequest) { r.Prompt = "   " },
		"missing goal":  func(r *dto.EvaluateRequest) { r.TargetOutput = "" },
		"missing user":  func(r *dto.EvaluateRequest) { r.UserID = "" },
		"invalid stage": func(r *dto.EvaluateRequest) { r.Stage = 3 },
		"missing stage": func(r *dto.EvaluateRequest) { r.Stage = 0 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := refundRequest()
			mutate(&req)
			_, err := svc.Evaluate(context.Background(), req)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
	require.Zero(t, evaluator.calls())
}

func TestEvaluationServiceWrapsEvaluatorFailure(t *testing.T) {
	store := repository.NewMemoryStore()
	session := refundSession(true)
	require.NoError(t, store.Sessions().Create(context.Background(), &session))

	evaluator := &stubEvaluator{err: ai.ErrSchemaViolation}
	svc := NewEvaluationService(store.Sessions(), store.Submissions(), evaluator, newValidator(), EvaluationOptions{}, testLogger())

	_, err := svc.Evaluate(context.Background(), refundRequest())
	require.ErrorIs(t, err, ErrEvaluation)
	require.ErrorIs(t, err, ai.ErrSchemaViolation)

	submissions, err := store.Submissions().List(context.Background(), repository.SubmissionFilter{})
	require.NoError(t, err)
	require.Empty(t, submissions)
}

func TestEvaluationServiceWithoutEvaluator(t *testing.T) {
	store := repository.NewMemoryStore()
	session := refundSession(true)
	require.NoError(t, store.Sessions().Create(context.Background(), &session))

	svc := NewEvaluationService(store.Sessions(), store.Submissions(), nil, newValidator(), EvaluationOptions{}, testLogger())

	_, err := svc.Evaluate(context.Background(), refundRequest())
	require.ErrorIs(t, err, ErrEvaluatorUnavailable)
}

func TestEvaluationServicePersistenceModes(t *testing.T) {
	store := repository.NewMemoryStore()
	session := refundSession(true)
	require.NoError(t, store.Sessions().Create(context.Background(), &session))
	broken := failingSubmissions{store.Submissions()}

	bestEffort := NewEvaluationService(store.Sessions(), broken, &stubEvaluator{result: refundResult()}, newValidator(), EvaluationOptions{}, testLogger())
	response, err := bestEffort.Evaluate(context.Background(), refundRequest())
	require.NoError(t, err, "best effort mode should still return the evaluation")
	require.False(t, response.Persisted)
	require.Nil(t, response.SubmissionID)
	require.Equal(t, float64(72), response.EffectivenessScore)

	strict := NewEvaluationService(store.Sessions(), broken, &stubEvaluator{result: refundResult()}, newValidator(), EvaluationOptions{PersistenceMode: config.PersistenceStrict}, testLogger())
	_, err = strict.Evaluate(context.Background(), refundRequest())
	require.ErrorIs(t, err, ErrPersistence)
}

func TestEvaluationServiceCoercesMissingScoresToZero(t *testing.T) {
	store := repository.NewMemoryStore()
	session := refundSession(true)
	require.NoError(t, store.Sessions().Create(context.Background(), &session))

	result := refundResult()
	result.CriteriaScores = result.CriteriaScores[:1]
	svc := NewEvaluationService(store.Sessions(), store.Submissions(), &stubEvaluator{result: result}, newValidator(), EvaluationOptions{}, testLogger())

	response, err := svc.Evaluate(context.Background(), refundRequest())
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"Clarity": 80, "Specificity": 0, "Efficiency": 0}, response.CriteriaScores)
}

func TestEvaluationServiceFallsBackToRequestConfig(t *testing.T) {
	store := repository.NewMemoryStore()
	bare := models.Session{Name: "bare", Stage1Goal: "", Stage2Goal: "", IsOpen: true}
	require.NoError(t, store.Sessions().Create(context.Background(), &bare))

	evaluator := &stubEvaluator{result: refundResult()}
	svc := NewEvaluationService(store.Sessions(), store.Submissions(), evaluator, newValidator(), EvaluationOptions{}, testLogger())

	req := refundRequest()
	req.TargetOutput = "Client supplied goal"
	_, err := svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "Client supplied goal", evaluator.inputs[0].Goal)
	require.Equal(t, ai.DefaultCriteria, evaluator.inputs[0].Criteria)

	req.Criteria = []dto.CriterionPayload{{Name: "Tone", Description: "friendly"}}
	_, err = svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, []ai.Criterion{{Name: "Tone", Description: "friendly"}}, evaluator.inputs[1].Criteria)
}

func TestSustainabilityEstimatesAreLinear(t *testing.T) {
	for _, tokens := range []int{0, 1, 250, 10000} {
		require.Equal(t, float64(tokens)*0.0004, EstimateCO2(tokens))
		require.Equal(t, float64(tokens)*0.00002, EstimateCost(tokens))
	}
}
