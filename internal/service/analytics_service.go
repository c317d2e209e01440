package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/models"
	"github.com/noah-isme/prompt-workshop-api/internal/observability"
	"github.com/noah-isme/prompt-workshop-api/internal/repository"
)

const (
	analyticsCachePrefix = "analytics:summary:"
	promptPreviewLength  = 100
	noImprovement        = "-"
)

// AnalyticsService aggregates submissions and feedback for the admin dashboard.
type AnalyticsService interface {
	Summary(ctx context.Context, sessionID *uint) (dto.AnalyticsResponse, error)
	Invalidate(ctx context.Context)
	SubmissionObserver
	FeedbackObserver
}

type analyticsService struct {
	submissions repository.SubmissionRepository
	feedback    repository.FeedbackRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewAnalyticsService constructs the analytics service. A nil cache disables caching.
func NewAnalyticsService(submissions repository.SubmissionRepository, feedback repository.FeedbackRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		submissions: submissions,
		feedback:    feedback,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "analytics_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/prompt-workshop-api/internal/service/analytics"),
		now:         time.Now,
	}
}

func analyticsCacheKey(sessionID *uint) string {
	if sessionID == nil {
		return analyticsCachePrefix + "all"
	}
	return fmt.Sprintf("%ssession:%d", analyticsCachePrefix, *sessionID)
}

func (s *analyticsService) Summary(ctx context.Context, sessionID *uint) (dto.AnalyticsResponse, error) {
	cacheKey := analyticsCacheKey(sessionID)
	ctx, span := s.tracer.Start(ctx, "analytics.aggregate")
	span.SetAttributes(attribute.String("analytics.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.AnalyticsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				observability.AnalyticsCacheLookups().WithLabelValues("hit").Inc()
				span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read analytics cache")
			span.RecordError(err)
		}
		observability.AnalyticsCacheLookups().WithLabelValues("miss").Inc()
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{SessionID: sessionID})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_submissions_failed")
		return dto.AnalyticsResponse{}, err
	}

	feedback, err := s.feedback.List(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_feedback_failed")
		return dto.AnalyticsResponse{}, err
	}

	summary := buildAnalytics(submissions, feedback, s.now())
	summary.SessionID = sessionID
	span.SetAttributes(attribute.Int("analytics.submission_count", len(submissions)))

	if s.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store analytics cache")
				span.RecordError(err)
			}
		}
	}

	return summary, nil
}

// Invalidate drops every cached summary.
func (s *analyticsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}

	iter := s.cache.Scan(ctx, 0, analyticsCachePrefix+"*", 100).Iterator()
	keys := make([]string, 0, 4)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to scan analytics cache")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate analytics cache")
	}
}

func (s *analyticsService) SubmissionCreated(ctx context.Context, _ models.Submission) {
	s.Invalidate(ctx)
}

func (s *analyticsService) FeedbackCreated(ctx context.Context, _ models.SessionFeedback) {
	s.Invalidate(ctx)
}

type userAggregate struct {
	userID         string
	firstSeen      time.Time
	stage1Best     *float64
	stage2Best     *float64
	stage1Attempts int
	stage2Attempts int
}

func buildAnalytics(submissions []models.Submission, feedback []models.SessionFeedback, now time.Time) dto.AnalyticsResponse {
	response := dto.AnalyticsResponse{
		TotalSubmissions: len(submissions),
		Users:            []dto.UserProgress{},
		Submissions:      make([]dto.AnalyticsSubmissionRow, 0, len(submissions)),
		GeneratedAt:      now,
		FeedbackCount:    len(feedback),
	}

	users := map[string]*userAggregate{}
	var total, stage1Total, stage2Total float64
	var stage1Count, stage2Count int

	for _, submission := range submissions {
		total += submission.OverallScore
		response.TotalTokens += submission.TokenCount
		response.TotalCO2 += submission.CO2Grams

		aggregate, ok := users[submission.UserID]
		if !ok {
			aggregate = &userAggregate{userID: submission.UserID, firstSeen: submission.CreatedAt}
			users[submission.UserID] = aggregate
		}
		if submission.CreatedAt.Before(aggregate.firstSeen) {
			aggregate.firstSeen = submission.CreatedAt
		}

		score := submission.OverallScore
		switch submission.Stage {
		case models.StageOne:
			stage1Total += score
			stage1Count++
			aggregate.stage1Attempts++
			aggregate.stage1Best = maxScore(aggregate.stage1Best, score)
		case models.StageTwo:
			stage2Total += score
			stage2Count++
			aggregate.stage2Attempts++
			aggregate.stage2Best = maxScore(aggregate.stage2Best, score)
		}
	}

	response.AverageScore = mean(total, len(submissions))
	response.AverageStage1Score = mean(stage1Total, stage1Count)
	response.AverageStage2Score = mean(stage2Total, stage2Count)

	var ratingTotal float64
	for _, item := range feedback {
		ratingTotal += float64(item.Rating)
	}
	response.AverageFeedbackRating = mean(ratingTotal, len(feedback))

	ordered := make([]*userAggregate, 0, len(users))
	for _, aggregate := range users {
		ordered = append(ordered, aggregate)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].firstSeen.Equal(ordered[j].firstSeen) {
			return ordered[i].userID < ordered[j].userID
		}
		return ordered[i].firstSeen.Before(ordered[j].firstSeen)
	})

	labels := make(map[string]string, len(ordered))
	for index, aggregate := range ordered {
		label := fmt.Sprintf("User %d", index+1)
		labels[aggregate.userID] = label

		progress := dto.UserProgress{
			User:               label,
			Stage1Score:        aggregate.stage1Best,
			Stage2Score:        aggregate.stage2Best,
			ImprovementDisplay: noImprovement,
			Stage1Attempts:     aggregate.stage1Attempts,
			Stage2Attempts:     aggregate.stage2Attempts,
		}
		if aggregate.stage1Best != nil && aggregate.stage2Best != nil {
			improvement := *aggregate.stage2Best - *aggregate.stage1Best
			progress.Improvement = &improvement
			progress.ImprovementDisplay = fmt.Sprintf("%+.1f", improvement)
		}
		response.Users = append(response.Users, progress)
	}

	for _, submission := range submissions {
		response.Submissions = append(response.Submissions, dto.AnalyticsSubmissionRow{
			ID:             submission.ID,
			Timestamp:      submission.CreatedAt,
			User:           labels[submission.UserID],
			Stage:          submission.Stage,
			PromptPreview:  truncateRunes(submission.Prompt, promptPreviewLength),
			OverallScore:   submission.OverallScore,
			CriteriaScores: submission.Scores(),
			Tokens:         submission.TokenCount,
		})
	}

	return response
}

func maxScore(current *float64, score float64) *float64 {
	if current == nil || score > *current {
		value := score
		return &value
	}
	return current
}

func mean(total float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func truncateRunes(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit]) + "..."
}
