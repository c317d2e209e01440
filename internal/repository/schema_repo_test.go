package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/prompt-workshop-api/internal/models"
)

func TestSchemaRepositorySeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewSchemaRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Migrate(ctx))

	seeded, err := repo.SeedDefaultSession(ctx, testSession("Default", true))
	require.NoError(t, err)
	require.True(t, seeded)

	seeded, err = repo.SeedDefaultSession(ctx, testSession("Default", true))
	require.NoError(t, err)
	require.False(t, seeded)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.Sessions)
	require.Equal(t, int64(1), stats.OpenSessions)
	require.True(t, stats.HasDynamicCriteria)
	require.False(t, stats.HasStaticCriteria)
}

func TestSchemaRepositoryBackfillCriteriaOnlyTouchesEmptyLists(t *testing.T) {
	db := newTestDB(t)
	repo := NewSchemaRepository(db)
	sessions := NewSessionRepository(db)
	ctx := context.Background()

	configured := testSession("configured", true)
	bare := models.Session{Name: "bare", Stage1Goal: "g1", Stage2Goal: "g2"}
	require.NoError(t, sessions.Create(ctx, &configured))
	require.NoError(t, sessions.Create(ctx, &bare))

	defaults1 := []models.Criterion{{Name: "Professionalism"}}
	defaults2 := []models.Criterion{{Name: "Measurability"}}

	updated, err := repo.BackfillCriteria(ctx, defaults1, defaults2)
	require.NoError(t, err)
	require.Equal(t, int64(1), updated)

	stored, err := sessions.GetByID(ctx, bare.ID)
	require.NoError(t, err)
	require.Equal(t, "Professionalism", stored.Stage1Criteria[0].Name)
	require.Equal(t, "Measurability", stored.Stage2Criteria[0].Name)

	untouched, err := sessions.GetByID(ctx, configured.ID)
	require.NoError(t, err)
	require.Equal(t, "Clarity", untouched.Stage1Criteria[0].Name)

	updated, err = repo.BackfillCriteria(ctx, defaults1, defaults2)
	require.NoError(t, err)
	require.Zero(t, updated)
}

func TestSchemaRepositoryMigratesLegacyScores(t *testing.T) {
	db := newTestDB(t)
	repo := NewSchemaRepository(db)
	sessions := NewSessionRepository(db)
	ctx := context.Background()

	session := testSession("legacy", true)
	require.NoError(t, sessions.Create(ctx, &session))

	require.NoError(t, db.Exec("ALTER TABLE submissions ADD COLUMN clarity_score REAL").Error)
	require.NoError(t, db.Exec("ALTER TABLE submissions ADD COLUMN specificity_score REAL").Error)
	require.NoError(t, db.Exec(
		"INSERT INTO submissions (session_id, user_id, stage, prompt, goal, overall_score, token_count, co2_grams, cost_usd, improvements, clarity_score, specificity_score, created_at) VALUES (?, 'u', 1, 'p', 'g', 50, 0, 0, 0, '[]', 70, 40, CURRENT_TIMESTAMP)",
		session.ID,
	).Error)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	require.True(t, stats.HasStaticCriteria)

	migrated, err := repo.MigrateLegacyScores(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), migrated)

	var stored models.Submission
	require.NoError(t, db.First(&stored).Error)
	require.Equal(t, map[string]float64{"Clarity": 70, "Specificity": 40, "Efficiency": 0}, stored.Scores())

	migrated, err = repo.MigrateLegacyScores(ctx)
	require.NoError(t, err)
	require.Zero(t, migrated)
}
