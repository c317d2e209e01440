package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/prompt-workshop-api/internal/models"
)

// Legacy submission columns that predate per-criteria scores.
var legacyScoreColumns = map[string]string{
	"clarity_score":     "Clarity",
	"specificity_score": "Specificity",
	"efficiency_score":  "Efficiency",
}

// SchemaStats summarises table presence and row counts for health reporting.
type SchemaStats struct {
	SessionsTable      bool
	SubmissionsTable   bool
	FeedbackTable      bool
	Sessions           int64
	OpenSessions       int64
	Submissions        int64
	Feedback           int64
	HasDynamicCriteria bool
	HasStaticCriteria  bool
}

// SchemaRepository performs idempotent schema administration.
type SchemaRepository interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	SeedDefaultSession(ctx context.Context, session models.Session) (bool, error)
	BackfillCriteria(ctx context.Context, stage1, stage2 []models.Criterion) (int64, error)
	MigrateLegacyScores(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (SchemaStats, error)
}

type schemaRepository struct {
	db *gorm.DB
}

// NewSchemaRepository instantiates the gorm backed schema repository.
func NewSchemaRepository(db *gorm.DB) SchemaRepository {
	return &schemaRepository{db: db}
}

func (r *schemaRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *schemaRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&models.Session{}, &models.Submission{}, &models.SessionFeedback{})
}

// SeedDefaultSession inserts the session only when the table is empty.
func (r *schemaRepository) SeedDefaultSession(ctx context.Context, session models.Session) (bool, error) {
	seeded := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Session{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		seeded = true
		return nil
	})
	return seeded, err
}

// BackfillCriteria fills empty stage criteria lists and reports how many sessions changed.
func (r *schemaRepository) BackfillCriteria(ctx context.Context, stage1, stage2 []models.Criterion) (int64, error) {
	var updated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sessions []models.Session
		if err := tx.Find(&sessions).Error; err != nil {
			return err
		}

		for _, session := range sessions {
			changes := map[string]interface{}{}
			if len(session.Stage1Criteria) == 0 {
				changes["stage1_criteria"] = datatypes.JSONSlice[models.Criterion](stage1)
			}
			if len(session.Stage2Criteria) == 0 {
				changes["stage2_criteria"] = datatypes.JSONSlice[models.Criterion](stage2)
			}
			if len(changes) == 0 {
				continue
			}
			if err := tx.Model(&models.Session{}).Where("id = ?", session.ID).Updates(changes).Error; err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	return updated, err
}

type legacyScoreRow struct {
	ID               uint
	ClarityScore     *float64
	SpecificityScore *float64
	EfficiencyScore  *float64
}

// MigrateLegacyScores copies static score columns into criteria_scores for rows that have none.
func (r *schemaRepository) MigrateLegacyScores(ctx context.Context) (int64, error) {
	migrator := r.db.WithContext(ctx).Migrator()
	columns := make([]string, 0, len(legacyScoreColumns))
	for column := range legacyScoreColumns {
		if migrator.HasColumn(&models.Submission{}, column) {
			columns = append(columns, column)
		}
	}
	if len(columns) == 0 {
		return 0, nil
	}

	var rows []legacyScoreRow
	if err := r.db.WithContext(ctx).
		Table("submissions").
		Select(append([]string{"id"}, columns...)).
		Where("criteria_scores IS NULL").
		Scan(&rows).Error; err != nil {
		return 0, err
	}

	var migrated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			scores := datatypes.JSONMap{
				legacyScoreColumns["clarity_score"]:     valueOrZero(row.ClarityScore),
				legacyScoreColumns["specificity_score"]: valueOrZero(row.SpecificityScore),
				legacyScoreColumns["efficiency_score"]:  valueOrZero(row.EfficiencyScore),
			}
			if err := tx.Model(&models.Submission{}).Where("id = ?", row.ID).Update("criteria_scores", scores).Error; err != nil {
				return err
			}
			migrated++
		}
		return nil
	})
	return migrated, err
}

func (r *schemaRepository) Stats(ctx context.Context) (SchemaStats, error) {
	db := r.db.WithContext(ctx)
	migrator := db.Migrator()

	stats := SchemaStats{
		SessionsTable:    migrator.HasTable(&models.Session{}),
		SubmissionsTable: migrator.HasTable(&models.Submission{}),
		FeedbackTable:    migrator.HasTable(&models.SessionFeedback{}),
	}

	if stats.SessionsTable {
		if err := db.Model(&models.Session{}).Count(&stats.Sessions).Error; err != nil {
			return stats, err
		}
		if err := db.Model(&models.Session{}).Where("is_open = ?", true).Count(&stats.OpenSessions).Error; err != nil {
			return stats, err
		}
	}

	if stats.SubmissionsTable {
		if err := db.Model(&models.Submission{}).Count(&stats.Submissions).Error; err != nil {
			return stats, err
		}
		stats.HasDynamicCriteria = migrator.HasColumn(&models.Submission{}, "criteria_scores")
		stats.HasStaticCriteria = migrator.HasColumn(&models.Submission{}, "clarity_score")
	}

	if stats.FeedbackTable {
		if err := db.Model(&models.SessionFeedback{}).Count(&stats.Feedback).Error; err != nil {
			return stats, err
		}
	}

	return stats, nil
}

func valueOrZero(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}
