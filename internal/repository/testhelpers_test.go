package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/prompt-workshop-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Session{}, &models.Submission{}, &models.SessionFeedback{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func testSession(name string, open bool) models.Session {
	return models.Session{
		Name:           name,
		Stage1Goal:     "Write a refund email",
		Stage1Criteria: []models.Criterion{{Name: "Clarity", Description: "clear"}},
		Stage2Goal:     "Plan a campaign",
		Stage2Criteria: []models.Criterion{{Name: "Reach", Description: "audience"}},
		IsOpen:         open,
	}
}
