package database_test

import (
	"errors"
	"fmt"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jobboard/cms/internal/database"
	"github.com/jobboard/cms/internal/database/dbtest"
	"github.com/jobboard/cms/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsDuplicate(t *testing.T) {
	assert.False(t, database.IsDuplicate(nil))
	assert.False(t, database.IsDuplicate(errors.New("boom")))
	assert.True(t, database.IsDuplicate(gorm.ErrDuplicatedKey))
	assert.True(t, database.IsDuplicate(fmt.Errorf("create: %w", &mysqldriver.MySQLError{Number: 1062})))
	assert.False(t, database.IsDuplicate(&mysqldriver.MySQLError{Number: 1452}))
}

func TestMigrateEnforcesUniqueSlug(t *testing.T) {
	db := dbtest.Open(t)

	require.NoError(t, db.Create(&models.CategoryModel{Name: "Jobs", Slug: "jobs"}).Error)
	err := db.Create(&models.CategoryModel{Name: "Jobs 2", Slug: "jobs"}).Error
	require.Error(t, err)
	assert.True(t, database.IsDuplicate(err))
}

func TestMigrateAllowsManyNullFingerprints(t *testing.T) {
	db := dbtest.Open(t)

	require.NoError(t, db.Create(&models.PostModel{Title: "a", Slug: "a", Status: models.StatusDraft, Source: models.SourceAdmin}).Error)
	require.NoError(t, db.Create(&models.PostModel{Title: "b", Slug: "b", Status: models.StatusDraft, Source: models.SourceAdmin}).Error)

	var n int64
	require.NoError(t, db.Model(&models.PostModel{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}
