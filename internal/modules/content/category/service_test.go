package category

import (
	"testing"

	"github.com/jobboard/cms/internal/database/dbtest"
	"github.com/jobboard/cms/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCategoryLifecycle(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)

	cat, err := svc.Create(&CreateCategoryDTO{Name: "Remote Jobs"})
	require.NoError(t, err)
	assert.Equal(t, "remote-jobs", cat.Slug)

	_, err = svc.Create(&CreateCategoryDTO{Name: "Remote Jobs"})
	assert.ErrorIs(t, err, ErrNameTaken)

	for _, q := range []string{cat.ID, "remote-jobs", "Remote Jobs"} {
		found, err := svc.GetByQuery(q)
		require.NoError(t, err)
		require.NotNil(t, found, q)
		assert.Equal(t, cat.ID, found.ID)
	}
	missing, err := svc.GetByQuery("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	post := models.PostModel{Title: "p", Slug: "p", CategoryID: &cat.ID, Status: models.StatusPublished}
	require.NoError(t, db.Create(&post).Error)

	list, err := svc.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 1, list[0].PostCount)

	require.NoError(t, svc.Delete(cat.ID))
	require.NoError(t, db.First(&post, "id = ?", post.ID).Error)
	assert.Nil(t, post.CategoryID)

	assert.ErrorIs(t, svc.Delete(cat.ID), gorm.ErrRecordNotFound)
}
