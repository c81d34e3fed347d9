package tag

import (
	"testing"

	"github.com/jobboard/cms/internal/database/dbtest"
	"github.com/jobboard/cms/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestResolve(t *testing.T) {
	db := dbtest.Open(t)

	existing := models.TagModel{Name: "Go", Slug: "go"}
	require.NoError(t, db.Create(&existing).Error)

	var tags []models.TagModel
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		tags, err = Resolve(tx, []string{"go", "Remote Work", "remote work", "  "})
		return err
	})
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, existing.ID, tags[0].ID)
	assert.Equal(t, "remote-work", tags[1].Slug)

	empty, err := Resolve(db, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCreateUpdateDelete(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)

	a, err := svc.Create(&CreateTagDTO{Name: "C++"})
	require.NoError(t, err)
	assert.Equal(t, "c", a.Slug)

	b, err := svc.Create(&CreateTagDTO{Name: "C#", Slug: "c"})
	require.NoError(t, err)
	assert.Equal(t, "c-1", b.Slug)

	_, err = svc.Create(&CreateTagDTO{Name: "C++"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	_, err = svc.Create(&CreateTagDTO{Name: "c++"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey, "names are unique regardless of case")

	clash := "C#"
	_, err = svc.Update(a.ID, &UpdateTagDTO{Name: &clash})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	recased := "c++"
	_, err = svc.Update(a.ID, &UpdateTagDTO{Name: &recased})
	require.NoError(t, err, "a tag may change the case of its own name")

	renamed := "cpp"
	updated, err := svc.Update(a.ID, &UpdateTagDTO{Slug: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "cpp", updated.Slug)

	list, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.Delete(a.ID))
	assert.ErrorIs(t, svc.Delete(a.ID), gorm.ErrRecordNotFound)

	_, err = svc.Update("missing", &UpdateTagDTO{Slug: &renamed})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
