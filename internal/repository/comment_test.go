package repository

import (
	"context"
	"testing"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	leo := fx.User("leo")
	ann := fx.User("ann")
	post := fx.Post(leo, nil, "post")
	other := fx.Post(leo, nil, "other")

	older := fx.Comment(ann, post, "older")
	newer := fx.Comment(leo, post, "newer")
	fx.Comment(ann, other, "elsewhere")

	created := &models.Comment{Text: "via repo", UserID: ann.ID, PostID: other.ID}
	require.NoError(t, repo.Create(ctx, created))
	assert.NotZero(t, created.ID)

	comments, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, newer.ID, comments[0].ID)
	assert.Equal(t, older.ID, comments[1].ID)
	assert.Equal(t, "ann", comments[1].User.Username)

	require.NoError(t, db.Delete(&models.Post{}, post.ID).Error)
	comments, err = repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
