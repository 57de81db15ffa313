package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"yatube/internal/models"
	"yatube/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestPostService_CreatePost_EmptyTextPersistsNothing(t *testing.T) {
	e := newEnv(t, 10, "")
	author := e.fx.User("leo")

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := e.posts.CreatePost(context.Background(), author.ID, PostInput{Text: text})
		require.Error(t, err)
		appErr := models.AsAppError(err)
		assert.Equal(t, models.CodeValidation, appErr.Code)
		assert.Contains(t, appErr.Fields, "text")
	}
	assert.Equal(t, int64(0), e.countRows(t, &models.Post{}))
}

func TestPostService_CreatePost(t *testing.T) {
	e := newEnv(t, 10, "")
	author := e.fx.User("leo")
	tech := e.fx.Group("Tech", "tech")

	post, err := e.posts.CreatePost(context.Background(), author.ID, PostInput{
		Text:    "  hello world  ",
		GroupID: &tech.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", post.Text)
	assert.Equal(t, author.ID, post.UserID)
	assert.Equal(t, "leo", post.User.Username)
	require.NotNil(t, post.Group)
	assert.Equal(t, "tech", post.Group.Slug)
	assert.Empty(t, post.ImageURL)
}

func TestPostService_CreatePost_UnknownGroup(t *testing.T) {
	e := newEnv(t, 10, "")
	author := e.fx.User("leo")

	for _, id := range []uint{0, 999} {
		_, err := e.posts.CreatePost(context.Background(), author.ID, PostInput{Text: "hi", GroupID: uintPtr(id)})
		appErr := models.AsAppError(err)
		assert.Equal(t, models.CodeValidation, appErr.Code)
		assert.Equal(t, invalidGroupChoice, appErr.Fields["group"])
	}
	assert.Equal(t, int64(0), e.countRows(t, &models.Post{}))
}

func TestPostService_CreatePost_WithImage(t *testing.T) {
	e := newEnv(t, 10, "")
	author := e.fx.User("leo")
	data := pngBytes(t, 3, 2)

	post, err := e.posts.CreatePost(context.Background(), author.ID, PostInput{
		Text:  "picture",
		Image: &ImageUpload{Filename: "small.png", Data: data},
	})
	require.NoError(t, err)
	require.NotNil(t, post.ImageHash)
	assert.Equal(t, ContentHash(data), *post.ImageHash)
	assert.Equal(t, models.MediaURL(ContentHash(data)), post.ImageURL)
}

func TestPostService_CreatePost_ImageUploadsDisabled(t *testing.T) {
	e := newEnv(t, 10, "image_uploads=off")
	author := e.fx.User("leo")

	_, err := e.posts.CreatePost(context.Background(), author.ID, PostInput{
		Text:  "picture",
		Image: &ImageUpload{Data: pngBytes(t, 1, 1)},
	})
	appErr := models.AsAppError(err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "image")
	assert.Equal(t, int64(0), e.countRows(t, &models.Post{}))
	assert.Equal(t, int64(0), e.countRows(t, &models.Image{}))
}

func TestPostService_EditPost_NonAuthorForbidden(t *testing.T) {
	e := newEnv(t, 10, "")
	ctx := context.Background()
	leo := e.fx.User("leo")
	bob := e.fx.User("bob")
	post := e.fx.Post(leo, nil, "original")

	_, err := e.posts.EditPost(ctx, bob.ID, post.ID, PostInput{Text: "hijacked"})
	assert.True(t, models.HasCode(err, models.CodeForbidden))

	detail, err := e.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", detail.Post.Text)
}

func TestPostService_EditPost(t *testing.T) {
	e := newEnv(t, 10, "")
	ctx := context.Background()
	leo := e.fx.User("leo")
	tech := e.fx.Group("Tech", "tech")
	post := e.fx.Post(leo, tech, "original")

	data := pngBytes(t, 2, 2)
	edited, err := e.posts.EditPost(ctx, leo.ID, post.ID, PostInput{
		Text:  "edited",
		Image: &ImageUpload{Data: data},
	})
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Text)
	assert.Nil(t, edited.GroupID, "absent group clears it")
	require.NotNil(t, edited.ImageHash)

	again, err := e.posts.EditPost(ctx, leo.ID, post.ID, PostInput{Text: "edited twice", GroupID: &tech.ID})
	require.NoError(t, err)
	require.NotNil(t, again.ImageHash, "image kept without a new upload")
	assert.Equal(t, ContentHash(data), *again.ImageHash)
	require.NotNil(t, again.GroupID)
	assert.Equal(t, tech.ID, *again.GroupID)

	_, err = e.posts.EditPost(ctx, leo.ID, post.ID, PostInput{Text: " "})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = e.posts.EditPost(ctx, leo.ID, 4242, PostInput{Text: "x"})
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPostService_GetPost(t *testing.T) {
	e := newEnv(t, 10, "")
	ctx := context.Background()
	leo := e.fx.User("leo")
	anna := e.fx.User("anna")
	post := e.fx.Post(leo, nil, "first")
	e.fx.Post(leo, nil, "second")
	older := e.fx.Comment(anna, post, "older")
	newer := e.fx.Comment(leo, post, "newer")

	detail, err := e.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, detail.Post.ID)
	assert.Equal(t, int64(2), detail.AuthorPostCount)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, newer.ID, detail.Comments[0].ID)
	assert.Equal(t, older.ID, detail.Comments[1].ID)
	assert.Equal(t, "anna", detail.Comments[1].User.Username)

	_, err = e.posts.GetPost(ctx, 9999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPostService_CanEdit(t *testing.T) {
	e := newEnv(t, 10, "")
	ctx := context.Background()
	leo := e.fx.User("leo")
	bob := e.fx.User("bob")
	post := e.fx.Post(leo, nil, "text")

	_, ok, err := e.posts.CanEdit(ctx, leo.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = e.posts.CanEdit(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostService_Search(t *testing.T) {
	e := newEnv(t, 1, "")
	leo := e.fx.User("leo")
	e.fx.Post(leo, nil, "Go is fun")
	newest := e.fx.Post(leo, nil, "go gophers")
	e.fx.Post(leo, nil, "rust")

	feed, err := e.posts.Search(context.Background(), "GO", 7)
	require.NoError(t, err)
	assert.Equal(t, 2, feed.Page.NumPages)
	assert.Equal(t, 2, feed.Page.Number)

	first, err := e.posts.Search(context.Background(), "GO", 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{newest.ID}, postIDs(first.Posts))
}

// postRepoStub lets repository failures be injected.
type postRepoStub struct {
	repository.PostRepository
	getByIDFn func(context.Context, uint) (*models.Post, error)
	updateFn  func(context.Context, *models.Post) error
}

func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}

func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}

func TestPostService_EditPost_RepositoryFailure(t *testing.T) {
	boom := errors.New("connection reset")
	repo := &postRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 7, Text: "old"}, nil
		},
		updateFn: func(_ context.Context, _ *models.Post) error { return models.NewInternalError(boom) },
	}
	svc := NewPostService(repo, nil, nil, nil, nil, nil)

	_, err := svc.EditPost(context.Background(), 7, 1, PostInput{Text: "new"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	_, err = svc.EditPost(context.Background(), 8, 1, PostInput{Text: "new"})
	assert.True(t, models.HasCode(err, models.CodeForbidden))
}
