package service

import (
	"os"
	"testing"

	"yatube/internal/featureflags"
	"yatube/internal/repository"
	"yatube/internal/testutil"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	passwordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

// env wires every service over one in-memory database.
type env struct {
	db       *gorm.DB
	fx       *testutil.Fixtures
	feeds    *FeedService
	follows  *FollowService
	posts    *PostService
	comments *CommentService
	users    *UserService
	images   *ImageService
}

func newEnv(t *testing.T, pageSize int, flags string) *env {
	t.Helper()
	db := testutil.NewTestDB(t)

	postRepo := repository.NewPostRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	e := &env{db: db, fx: testutil.NewFixtures(t, db)}
	e.feeds = NewFeedService(postRepo, groupRepo, userRepo, pageSize)
	e.follows = NewFollowService(repository.NewFollowRepository(db))
	e.images = NewImageService(repository.NewImageRepository(db), 1)
	e.posts = NewPostService(postRepo, groupRepo, commentRepo, e.images, e.feeds, featureflags.NewManager(flags))
	e.comments = NewCommentService(commentRepo, postRepo)
	e.users = NewUserService(userRepo, postRepo)
	return e
}

func (e *env) countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}
