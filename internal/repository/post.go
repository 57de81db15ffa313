package repository

import (
	"context"
	"strings"

	"yatube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter selects the posts of a feed. Zero fields do not constrain the result.
type PostFilter struct {
	GroupID  uint
	AuthorID uint
	// FollowerID limits posts to authors this user follows.
	FollowerID uint
	// Query is a case-insensitive substring of the post text.
	Query string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Count(ctx context.Context, filter PostFilter) (int64, error)
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
	if err != nil {
		return translate(err, "Post", nil)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Group").
		First(&post, id).Error
	if err != nil {
		return nil, translate(err, "Post", id)
	}
	withImageURL(&post)
	return &post, nil
}

// Update writes text, group and image; associations are never touched.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(post).
		Select("text", "group_id", "image_hash", "updated_at").
		Omit(clause.Associations).
		Updates(map[string]interface{}{
			"text":       post.Text,
			"group_id":   post.GroupID,
			"image_hash": post.ImageHash,
			"updated_at": r.db.NowFunc(),
		}).Error
	return translate(err, "Post", post.ID)
}

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	var total int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter).Count(&total).Error
	if err != nil {
		return 0, translate(err, "Post", nil)
	}
	return total, nil
}

// List returns the filtered posts newest first, ties broken by descending id.
func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyFilter(r.db.WithContext(ctx), filter).
		Preload("User").
		Preload("Group").
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, translate(err, "Post", nil)
	}
	for _, p := range posts {
		withImageURL(p)
	}
	return posts, nil
}

func (r *postRepository) applyFilter(db *gorm.DB, filter PostFilter) *gorm.DB {
	if filter.GroupID != 0 {
		db = db.Where("posts.group_id = ?", filter.GroupID)
	}
	if filter.AuthorID != 0 {
		db = db.Where("posts.user_id = ?", filter.AuthorID)
	}
	if filter.FollowerID != 0 {
		db = db.Where("posts.user_id IN (?)",
			r.db.Model(&models.Follow{}).Select("followee_id").Where("follower_id = ?", filter.FollowerID))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		db = db.Where(`LOWER(posts.text) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(q))+"%")
	}
	return db
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func withImageURL(p *models.Post) {
	if p.ImageHash != nil {
		p.ImageURL = models.MediaURL(*p.ImageHash)
	}
}
