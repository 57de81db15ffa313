package service

import (
	"context"

	"yatube/internal/featureflags"
	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
	"yatube/internal/validation"
)

const invalidGroupChoice = "Select a valid choice. That choice is not one of the available choices."

// PostInput is the submitted post form. A nil GroupID means no group.
type PostInput struct {
	Text    string
	GroupID *uint
	Image   *ImageUpload
}

// PostDetail is a post with its discussion.
type PostDetail struct {
	Post            *models.Post      `json:"post"`
	Comments        []*models.Comment `json:"comments"`
	AuthorPostCount int64             `json:"author_posts_count"`
}

type PostService struct {
	postRepo    repository.PostRepository
	groupRepo   repository.GroupRepository
	commentRepo repository.CommentRepository
	images      *ImageService
	feeds       *FeedService
	flags       *featureflags.Manager
}

func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	commentRepo repository.CommentRepository,
	images *ImageService,
	feeds *FeedService,
	flags *featureflags.Manager,
) *PostService {
	if flags == nil {
		flags = featureflags.NewManager("")
	}
	return &PostService{
		postRepo:    postRepo,
		groupRepo:   groupRepo,
		commentRepo: commentRepo,
		images:      images,
		feeds:       feeds,
		flags:       flags,
	}
}

// CreatePost validates in and publishes it as actorID. Nothing is stored on validation failure.
func (s *PostService) CreatePost(ctx context.Context, actorID uint, in PostInput) (*models.Post, error) {
	text, err := s.validate(ctx, actorID, in)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:    text,
		UserID:  actorID,
		GroupID: in.GroupID,
	}
	if in.Image != nil {
		img, err := s.images.Store(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		post.ImageHash = &img.Hash
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.ContentCreated.WithLabelValues("post").Inc()

	return s.postRepo.GetByID(ctx, post.ID)
}

// EditPost replaces text and group of the actor's own post. The image changes only when a new one is uploaded.
func (s *PostService) EditPost(ctx context.Context, actorID, postID uint, in PostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != actorID {
		return nil, models.NewPermissionError("You can only edit your own posts")
	}

	text, err := s.validate(ctx, actorID, in)
	if err != nil {
		return nil, err
	}

	post.Text = text
	post.GroupID = in.GroupID
	if in.Image != nil {
		img, err := s.images.Store(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		post.ImageHash = &img.Hash
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// GetPost returns the post, its comments newest first and how many posts its author wrote.
func (s *PostService) GetPost(ctx context.Context, id uint) (*PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.postRepo.Count(ctx, repository.PostFilter{AuthorID: post.UserID})
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, Comments: comments, AuthorPostCount: count}, nil
}

// CanEdit reports whether actorID may edit the post.
func (s *PostService) CanEdit(ctx context.Context, actorID, postID uint) (*models.Post, bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, false, err
	}
	return post, actorID != 0 && post.UserID == actorID, nil
}

// Search returns a page of posts whose text contains query, newest first.
func (s *PostService) Search(ctx context.Context, query string, page int) (*Feed, error) {
	return s.feeds.Build(ctx, Matching(query), page)
}

// validate returns the trimmed text or a VALIDATION_ERROR naming every invalid field.
func (s *PostService) validate(ctx context.Context, actorID uint, in PostInput) (string, error) {
	form := validation.PostForm{Text: in.Text}
	form.Normalize()

	fields := map[string]string{}
	if err := validation.ValidateStruct(&form); err != nil {
		appErr := models.AsAppError(err)
		if appErr.Code != models.CodeValidation {
			return "", err
		}
		for k, v := range appErr.Fields {
			fields[k] = v
		}
	}

	if in.GroupID != nil {
		if *in.GroupID == 0 {
			fields["group"] = invalidGroupChoice
		} else if _, err := s.groupRepo.GetByID(ctx, *in.GroupID); err != nil {
			if !models.HasCode(err, models.CodeNotFound) {
				return "", err
			}
			fields["group"] = invalidGroupChoice
		}
	}

	if in.Image != nil && !s.flags.Enabled(featureflags.ImageUploads, actorID) {
		fields["image"] = "Image uploads are disabled."
	}

	if len(fields) > 0 {
		return "", models.NewFormValidationError(fields)
	}
	return form.Text, nil
}
