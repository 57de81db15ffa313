package service

import (
	"context"
	"strconv"
	"strings"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultPostsPerPage is used when no positive page size is configured.
const DefaultPostsPerPage = 10

// ScopeKind names the population of a feed.
type ScopeKind string

const (
	ScopeAll      ScopeKind = "all"
	ScopeGroup    ScopeKind = "group"
	ScopeAuthor   ScopeKind = "author"
	ScopeFollowed ScopeKind = "follow"
	ScopeSearch   ScopeKind = "search"
)

// Scope selects which posts populate a feed.
type Scope struct {
	Kind     ScopeKind
	Slug     string
	Username string
	UserID   uint
	Query    string
}

// All is every post.
func All() Scope { return Scope{Kind: ScopeAll} }

// ByGroup is the posts of the group with slug.
func ByGroup(slug string) Scope { return Scope{Kind: ScopeGroup, Slug: slug} }

// ByAuthor is the posts written by username.
func ByAuthor(username string) Scope { return Scope{Kind: ScopeAuthor, Username: username} }

// FollowedBy is the posts of every author userID follows.
func FollowedBy(userID uint) Scope { return Scope{Kind: ScopeFollowed, UserID: userID} }

// Matching is the posts whose text contains query, ignoring case.
func Matching(query string) Scope { return Scope{Kind: ScopeSearch, Query: query} }

// PageMeta describes one page of a paginated feed.
type PageMeta struct {
	Number      int   `json:"number"`
	NumPages    int   `json:"num_pages"`
	Total       int64 `json:"total"`
	PageSize    int   `json:"page_size"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// Offset is the number of items preceding this page.
func (p PageMeta) Offset() int {
	return (p.Number - 1) * p.PageSize
}

// Feed is one page of posts plus the subject of its scope.
type Feed struct {
	Posts  []*models.Post `json:"posts"`
	Page   PageMeta       `json:"page"`
	Group  *models.Group  `json:"group,omitempty"`
	Author *models.User   `json:"author,omitempty"`
	Query  string         `json:"query,omitempty"`
}

// ParsePage reads a page query value. Anything that is not an integer is page 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return n
}

// Paginate clamps requested into [1, NumPages]. An empty result still has one page.
func Paginate(total int64, pageSize, requested int) PageMeta {
	if pageSize <= 0 {
		pageSize = DefaultPostsPerPage
	}
	numPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if numPages < 1 {
		numPages = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}

	return PageMeta{
		Number:      number,
		NumPages:    numPages,
		Total:       total,
		PageSize:    pageSize,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}
}

// FeedService composes paginated feeds.
type FeedService struct {
	postRepo  repository.PostRepository
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	pageSize  int
}

func NewFeedService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	pageSize int,
) *FeedService {
	if pageSize <= 0 {
		pageSize = DefaultPostsPerPage
	}
	return &FeedService{
		postRepo:  postRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		pageSize:  pageSize,
	}
}

// PageSize is the number of posts per page.
func (s *FeedService) PageSize() int {
	return s.pageSize
}

// Build returns the requested page of scope, newest posts first.
// Unknown groups and authors are NOT_FOUND; page numbers are clamped.
func (s *FeedService) Build(ctx context.Context, scope Scope, page int) (*Feed, error) {
	defer observability.TrackFeedBuild(string(scope.Kind))()

	span, ctx := observability.NewSpan(ctx, "feed.build",
		attribute.String("feed.scope", string(scope.Kind)),
		attribute.Int("feed.page_requested", page),
	)
	defer span.End()

	feed := &Feed{}
	var filter repository.PostFilter

	switch scope.Kind {
	case ScopeAll:
	case ScopeGroup:
		group, err := s.groupRepo.GetBySlug(ctx, scope.Slug)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		feed.Group = group
		filter.GroupID = group.ID
	case ScopeAuthor:
		author, err := s.userRepo.GetByUsername(ctx, scope.Username)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		feed.Author = author
		filter.AuthorID = author.ID
	case ScopeFollowed:
		if scope.UserID == 0 {
			return nil, models.NewUnauthorizedError("Login required")
		}
		filter.FollowerID = scope.UserID
	case ScopeSearch:
		feed.Query = strings.TrimSpace(scope.Query)
		if feed.Query == "" {
			feed.Posts = []*models.Post{}
			feed.Page = Paginate(0, s.pageSize, page)
			return feed, nil
		}
		filter.Query = feed.Query
	default:
		return nil, models.NewValidationError("unknown feed scope")
	}

	total, err := s.postRepo.Count(ctx, filter)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	feed.Page = Paginate(total, s.pageSize, page)

	posts := []*models.Post{}
	if total > 0 {
		posts, err = s.postRepo.List(ctx, filter, feed.Page.PageSize, feed.Page.Offset())
		if err != nil {
			span.SetError(err)
			return nil, err
		}
	}
	feed.Posts = posts

	span.AddAttributes(
		attribute.Int("feed.page", feed.Page.Number),
		attribute.Int64("feed.total", total),
	)
	return feed, nil
}
