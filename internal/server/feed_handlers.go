package server

import (
	"context"
	"encoding/json"

	"yatube/internal/cache"
	"yatube/internal/featureflags"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /
// @Summary Global feed
// @Description Latest posts of every author. Pages are cached for INDEX_CACHE_TTL_SECONDS.
// @Tags feeds
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} object{title=string,posts=[]models.Post,page=service.PageMeta}
// @Router / [get]
func (s *Server) Index(c *fiber.Ctx) error {
	page := service.ParsePage(c.Query("page"))
	if page < 1 {
		page = 1
	}

	ttl := s.config.IndexCacheTTL()
	if !s.featureFlags.Enabled(featureflags.IndexCache, 0) {
		ttl = 0
	}

	body, hit, err := s.pageCache.GetOrRender(c.UserContext(), cache.PageKey(c.Path(), page), ttl,
		func(ctx context.Context) ([]byte, error) {
			feed, err := s.feedService.Build(ctx, service.All(), page)
			if err != nil {
				return nil, err
			}
			return json.Marshal(feedView{Title: "Latest updates", Feed: feed})
		})
	if err != nil {
		return s.handleError(c, err)
	}

	if hit {
		c.Set("X-Cache", "HIT")
	} else {
		c.Set("X-Cache", "MISS")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(body)
}

// GroupPosts handles GET /group/:slug/
// @Summary Group feed
// @Tags feeds
// @Produce json
// @Param slug path string true "Group slug"
// @Param page query int false "Page number"
// @Success 200 {object} object{title=string,group=models.Group,posts=[]models.Post,page=service.PageMeta}
// @Failure 404 {object} object{error=string}
// @Router /group/{slug}/ [get]
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	feed, err := s.feedService.Build(c.UserContext(), service.ByGroup(c.Params("slug")), service.ParsePage(c.Query("page")))
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(feedView{Title: "Posts of group " + feed.Group.Title, Feed: feed})
}

// Profile handles GET /profile/:username/
// @Summary Author profile
// @Description Author feed, post count and whether the viewer follows the author.
// @Tags feeds
// @Produce json
// @Param username path string true "Username"
// @Param page query int false "Page number"
// @Success 200 {object} object{title=string,author=models.User,posts=[]models.Post,page=service.PageMeta,posts_count=int,following=bool}
// @Failure 404 {object} object{error=string}
// @Router /profile/{username}/ [get]
func (s *Server) Profile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	feed, err := s.feedService.Build(ctx, service.ByAuthor(c.Params("username")), service.ParsePage(c.Query("page")))
	if err != nil {
		return s.handleError(c, err)
	}

	following, err := s.followService.IsFollowing(ctx, viewerID(c), feed.Author.ID)
	if err != nil {
		return s.handleError(c, err)
	}
	counts, err := s.followService.Counts(ctx, feed.Author.ID)
	if err != nil {
		return s.handleError(c, err)
	}

	return c.JSON(profileView{
		feedView:  feedView{Title: "Profile of " + feed.Author.DisplayName(), Feed: feed},
		PostCount: feed.Page.Total,
		Following: following,
		Counts:    counts,
	})
}

// FollowIndex handles GET /follow/
// @Summary Followed authors feed
// @Tags feeds
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} object{title=string,posts=[]models.Post,page=service.PageMeta}
// @Success 302 "Redirect to login"
// @Router /follow/ [get]
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	feed, err := s.feedService.Build(c.UserContext(), service.FollowedBy(viewerID(c)), service.ParsePage(c.Query("page")))
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(feedView{Title: "Followed authors", Feed: feed})
}

// Search handles GET /search/?q=
// @Summary Text search
// @Tags feeds
// @Produce json
// @Param q query string false "Text to look for"
// @Param page query int false "Page number"
// @Success 200 {object} object{title=string,query=string,posts=[]models.Post,page=service.PageMeta}
// @Router /search/ [get]
func (s *Server) Search(c *fiber.Ctx) error {
	feed, err := s.postService.Search(c.UserContext(), c.Query("q"), service.ParsePage(c.Query("page")))
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(feedView{Title: "Search", Feed: feed})
}

// ProfileFollow handles GET /profile/:username/follow/
// @Summary Follow an author
// @Tags follows
// @Param username path string true "Username"
// @Success 302 "Redirect to the profile"
// @Failure 404 {object} object{error=string}
// @Router /profile/{username}/follow/ [get]
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	return s.changeFollow(c, s.followService.Follow)
}

// ProfileUnfollow handles GET /profile/:username/unfollow/
// @Summary Unfollow an author
// @Tags follows
// @Param username path string true "Username"
// @Success 302 "Redirect to the profile"
// @Failure 404 {object} object{error=string}
// @Router /profile/{username}/unfollow/ [get]
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	return s.changeFollow(c, s.followService.Unfollow)
}

func (s *Server) changeFollow(c *fiber.Ctx, apply func(ctx context.Context, followerID, followeeID uint) error) error {
	ctx := c.UserContext()
	author, err := s.userService.GetUserByUsername(ctx, c.Params("username"))
	if err != nil {
		return s.handleError(c, err)
	}

	if err := apply(ctx, viewerID(c), author.ID); err != nil {
		if !models.HasCode(err, models.CodeInvalidRelationship) {
			return s.handleError(c, err)
		}
		middleware.Logger.DebugContext(ctx, "self-follow ignored", "username", author.Username)
	}
	return redirect(c, profileURL(author.Username))
}
