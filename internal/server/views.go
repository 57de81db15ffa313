package server

import (
	"io"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// feedView is a paginated list of posts with a page title.
type feedView struct {
	Title string `json:"title"`
	*service.Feed
}

// profileView is an author's feed plus relationship data for the viewer.
type profileView struct {
	feedView
	PostCount int64                `json:"posts_count"`
	Following bool                 `json:"following"`
	Counts    service.FollowCounts `json:"follow_counts"`
}

// postDetailView is a post page with its comment form.
type postDetailView struct {
	Title string `json:"title"`
	*service.PostDetail
	CanEdit     bool     `json:"can_edit"`
	CommentForm formView `json:"comment_form"`
}

// formView is an empty or re-rendered form.
type formView struct {
	Form   interface{}       `json:"form"`
	Errors map[string]string `json:"errors,omitempty"`
}

// postFormView is the create/edit post page.
type postFormView struct {
	formView
	Groups []models.Group `json:"groups"`
	IsEdit bool           `json:"is_edit"`
	PostID uint           `json:"post_id,omitempty"`
}

// postFormValues are the values shown in a post form.
type postFormValues struct {
	Text     string `json:"text"`
	Group    *uint  `json:"group"`
	ImageURL string `json:"image_url,omitempty"`
}

// staticView is an about page.
type staticView struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

const postTitleLength = 30

// postTitle is the first characters of the post text.
func postTitle(text string) string {
	if utf8.RuneCountInString(text) <= postTitleLength {
		return text
	}
	return string([]rune(text)[:postTitleLength])
}

// redirect answers with 302 Found.
func redirect(c *fiber.Ctx, location string) error {
	return c.Redirect(location, fiber.StatusFound)
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func postURL(id uint) string {
	return "/posts/" + itoa(id) + "/"
}

// parsePostID reads the :id param; malformed ids are a missing post.
func parsePostID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseGroupChoice reads the group select. Empty means no group; garbage is the invalid choice 0.
func parseGroupChoice(raw string) *uint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		zero := uint(0)
		return &zero
	}
	v := uint(id)
	return &v
}

// postInput reads the post form from a urlencoded, multipart or JSON body.
func postInput(c *fiber.Ctx) (service.PostInput, error) {
	var form struct {
		Text  string `json:"text" form:"text"`
		Group string `json:"group" form:"group"`
	}
	if err := c.BodyParser(&form); err != nil {
		return service.PostInput{}, models.NewValidationError("Invalid request body")
	}

	in := service.PostInput{
		Text:    form.Text,
		GroupID: parseGroupChoice(form.Group),
	}

	fh, err := c.FormFile("image")
	if err == nil && fh != nil && fh.Size > 0 {
		f, err := fh.Open()
		if err != nil {
			return service.PostInput{}, models.NewInternalError(err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return service.PostInput{}, models.NewInternalError(err)
		}
		in.Image = &service.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		}
	}
	return in, nil
}

// safeNext returns next when it is a local path, otherwise fallback.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}

// viewerID is the signed-in user, or 0 for anonymous visitors.
func viewerID(c *fiber.Ctx) uint {
	id, _ := middleware.CurrentUserID(c)
	return id
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
