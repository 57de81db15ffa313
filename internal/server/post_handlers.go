package server

import (
	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// PostDetail handles GET /posts/:id/
// @Summary Post detail
// @Description Post with comments (newest first), the author's post count and an empty comment form.
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{title=string,post=models.Post,comments=[]models.Comment,author_posts_count=int}
// @Failure 404 {object} object{error=string}
// @Router /posts/{id}/ [get]
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, ok := parsePostID(c)
	if !ok {
		return s.NotFound(c)
	}

	detail, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return s.handleError(c, err)
	}

	viewer := viewerID(c)
	return c.JSON(postDetailView{
		Title:       "Post " + postTitle(detail.Post.Text),
		PostDetail:  detail,
		CanEdit:     viewer != 0 && viewer == detail.Post.UserID,
		CommentForm: formView{Form: fiber.Map{"text": ""}},
	})
}

// PostCreateForm handles GET /create/
// @Summary New post form
// @Tags posts
// @Produce json
// @Success 200 {object} object{form=object,groups=[]models.Group}
// @Success 302 "Redirect to login"
// @Router /create/ [get]
func (s *Server) PostCreateForm(c *fiber.Ctx) error {
	return s.renderPostForm(c, postFormValues{}, nil, 0)
}

// PostCreate handles POST /create/
// @Summary Publish a post
// @Tags posts
// @Accept x-www-form-urlencoded,mpfd,json
// @Produce json
// @Param text formData string true "Post text"
// @Param group formData int false "Group ID"
// @Param image formData file false "Image"
// @Success 302 "Redirect to the author's profile"
// @Success 200 {object} object{form=object,errors=object} "Form with errors"
// @Router /create/ [post]
func (s *Server) PostCreate(c *fiber.Ctx) error {
	in, err := postInput(c)
	if err != nil {
		return s.handleError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), viewerID(c), in)
	if err != nil {
		if models.HasCode(err, models.CodeValidation) {
			return s.renderPostForm(c, postFormValues{Text: in.Text, Group: in.GroupID}, models.AsAppError(err).Fields, 0)
		}
		return s.handleError(c, err)
	}
	return redirect(c, profileURL(post.User.Username))
}

// PostEditForm handles GET /posts/:id/edit/
// @Summary Edit post form
// @Description Only the author sees the form; everyone else is redirected to the post.
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{form=object,groups=[]models.Group,is_edit=bool}
// @Success 302 "Redirect to the post"
// @Router /posts/{id}/edit/ [get]
func (s *Server) PostEditForm(c *fiber.Ctx) error {
	id, ok := parsePostID(c)
	if !ok {
		return s.NotFound(c)
	}

	post, canEdit, err := s.postService.CanEdit(c.UserContext(), viewerID(c), id)
	if err != nil {
		return s.handleError(c, err)
	}
	if !canEdit {
		return redirect(c, postURL(post.ID))
	}
	return s.renderPostForm(c, postFormValues{Text: post.Text, Group: post.GroupID, ImageURL: post.ImageURL}, nil, post.ID)
}

// PostEdit handles POST /posts/:id/edit/
// @Summary Save an edited post
// @Tags posts
// @Accept x-www-form-urlencoded,mpfd,json
// @Produce json
// @Param id path int true "Post ID"
// @Param text formData string true "Post text"
// @Param group formData int false "Group ID"
// @Param image formData file false "Replacement image"
// @Success 302 "Redirect to the post"
// @Success 200 {object} object{form=object,errors=object} "Form with errors"
// @Router /posts/{id}/edit/ [post]
func (s *Server) PostEdit(c *fiber.Ctx) error {
	id, ok := parsePostID(c)
	if !ok {
		return s.NotFound(c)
	}

	in, err := postInput(c)
	if err != nil {
		return s.handleError(c, err)
	}

	post, err := s.postService.EditPost(c.UserContext(), viewerID(c), id, in)
	switch {
	case err == nil:
		return redirect(c, postURL(post.ID))
	case models.HasCode(err, models.CodeForbidden):
		return redirect(c, postURL(id))
	case models.HasCode(err, models.CodeValidation):
		return s.renderPostForm(c, postFormValues{Text: in.Text, Group: in.GroupID}, models.AsAppError(err).Fields, id)
	default:
		return s.handleError(c, err)
	}
}

// AddComment handles POST /posts/:id/comment/
// @Summary Comment on a post
// @Description Invalid comments are dropped; the response always redirects to the post.
// @Tags posts
// @Accept x-www-form-urlencoded,json
// @Param id path int true "Post ID"
// @Param text formData string true "Comment text"
// @Success 302 "Redirect to the post"
// @Failure 404 {object} object{error=string}
// @Router /posts/{id}/comment/ [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, ok := parsePostID(c)
	if !ok {
		return s.NotFound(c)
	}

	var form struct {
		Text string `json:"text" form:"text"`
	}
	if err := c.BodyParser(&form); err != nil {
		return redirect(c, postURL(id))
	}

	if _, err := s.commentService.CreateComment(c.UserContext(), viewerID(c), id, form.Text); err != nil {
		if !models.HasCode(err, models.CodeValidation) {
			return s.handleError(c, err)
		}
	}
	return redirect(c, postURL(id))
}

func (s *Server) renderPostForm(c *fiber.Ctx, values postFormValues, errs map[string]string, postID uint) error {
	groups, err := s.groupRepo.List(c.UserContext())
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(postFormView{
		formView: formView{Form: values, Errors: errs},
		Groups:   groups,
		IsEdit:   postID != 0,
		PostID:   postID,
	})
}

