package server

import (
	"yatube/internal/middleware"
	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
)

type signupRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

// SignupForm handles GET /auth/signup/
// @Summary Registration form
// @Tags auth
// @Produce json
// @Success 200 {object} object{form=object}
// @Router /auth/signup/ [get]
func (s *Server) SignupForm(c *fiber.Ctx) error {
	return c.JSON(formView{Form: fiber.Map{"username": "", "email": ""}})
}

// Signup handles POST /auth/signup/
// @Summary Register
// @Description Creates the account, signs the user in and redirects to the index.
// @Tags auth
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param username formData string true "Username"
// @Param email formData string false "Email"
// @Param password formData string true "Password"
// @Success 302 "Redirect to /"
// @Success 200 {object} object{form=object,errors=object} "Form with errors"
// @Router /auth/signup/ [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		if models.HasCode(err, models.CodeValidation) || models.HasCode(err, models.CodeConflict) {
			return c.JSON(formView{
				Form:   fiber.Map{"username": req.Username, "email": req.Email},
				Errors: models.AsAppError(err).Fields,
			})
		}
		return s.handleError(c, err)
	}

	if err := s.startSession(c, user); err != nil {
		return s.handleError(c, err)
	}
	return redirect(c, "/")
}

// LoginForm handles GET /auth/login/
// @Summary Login form
// @Tags auth
// @Produce json
// @Param next query string false "Local path to return to"
// @Success 200 {object} object{form=object}
// @Router /auth/login/ [get]
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return c.JSON(formView{Form: fiber.Map{"username": "", "next": safeNext(c.Query("next"), "")}})
}

// Login handles POST /auth/login/
// @Summary Sign in
// @Description Sets the session cookie and redirects to next (local paths only) or /.
// @Tags auth
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param next formData string false "Local path to return to"
// @Success 302 "Redirect to next or /"
// @Success 200 {object} object{form=object,errors=object} "Form with errors"
// @Router /auth/login/ [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}
	if req.Next == "" {
		req.Next = c.Query("next")
	}
	next := safeNext(req.Next, "/")

	user, err := s.userService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		appErr := models.AsAppError(err)
		switch appErr.Code {
		case models.CodeValidation:
			return c.JSON(formView{Form: fiber.Map{"username": req.Username, "next": next}, Errors: appErr.Fields})
		case models.CodeUnauthorized:
			return c.JSON(formView{
				Form:   fiber.Map{"username": req.Username, "next": next},
				Errors: map[string]string{"__all__": appErr.Message},
			})
		}
		return s.handleError(c, err)
	}

	if err := s.startSession(c, user); err != nil {
		return s.handleError(c, err)
	}
	return redirect(c, next)
}

// Logout handles POST /auth/logout/
// @Summary Sign out
// @Description Revokes the session token until it expires and clears the cookie.
// @Tags auth
// @Success 302 "Redirect to /"
// @Router /auth/logout/ [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if session := middleware.CurrentSession(c); session != nil {
		if err := s.sessions.Revoke(c.UserContext(), session); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "failed to revoke session", "error", err.Error())
		}
	}
	s.sessions.ClearCookie(c)
	return redirect(c, "/")
}

func (s *Server) startSession(c *fiber.Ctx, user *models.User) error {
	token, session, err := s.sessions.Issue(user.ID, user.Username)
	if err != nil {
		return models.NewInternalError(err)
	}
	s.sessions.SetCookie(c, token, session)
	return nil
}
