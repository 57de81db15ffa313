package server

import (
	"errors"

	"yatube/internal/middleware"
	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// notFoundView is the body of every 404.
type notFoundView struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Path  string `json:"path"`
}

// NotFound renders the not-found view; it also terminates unknown routes.
func (s *Server) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(notFoundView{
		Error: "Page not found",
		Code:  models.CodeNotFound,
		Path:  c.OriginalURL(),
	})
}

// handleError maps service errors onto responses that do not depend on the form being shown.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	appErr := models.AsAppError(err)
	switch appErr.Code {
	case models.CodeNotFound:
		return s.NotFound(c)
	case models.CodeUnauthorized:
		return c.Redirect(middleware.LoginRedirectURL(c.OriginalURL()), fiber.StatusFound)
	case models.CodeInternal:
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"path", c.Path(), "error", appErr.Error())
		return models.RespondWithError(c, fiber.StatusInternalServerError, appErr)
	default:
		return models.RespondWithError(c, appErr.HTTPStatus(), appErr)
	}
}

// errorHandler is the Fiber fallback for errors returned from handlers and middleware.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code == fiber.StatusNotFound {
			return s.NotFound(c)
		}
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Error: fiberErr.Message})
	}
	return s.handleError(c, err)
}
