package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Media handles GET /media/:hash
// @Summary Stored image
// @Tags media
// @Produce octet-stream
// @Param hash path string true "sha256 of the image bytes"
// @Success 200 {file} binary
// @Failure 404 {object} object{error=string}
// @Router /media/{hash} [get]
func (s *Server) Media(c *fiber.Ctx) error {
	img, err := s.imageService.Get(c.UserContext(), c.Params("hash"))
	if err != nil {
		return s.handleError(c, err)
	}

	c.Set(fiber.HeaderContentType, img.ContentType)
	c.Set(fiber.HeaderContentLength, strconv.FormatInt(img.SizeBytes, 10))
	// Content addressed: the bytes behind a hash never change.
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	c.Set(fiber.HeaderETag, `"`+img.Hash+`"`)
	return c.Send(img.Data)
}

// AboutAuthor handles GET /about/author/
// @Summary About the author
// @Tags about
// @Produce json
// @Success 200 {object} object{title=string,text=string}
// @Router /about/author/ [get]
func (s *Server) AboutAuthor(c *fiber.Ctx) error {
	return c.JSON(staticView{
		Title: "About the author",
		Text:  "Yatube is a small blogging platform for publishing short posts, joining groups and following authors.",
	})
}

// AboutTech handles GET /about/tech/
// @Summary Technologies
// @Tags about
// @Produce json
// @Success 200 {object} object{title=string,text=string}
// @Router /about/tech/ [get]
func (s *Server) AboutTech(c *fiber.Ctx) error {
	return c.JSON(staticView{
		Title: "Technologies",
		Text:  "Go, Fiber, GORM over PostgreSQL or SQLite, Redis page cache, Prometheus metrics and OpenTelemetry tracing.",
	})
}
