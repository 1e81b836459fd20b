package handlers

import (
	"lager/internal/models"
	"lager/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ArticleHandler handles HTTP requests for articles.
type ArticleHandler struct {
	service *services.ArticleService
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(service *services.ArticleService) *ArticleHandler {
	return &ArticleHandler{
		service: service,
	}
}

// RegisterRoutes registers the article routes. The router is expected to be guarded.
func (h *ArticleHandler) RegisterRoutes(router fiber.Router) {
	articleRoutes := router.Group("/articles")
	articleRoutes.Get("/", h.HandleGetArticles)
	articleRoutes.Get("/:ean_code", h.HandleGetArticle)
	articleRoutes.Post("/", h.HandleCreateArticle)
	articleRoutes.Put("/:ean_code", h.HandleUpdateArticle)
	articleRoutes.Delete("/:ean_code", h.HandleDeleteArticle)
}

// HandleGetArticles lists articles, optionally filtered by ?search=.
func (h *ArticleHandler) HandleGetArticles(c *fiber.Ctx) error {
	articles, err := h.service.List(c.UserContext(), c.Query("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(articles)
}

// HandleGetArticle retrieves a single article by its EAN code.
func (h *ArticleHandler) HandleGetArticle(c *fiber.Ctx) error {
	article, err := h.service.Get(c.UserContext(), c.Params("ean_code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(article)
}

// HandleCreateArticle creates a new article.
func (h *ArticleHandler) HandleCreateArticle(c *fiber.Ctx) error {
	var input models.ArticleCreate
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c, err)
	}

	article, err := h.service.Create(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(article)
}

// HandleUpdateArticle applies a partial update to an existing article.
func (h *ArticleHandler) HandleUpdateArticle(c *fiber.Ctx) error {
	var changes models.ArticleUpdate
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&changes); err != nil {
			return invalidBody(c, err)
		}
	}

	article, err := h.service.Update(c.UserContext(), c.Params("ean_code"), changes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(article)
}

// HandleDeleteArticle deletes an article by its EAN code.
func (h *ArticleHandler) HandleDeleteArticle(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("ean_code")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Article deleted successfully",
	})
}
