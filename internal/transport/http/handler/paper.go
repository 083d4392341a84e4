package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"paperarchive/internal/app"
	"paperarchive/internal/model"
	"paperarchive/internal/objectstore"
	"paperarchive/internal/transport/http/middleware"
	"paperarchive/internal/transport/http/response"
)

type PaperHandler struct {
	catalog *app.CatalogService
}

type UpdatePaperRequest struct {
	Title        string `json:"title"`
	Year         int    `json:"year"`
	Semester     int    `json:"semester"`
	Branch       string `json:"branch"`
	QuestionType string `json:"questionType"`
}

func NewPaperHandler(catalog *app.CatalogService) *PaperHandler {
	return &PaperHandler{catalog: catalog}
}

func (h *PaperHandler) List(c *gin.Context) {
	filter, err := app.ParseListFilter(
		c.Query("year"),
		c.Query("semester"),
		c.Query("branch"),
		c.Query("questionType"),
	)
	if err != nil {
		writeCatalogError(c, err, "list papers failed")
		return
	}

	papers, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		writeCatalogError(c, err, "list papers failed")
		return
	}
	response.OK(c, nonNil(papers))
}

func (h *PaperHandler) Search(c *gin.Context) {
	query, err := app.ParseSearchQuery(
		c.Query("q"),
		c.Query("year"),
		c.Query("branch"),
		c.Query("type"),
	)
	if err != nil {
		writeCatalogError(c, err, "search papers failed")
		return
	}

	papers, err := h.catalog.Search(c.Request.Context(), query)
	if err != nil {
		writeCatalogError(c, err, "search papers failed")
		return
	}
	response.OK(c, nonNil(papers))
}

func (h *PaperHandler) Get(c *gin.Context) {
	paper, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeCatalogError(c, err, "fetch paper failed")
		return
	}
	response.OK(c, paper)
}

func (h *PaperHandler) Update(c *gin.Context) {
	var req UpdatePaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	paper, err := h.catalog.Update(c.Request.Context(), app.UpdateInput{
		ID: c.Param("id"),
		Fields: app.PaperFields{
			Title:        req.Title,
			Year:         req.Year,
			Semester:     req.Semester,
			Branch:       req.Branch,
			QuestionType: req.QuestionType,
		},
		Actor: middleware.Identity(c),
	})
	if err != nil {
		writeCatalogError(c, err, "update paper failed")
		return
	}
	response.OK(c, paper)
}

// DeleteByQuery serves DELETE /papers?id=.
func (h *PaperHandler) DeleteByQuery(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		response.Error(c, http.StatusBadRequest, "paper id is required")
		return
	}
	h.delete(c, id)
}

func (h *PaperHandler) DeleteByPath(c *gin.Context) {
	h.delete(c, c.Param("id"))
}

func (h *PaperHandler) delete(c *gin.Context, id string) {
	if err := h.catalog.Delete(c.Request.Context(), id, middleware.Identity(c)); err != nil {
		writeCatalogError(c, err, "delete paper failed")
		return
	}
	response.Success(c)
}

func writeCatalogError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrValidation):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrPaperNotFound):
		response.Error(c, http.StatusNotFound, "paper not found")
	case errors.Is(err, objectstore.ErrStoreFailure):
		logrus.WithError(err).Error(fallback)
		response.Error(c, http.StatusInternalServerError, "file storage unavailable")
	default:
		logrus.WithError(err).Error(fallback)
		response.Error(c, http.StatusInternalServerError, fallback)
	}
}

func nonNil(papers []model.QuestionPaper) []model.QuestionPaper {
	if papers == nil {
		return []model.QuestionPaper{}
	}
	return papers
}
