package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"paperarchive/internal/app"
	"paperarchive/internal/transport/http/middleware"
	"paperarchive/internal/transport/http/response"
)

// multipart headers and the text fields ride on top of the file
const formOverhead = 1 << 20

type UploadHandler struct {
	catalog  *app.CatalogService
	maxBytes int64
}

func NewUploadHandler(catalog *app.CatalogService, maxBytes int64) *UploadHandler {
	return &UploadHandler{catalog: catalog, maxBytes: maxBytes}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+formOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusBadRequest, h.sizeMessage())
			return
		}
		response.Error(c, http.StatusBadRequest, "file is required")
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		response.Error(c, http.StatusBadRequest, "only PDF files are accepted")
		return
	}
	if header.Size > h.maxBytes {
		response.Error(c, http.StatusBadRequest, h.sizeMessage())
		return
	}

	fields, err := uploadFields(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "unreadable file")
		return
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "unreadable file")
		return
	}
	if int64(len(content)) > h.maxBytes {
		response.Error(c, http.StatusBadRequest, h.sizeMessage())
		return
	}

	paper, err := h.catalog.Upload(c.Request.Context(), app.UploadInput{
		Fields:   fields,
		FileName: filepath.Base(header.Filename),
		Content:  content,
		Actor:    middleware.Identity(c),
	})
	if err != nil {
		writeCatalogError(c, err, "upload paper failed")
		return
	}
	response.OK(c, paper)
}

func uploadFields(c *gin.Context) (app.PaperFields, error) {
	raw := map[string]string{}
	for _, name := range []string{"title", "year", "semester", "branch", "questionType"} {
		v := strings.TrimSpace(c.PostForm(name))
		if v == "" {
			return app.PaperFields{}, fmt.Errorf("%s is required", name)
		}
		raw[name] = v
	}
	year, err := strconv.Atoi(raw["year"])
	if err != nil {
		return app.PaperFields{}, fmt.Errorf("year must be a number")
	}
	semester, err := strconv.Atoi(raw["semester"])
	if err != nil {
		return app.PaperFields{}, fmt.Errorf("semester must be a number")
	}
	return app.PaperFields{
		Title:        raw["title"],
		Year:         year,
		Semester:     semester,
		Branch:       raw["branch"],
		QuestionType: raw["questionType"],
	}, nil
}

func (h *UploadHandler) sizeMessage() string {
	return fmt.Sprintf("file exceeds the %d MB limit", h.maxBytes>>20)
}
