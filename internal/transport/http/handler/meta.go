package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"paperarchive/internal/app"
	"paperarchive/internal/transport/http/response"
)

type MetaHandler struct {
	now func() time.Time
}

func NewMetaHandler(now func() time.Time) *MetaHandler {
	if now == nil {
		now = time.Now
	}
	return &MetaHandler{now: now}
}

func (h *MetaHandler) Get(c *gin.Context) {
	response.OK(c, app.Meta(h.now()))
}
