package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/fantasy-edge/internal/services"
	"github.com/jstittsworth/fantasy-edge/pkg/utils"
)

type LinesHandler struct {
	service *services.LinesService
}

func NewLinesHandler(service *services.LinesService) *LinesHandler {
	return &LinesHandler{
		service: service,
	}
}

// GetLines returns the current lines board through the cache/live/offline
// resolution chain.
func (h *LinesHandler) GetLines(c *gin.Context) {
	lines := h.service.GetLines(c.Request.Context())
	utils.SendSuccess(c, gin.H{
		"lines": lines,
		"count": len(lines),
	})
}

// RefreshLines forces a live fetch and cache rewrite.
func (h *LinesHandler) RefreshLines(c *gin.Context) {
	lines, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		utils.SendUpstreamError(c, err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{
		"lines": lines,
		"count": len(lines),
	})
}

// GetStatus reports the refresh scheduler state.
func (h *LinesHandler) GetStatus(c *gin.Context) {
	utils.SendSuccess(c, h.service.Status())
}
