package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campushub/school-portal-api/internal/service"
	"github.com/campushub/school-portal-api/pkg/response"
)

// StatsHandler handles the admin dashboard stats endpoint.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler constructs a stats handler.
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{service: svc}
}

// Overview godoc
// @Summary Headline counts for the admin dashboard
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *StatsHandler) Overview(c *gin.Context) {
	stats, err := h.service.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "stats retrieved", gin.H{"stats": stats})
}
