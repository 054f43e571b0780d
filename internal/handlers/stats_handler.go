package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/httpresp"
	ucStats "github.com/chasmapasal/chasmapasal-api/internal/usecase/stats"
)

type StatsHandler struct {
	stats *ucStats.Service
}

func NewStatsHandler(stats *ucStats.Service) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) Count(c *gin.Context) {
	n, err := h.stats.Count(c.Request.Context(), c.Param("kind"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Count(c, n)
}

func (h *StatsHandler) Summary(c *gin.Context) {
	out, err := h.stats.Summary(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
