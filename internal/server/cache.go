package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beetlebugorg/partialrender/pkg/partial"
)

type invalidateRequest struct {
	All  bool     `json:"all"`
	MinX *float64 `json:"minx" validate:"required_without=All"`
	MinY *float64 `json:"miny" validate:"required_without=All"`
	MaxX *float64 `json:"maxx" validate:"required_without=All"`
	MaxY *float64 `json:"maxy" validate:"required_without=All"`
}

type invalidateResponse struct {
	Dropped int `json:"dropped"`
}

type statsResponse struct {
	partial.StoreStats
	HitRate float64 `json:"hit_rate"`
}

// Invalidate drops cached partials, either all of them or those overlapping
// the given region.
func (h *Handler) Invalidate(c *gin.Context) {
	l := loggerFrom(c)

	var req invalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithJSON(c, http.StatusBadRequest, "malformed invalidate request", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.RespondWithJSON(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	store := h.intersector.Store()
	var dropped int
	if req.All {
		dropped = store.InvalidateAll()
	} else {
		region := partial.NewEnvelope(*req.MinX, *req.MinY, *req.MaxX, *req.MaxY, h.intersector.Options().CRS)
		dropped = store.Invalidate(region)
	}

	l.Info("invalidated partials", "all", req.All, "dropped", dropped)
	h.RespondWithJSON(c, http.StatusOK, "invalidated", invalidateResponse{Dropped: dropped})
}

func (h *Handler) Stats(c *gin.Context) {
	stats := h.intersector.Store().Stats()
	h.RespondWithJSON(c, http.StatusOK, "store stats", statsResponse{
		StoreStats: stats,
		HitRate:    stats.HitRate(),
	})
}
