package server

import (
	"bytes"
	"errors"
	"image/png"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/beetlebugorg/partialrender/internal/display"
	"github.com/beetlebugorg/partialrender/pkg/partial"
)

type viewportRequest struct {
	MinX   *float64 `form:"minx" validate:"required"`
	MinY   *float64 `form:"miny" validate:"required"`
	MaxX   *float64 `form:"maxx" validate:"required"`
	MaxY   *float64 `form:"maxy" validate:"required"`
	Width  int      `form:"width" validate:"required,gt=0,lte=8192"`
	Height int      `form:"height" validate:"required,gt=0,lte=8192"`
	Grid   bool     `form:"grid"`
}

type centerRequest struct {
	X      *float64 `form:"x" validate:"required"`
	Y      *float64 `form:"y" validate:"required"`
	Width  int      `form:"width" validate:"required,gt=0,lte=8192"`
	Height int      `form:"height" validate:"required,gt=0,lte=8192"`
	Grid   bool     `form:"grid"`
}

// Viewport renders the envelope given by minx/miny/maxx/maxy onto a
// width x height PNG. grid=true outlines each partial.
func (h *Handler) Viewport(c *gin.Context) {
	l := loggerFrom(c)

	var req viewportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.RespondWithJSON(c, http.StatusBadRequest, "malformed viewport query", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.RespondWithJSON(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	crs := h.intersector.Options().CRS
	env := partial.NewEnvelope(*req.MinX, *req.MinY, *req.MaxX, *req.MaxY, crs)
	screen := partial.ScreenSize{Width: req.Width, Height: req.Height}

	result, err := h.intersector.IntersectEnvelope(c.Request.Context(), env, screen)
	if err != nil {
		h.respondQueryError(c, err)
		return
	}

	l.Debug("viewport request", "envelope", env.String(), "screen", screen.String())
	h.respondWithImage(c, result, req.Grid)
}

// Center renders a width x height PNG centered on x/y at the configured resolution.
func (h *Handler) Center(c *gin.Context) {
	l := loggerFrom(c)

	var req centerRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.RespondWithJSON(c, http.StatusBadRequest, "malformed center query", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.RespondWithJSON(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	crs := h.intersector.Options().CRS
	center := partial.Point{X: *req.X, Y: *req.Y}
	screen := partial.ScreenSize{Width: req.Width, Height: req.Height}

	result, err := h.intersector.IntersectPoint(c.Request.Context(), center, screen, crs)
	if err != nil {
		h.respondQueryError(c, err)
		return
	}

	l.Debug("center request", "x", center.X, "y", center.Y, "screen", screen.String())
	h.respondWithImage(c, result, req.Grid)
}

func (h *Handler) respondQueryError(c *gin.Context, err error) {
	if errors.Is(err, partial.ErrInvalidViewport) || errors.Is(err, partial.ErrInvalidCRS) {
		h.RespondWithJSON(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	loggerFrom(c).Error("viewport query failed", "error", err)
	h.RespondWithInternalServerError(c)
}

func (h *Handler) respondWithImage(c *gin.Context, result *partial.QueryResult, showGrid bool) {
	img := display.ComposeWithOptions(result, display.Options{
		Background: h.background,
		ShowGrid:   showGrid,
	})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		loggerFrom(c).Error("failed to encode viewport", "error", err)
		h.RespondWithInternalServerError(c)
		return
	}

	c.Header("X-Partial-Count", strconv.Itoa(len(result.Partials())))
	c.Header("X-Partial-Holes", strconv.Itoa(len(result.Holes())))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
