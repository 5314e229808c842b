package server

import (
	"context"
	"image/color"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/beetlebugorg/partialrender/pkg/partial"
)

const (
	internalServerErrorText = "the server encountered an error and could not process your request"
)

// Intersector is the subset of *partial.Intersector the handlers use.
type Intersector interface {
	IntersectEnvelope(ctx context.Context, env partial.Envelope, screen partial.ScreenSize) (*partial.QueryResult, error)
	IntersectPoint(ctx context.Context, center partial.Point, screen partial.ScreenSize, crs partial.CRS) (*partial.QueryResult, error)
	Store() *partial.Store
	Options() partial.Options
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type Handler struct {
	validate    *validator.Validate
	intersector Intersector
	background  color.Color
}

func NewHandler(v *validator.Validate, ix Intersector) *Handler {
	return &Handler{
		validate:    v,
		intersector: ix,
		background:  color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff},
	}
}

func (h *Handler) RespondWithInternalServerError(c *gin.Context) {
	h.RespondWithJSON(c, http.StatusInternalServerError, internalServerErrorText, nil)
}

func (h *Handler) RespondWithJSON(c *gin.Context, code int, message string, data any) {
	success := code < 400

	r := response{
		Success: success,
		Message: message,
		Data:    data,
	}

	c.JSON(code, r)
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, "OK")
}
