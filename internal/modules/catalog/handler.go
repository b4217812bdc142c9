package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"studiofinder/internal/pkg/response"
	"studiofinder/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	log     *slog.Logger
}

func NewHandler(service *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{service: service, log: log}
}

// RegisterRoutes registers the public catalog routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	studios := r.Group("/studios")
	{
		studios.GET("", h.GetStudios)        // GET /api/v1/studios?location=...&date=...
		studios.GET("/:id", h.GetStudioByID) // GET /api/v1/studios/:id
	}
}

// GetStudios handles GET /api/v1/studios
func (h *Handler) GetStudios(c *gin.Context) {
	var q ListStudiosQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid query parameters")
		return
	}
	q.Location = strings.TrimSpace(q.Location)
	if errs := validator.Validate(q); errs != nil {
		response.ValidationFailed(c, errs)
		return
	}

	list, err := h.service.ListStudios(c.Request.Context(), q)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, list)
}

// GetStudioByID handles GET /api/v1/studios/:id
func (h *Handler) GetStudioByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" || len(id) > 64 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidID, "Invalid studio ID")
		return
	}

	studio, err := h.service.GetStudio(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"studio": studio})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrStudioNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Studio not found")
	default:
		_ = c.Error(err)
		h.log.Error("catalog request failed", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, response.CodeFetchFailed, "Failed to load studios")
	}
}
