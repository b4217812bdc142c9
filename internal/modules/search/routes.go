package search

import (
	"studiofinder/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the search session routes under r.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	search := r.Group("/search")
	{
		search.GET("/facets", h.Facets)           // GET /api/v1/search/facets
		search.POST("/sessions", h.CreateSession) // POST /api/v1/search/sessions
	}

	sessions := search.Group("/sessions/:id")
	sessions.GET("/stream", middleware.SessionAuth(h.tokens, true), h.stream.Serve)

	protected := sessions.Group("", middleware.SessionAuth(h.tokens, false))
	{
		protected.GET("", h.GetSession)
		protected.DELETE("", h.DeleteSession)
		protected.POST("/query", h.SubmitQuery)
		protected.POST("/retry", h.Retry)
		protected.POST("/filters", h.ApplyFilter)
		protected.POST("/sort", h.SetSort)
		protected.POST("/selection", h.Select)
		protected.POST("/viewport", h.Resize)
		protected.POST("/view-mode", h.SetViewMode)
	}
}

// Stream exposes the websocket hub so the server can drop streams on
// shutdown.
func (h *Handler) Stream() *Stream { return h.stream }
