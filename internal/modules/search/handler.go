package search

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"studiofinder/internal/discovery"
	"studiofinder/internal/pkg/jwt"
	"studiofinder/internal/pkg/response"
	"studiofinder/internal/pkg/validator"
	"studiofinder/internal/session"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	store  *session.Store
	tokens *jwt.Service
	stream *Stream
	log    *slog.Logger
}

func NewHandler(store *session.Store, tokens *jwt.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		store:  store,
		tokens: tokens,
		stream: NewStream(store, log),
		log:    log,
	}
}

// Facets handles GET /api/v1/search/facets
func (h *Handler) Facets(c *gin.Context) {
	response.Success(c, http.StatusOK, facets())
}

// CreateSession handles POST /api/v1/search/sessions. It runs the first
// fetch before answering.
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if !bindJSON(c, &req, true) {
		return
	}

	sess := h.store.Create(discovery.Size{Width: req.Width, Height: req.Height})
	token, err := h.tokens.GenerateToken(sess.ID)
	if err != nil {
		_ = h.store.Delete(sess.ID)
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to issue session token")
		return
	}

	snap, _ := sess.Engine.Search(c.Request.Context(), req.query())
	h.log.Info("search session created", "session_id", sess.ID, "status", snap.Status, "results", snap.ResultCount)

	response.Success(c, http.StatusCreated, SessionResponse{
		SessionID: sess.ID,
		Token:     token,
		ExpiresIn: int64(h.store.TTL().Seconds()),
		Snapshot:  snap,
	})
}

// GetSession handles GET /api/v1/search/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, sess.Engine.Snapshot())
}

// SubmitQuery handles POST /api/v1/search/sessions/:id/query. applied is
// false when a later query superseded this one before the catalog answered.
func (h *Handler) SubmitQuery(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req QueryRequest
	if !bindJSON(c, &req, false) {
		return
	}

	snap, applied := sess.Engine.Search(c.Request.Context(), req.query())
	response.Success(c, http.StatusOK, gin.H{"applied": applied, "snapshot": snap})
}

// Retry handles POST /api/v1/search/sessions/:id/retry
func (h *Handler) Retry(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap, applied := sess.Engine.Retry(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{"applied": applied, "snapshot": snap})
}

// ApplyFilter handles POST /api/v1/search/sessions/:id/filters
func (h *Handler) ApplyFilter(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req FilterRequest
	if !bindJSON(c, &req, false) {
		return
	}
	action, err := req.Action()
	if err != nil {
		response.ValidationFailed(c, map[string]string{"type": err.Error()})
		return
	}
	response.Success(c, http.StatusOK, sess.Engine.Dispatch(action))
}

// SetSort handles POST /api/v1/search/sessions/:id/sort
func (h *Handler) SetSort(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req SortRequest
	if !bindJSON(c, &req, false) {
		return
	}
	key, err := discovery.ParseSortKey(req.Key)
	if err != nil {
		response.ValidationFailed(c, map[string]string{"key": "oneof"})
		return
	}
	response.Success(c, http.StatusOK, sess.Engine.SetSort(key))
}

// Select handles POST /api/v1/search/sessions/:id/selection
func (h *Handler) Select(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req SelectionRequest
	if !bindJSON(c, &req, false) {
		return
	}
	source, err := discovery.ParseSelectionSource(req.Source)
	if err != nil {
		response.ValidationFailed(c, map[string]string{"source": "oneof"})
		return
	}
	if source == discovery.SourceNone && (req.Type == SelectHover || req.Type == SelectClick) {
		response.ValidationFailed(c, map[string]string{"source": "required"})
		return
	}

	var snap discovery.Snapshot
	switch req.Type {
	case SelectHover:
		snap = sess.Engine.Hover(req.StudioID, source)
	case SelectHoverEnd:
		snap = sess.Engine.HoverEnd(req.StudioID)
	case SelectClick:
		snap = sess.Engine.Click(req.StudioID, source)
	default:
		snap = sess.Engine.ClearSelection()
	}
	response.Success(c, http.StatusOK, snap)
}

// Resize handles POST /api/v1/search/sessions/:id/viewport
func (h *Handler) Resize(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req ViewportRequest
	if !bindJSON(c, &req, false) {
		return
	}
	response.Success(c, http.StatusOK, sess.Engine.Resize(discovery.Size{Width: req.Width, Height: req.Height}))
}

// SetViewMode handles POST /api/v1/search/sessions/:id/view-mode
func (h *Handler) SetViewMode(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req ViewModeRequest
	if !bindJSON(c, &req, false) {
		return
	}
	mode, err := discovery.ParseViewMode(req.Mode)
	if err != nil {
		response.ValidationFailed(c, map[string]string{"mode": "oneof"})
		return
	}
	response.Success(c, http.StatusOK, sess.Engine.SetViewMode(mode))
}

// DeleteSession handles DELETE /api/v1/search/sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		h.sessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	sess, err := h.store.Get(c.Param("id"))
	if err != nil {
		h.sessionError(c, err)
		return nil, false
	}
	return sess, true
}

func (h *Handler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrSessionExpired):
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "Session expired")
	case errors.Is(err, session.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "Session not found")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Internal Server Error")
	}
}

// bindJSON decodes and validates the body. An empty body is accepted when
// optional is set.
func bindJSON(c *gin.Context, req any, optional bool) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
			return false
		}
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationFailed(c, errs)
		return false
	}
	return true
}
