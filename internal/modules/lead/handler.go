package lead

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"eduforms/internal/domain"
	"eduforms/internal/pkg/response"
	"eduforms/internal/pkg/validator"
	"eduforms/internal/repository"
)

// Handler exposes the admin lead pipeline: listing, status transitions,
// assignment, notes and the live websocket feed.
type Handler struct {
	service  *Service
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewHandler(service *Service, hub *Hub) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// List handles GET /api/v1/admin/leads
// @Summary List leads
// @Tags Leads
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status"
// @Param priority query string false "Filter by priority"
// @Param assigned_to query int false "Filter by assignee"
// @Success 200 {object} response.Response{data=ListResponse}
// @Router /admin/leads [get]
func (h *Handler) List(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	limit, offset := pageParams(c)

	leads, total, err := h.service.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	response.Success(c, http.StatusOK, ListResponse{Leads: leads, Total: total})
}

// Stats handles GET /api/v1/admin/leads/stats
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// Get handles GET /api/v1/admin/leads/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	lead, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, lead)
}

// Update handles PATCH /api/v1/admin/leads/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	lead, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, lead)
}

// ChangeStatus handles PATCH /api/v1/admin/leads/:id/status
// @Summary Change lead status
// @Description Rejected once the lead is converted, lost or closed
// @Tags Leads
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Lead ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} response.Response{data=domain.Lead}
// @Failure 409 {object} response.Response
// @Router /admin/leads/{id}/status [patch]
func (h *Handler) ChangeStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	lead, err := h.service.ChangeStatus(c.Request.Context(), id, req.Status, req.Note, c.GetInt64("user_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, lead)
}

// Assign handles PATCH /api/v1/admin/leads/:id/assign
func (h *Handler) Assign(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	lead, err := h.service.Assign(c.Request.Context(), id, req.UserID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, lead)
}

// AddNote handles POST /api/v1/admin/leads/:id/notes
func (h *Handler) AddNote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	lead, err := h.service.AddNote(c.Request.Context(), id, req.Content, c.GetInt64("user_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, lead)
}

// Feed handles GET /api/v1/admin/leads/feed — upgrades to a websocket and
// streams lead.created events until the client disconnects.
func (h *Handler) Feed(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("lead_feed_upgrade_error user=%d err=%v", userID, err)
		return
	}

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID)

	// Drain client frames; the feed is write-only from our side.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrLeadNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Lead not found")
	case errors.Is(err, ErrTerminalStatus):
		response.Error(c, http.StatusConflict, "TERMINAL_STATUS", "Lead is in a terminal status")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", "Lead was modified concurrently, retry")
	case errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusUnprocessableEntity, "INVALID_STATUS", "Unknown lead status")
	case errors.Is(err, ErrInvalidPriority):
		response.Error(c, http.StatusUnprocessableEntity, "INVALID_PRIORITY", "Unknown lead priority")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func parseFilter(c *gin.Context) (repository.LeadFilter, bool) {
	var filter repository.LeadFilter

	if raw := c.Query("status"); raw != "" {
		status := domain.LeadStatus(raw)
		if !status.Valid() {
			response.Error(c, http.StatusBadRequest, "INVALID_QUERY", "Unknown status")
			return filter, false
		}
		filter.Status = &status
	}
	if raw := c.Query("priority"); raw != "" {
		priority := domain.LeadPriority(raw)
		if !priority.Valid() {
			response.Error(c, http.StatusBadRequest, "INVALID_QUERY", "Unknown priority")
			return filter, false
		}
		filter.Priority = &priority
	}
	if raw := c.Query("assigned_to"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_QUERY", "assigned_to must be an integer")
			return filter, false
		}
		filter.AssignedTo = &id
	}
	return filter, true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid lead ID")
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit = 50
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	offset = 0
	if o := c.Query("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
