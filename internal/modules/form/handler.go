package form

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eduforms/internal/engine"
	"eduforms/internal/pkg/response"
	"eduforms/internal/pkg/validator"
)

// Handler exposes form authoring (admin) and the public read side consumed
// by the client-side renderer and trigger orchestrator.
type Handler struct {
	service *Service
	markers engine.MarkerStore
}

func NewHandler(service *Service, markers engine.MarkerStore) *Handler {
	return &Handler{service: service, markers: markers}
}

// GetBySlug handles GET /api/v1/forms/:slug
// @Summary Get published form by slug
// @Description Public endpoint serving the form schema the renderer mounts
// @Tags Forms
// @Produce json
// @Param slug path string true "Form slug"
// @Success 200 {object} response.Response{data=domain.DynamicForm}
// @Failure 404 {object} response.Response
// @Router /forms/{slug} [get]
func (h *Handler) GetBySlug(c *gin.Context) {
	f, err := h.service.GetPublicBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Form not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	response.Success(c, http.StatusOK, f)
}

// ForPage handles GET /api/v1/forms/for-page?page_type=&entity_id=
// @Summary List form placements for a page
// @Description Assignments with embedded forms for the requesting page view
// @Tags Forms
// @Produce json
// @Param page_type query string true "Page type"
// @Param entity_id query int false "Entity ID"
// @Success 200 {object} response.Response{data=[]PagePlacement}
// @Router /forms/for-page [get]
func (h *Handler) ForPage(c *gin.Context) {
	pageType := c.Query("page_type")
	if pageType == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_QUERY", "page_type is required")
		return
	}

	var entityID *int64
	if raw := c.Query("entity_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_QUERY", "entity_id must be an integer")
			return
		}
		entityID = &id
	}

	placements, err := h.service.ListForPage(c.Request.Context(), pageType, entityID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	response.Success(c, http.StatusOK, placements)
}

// CheckShown handles GET /api/v1/forms/:slug/shown — show-once marker read
// for clients without usable local storage.
func (h *Handler) CheckShown(c *gin.Context) {
	visitor := visitorID(c)
	if visitor == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_QUERY", "visitor id is required")
		return
	}

	shown, err := h.markers.Get(c.Request.Context(), markerKey(c.Param("slug"), visitor))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	response.Success(c, http.StatusOK, gin.H{"shown": shown})
}

// MarkShown handles POST /api/v1/forms/:slug/shown.
func (h *Handler) MarkShown(c *gin.Context) {
	visitor := visitorID(c)
	if visitor == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_QUERY", "visitor id is required")
		return
	}

	if err := h.markers.Set(c.Request.Context(), markerKey(c.Param("slug"), visitor)); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	response.Success(c, http.StatusNoContent, nil)
}

func visitorID(c *gin.Context) string {
	if v := c.GetHeader("X-Visitor-ID"); v != "" {
		return v
	}
	return c.Query("visitor")
}

// markerKey scopes the form_shown_{slug} contract per visitor on the
// server-held store.
func markerKey(slug, visitor string) string {
	return engine.MarkerKey(slug) + ":" + visitor
}

// Create handles POST /api/v1/admin/forms
// @Summary Create form
// @Tags Admin Forms
// @Security BearerAuth
// @Success 201 {object} response.Response{data=domain.DynamicForm}
// @Router /admin/forms [post]
func (h *Handler) Create(c *gin.Context) {
	var req FormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	f, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, f)
}

// Update handles PUT /api/v1/admin/forms/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req FormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	f, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, f)
}

// Get handles GET /api/v1/admin/forms/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	f, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, f)
}

// List handles GET /api/v1/admin/forms
func (h *Handler) List(c *gin.Context) {
	limit, offset := pageParams(c)
	forms, total, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	response.Success(c, http.StatusOK, FormListResponse{Forms: forms, Total: total})
}

// Publish handles POST /api/v1/admin/forms/:id/publish
func (h *Handler) Publish(c *gin.Context) {
	h.setPublished(c, true)
}

// Unpublish handles POST /api/v1/admin/forms/:id/unpublish
func (h *Handler) Unpublish(c *gin.Context) {
	h.setPublished(c, false)
}

func (h *Handler) setPublished(c *gin.Context, published bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	f, err := h.service.SetPublished(c.Request.Context(), id, published)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, f)
}

// Delete handles DELETE /api/v1/admin/forms/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusNoContent, nil)
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	var schemaErr *SchemaError
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Form not found")
	case errors.Is(err, ErrSlugTaken):
		response.Error(c, http.StatusConflict, "SLUG_TAKEN", "Slug already in use")
	case errors.As(err, &schemaErr):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "SCHEMA_ERROR", "Invalid form schema", schemaErr.Issues)
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid form ID")
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
