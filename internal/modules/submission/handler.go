package submission

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eduforms/internal/pkg/response"
	"eduforms/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Submit handles POST /api/v1/forms/:slug/submit (public)
// @Summary Submit a form
// @Description Public endpoint receiving a rendered form's payload
// @Tags Submissions
// @Accept json
// @Produce json
// @Param slug path string true "Form slug"
// @Param request body SubmitRequest true "Submission payload"
// @Success 201 {object} response.Response{data=domain.FormSubmission}
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /forms/{slug}/submit [post]
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	meta := Meta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if userID := c.GetInt64("user_id"); userID != 0 {
		meta.UserID = &userID
	}

	sub, err := h.service.Submit(c.Request.Context(), c.Param("slug"), &req, meta)
	if err != nil {
		var vErr *ValidationError
		switch {
		case errors.Is(err, ErrFormNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Form not found")
		case errors.As(err, &vErr):
			response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Submission rejected", vErr.Fields)
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		}
		return
	}

	response.Success(c, http.StatusCreated, sub)
}

// ListByForm handles GET /api/v1/admin/forms/:id/submissions
func (h *Handler) ListByForm(c *gin.Context) {
	formID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid form ID")
		return
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	offset := 0
	if o := c.Query("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	subs, total, err := h.service.ListByForm(c.Request.Context(), formID, limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	response.Success(c, http.StatusOK, SubmissionListResponse{Submissions: subs, Total: total})
}

// Get handles GET /api/v1/admin/submissions/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid submission ID")
		return
	}

	sub, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if sub == nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Submission not found")
		return
	}
	response.Success(c, http.StatusOK, sub)
}
