package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"eduforms/internal/database"
	"eduforms/internal/domain"
	"eduforms/internal/engine"
	"eduforms/internal/middleware"
	"eduforms/internal/modules/form"
	"eduforms/internal/modules/lead"
	"eduforms/internal/modules/submission"
	jwtsvc "eduforms/internal/pkg/jwt"
	"eduforms/internal/repository"
)

type E2ETestSuite struct {
	router      *gin.Engine
	db          *gorm.DB
	jwtService  *jwtsvc.Service
	formService *form.Service
	leadRepo    *repository.LeadRepository
	subRepo     *repository.SubmissionRepository
}

type TestResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, repository.AutoMigrate(db))

	formRepo := repository.NewFormRepository(db)
	subRepo := repository.NewSubmissionRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	markers := engine.NewMemoryMarkerStore()

	jwtService := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)

	leadService := lead.NewService(leadRepo, nil)
	leadHandler := lead.NewHandler(leadService, lead.NewHub())

	formService := form.NewService(formRepo)
	formHandler := form.NewHandler(formService, markers)

	subService := submission.NewService(formRepo, subRepo, leadService)
	subHandler := submission.NewHandler(subService)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	form.RegisterPublicRoutes(v1, formHandler)
	submission.RegisterPublicRoutes(v1, subHandler)

	admin := v1.Group("/admin")
	admin.Use(middleware.Auth(jwtService), middleware.AdminOnly())
	{
		form.RegisterAdminRoutes(admin, formHandler)
		submission.RegisterAdminRoutes(admin, subHandler)
		lead.RegisterAdminRoutes(admin, leadHandler)
	}

	return &E2ETestSuite{
		router:      r,
		db:          db,
		jwtService:  jwtService,
		formService: formService,
		leadRepo:    leadRepo,
		subRepo:     subRepo,
	}
}

func (s *E2ETestSuite) makeRequest(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *E2ETestSuite) adminToken(t *testing.T) string {
	token, err := s.jwtService.GenerateToken(1, "admin")
	require.NoError(t, err)
	return token
}

func (s *E2ETestSuite) publishLeadForm(t *testing.T) *domain.DynamicForm {
	minLen := 2
	f, err := s.formService.Create(context.Background(), &form.FormRequest{
		Title:   "Request a callback",
		Slug:    "request-callback",
		Purpose: domain.PurposeLeadCapture,
		Fields: []domain.FormField{
			{
				FieldID:     "name",
				Type:        domain.FieldText,
				Label:       "Your name",
				Name:        "name",
				Validation:  domain.FieldValidation{Required: true, MinLength: &minLen},
				LeadMapping: domain.MapName,
			},
			{
				FieldID:     "email",
				Type:        domain.FieldEmail,
				Label:       "Email",
				Name:        "email",
				Validation:  domain.FieldValidation{Required: true},
				LeadMapping: domain.MapEmail,
				Order:       1,
			},
			{
				FieldID: "interested",
				Type:    domain.FieldDropdown,
				Label:   "Interested in",
				Name:    "interested",
				Options: []domain.FieldOption{
					{Label: "Bachelor", Value: "bachelor"},
					{Label: "Other", Value: "other"},
				},
				Order: 2,
			},
			{
				FieldID:       "other_detail",
				Type:          domain.FieldTextarea,
				Label:         "Tell us more",
				Name:          "other_detail",
				Validation:    domain.FieldValidation{Required: true},
				ConditionalOn: &domain.Condition{FieldName: "interested", Value: "other"},
				LeadMapping:   domain.MapMessage,
				Order:         3,
			},
		},
		PostSubmitAction: domain.PostSubmitMessage,
		SuccessMessage:   "Thanks!",
		Assignments: []domain.PageAssignment{
			{PageType: "home", DisplayAs: domain.DisplayInline, Trigger: domain.TriggerImmediate},
		},
	})
	require.NoError(t, err)

	f, err = s.formService.SetPublished(context.Background(), f.ID, true)
	require.NoError(t, err)
	return f
}

func TestSubmitCreatesSubmissionAndLead(t *testing.T) {
	s := setupTestSuite(t)
	f := s.publishLeadForm(t)

	w := s.makeRequest(t, http.MethodPost, "/api/v1/forms/request-callback/submit", map[string]any{
		"data": map[string]any{
			"name":       "Asel",
			"email":      "asel@example.com",
			"interested": "bachelor",
		},
		"page_context": map[string]any{"page_type": "home"},
	}, "")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data["public_id"])

	subs, total, err := s.subRepo.ListByForm(context.Background(), f.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, f.Version, subs[0].FormVersion)
	assert.Len(t, subs[0].Snapshot, 4)

	leads, leadTotal, err := s.leadRepo.List(context.Background(), repository.LeadFilter{}, 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), leadTotal)
	assert.Equal(t, "Asel", leads[0].Name)
	assert.Equal(t, "asel@example.com", leads[0].Email)
	assert.Equal(t, domain.LeadNew, leads[0].Status)
	assert.Equal(t, "form", leads[0].Source.Channel)
}

func TestSubmitHiddenRequiredFieldIsExempt(t *testing.T) {
	s := setupTestSuite(t)
	s.publishLeadForm(t)

	// other_detail is required but hidden while interested != "other"
	w := s.makeRequest(t, http.MethodPost, "/api/v1/forms/request-callback/submit", map[string]any{
		"data": map[string]any{
			"name":       "Asel",
			"email":      "asel@example.com",
			"interested": "bachelor",
		},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// once visible it validates again
	w = s.makeRequest(t, http.MethodPost, "/api/v1/forms/request-callback/submit", map[string]any{
		"data": map[string]any{
			"name":       "Asel",
			"email":      "asel@example.com",
			"interested": "other",
		},
	}, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestSubmitValidationFailure(t *testing.T) {
	s := setupTestSuite(t)
	s.publishLeadForm(t)

	w := s.makeRequest(t, http.MethodPost, "/api/v1/forms/request-callback/submit", map[string]any{
		"data": map[string]any{"name": "A"},
	}, "")

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	leads, _, err := s.leadRepo.List(context.Background(), repository.LeadFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestUnpublishedFormIs404(t *testing.T) {
	s := setupTestSuite(t)
	f := s.publishLeadForm(t)

	_, err := s.formService.SetPublished(context.Background(), f.ID, false)
	require.NoError(t, err)

	w := s.makeRequest(t, http.MethodGet, "/api/v1/forms/request-callback", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.makeRequest(t, http.MethodPost, "/api/v1/forms/request-callback/submit", map[string]any{
		"data": map[string]any{"name": "Asel", "email": "a@b.com"},
	}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminLeadLifecycle(t *testing.T) {
	s := setupTestSuite(t)
	s.publishLeadForm(t)
	token := s.adminToken(t)

	w := s.makeRequest(t, http.MethodPost, "/api/v1/forms/request-callback/submit", map[string]any{
		"data": map[string]any{"name": "Asel", "email": "a@b.com", "interested": "bachelor"},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	leads, _, err := s.leadRepo.List(context.Background(), repository.LeadFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	leadID := leads[0].ID
	base := fmt.Sprintf("/api/v1/admin/leads/%d", leadID)

	// anonymous access is rejected
	w = s.makeRequest(t, http.MethodGet, base, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// contact, then convert
	w = s.makeRequest(t, http.MethodPatch, base+"/status", map[string]any{
		"status": "contacted", "note": "called",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.makeRequest(t, http.MethodPatch, base+"/status", map[string]any{
		"status": "converted",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// terminal now: further transitions conflict
	w = s.makeRequest(t, http.MethodPatch, base+"/status", map[string]any{
		"status": "contacted",
	}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	got, err := s.leadRepo.GetByID(context.Background(), leadID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadConverted, got.Status)
	assert.Len(t, got.History, 2)
	assert.Equal(t, int64(2), got.Revision)
}

func TestShowOnceMarkerRoundtrip(t *testing.T) {
	s := setupTestSuite(t)
	s.publishLeadForm(t)

	w := s.makeRequest(t, http.MethodGet, "/api/v1/forms/request-callback/shown?visitor=v-1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp.Data["shown"])

	w = s.makeRequest(t, http.MethodPost, "/api/v1/forms/request-callback/shown?visitor=v-1", nil, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.makeRequest(t, http.MethodGet, "/api/v1/forms/request-callback/shown?visitor=v-1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp.Data["shown"])

	// another visitor is untouched
	w = s.makeRequest(t, http.MethodGet, "/api/v1/forms/request-callback/shown?visitor=v-2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp.Data["shown"])
}
