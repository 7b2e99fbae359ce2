package form

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"eduforms/internal/domain"
)

type MockFormRepository struct {
	mock.Mock
}

func (m *MockFormRepository) Create(ctx context.Context, f *domain.DynamicForm) error {
	args := m.Called(ctx, f)
	if f != nil {
		f.ID = 101 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockFormRepository) GetByID(ctx context.Context, id int64) (*domain.DynamicForm, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DynamicForm), args.Error(1)
}

func (m *MockFormRepository) GetBySlug(ctx context.Context, slug string) (*domain.DynamicForm, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DynamicForm), args.Error(1)
}

func (m *MockFormRepository) Update(ctx context.Context, f *domain.DynamicForm) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFormRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFormRepository) List(ctx context.Context, limit, offset int) ([]*domain.DynamicForm, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*domain.DynamicForm), args.Get(1).(int64), args.Error(2)
}

func (m *MockFormRepository) ListPublished(ctx context.Context) ([]*domain.DynamicForm, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DynamicForm), args.Error(1)
}

func validRequest() *FormRequest {
	return &FormRequest{
		Title:   "Contact us",
		Slug:    "contact-us",
		Purpose: domain.PurposeLeadCapture,
		Fields: []domain.FormField{
			{
				FieldID:     "f1",
				Type:        domain.FieldText,
				Label:       "Name",
				Name:        "name",
				Validation:  domain.FieldValidation{Required: true},
				LeadMapping: domain.MapName,
			},
			{
				FieldID:     "f2",
				Type:        domain.FieldEmail,
				Label:       "Email",
				Name:        "email",
				LeadMapping: domain.MapEmail,
				Order:       1,
			},
		},
		PostSubmitAction: domain.PostSubmitMessage,
		SuccessMessage:   "Thanks!",
	}
}

func TestService_Create_StartsUnpublishedAtVersionOne(t *testing.T) {
	repo := new(MockFormRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	service := NewService(repo)

	f, err := service.Create(context.Background(), validRequest())

	assert.NoError(t, err)
	assert.Equal(t, 1, f.Version)
	assert.False(t, f.IsPublished)
}

func TestService_Create_DuplicateLeadMappingRejected(t *testing.T) {
	repo := new(MockFormRepository)
	service := NewService(repo)

	req := validRequest()
	req.Fields[1].LeadMapping = domain.MapName // both fields map to name

	_, err := service.Create(context.Background(), req)

	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)
	assert.NotEmpty(t, schemaErr.Issues)
	repo.AssertNotCalled(t, "Create")
}

func TestService_Create_ConditionalOnUnknownFieldRejected(t *testing.T) {
	repo := new(MockFormRepository)
	service := NewService(repo)

	req := validRequest()
	req.Fields[1].ConditionalOn = &domain.Condition{FieldName: "missing", Value: "x"}

	_, err := service.Create(context.Background(), req)

	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestService_Update_StructuralChangeBumpsVersion(t *testing.T) {
	repo := new(MockFormRepository)
	existing := fromRequest(validRequest())
	existing.ID = 7
	existing.Version = 3
	repo.On("GetByID", mock.Anything, int64(7)).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	service := NewService(repo)

	req := validRequest()
	req.Fields[0].Validation.Required = false // validation edit is structural

	f, err := service.Update(context.Background(), 7, req)

	assert.NoError(t, err)
	assert.Equal(t, 4, f.Version)
}

func TestService_Update_CosmeticEditKeepsVersion(t *testing.T) {
	repo := new(MockFormRepository)
	existing := fromRequest(validRequest())
	existing.ID = 7
	existing.Version = 3
	repo.On("GetByID", mock.Anything, int64(7)).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	service := NewService(repo)

	req := validRequest()
	req.Title = "Talk to us"
	req.SuccessMessage = "We will be in touch"

	f, err := service.Update(context.Background(), 7, req)

	assert.NoError(t, err)
	assert.Equal(t, 3, f.Version)
}

func TestService_GetPublicBySlug_HidesUnpublished(t *testing.T) {
	repo := new(MockFormRepository)
	draft := fromRequest(validRequest())
	draft.ID = 7
	draft.IsPublished = false
	repo.On("GetBySlug", mock.Anything, "contact-us").Return(draft, nil)
	repo.On("GetBySlug", mock.Anything, "no-such-form").Return(nil, nil)
	service := NewService(repo)

	_, err := service.GetPublicBySlug(context.Background(), "contact-us")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = service.GetPublicBySlug(context.Background(), "no-such-form")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ListForPage_MatchesAssignments(t *testing.T) {
	repo := new(MockFormRepository)

	collegeID := int64(42)
	f := fromRequest(validRequest())
	f.ID = 7
	f.IsPublished = true
	f.Assignments = []domain.PageAssignment{
		{PageType: "college_detail", EntityID: &collegeID, DisplayAs: domain.DisplayPopup, Trigger: domain.TriggerImmediate},
		{PageType: "home", DisplayAs: domain.DisplayInline, Trigger: domain.TriggerImmediate},
	}
	repo.On("ListPublished", mock.Anything).Return([]*domain.DynamicForm{f}, nil)
	service := NewService(repo)

	got, err := service.ListForPage(context.Background(), "college_detail", &collegeID)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "college_detail", got[0].Assignment.PageType)

	other := int64(99)
	got, err = service.ListForPage(context.Background(), "college_detail", &other)
	assert.NoError(t, err)
	assert.Empty(t, got)

	got, err = service.ListForPage(context.Background(), "home", nil)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
}
