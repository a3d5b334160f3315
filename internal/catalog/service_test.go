package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/ecommerce-api/internal/catalog"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, item *catalog.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockRepository) List(ctx context.Context) ([]catalog.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockRepository) GetByName(ctx context.Context, name string) (*catalog.Item, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, item *catalog.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func TestCatalogService_Create_LowercasesName(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := catalog.NewService(catalog.KindCategory, mockRepo)
	userID := uuid.Must(uuid.NewV4())

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(item *catalog.Item) bool {
		return item.Name == "men's clothing" && item.UserID == userID
	})).Return(nil).Once()

	item, err := svc.Create(context.Background(), catalog.Input{Name: "  Men's Clothing "}, userID)
	require.NoError(t, err)
	assert.Equal(t, "men's clothing", item.Name)
	mockRepo.AssertExpectations(t)
}

func TestCatalogService_Create_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     catalog.Input
		repoErr   error
		wantErrIs error
	}{
		{name: "empty_name", input: catalog.Input{Name: "   "}, wantErrIs: catalog.ErrNameRequired},
		{name: "duplicate", input: catalog.Input{Name: "Nike"}, repoErr: catalog.ErrExists, wantErrIs: catalog.ErrExists},
		{name: "storage_failure", input: catalog.Input{Name: "Nike"}, repoErr: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			svc := catalog.NewService(catalog.KindBrand, mockRepo)
			if tt.repoErr != nil {
				mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*catalog.Item")).Return(tt.repoErr).Once()
			}

			item, err := svc.Create(context.Background(), tt.input, uuid.Must(uuid.NewV4()))
			require.Error(t, err)
			require.Nil(t, item)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
			} else {
				require.ErrorIs(t, err, tt.repoErr)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCatalogService_GetByName_Normalizes(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := catalog.NewService(catalog.KindColor, mockRepo)
	expected := &catalog.Item{ID: uuid.Must(uuid.NewV4()), Name: "red"}

	mockRepo.On("GetByName", mock.Anything, "red").Return(expected, nil).Once()

	item, err := svc.GetByName(context.Background(), "RED")
	require.NoError(t, err)
	assert.Equal(t, expected.ID, item.ID)
	mockRepo.AssertExpectations(t)
}

func TestCatalogService_Update_NotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := catalog.NewService(catalog.KindCategory, mockRepo)
	id := uuid.Must(uuid.NewV4())

	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(item *catalog.Item) bool {
		return item.ID == id && item.Name == "shoes"
	})).Return(catalog.ErrNotFound).Once()

	_, err := svc.Update(context.Background(), id, catalog.Input{Name: "Shoes"})
	require.ErrorIs(t, err, catalog.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestCatalogService_Delete(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := catalog.NewService(catalog.KindCategory, mockRepo)
	existing := uuid.Must(uuid.NewV4())
	missing := uuid.Must(uuid.NewV4())

	mockRepo.On("Delete", mock.Anything, existing).Return(nil).Once()
	mockRepo.On("Delete", mock.Anything, missing).Return(catalog.ErrNotFound).Once()

	require.NoError(t, svc.Delete(context.Background(), existing))
	require.ErrorIs(t, svc.Delete(context.Background(), missing), catalog.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestKind_Title(t *testing.T) {
	assert.Equal(t, "Category", catalog.KindCategory.Title())
	assert.Equal(t, "Brand", catalog.KindBrand.Title())
	assert.Equal(t, "Color", catalog.KindColor.Title())
}
