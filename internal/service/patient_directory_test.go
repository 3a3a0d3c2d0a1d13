package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/diabetes-prediction-engine/internal/domain"
)

// MockPatientRepository is a mock implementation of domain.PatientRepository
type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) Create(ctx context.Context, p *domain.Patient) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPatientRepository) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *MockPatientRepository) GetByCode(ctx context.Context, code string) (*domain.Patient, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *MockPatientRepository) GetByEmail(ctx context.Context, email string) (*domain.Patient, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *MockPatientRepository) List(ctx context.Context, limit, offset int) ([]*domain.Patient, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Patient), args.Error(1)
}

func (m *MockPatientRepository) Update(ctx context.Context, p *domain.Patient) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPatientRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestPatientDirectory_FindPatientCaches(t *testing.T) {
	ctx := context.Background()
	patient := &domain.Patient{ID: 7, Code: "PAC-007", Name: "Ana Torres"}

	repo := new(MockPatientRepository)
	repo.On("GetByID", mock.Anything, int64(7)).Return(patient, nil)
	repo.On("Update", mock.Anything, patient).Return(nil)

	dir := NewPatientDirectory(repo, 0, time.Minute, quietLogger())

	for i := 0; i < 3; i++ {
		got, err := dir.FindPatient(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "PAC-007", got.Code)
	}
	repo.AssertNumberOfCalls(t, "GetByID", 1)

	require.NoError(t, dir.Update(ctx, patient))
	_, err := dir.FindPatient(ctx, 7)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "GetByID", 2)
	repo.AssertExpectations(t)
}

func TestPatientDirectory_FindPatientNotFound(t *testing.T) {
	repo := new(MockPatientRepository)
	repo.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound)

	dir := NewPatientDirectory(repo, 4, time.Minute, quietLogger())

	_, err := dir.FindPatient(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "patient 99")

	// Misses are not cached.
	_, _ = dir.FindPatient(context.Background(), 99)
	repo.AssertNumberOfCalls(t, "GetByID", 2)
}

func TestPatientDirectory_DeleteForgets(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPatientRepository)
	repo.On("GetByID", mock.Anything, int64(3)).Return(&domain.Patient{ID: 3}, nil).Once()
	repo.On("Delete", mock.Anything, int64(3)).Return(nil)
	repo.On("GetByID", mock.Anything, int64(3)).Return(nil, domain.ErrNotFound)

	dir := NewPatientDirectory(repo, 4, time.Minute, quietLogger())

	_, err := dir.FindPatient(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, dir.Delete(ctx, 3))

	_, err = dir.FindPatient(ctx, 3)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPatientDirectory_DeleteFailureKeepsCache(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPatientRepository)
	repo.On("GetByID", mock.Anything, int64(5)).Return(&domain.Patient{ID: 5}, nil).Once()
	repo.On("Delete", mock.Anything, int64(5)).Return(errors.New("foreign key violation"))

	dir := NewPatientDirectory(repo, 4, time.Minute, quietLogger())

	_, err := dir.FindPatient(ctx, 5)
	require.NoError(t, err)
	assert.Error(t, dir.Delete(ctx, 5))

	got, err := dir.FindPatient(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)
}
