package mocks

import (
	"context"

	"github.com/himakar4/movie-booking-system/internal/domain"
)

type MockShowRepo struct {
	GetByIdFunc func(ctx context.Context, id int) (*domain.Show, error)
}

func (m *MockShowRepo) GetById(ctx context.Context, id int) (*domain.Show, error) {
	return m.GetByIdFunc(ctx, id)
}
