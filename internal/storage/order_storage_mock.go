package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/n8ngeorgia/orderdesk/internal/models"
)

// MockOrderStorage - мок для тестирования (экспортируемый для использования в других пакетах)
type MockOrderStorage struct {
	CreateFunc       func(ctx context.Context, order *models.Order) error
	GetAllFunc       func(ctx context.Context) ([]*models.Order, error)
	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByOrderIDFunc func(ctx context.Context, orderID string) (*models.Order, error)
	UpdateFunc       func(ctx context.Context, id uuid.UUID, req *models.UpdateOrderRequest) (*models.Order, error)
	DeleteFunc       func(ctx context.Context, id uuid.UUID) ([]models.AttachedFile, error)
}

func (m *MockOrderStorage) Create(ctx context.Context, order *models.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	order.ID = uuid.New()
	order.OrderID = GenerateOrderID()
	return nil
}

func (m *MockOrderStorage) GetAll(ctx context.Context) ([]*models.Order, error) {
	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx)
	}
	return []*models.Order{}, nil
}

func (m *MockOrderStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	if m.GetByOrderIDFunc != nil {
		return m.GetByOrderIDFunc(ctx, orderID)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) Update(ctx context.Context, id uuid.UUID, req *models.UpdateOrderRequest) (*models.Order, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) Delete(ctx context.Context, id uuid.UUID) ([]models.AttachedFile, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil, ErrOrderNotFound
}
