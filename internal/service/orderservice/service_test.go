package orderservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mincommerce/internal/domain"
	apperror "mincommerce/internal/errors"
	"mincommerce/internal/pkg/logger"
	"mincommerce/internal/service/orderservice"
)

// MockOrderRepository é uma implementação mock da interface OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]domain.Order), args.Error(1)
}

// TestPlaceOrder_Success testa o caminho feliz do checkout.
func TestPlaceOrder_Success(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := orderservice.NewService(mockRepo, logger.NewLogger("debug"))

	request := domain.OrderRequest{
		CustomerName:  "Maria Silva",
		CustomerEmail: "maria@example.com",
		Items: []domain.OrderRequestItem{
			{ProductID: "1", Quantity: 2},
			{ProductID: "3", Quantity: 1},
		},
	}

	expectedOrder := domain.Order{
		CustomerName:  "Maria Silva",
		CustomerEmail: "maria@example.com",
		Status:        domain.OrderStatusDefault,
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 3, Quantity: 1},
		},
	}

	created := expectedOrder
	created.ID = 42
	created.Total = 659.97
	mockRepo.On("Create", mock.Anything, expectedOrder).Return(created, nil)

	order, err := svc.PlaceOrder(context.Background(), request)

	assert.NoError(t, err)
	assert.Equal(t, 42, order.ID)
	assert.Equal(t, 659.97, order.Total)
	assert.Equal(t, domain.OrderStatusDefault, order.Status)
	mockRepo.AssertExpectations(t)
}

// TestPlaceOrder_Fail_EmptyItems testa pedido sem itens.
func TestPlaceOrder_Fail_EmptyItems(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := orderservice.NewService(mockRepo, logger.NewLogger("debug"))

	_, err := svc.PlaceOrder(context.Background(), domain.OrderRequest{
		CustomerName:  "Maria Silva",
		CustomerEmail: "maria@example.com",
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestPlaceOrder_Fail_MissingCustomer testa pedido sem identificação do cliente.
func TestPlaceOrder_Fail_MissingCustomer(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := orderservice.NewService(mockRepo, logger.NewLogger("debug"))

	_, err := svc.PlaceOrder(context.Background(), domain.OrderRequest{
		Items: []domain.OrderRequestItem{{ProductID: "1", Quantity: 1}},
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
}

// TestPlaceOrder_Fail_BadItem testa itens malformados (id ou quantidade).
func TestPlaceOrder_Fail_BadItem(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := orderservice.NewService(mockRepo, logger.NewLogger("debug"))

	badRequests := []domain.OrderRequest{
		{
			CustomerName: "Maria", CustomerEmail: "maria@example.com",
			Items: []domain.OrderRequestItem{{ProductID: "abc", Quantity: 1}},
		},
		{
			CustomerName: "Maria", CustomerEmail: "maria@example.com",
			Items: []domain.OrderRequestItem{{ProductID: "1", Quantity: 0}},
		},
	}

	for _, req := range badRequests {
		_, err := svc.PlaceOrder(context.Background(), req)
		assert.Error(t, err)
		assert.IsType(t, &apperror.ValidationError{}, err)
	}
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestPlaceOrder_Fail_InsufficientStock testa o repasse do erro transacional.
func TestPlaceOrder_Fail_InsufficientStock(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := orderservice.NewService(mockRepo, logger.NewLogger("debug"))

	stockErr := apperror.NewValidationError("Estoque insuficiente para o produto 1.")
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(domain.Order{}, stockErr)

	_, err := svc.PlaceOrder(context.Background(), domain.OrderRequest{
		CustomerName:  "Maria Silva",
		CustomerEmail: "maria@example.com",
		Items:         []domain.OrderRequestItem{{ProductID: "1", Quantity: 999}},
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
}

// TestListOrdersByEmail_Success testa o histórico de ordens do cliente.
func TestListOrdersByEmail_Success(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := orderservice.NewService(mockRepo, logger.NewLogger("debug"))

	expected := []domain.Order{{ID: 1, CustomerEmail: "maria@example.com", Total: 49.99}}
	mockRepo.On("FindByEmail", mock.Anything, "maria@example.com").Return(expected, nil)

	orders, err := svc.ListOrdersByEmail(context.Background(), "maria@example.com")

	assert.NoError(t, err)
	assert.Equal(t, expected, orders)
	mockRepo.AssertExpectations(t)
}

// TestListOrdersByEmail_Fail_EmptyEmail testa a listagem sem e-mail.
func TestListOrdersByEmail_Fail_EmptyEmail(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := orderservice.NewService(mockRepo, logger.NewLogger("debug"))

	_, err := svc.ListOrdersByEmail(context.Background(), "")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}
