package cartservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mincommerce/internal/domain"
	apperror "mincommerce/internal/errors"
	"mincommerce/internal/pkg/logger"
	"mincommerce/internal/service/cartservice"
)

// MockCartRepository é uma implementação mock da interface CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindBySubject(ctx context.Context, subjectID string) ([]domain.CartItem, error) {
	args := m.Called(ctx, subjectID)
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockCartRepository) Upsert(ctx context.Context, subjectID string, productID int, quantity int) (domain.CartRow, error) {
	args := m.Called(ctx, subjectID, productID, quantity)
	return args.Get(0).(domain.CartRow), args.Error(1)
}

func (m *MockCartRepository) SetQuantity(ctx context.Context, subjectID string, productID int, quantity int) (int64, error) {
	args := m.Called(ctx, subjectID, productID, quantity)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartRepository) Delete(ctx context.Context, subjectID string, productID int) (int64, error) {
	args := m.Called(ctx, subjectID, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartRepository) DeleteAll(ctx context.Context, subjectID string) error {
	args := m.Called(ctx, subjectID)
	return args.Error(0)
}

// MockProductRepository é uma implementação mock da interface ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func newService(cartRepo *MockCartRepository, productRepo *MockProductRepository) *cartservice.Service {
	return cartservice.NewService(cartRepo, productRepo, logger.NewLogger("debug"))
}

// TestAddToCart_Success_NewItem testa adicionar um produto novo ao carrinho.
func TestAddToCart_Success_NewItem(t *testing.T) {
	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	svc := newService(mockCartRepo, mockProductRepo)

	product := domain.Product{ID: 7, Name: "Reloj Inteligente", Price: 299.99, Stock: 10}
	mockProductRepo.On("FindByID", mock.Anything, 7).Return(product, nil)
	mockCartRepo.On("Upsert", mock.Anything, "user-1", 7, 2).
		Return(domain.CartRow{UserID: "user-1", ProductID: 7, Quantity: 2}, nil)

	item, err := svc.AddToCart(context.Background(), "user-1", "7", 2)

	assert.NoError(t, err)
	// A resposta sai no formato do fio: id string
	assert.Equal(t, "7", item.ID)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, 299.99, item.Price)
	mockCartRepo.AssertExpectations(t)
	mockProductRepo.AssertExpectations(t)
}

// TestAddToCart_Fail_InvalidID testa IDs malformados ou vazios.
func TestAddToCart_Fail_InvalidID(t *testing.T) {
	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	svc := newService(mockCartRepo, mockProductRepo)

	for _, id := range []string{"", "abc", "-3", "0"} {
		_, err := svc.AddToCart(context.Background(), "user-1", id, 1)
		assert.Error(t, err)
		assert.IsType(t, &apperror.ValidationError{}, err)
	}

	// O repositório nunca deve ser consultado
	mockProductRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	mockCartRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestAddToCart_Fail_NonPositiveQuantity testa quantidade zero ou negativa.
func TestAddToCart_Fail_NonPositiveQuantity(t *testing.T) {
	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	svc := newService(mockCartRepo, mockProductRepo)

	_, err := svc.AddToCart(context.Background(), "user-1", "7", 0)
	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)

	_, err = svc.AddToCart(context.Background(), "user-1", "7", -2)
	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
}

// TestAddToCart_Fail_InsufficientStock testa a validação de estoque.
func TestAddToCart_Fail_InsufficientStock(t *testing.T) {
	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	svc := newService(mockCartRepo, mockProductRepo)

	product := domain.Product{ID: 7, Name: "Mochila Viajera", Price: 89.99, Stock: 1}
	mockProductRepo.On("FindByID", mock.Anything, 7).Return(product, nil)

	_, err := svc.AddToCart(context.Background(), "user-1", "7", 5)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockCartRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestAddToCart_Fail_ProductNotFound testa produto inexistente.
func TestAddToCart_Fail_ProductNotFound(t *testing.T) {
	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	svc := newService(mockCartRepo, mockProductRepo)

	notFound := apperror.NewNotFoundError("Produto com id '99' não encontrado")
	mockProductRepo.On("FindByID", mock.Anything, 99).Return(domain.Product{}, notFound)

	_, err := svc.AddToCart(context.Background(), "user-1", "99", 1)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
}

// TestUpdateQuantity_Success testa a sobrescrita da quantidade.
func TestUpdateQuantity_Success(t *testing.T) {
	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	svc := newService(mockCartRepo, mockProductRepo)

	mockCartRepo.On("SetQuantity", mock.Anything, "user-1", 7, 3).Return(int64(1), nil)

	err := svc.UpdateQuantity(context.Background(), "user-1", "7", 3)

	assert.NoError(t, err)
	mockCartRepo.AssertExpectations(t)
}

// TestUpdateQuantity_ZeroMeansRemoval testa que quantidade ≤ 0 vira remoção.
func TestUpdateQuantity_ZeroMeansRemoval(t *testing.T) {
	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	svc := newService(mockCartRepo, mockProductRepo)

	mockCartRepo.On("Delete", mock.Anything, "user-1", 7).Return(int64(1), nil).Twice()

	assert.NoError(t, svc.UpdateQuantity(context.Background(), "user-1", "7", 0))
	assert.NoError(t, svc.UpdateQuantity(context.Background(), "user-1", "7", -1))

	mockCartRepo.AssertNotCalled(t, "SetQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockCartRepo.AssertExpectations(t)
}

// TestUpdateQuantity_Fail_NotInCart testa atualização de item ausente.
func TestUpdateQuantity_Fail_NotInCart(t *testing.T) {
	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	svc := newService(mockCartRepo, mockProductRepo)

	mockCartRepo.On("SetQuantity", mock.Anything, "user-1", 7, 3).Return(int64(0), nil)

	err := svc.UpdateQuantity(context.Background(), "user-1", "7", 3)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
}

// TestRemoveFromCart_Fail_NotInCart testa remoção de item ausente.
func TestRemoveFromCart_Fail_NotInCart(t *testing.T) {
	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	svc := newService(mockCartRepo, mockProductRepo)

	mockCartRepo.On("Delete", mock.Anything, "user-1", 7).Return(int64(0), nil)

	err := svc.RemoveFromCart(context.Background(), "user-1", "7")

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
}

// TestGetCart_Success testa a listagem do carrinho.
func TestGetCart_Success(t *testing.T) {
	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	svc := newService(mockCartRepo, mockProductRepo)

	expected := []domain.CartItem{
		{ID: "1", Name: "Zapatillas Urbanas", Price: 179.99, Quantity: 1},
		{ID: "3", Name: "Reloj Inteligente", Price: 299.99, Quantity: 2},
	}
	mockCartRepo.On("FindBySubject", mock.Anything, "user-1").Return(expected, nil)

	items, err := svc.GetCart(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Equal(t, expected, items)
	mockCartRepo.AssertExpectations(t)
}

// TestClearCart_PropagatesRepoError testa o repasse de erro do repositório.
func TestClearCart_PropagatesRepoError(t *testing.T) {
	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	svc := newService(mockCartRepo, mockProductRepo)

	repoError := errors.New("database connection lost")
	mockCartRepo.On("DeleteAll", mock.Anything, "user-1").Return(repoError)

	err := svc.ClearCart(context.Background(), "user-1")

	assert.Error(t, err)
	assert.Equal(t, repoError, err)
}
