package cartservice

import (
	"context"
	"fmt"
	"strconv"

	"mincommerce/internal/domain"
	apperror "mincommerce/internal/errors"
	"mincommerce/internal/pkg/logger"
)

// CartRepository define o contrato que este Serviço espera da persistência do carrinho.
type CartRepository interface {
	FindBySubject(ctx context.Context, subjectID string) ([]domain.CartItem, error)
	Upsert(ctx context.Context, subjectID string, productID int, quantity int) (domain.CartRow, error)
	SetQuantity(ctx context.Context, subjectID string, productID int, quantity int) (int64, error)
	Delete(ctx context.Context, subjectID string, productID int) (int64, error)
	DeleteAll(ctx context.Context, subjectID string) error
}

// ProductRepository é o contrato mínimo do catálogo usado na validação de estoque.
type ProductRepository interface {
	FindByID(ctx context.Context, id int) (domain.Product, error)
}

// Service implementa a interface domain.CartService — o lado servidor do
// protocolo de sincronização do carrinho.
type Service struct {
	cartRepo    CartRepository
	productRepo ProductRepository
	logger      logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Carrinho.
func NewService(cartRepo CartRepository, productRepo ProductRepository, log logger.Logger) *Service {
	return &Service{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      log,
	}
}

// GetCart lista o carrinho do subject, enriquecido com os dados do produto.
func (s *Service) GetCart(ctx context.Context, subjectID string) ([]domain.CartItem, error) {
	items, err := s.cartRepo.FindBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart valida o produto e incrementa (ou cria) a linha do carrinho.
// O productID chega como string (forma canônica do fio) e é convertido para
// a chave numérica do banco.
func (s *Service) AddToCart(ctx context.Context, subjectID string, productID string, quantity int) (domain.CartItem, error) {
	// 1. Validação de Regras de Negócio
	id, err := parseProductID(productID)
	if err != nil {
		return domain.CartItem{}, err
	}
	if quantity <= 0 {
		return domain.CartItem{}, apperror.NewValidationError("A quantidade deve ser positiva.")
	}

	// 2. O produto precisa existir e ter estoque
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return domain.CartItem{}, err
	}
	if product.Stock < quantity {
		return domain.CartItem{}, apperror.NewValidationError(
			fmt.Sprintf("Estoque insuficiente para '%s'.", product.Name))
	}

	// 3. Upsert create-or-increment (atômico por linha)
	row, err := s.cartRepo.Upsert(ctx, subjectID, id, quantity)
	if err != nil {
		return domain.CartItem{}, err
	}

	// 4. Resposta no formato do fio (id stringificado)
	return domain.CartItem{
		ID:       strconv.Itoa(row.ProductID),
		Name:     product.Name,
		Price:    product.Price,
		ImageURL: product.ImageURL,
		Category: product.Category,
		Stock:    product.Stock,
		Quantity: row.Quantity,
	}, nil
}

// UpdateQuantity sobrescreve a quantidade de um item.
// Quantidade ≤ 0 equivale a remoção — nunca se armazena zero.
func (s *Service) UpdateQuantity(ctx context.Context, subjectID string, productID string, quantity int) error {
	id, err := parseProductID(productID)
	if err != nil {
		return err
	}

	if quantity <= 0 {
		// Remoção; aqui a ausência da linha não é erro (já removida)
		_, err := s.cartRepo.Delete(ctx, subjectID, id)
		return err
	}

	affected, err := s.cartRepo.SetQuantity(ctx, subjectID, id, quantity)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperror.NewNotFoundError("Item não está no carrinho.")
	}
	return nil
}

// RemoveFromCart apaga a linha de um produto do carrinho.
func (s *Service) RemoveFromCart(ctx context.Context, subjectID string, productID string) error {
	id, err := parseProductID(productID)
	if err != nil {
		return err
	}

	affected, err := s.cartRepo.Delete(ctx, subjectID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperror.NewNotFoundError("Item não está no carrinho.")
	}
	return nil
}

// ClearCart apaga todas as linhas do subject.
func (s *Service) ClearCart(ctx context.Context, subjectID string) error {
	return s.cartRepo.DeleteAll(ctx, subjectID)
}

// parseProductID converte a chave string do fio para a chave numérica do banco.
func parseProductID(productID string) (int, error) {
	if productID == "" {
		return 0, apperror.NewValidationError("O ID do produto é obrigatório.")
	}
	id, err := strconv.Atoi(productID)
	if err != nil || id <= 0 {
		return 0, apperror.NewValidationError("O ID do produto é inválido.")
	}
	return id, nil
}
