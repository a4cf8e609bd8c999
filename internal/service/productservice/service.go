package productservice

import (
	"context"
	"errors"
	"fmt"

	"mincommerce/internal/domain"
	apperror "mincommerce/internal/errors"
	"mincommerce/internal/pkg/logger"
)

// ProductRepository define o contrato (interface) que este Serviço espera
// da camada de Persistência (DB, Cache).
type ProductRepository interface {
	FindAll(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id int) (domain.Product, error)
}

// Service é a estrutura que implementa a interface domain.ProductService.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// ListProducts lista o catálogo completo.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		// Propaga o erro tipado do Repositório; qualquer outro vira interno
		var appErr apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.NewInternalError("Falha interna ao listar produtos.", err)
	}
	return products, nil
}

// GetProductByID busca um produto do catálogo.
func (s *Service) GetProductByID(ctx context.Context, id int) (domain.Product, error) {
	// 1. Validação de Formato (Business Logic)
	if id <= 0 {
		return domain.Product{}, apperror.NewValidationError("O ID do produto deve ser um inteiro positivo.")
	}

	// 2. Delegação para o Repositório
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %d não foi encontrado.", id))
		}
		// Para qualquer outro erro (DB falhou, conexão perdida), propagamos o erro de infraestrutura.
		return domain.Product{}, err
	}

	return product, nil
}
