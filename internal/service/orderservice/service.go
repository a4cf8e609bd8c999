package orderservice

import (
	"context"
	"fmt"
	"strconv"

	"mincommerce/internal/domain"
	apperror "mincommerce/internal/errors"
	"mincommerce/internal/pkg/logger"
)

// OrderRepository define o contrato que este Serviço espera da persistência de ordens.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	FindByEmail(ctx context.Context, email string) ([]domain.Order, error)
}

// Service implementa a interface domain.OrderService — o checkout.
type Service struct {
	repo   OrderRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Ordens.
func NewService(repo OrderRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// PlaceOrder valida o pedido e persiste o snapshot imutável da ordem.
// A validação de estoque e o congelamento de preço acontecem dentro da
// transação do repositório; aqui validamos apenas a forma do pedido.
func (s *Service) PlaceOrder(ctx context.Context, request domain.OrderRequest) (domain.Order, error) {
	// 1. Validação de Regras de Negócio
	if len(request.Items) == 0 {
		return domain.Order{}, apperror.NewValidationError("O pedido precisa de pelo menos um item.")
	}
	if request.CustomerName == "" || request.CustomerEmail == "" {
		return domain.Order{}, apperror.NewValidationError("Nome e e-mail do cliente são obrigatórios.")
	}

	items := make([]domain.OrderItem, 0, len(request.Items))
	for i, reqItem := range request.Items {
		productID, err := strconv.Atoi(reqItem.ProductID)
		if err != nil || productID <= 0 {
			return domain.Order{}, apperror.NewValidationError(fmt.Sprintf("Item %d tem ID de produto inválido.", i+1))
		}
		if reqItem.Quantity <= 0 {
			return domain.Order{}, apperror.NewValidationError(fmt.Sprintf("Item %d requer quantidade positiva.", i+1))
		}
		items = append(items, domain.OrderItem{
			ProductID: productID,
			Quantity:  reqItem.Quantity,
		})
	}

	order := domain.Order{
		CustomerName:  request.CustomerName,
		CustomerEmail: request.CustomerEmail,
		Status:        domain.OrderStatusDefault,
		Items:         items,
	}

	// 2. Delegação para a Camada de Persistência (transacional)
	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("Ordem criada com sucesso.", map[string]interface{}{
		"order_id": created.ID,
		"total":    created.Total,
		"items":    len(created.Items),
	})

	return created, nil
}

// ListOrdersByEmail lista as ordens de um cliente.
func (s *Service) ListOrdersByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	if email == "" {
		return nil, apperror.NewValidationError("O e-mail do cliente é obrigatório.")
	}
	return s.repo.FindByEmail(ctx, email)
}
