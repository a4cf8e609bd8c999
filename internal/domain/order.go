package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Order é o snapshot imutável criado no checkout.
// Criado uma única vez, nunca alterado depois (o status é apenas um rótulo cosmético).
type Order struct {
	ID            int         `json:"id"`
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail"`
	Total         float64     `json:"total"`
	Status        string      `json:"status"`
	Items         []OrderItem `json:"items,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// OrderItem congela o preço do produto no momento da compra.
type OrderItem struct {
	ID              int     `json:"id"`
	OrderID         int     `json:"orderId"`
	ProductID       int     `json:"productId"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"priceAtPurchase"`
}

// OrderStatusDefault é o rótulo cosmético atribuído a toda ordem criada.
const OrderStatusDefault = "delivered"

// OrderRequest é o payload do POST /api/orders.
type OrderRequest struct {
	Items         []OrderRequestItem `json:"items"`
	CustomerName  string             `json:"customerName"`
	CustomerEmail string             `json:"customerEmail"`
}

// OrderRequestItem referencia o produto pela chave normalizada (string).
type OrderRequestItem struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"quantity"`
}

// UnmarshalJSON aceita o id tanto como string quanto como número JSON:
// o cliente do checkout envia o id numérico, enquanto o carrinho local o
// mantém na forma canônica string. Ambos convergem para ProductID string.
func (i *OrderRequestItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       interface{} `json:"id"`
		Quantity int         `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.ID.(type) {
	case nil:
		i.ProductID = ""
	case string:
		i.ProductID = v
	case float64:
		i.ProductID = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Errorf("id de produto com tipo inesperado: %T", v)
	}

	i.Quantity = raw.Quantity
	return nil
}

// OrderService define o contrato de negócio do checkout.
type OrderService interface {
	PlaceOrder(ctx context.Context, request OrderRequest) (Order, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]Order, error)
}

// OrderRepository define o contrato de persistência das ordens.
type OrderRepository interface {
	// Create persiste a ordem e seus itens em uma única transação,
	// decrementando o estoque de cada produto.
	Create(ctx context.Context, order Order) (Order, error)
	FindByEmail(ctx context.Context, email string) ([]Order, error)
}
