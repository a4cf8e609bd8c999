package domain

import (
	"context"
	"time"
)

// CartItem é a representação de fio (wire) de um item do carrinho:
// a linha persistida (subject, product, quantity) já enriquecida com os
// atributos atuais do produto. O ID do produto é SEMPRE string no fio,
// para reconciliar as chaves numéricas do catálogo com as chaves string
// que o cliente mantém localmente.
type CartItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
	Category string  `json:"category"`
	Stock    int     `json:"stock"`
	Quantity int     `json:"quantity"`
}

// CartRow é a linha crua persistida no banco (sem o join com produto).
type CartRow struct {
	UserID    string    `json:"user_id"`
	ProductID int       `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartAddRequest é o payload do POST /api/cart.
type CartAddRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartQuantityRequest é o payload do PUT /api/cart/{productId}.
type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartService define o contrato da API de persistência do carrinho.
// Todas as operações são escopadas ao subject autenticado.
type CartService interface {
	GetCart(ctx context.Context, subjectID string) ([]CartItem, error)
	AddToCart(ctx context.Context, subjectID string, productID string, quantity int) (CartItem, error)
	UpdateQuantity(ctx context.Context, subjectID string, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, subjectID string, productID string) error
	ClearCart(ctx context.Context, subjectID string) error
}

// CartRepository define o contrato de persistência para as linhas do carrinho.
type CartRepository interface {
	FindBySubject(ctx context.Context, subjectID string) ([]CartItem, error)
	// Upsert cria a linha (subject, product) ou incrementa a quantidade existente.
	// O incremento é atômico em relação a outras escritas na mesma linha.
	Upsert(ctx context.Context, subjectID string, productID int, quantity int) (CartRow, error)
	SetQuantity(ctx context.Context, subjectID string, productID int, quantity int) (int64, error)
	Delete(ctx context.Context, subjectID string, productID int) (int64, error)
	DeleteAll(ctx context.Context, subjectID string) error
}
