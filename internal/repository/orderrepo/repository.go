package orderrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mincommerce/internal/domain"
	"mincommerce/internal/errors"
	"mincommerce/internal/pkg/logger"
)

// OrderRepository implementa a interface domain.OrderRepository.
// A criação de ordem é transacional: validação de estoque, decremento e
// inserção do snapshot acontecem na mesma transação.
type OrderRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	Logger    logger.Logger
}

// NewOrderRepository cria e retorna uma nova instância do Repositório.
func NewOrderRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *OrderRepository {
	return &OrderRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		Logger:    log,
	}
}

// Create persiste a ordem e seus itens, decrementando o estoque de cada
// produto. O preço é congelado na linha de item (price_at_purchase) — a
// ordem é um snapshot imutável do momento da compra.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Order{}, errors.NewDBError("failed to start tx", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// 1. Validar e decrementar estoque item a item, travando a linha do produto
	const stockSQL = `SELECT price, stock FROM products WHERE id = $1 FOR UPDATE`
	const decrementSQL = `UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1`

	total := 0.0
	for i := range order.Items {
		item := &order.Items[i]

		var price float64
		var stock int
		err = tx.QueryRowContext(ctxTimeout, stockSQL, item.ProductID).Scan(&price, &stock)
		if err == sql.ErrNoRows {
			err = errors.NewNotFoundError(fmt.Sprintf("Produto %d não existe.", item.ProductID))
			return domain.Order{}, err
		}
		if err != nil {
			err = errors.NewDBError("failed to read product stock", err)
			return domain.Order{}, err
		}

		if stock < item.Quantity {
			err = errors.NewValidationError(fmt.Sprintf("Estoque insuficiente para o produto %d.", item.ProductID))
			return domain.Order{}, err
		}

		if _, err = tx.ExecContext(ctxTimeout, decrementSQL, item.ProductID, item.Quantity); err != nil {
			err = errors.NewDBError("failed to decrement stock", err)
			return domain.Order{}, err
		}

		item.PriceAtPurchase = price
		total += price * float64(item.Quantity)
	}
	order.Total = total

	// 2. Inserir a ordem
	const orderSQL = `
		INSERT INTO orders (customer_name, customer_email, total, status, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctxTimeout, orderSQL,
		order.CustomerName,
		order.CustomerEmail,
		order.Total,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		err = errors.NewDBError("failed to insert order", err)
		return domain.Order{}, err
	}

	// 3. Inserir os itens com o preço congelado
	const itemSQL = `
		INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err = tx.QueryRowContext(ctxTimeout, itemSQL, order.ID, item.ProductID, item.Quantity, item.PriceAtPurchase).Scan(&item.ID)
		if err != nil {
			err = errors.NewDBError("failed to insert order items", err)
			return domain.Order{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		err = errors.NewDBError("failed to commit tx", err)
		return domain.Order{}, err
	}

	return order, nil
}

// FindByEmail lista as ordens de um cliente, mais recente primeiro, com os itens.
func (r *OrderRepository) FindByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const orderSQL = `
		SELECT id, customer_name, customer_email, total, status, created_at
		FROM orders
		WHERE customer_email = $1
		ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, orderSQL, email)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar ordens", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.Total, &o.Status, &o.CreatedAt); err != nil {
			return nil, errors.NewDBError("Falha ao mapear ordem", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar ordens", err)
	}

	const itemSQL = `
		SELECT id, order_id, product_id, quantity, price_at_purchase
		FROM order_items
		WHERE order_id = $1`

	for i := range orders {
		itemRows, err := r.DB.QueryContext(ctxTimeout, itemSQL, orders[i].ID)
		if err != nil {
			return nil, errors.NewDBError("Falha ao listar itens da ordem", err)
		}

		for itemRows.Next() {
			var item domain.OrderItem
			if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtPurchase); err != nil {
				itemRows.Close()
				return nil, errors.NewDBError("Falha ao mapear item da ordem", err)
			}
			orders[i].Items = append(orders[i].Items, item)
		}
		if err := itemRows.Err(); err != nil {
			itemRows.Close()
			return nil, errors.NewDBError("Falha ao iterar itens da ordem", err)
		}
		itemRows.Close()
	}

	return orders, nil
}
