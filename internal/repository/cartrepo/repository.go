package cartrepo

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"mincommerce/internal/domain"
	"mincommerce/internal/errors"
	"mincommerce/internal/pkg/logger"
)

// CartRepository implementa a interface domain.CartRepository sobre a tabela
// carts (uma linha por par (user_id, product_id), com constraint de unicidade).
type CartRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	Logger    logger.Logger
}

// NewCartRepository cria e retorna uma nova instância do Repositório.
func NewCartRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *CartRepository {
	return &CartRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		Logger:    log,
	}
}

// FindBySubject lista as linhas do carrinho do subject, já enriquecidas com
// os atributos atuais do produto (join), mais recente primeiro. O id do
// produto sai stringificado — a forma canônica do fio.
func (r *CartRepository) FindBySubject(ctx context.Context, subjectID string) ([]domain.CartItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
		SELECT c.product_id, p.name, p.price, p.image_url, p.category, p.stock, c.quantity
		FROM carts c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, subjectID)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar carrinho", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var productID int
		var item domain.CartItem
		if err := rows.Scan(&productID, &item.Name, &item.Price, &item.ImageURL, &item.Category, &item.Stock, &item.Quantity); err != nil {
			return nil, errors.NewDBError("Falha ao mapear item do carrinho", err)
		}
		item.ID = strconv.Itoa(productID)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar itens do carrinho", err)
	}

	return items, nil
}

// Upsert cria a linha (subject, product) ou incrementa a quantidade existente.
// O ON CONFLICT garante que o incremento é atômico em relação a outras
// escritas concorrentes na mesma linha.
func (r *CartRepository) Upsert(ctx context.Context, subjectID string, productID int, quantity int) (domain.CartRow, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
		INSERT INTO carts (user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = carts.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING user_id, product_id, quantity, created_at, updated_at`

	var row domain.CartRow
	err := r.DB.QueryRowContext(ctxTimeout, query, subjectID, productID, quantity).Scan(
		&row.UserID,
		&row.ProductID,
		&row.Quantity,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		return domain.CartRow{}, errors.NewDBError("Falha ao gravar item do carrinho", err)
	}

	return row, nil
}

// SetQuantity sobrescreve a quantidade de uma linha existente.
// Retorna o número de linhas afetadas (0 quando o item não está no carrinho).
func (r *CartRepository) SetQuantity(ctx context.Context, subjectID string, productID int, quantity int) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
		UPDATE carts SET quantity = $3, updated_at = NOW()
		WHERE user_id = $1 AND product_id = $2`

	result, err := r.DB.ExecContext(ctxTimeout, query, subjectID, productID, quantity)
	if err != nil {
		return 0, errors.NewDBError("Falha ao atualizar quantidade do carrinho", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDBError("Falha ao obter linhas afetadas", err)
	}
	return affected, nil
}

// Delete apaga a linha de um produto do carrinho do subject.
func (r *CartRepository) Delete(ctx context.Context, subjectID string, productID int) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `DELETE FROM carts WHERE user_id = $1 AND product_id = $2`

	result, err := r.DB.ExecContext(ctxTimeout, query, subjectID, productID)
	if err != nil {
		return 0, errors.NewDBError("Falha ao remover item do carrinho", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDBError("Falha ao obter linhas afetadas", err)
	}
	return affected, nil
}

// DeleteAll apaga todas as linhas do carrinho do subject.
func (r *CartRepository) DeleteAll(ctx context.Context, subjectID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `DELETE FROM carts WHERE user_id = $1`

	if _, err := r.DB.ExecContext(ctxTimeout, query, subjectID); err != nil {
		return errors.NewDBError("Falha ao limpar carrinho", err)
	}
	return nil
}
