package statsrepo

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"mincommerce/internal/domain"
	"mincommerce/internal/errors"
	"mincommerce/internal/pkg/logger"
)

// StatsRepository implementa a interface domain.StatsRepository com as
// consultas de agregação do painel administrativo.
type StatsRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	Logger    logger.Logger
}

// NewStatsRepository cria e retorna uma nova instância do Repositório.
func NewStatsRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *StatsRepository {
	return &StatsRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		Logger:    log,
	}
}

// CollectStats agrega os números do painel em uma única passada.
func (r *StatsRepository) CollectStats(ctx context.Context) (domain.Stats, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var stats domain.Stats

	// 1. Totais principais
	const totalsSQL = `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(DISTINCT customer_email) FROM orders),
			(SELECT COALESCE(SUM(total), 0) FROM orders)`

	err := r.DB.QueryRowContext(ctxTimeout, totalsSQL).Scan(
		&stats.TotalProducts,
		&stats.TotalOrders,
		&stats.TotalUsers,
		&stats.TotalRevenue,
	)
	if err != nil {
		return domain.Stats{}, errors.NewDBError("Falha ao agregar totais", err)
	}

	// 2. Top 3 produtos por unidades vendidas
	const topSQL = `
		SELECT p.name, SUM(oi.quantity) AS total_sold
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		GROUP BY p.name
		ORDER BY total_sold DESC
		LIMIT 3`

	topRows, err := r.DB.QueryContext(ctxTimeout, topSQL)
	if err != nil {
		return domain.Stats{}, errors.NewDBError("Falha ao agregar top produtos", err)
	}
	defer topRows.Close()

	for topRows.Next() {
		var ps domain.ProductSales
		if err := topRows.Scan(&ps.Name, &ps.TotalSold); err != nil {
			return domain.Stats{}, errors.NewDBError("Falha ao mapear top produto", err)
		}
		stats.TopProducts = append(stats.TopProducts, ps)
	}
	if err := topRows.Err(); err != nil {
		return domain.Stats{}, errors.NewDBError("Falha ao iterar top produtos", err)
	}

	// 3. Vendas diárias (últimos 30 dias com venda)
	const dailySQL = `
		SELECT DATE(created_at) AS day, SUM(total) AS daily_sales
		FROM orders
		GROUP BY DATE(created_at)
		ORDER BY day DESC
		LIMIT 30`

	dailyRows, err := r.DB.QueryContext(ctxTimeout, dailySQL)
	if err != nil {
		return domain.Stats{}, errors.NewDBError("Falha ao agregar vendas diárias", err)
	}
	defer dailyRows.Close()

	daily := []domain.DailySale{}
	for dailyRows.Next() {
		var day time.Time
		var sales float64
		if err := dailyRows.Scan(&day, &sales); err != nil {
			return domain.Stats{}, errors.NewDBError("Falha ao mapear venda diária", err)
		}
		daily = append(daily, domain.DailySale{
			Date:  day.Format("02 Jan"),
			Sales: sales,
		})
	}
	if err := dailyRows.Err(); err != nil {
		return domain.Stats{}, errors.NewDBError("Falha ao iterar vendas diárias", err)
	}

	// A consulta vem do mais recente para o mais antigo; o gráfico quer ordem cronológica
	for i, j := 0, len(daily)-1; i < j; i, j = i+1, j-1 {
		daily[i], daily[j] = daily[j], daily[i]
	}
	stats.DailySales = daily

	// 4. Ordens recentes
	const recentSQL = `
		SELECT id, customer_name, customer_email, total, status, created_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT 5`

	recentRows, err := r.DB.QueryContext(ctxTimeout, recentSQL)
	if err != nil {
		return domain.Stats{}, errors.NewDBError("Falha ao listar ordens recentes", err)
	}
	defer recentRows.Close()

	for recentRows.Next() {
		var id int
		var createdAt time.Time
		var summary domain.OrderSummary
		if err := recentRows.Scan(&id, &summary.CustomerName, &summary.CustomerEmail, &summary.Total, &summary.Status, &createdAt); err != nil {
			return domain.Stats{}, errors.NewDBError("Falha ao mapear ordem recente", err)
		}
		summary.ID = strconv.Itoa(id)
		summary.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		stats.RecentOrders = append(stats.RecentOrders, summary)
	}
	if err := recentRows.Err(); err != nil {
		return domain.Stats{}, errors.NewDBError("Falha ao iterar ordens recentes", err)
	}

	return stats, nil
}
