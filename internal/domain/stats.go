package domain

import "context"

// Stats agrega os números exibidos no painel administrativo.
type Stats struct {
	TotalProducts int            `json:"totalProducts"`
	TotalOrders   int            `json:"totalOrders"`
	TotalUsers    int            `json:"totalUsers"`
	TotalRevenue  float64        `json:"totalRevenue"`
	TopProducts   []ProductSales `json:"topProducts"`
	DailySales    []DailySale    `json:"dailySales"`
	RecentOrders  []OrderSummary `json:"recentOrders"`
}

// ProductSales é um produto com o total de unidades vendidas.
type ProductSales struct {
	Name      string `json:"name"`
	TotalSold int    `json:"totalSold"`
}

// DailySale é o faturamento agregado de um dia.
type DailySale struct {
	Date  string  `json:"date"`
	Sales float64 `json:"sales"`
}

// OrderSummary é a visão resumida de uma ordem recente (sem os itens).
type OrderSummary struct {
	ID            string  `json:"id"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	Total         float64 `json:"total"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"createdAt"`
}

// StatsService define o contrato de agregação do painel.
type StatsService interface {
	CollectStats(ctx context.Context) (Stats, error)
}

// StatsRepository define as consultas de agregação sobre ordens/produtos.
type StatsRepository interface {
	CollectStats(ctx context.Context) (Stats, error)
}
