package dto

import "github.com/shopspring/decimal"

// DashboardStatsDTO respuesta de GET /api/dashboard/stats.
// Todos los conteos de stock se calculan contra la cache viva al momento de
// la consulta; es un snapshot best-effort que nunca bloquea escritores.
type DashboardStatsDTO struct {
	TotalProducts      int64              `json:"total_products"`
	TotalCategories    int64              `json:"total_categories"`
	TotalSuppliers     int64              `json:"total_suppliers"`
	TotalUsers         int64              `json:"total_users"`
	LowStockProducts   int64              `json:"low_stock_products"`
	OutOfStockProducts int64              `json:"out_of_stock_products"`
	TotalStockValue    decimal.Decimal    `json:"total_stock_value"` // Σ stock × costo
	RecentMovements    []MovementResponse `json:"recent_movements"`
}

// LowStockListDTO respuesta de GET /api/dashboard/low-stock.
type LowStockListDTO struct {
	Total    int               `json:"total"`
	Products []ProductResponse `json:"products"`
}
