package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest línea de una compra o venta.
// unit_price en cero toma el precio del producto (costo en compras, venta en ventas).
type OrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid4"`
	Quantity  int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseRequest body para POST /api/purchases.
type CreatePurchaseRequest struct {
	SupplierID string             `json:"supplier_id" validate:"required,uuid4"`
	Notes      string             `json:"notes"`
	Items      []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// PurchaseItemResponse línea de compra.
type PurchaseItemResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// PurchaseResponse representación de una compra.
type PurchaseResponse struct {
	ID           string                 `json:"id"`
	SupplierID   string                 `json:"supplier_id"`
	PurchaseDate time.Time              `json:"purchase_date"`
	TotalAmount  decimal.Decimal        `json:"total_amount"`
	Status       string                 `json:"status"`
	Notes        string                 `json:"notes,omitempty"`
	Items        []PurchaseItemResponse `json:"items"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// ReceiveResponse resultado de recibir una compra: los movimientos IN creados.
type ReceiveResponse struct {
	Purchase    PurchaseResponse `json:"purchase"`
	MovementIDs []string         `json:"movement_ids"`
}

// ReturnPurchaseRequest body para POST /api/purchases/:id/return.
// Lote compensatorio OUT explícito sobre una compra ya recibida.
type ReturnPurchaseRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	CustomerName  string             `json:"customer_name" validate:"required"`
	CustomerEmail string             `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone string             `json:"customer_phone"`
	Notes         string             `json:"notes"`
	Items         []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleItemResponse línea de venta.
type SaleItemResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// SaleResponse representación de una venta.
type SaleResponse struct {
	ID            string             `json:"id"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email,omitempty"`
	CustomerPhone string             `json:"customer_phone,omitempty"`
	SaleDate      time.Time          `json:"sale_date"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Status        string             `json:"status"`
	Notes         string             `json:"notes,omitempty"`
	Items         []SaleItemResponse `json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// CompleteSaleResponse resultado de completar una venta.
type CompleteSaleResponse struct {
	Sale        SaleResponse `json:"sale"`
	MovementIDs []string     `json:"movement_ids"`
}
