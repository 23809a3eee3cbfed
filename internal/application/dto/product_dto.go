package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products.
// current_stock no se acepta: el stock solo cambia vía movimientos.
type CreateProductRequest struct {
	SKU          string          `json:"sku" validate:"required"`
	Barcode      string          `json:"barcode"`
	Name         string          `json:"name" validate:"required"`
	Description  string          `json:"description"`
	CategoryID   string          `json:"category_id" validate:"required,uuid4"`
	SupplierID   string          `json:"supplier_id" validate:"omitempty,uuid4"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	MinStock     int64           `json:"min_stock" validate:"min=0"`
	MaxStock     *int64          `json:"max_stock"`
	Unit         string          `json:"unit"`
}

// UpdateProductRequest body para PUT /api/products/:id.
type UpdateProductRequest struct {
	Barcode      string          `json:"barcode"`
	Name         string          `json:"name" validate:"required"`
	Description  string          `json:"description"`
	CategoryID   string          `json:"category_id" validate:"required,uuid4"`
	SupplierID   string          `json:"supplier_id" validate:"omitempty,uuid4"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	MinStock     int64           `json:"min_stock" validate:"min=0"`
	MaxStock     *int64          `json:"max_stock"`
	Unit         string          `json:"unit"`
	IsActive     *bool           `json:"is_active"`
}

// ProductFiltersRequest filtros de GET /api/products.
type ProductFiltersRequest struct {
	Search     string `query:"search"`
	CategoryID string `query:"category_id"`
	SupplierID string `query:"supplier_id"`
	LowStock   bool   `query:"low_stock"`
	OutOfStock bool   `query:"out_of_stock"`
}

// ProductResponse representación de un producto. LowStock/OutOfStock se
// derivan del stock vivo en el momento de la lectura.
type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Barcode      string          `json:"barcode,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	CategoryID   string          `json:"category_id"`
	SupplierID   string          `json:"supplier_id,omitempty"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	MinStock     int64           `json:"min_stock"`
	MaxStock     *int64          `json:"max_stock,omitempty"`
	CurrentStock int64           `json:"current_stock"`
	Unit         string          `json:"unit"`
	IsActive     bool            `json:"is_active"`
	LowStock     bool            `json:"low_stock"`
	OutOfStock   bool            `json:"out_of_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
