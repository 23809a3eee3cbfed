package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o activo del inventario.
// CurrentStock es derivado del ledger de movimientos (vista materializada en
// la tabla stock); nunca lo escribe un cliente directamente.
type Product struct {
	ID           string
	SKU          string // código único
	Barcode      string // opcional; solo se almacena, el escaneo es externo
	Name         string
	Description  string
	CategoryID   string
	SupplierID   string // vacío si no tiene proveedor asociado
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	MinStock     int64
	MaxStock     *int64 // opcional
	CurrentStock int64  // derivado, solo lectura
	Unit         string // unidad de medida (un, kg, caja...)
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLowStock indica stock bajo: por debajo o igual al mínimo, pero no agotado.
// Se calcula siempre sobre el valor vivo de la cache, nunca se persiste.
func (p *Product) IsLowStock() bool {
	return p.CurrentStock > 0 && p.CurrentStock <= p.MinStock
}

// IsOutOfStock indica stock agotado.
func (p *Product) IsOutOfStock() bool {
	return p.CurrentStock == 0
}
