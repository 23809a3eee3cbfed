package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
)

// Estados de una venta.
const (
	SaleStatusPending   = "PENDING"
	SaleStatusCompleted = "COMPLETED" // dispara las salidas al ledger
	SaleStatusCancelled = "CANCELLED" // solo desde PENDING
	SaleStatusRefunded  = "REFUNDED"  // desde COMPLETED; dispara entradas compensatorias
)

// Sale representa una venta a un cliente.
type Sale struct {
	ID            string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	SaleDate      time.Time
	TotalAmount   decimal.Decimal
	Status        string
	Notes         string
	Items         []SaleItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SaleItem línea de una venta.
type SaleItem struct {
	ID         string
	SaleID     string
	ProductID  string
	Quantity   int64
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// saleTransitions transiciones permitidas de la máquina de estados.
var saleTransitions = map[string][]string{
	SaleStatusPending:   {SaleStatusCompleted, SaleStatusCancelled},
	SaleStatusCompleted: {SaleStatusRefunded},
}

// CanTransitionSale indica si el cambio de estado es válido.
func CanTransitionSale(from, to string) bool {
	for _, allowed := range saleTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition valida y aplica el cambio de estado sobre la entidad en memoria.
func (s *Sale) Transition(to string) error {
	if !CanTransitionSale(s.Status, to) {
		return domain.ErrConflict
	}
	s.Status = to
	return nil
}
