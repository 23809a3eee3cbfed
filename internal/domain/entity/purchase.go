package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
)

// Estados de una compra.
const (
	PurchaseStatusPending   = "PENDING"
	PurchaseStatusApproved  = "APPROVED"
	PurchaseStatusReceived  = "RECEIVED"  // dispara las entradas al ledger; terminal hacia adelante
	PurchaseStatusCancelled = "CANCELLED" // solo desde PENDING o APPROVED
)

// Purchase representa una orden de compra a un proveedor.
// Los ítems pertenecen a la cabecera; los movimientos que emite al recibirse
// pertenecen al ledger y sobreviven a la cabecera.
type Purchase struct {
	ID           string
	SupplierID   string
	PurchaseDate time.Time
	TotalAmount  decimal.Decimal
	Status       string
	Notes        string
	Items        []PurchaseItem
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PurchaseItem línea de una compra.
type PurchaseItem struct {
	ID         string
	PurchaseID string
	ProductID  string
	Quantity   int64
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// purchaseTransitions transiciones permitidas de la máquina de estados.
var purchaseTransitions = map[string][]string{
	PurchaseStatusPending:  {PurchaseStatusApproved, PurchaseStatusCancelled},
	PurchaseStatusApproved: {PurchaseStatusReceived, PurchaseStatusCancelled},
	// RECEIVED y CANCELLED son terminales. Deshacer una recepción exige un
	// lote compensatorio OUT explícito, nunca borrar movimientos.
}

// CanTransitionPurchase indica si el cambio de estado es válido.
func CanTransitionPurchase(from, to string) bool {
	for _, allowed := range purchaseTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition valida y aplica el cambio de estado sobre la entidad en memoria.
// La persistencia del cambio debe hacerse con compare-and-swap sobre el estado
// origen para que recibir dos veces la misma compra no duplique movimientos.
func (p *Purchase) Transition(to string) error {
	if !CanTransitionPurchase(p.Status, to) {
		return domain.ErrConflict
	}
	p.Status = to
	return nil
}
