package entity

import (
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         = "IN"         // entrada (compras recibidas, devoluciones de venta)
	MovementTypeOUT        = "OUT"        // salida (ventas completadas, retiros)
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste manual (conteo físico, merma)
	MovementTypeTRANSFER   = "TRANSFER"   // traslado: el caller aporta el par salida+entrada explícito
)

// Sentido del movimiento. IN y OUT lo llevan implícito; ADJUSTMENT y TRANSFER
// lo declaran de forma explícita porque la cantidad siempre es positiva.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// StockMovement representa un cambio inmutable del stock de un producto, con
// snapshot antes/después. Nunca se actualiza ni borra: las correcciones son
// movimientos compensatorios nuevos.
type StockMovement struct {
	ID            string
	Seq           int64 // secuencia monótona asignada al persistir; ordena el historial por producto
	ProductID     string
	Type          string // IN, OUT, ADJUSTMENT, TRANSFER
	Direction     string // in / out
	Quantity      int64  // siempre > 0; el sentido lo da Direction
	PreviousStock int64
	NewStock      int64
	Reason        string
	Reference     string // ID de la compra o venta que originó el movimiento
	UserID        string
	CreatedAt     time.Time
}

// NormalizeDirection completa el sentido implícito de IN/OUT y valida el tipo.
func NormalizeDirection(movType, direction string) (string, error) {
	switch movType {
	case MovementTypeIN:
		return DirectionIn, nil
	case MovementTypeOUT:
		return DirectionOut, nil
	case MovementTypeADJUSTMENT, MovementTypeTRANSFER:
		if direction != DirectionIn && direction != DirectionOut {
			return "", domain.ErrInvalidInput
		}
		return direction, nil
	default:
		return "", domain.ErrInvalidInput
	}
}

// SignedDelta devuelve el delta con signo que el movimiento aplica al stock.
// Única función de signo del sistema: entradas suman, salidas restan.
func SignedDelta(direction string, quantity int64) int64 {
	if direction == DirectionOut {
		return -quantity
	}
	return quantity
}

// Validate verifica los invariantes de un movimiento antes de persistirlo:
// cantidad positiva, sentido coherente con el tipo y snapshot consistente
// (NewStock = PreviousStock + delta, ambos no negativos).
func (m *StockMovement) Validate() error {
	if m.ProductID == "" || m.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	dir, err := NormalizeDirection(m.Type, m.Direction)
	if err != nil {
		return err
	}
	if dir != m.Direction {
		return domain.ErrInvalidInput
	}
	if m.PreviousStock < 0 || m.NewStock < 0 {
		return domain.ErrInvalidInput
	}
	if m.NewStock != m.PreviousStock+SignedDelta(m.Direction, m.Quantity) {
		return domain.ErrInvalidInput
	}
	return nil
}
