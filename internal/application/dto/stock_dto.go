package dto

import "time"

// RegisterMovementRequest body para POST /api/stock/movements (ajuste manual).
// direction es obligatorio para ADJUSTMENT y TRANSFER; IN/OUT lo llevan implícito.
type RegisterMovementRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Type      string `json:"type" validate:"required,oneof=IN OUT ADJUSTMENT TRANSFER"`
	Direction string `json:"direction" validate:"omitempty,oneof=in out"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	Reason    string `json:"reason"`
}

// MovementResponse representación de un movimiento del ledger.
type MovementResponse struct {
	ID            string    `json:"id"`
	Seq           int64     `json:"seq"`
	ProductID     string    `json:"product_id"`
	Type          string    `json:"type"`
	Direction     string    `json:"direction"`
	Quantity      int64     `json:"quantity"`
	PreviousStock int64     `json:"previous_stock"`
	NewStock      int64     `json:"new_stock"`
	Reason        string    `json:"reason,omitempty"`
	Reference     string    `json:"reference,omitempty"`
	UserID        string    `json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// StockResponse respuesta de GET /api/stock/:productId.
type StockResponse struct {
	ProductID    string `json:"product_id"`
	CurrentStock int64  `json:"current_stock"`
}

// RebuildResponse resultado de la reconstrucción.
type RebuildResponse struct {
	ProductID string     `json:"product_id"`
	Stock     int64      `json:"stock"`
	AsOf      *time.Time `json:"as_of,omitempty"`
	Repaired  bool       `json:"repaired"` // true si la cache fue reescrita
}
