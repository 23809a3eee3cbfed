package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

func TestSignedDelta_EntradasSumanSalidasRestan(t *testing.T) {
	assert.Equal(t, int64(5), entity.SignedDelta(entity.DirectionIn, 5))
	assert.Equal(t, int64(-5), entity.SignedDelta(entity.DirectionOut, 5))
}

func TestNormalizeDirection_INyOUTImplicitos(t *testing.T) {
	dir, err := entity.NormalizeDirection(entity.MovementTypeIN, "")
	assert.NoError(t, err)
	assert.Equal(t, entity.DirectionIn, dir)

	dir, err = entity.NormalizeDirection(entity.MovementTypeOUT, "")
	assert.NoError(t, err)
	assert.Equal(t, entity.DirectionOut, dir)
}

func TestNormalizeDirection_AjusteRequiereSentidoExplicito(t *testing.T) {
	_, err := entity.NormalizeDirection(entity.MovementTypeADJUSTMENT, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	dir, err := entity.NormalizeDirection(entity.MovementTypeADJUSTMENT, entity.DirectionOut)
	assert.NoError(t, err)
	assert.Equal(t, entity.DirectionOut, dir)
}

func TestNormalizeDirection_TipoDesconocido(t *testing.T) {
	_, err := entity.NormalizeDirection("DEVOLUTION", entity.DirectionIn)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockMovementValidate_SnapshotCoherente(t *testing.T) {
	mov := &entity.StockMovement{
		ProductID:     "p1",
		Type:          entity.MovementTypeIN,
		Direction:     entity.DirectionIn,
		Quantity:      5,
		PreviousStock: 10,
		NewStock:      15,
	}
	assert.NoError(t, mov.Validate())

	// NewStock que no corresponde al delta
	mov.NewStock = 14
	assert.ErrorIs(t, mov.Validate(), domain.ErrInvalidInput)
}

func TestStockMovementValidate_CantidadNoPositiva(t *testing.T) {
	mov := &entity.StockMovement{
		ProductID:     "p1",
		Type:          entity.MovementTypeOUT,
		Direction:     entity.DirectionOut,
		Quantity:      0,
		PreviousStock: 10,
		NewStock:      10,
	}
	assert.ErrorIs(t, mov.Validate(), domain.ErrInvalidInput)
}

func TestStockMovementValidate_SnapshotNegativo(t *testing.T) {
	mov := &entity.StockMovement{
		ProductID:     "p1",
		Type:          entity.MovementTypeOUT,
		Direction:     entity.DirectionOut,
		Quantity:      5,
		PreviousStock: 3,
		NewStock:      -2,
	}
	assert.ErrorIs(t, mov.Validate(), domain.ErrInvalidInput)
}

func TestProduct_PredicadosDeStock(t *testing.T) {
	p := &entity.Product{MinStock: 5}

	p.CurrentStock = 10
	assert.False(t, p.IsLowStock())
	assert.False(t, p.IsOutOfStock())

	p.CurrentStock = 4
	assert.True(t, p.IsLowStock())
	assert.False(t, p.IsOutOfStock())

	// En el límite exacto del mínimo también es stock bajo
	p.CurrentStock = 5
	assert.True(t, p.IsLowStock())

	p.CurrentStock = 0
	assert.False(t, p.IsLowStock(), "agotado no cuenta como stock bajo")
	assert.True(t, p.IsOutOfStock())
}
