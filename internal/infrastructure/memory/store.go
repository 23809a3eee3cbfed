// Package memory implementa los puertos de persistencia sobre mapas en
// memoria. Se usa en tests y permite levantar la API sin Postgres.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Store almacén en memoria. El estado es compartido por todos los adaptadores
// que expone; las transacciones se emulan con un mutex de transacción y
// snapshot/restore del estado completo, de modo que un error dentro del fn
// revierte todo el lote, igual que un ROLLBACK.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	seq        int64
	movements  []*entity.StockMovement
	stock      map[string]int64
	products   map[string]*entity.Product
	categories map[string]*entity.Category
	suppliers  map[string]*entity.Supplier
	users      map[string]*entity.User
	purchases  map[string]*entity.Purchase
	sales      map[string]*entity.Sale
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		stock:      make(map[string]int64),
		products:   make(map[string]*entity.Product),
		categories: make(map[string]*entity.Category),
		suppliers:  make(map[string]*entity.Supplier),
		users:      make(map[string]*entity.User),
		purchases:  make(map[string]*entity.Purchase),
		sales:      make(map[string]*entity.Sale),
	}
}

// Accesores a los adaptadores por puerto.
func (s *Store) Movements() repository.MovementRepository   { return &movementRepo{s: s} }
func (s *Store) Stock() repository.StockRepository          { return &stockRepo{s: s} }
func (s *Store) Products() repository.ProductRepository     { return &productRepo{s: s} }
func (s *Store) Categories() repository.CategoryRepository  { return &categoryRepo{s: s} }
func (s *Store) Suppliers() repository.SupplierRepository   { return &supplierRepo{s: s} }
func (s *Store) Users() repository.UserRepository           { return &userRepo{s: s} }
func (s *Store) Purchases() repository.PurchaseRepository   { return &purchaseRepo{s: s} }
func (s *Store) Sales() repository.SaleRepository           { return &saleRepo{s: s} }
func (s *Store) Dashboard() repository.DashboardRepository  { return &dashboardRepo{s: s} }

// ---------------------------------------------------------------------------
// snapshot / restore

type snapshot struct {
	seq       int64
	movLen    int
	stock     map[string]int64
	products  map[string]*entity.Product
	purchases map[string]*entity.Purchase
	sales     map[string]*entity.Sale
}

// takeSnapshot captura el estado mutable por transacciones. Las entidades se
// guardan como punteros: los adaptadores nunca mutan in place, siempre
// reemplazan el puntero, así que copiar los mapas basta.
func (s *Store) takeSnapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := &snapshot{
		seq:       s.seq,
		movLen:    len(s.movements),
		stock:     make(map[string]int64, len(s.stock)),
		products:  make(map[string]*entity.Product, len(s.products)),
		purchases: make(map[string]*entity.Purchase, len(s.purchases)),
		sales:     make(map[string]*entity.Sale, len(s.sales)),
	}
	for k, v := range s.stock {
		snap.stock[k] = v
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.purchases {
		snap.purchases[k] = v
	}
	for k, v := range s.sales {
		snap.sales[k] = v
	}
	return snap
}

func (s *Store) restore(snap *snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = snap.seq
	s.movements = s.movements[:snap.movLen]
	s.stock = snap.stock
	s.products = snap.products
	s.purchases = snap.purchases
	s.sales = snap.sales
}

// runTx ejecuta fn con semántica todo-o-nada sobre el estado en memoria.
func (s *Store) runTx(fn func() error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.takeSnapshot()
	if err := fn(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Run implementa ledger.TxRunner.
func (s *Store) Run(
	ctx context.Context,
	fn func(repository.MovementRepository, repository.StockRepository, repository.ProductRepository) error,
) error {
	return s.runTx(func() error {
		return fn(s.Movements(), s.Stock(), s.Products())
	})
}

// RunPurchase implementa purchases.TxRunner.
func (s *Store) RunPurchase(
	ctx context.Context,
	fn func(repository.MovementRepository, repository.StockRepository, repository.ProductRepository, repository.PurchaseRepository) error,
) error {
	return s.runTx(func() error {
		return fn(s.Movements(), s.Stock(), s.Products(), s.Purchases())
	})
}

// RunSale implementa sales.TxRunner.
func (s *Store) RunSale(
	ctx context.Context,
	fn func(repository.MovementRepository, repository.StockRepository, repository.ProductRepository, repository.SaleRepository) error,
) error {
	return s.runTx(func() error {
		return fn(s.Movements(), s.Stock(), s.Products(), s.Sales())
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
