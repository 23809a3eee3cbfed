package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL
// (usable con pool o tx). CurrentStock se resuelve con LEFT JOIN a la tabla
// stock en cada lectura; ninguna consulta de este adaptador lo escribe.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productSelect = `
	SELECT p.id, p.sku, p.barcode, p.name, p.description, p.category_id,
	       COALESCE(p.supplier_id, ''), p.cost_price, p.selling_price,
	       p.min_stock, p.max_stock, COALESCE(s.quantity, 0), p.unit,
	       p.is_active, p.created_at, p.updated_at
	FROM products p
	LEFT JOIN stock s ON s.product_id = p.id`

// Create persiste un nuevo producto. El stock no se inserta aquí: nace en
// cero cuando el primer movimiento lo toca.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, barcode, name, description, category_id, supplier_id, cost_price, selling_price, min_stock, max_stock, unit, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Barcode, product.Name, product.Description,
		product.CategoryID, product.SupplierID, product.CostPrice, product.SellingPrice,
		product.MinStock, product.MaxStock, product.Unit, product.IsActive,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID con su stock vivo.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := productSelect + ` WHERE p.id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	query := productSelect + ` WHERE p.sku = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sku %s: %w", sku, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// Update actualiza los datos descriptivos. No toca el stock: eso es del ledger.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET barcode = $2, name = $3, description = $4, category_id = $5,
		    supplier_id = NULLIF($6, ''), cost_price = $7, selling_price = $8,
		    min_stock = $9, max_stock = $10, unit = $11, is_active = $12, updated_at = $13
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.Barcode, product.Name, product.Description,
		product.CategoryID, product.SupplierID, product.CostPrice, product.SellingPrice,
		product.MinStock, product.MaxStock, product.Unit, product.IsActive, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos con filtros y paginación. Los predicados de stock
// bajo/agotado se evalúan contra el JOIN vivo, nunca contra columnas derivadas.
func (r *ProductRepo) List(ctx context.Context, filters repository.ProductFilters, limit, offset int) ([]*entity.Product, error) {
	query := productSelect + `
		WHERE ($1 = '' OR p.name ILIKE '%' || $1 || '%' OR p.sku ILIKE '%' || $1 || '%' OR p.barcode ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR p.category_id = $2::uuid)
		  AND ($3 = '' OR p.supplier_id = $3::uuid)
		  AND (NOT $4 OR (COALESCE(s.quantity, 0) > 0 AND COALESCE(s.quantity, 0) <= p.min_stock))
		  AND (NOT $5 OR COALESCE(s.quantity, 0) = 0)
		ORDER BY p.name ASC
		LIMIT $6 OFFSET $7`
	rows, err := r.q.Query(ctx, query,
		filters.Search, filters.CategoryID, filters.SupplierID,
		filters.LowStock, filters.OutOfStock, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Deactivate marca el producto como inactivo (soft delete).
func (r *ProductRepo) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE products SET is_active = false, updated_at = now() WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Description, &p.CategoryID,
		&p.SupplierID, &p.CostPrice, &p.SellingPrice, &p.MinStock, &p.MaxStock,
		&p.CurrentStock, &p.Unit, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
