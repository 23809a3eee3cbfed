package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD de productos. El stock nunca se toca
// aquí: cambia únicamente a través del ledger de movimientos.
type ProductUseCase struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
}

// NewProductUseCase construye el caso de uso de productos.
func NewProductUseCase(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
	}
}

// Create registra un producto nuevo con stock inicial cero.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if existing, _ := uc.productRepo.GetBySKU(ctx, in.SKU); existing != nil {
		return nil, domain.ErrDuplicate
	}
	if _, err := uc.categoryRepo.GetByID(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if in.SupplierID != "" {
		if _, err := uc.supplierRepo.GetByID(ctx, in.SupplierID); err != nil {
			return nil, err
		}
	}
	if in.CostPrice.IsNegative() || in.SellingPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          in.SKU,
		Barcode:      in.Barcode,
		Name:         in.Name,
		Description:  in.Description,
		CategoryID:   in.CategoryID,
		SupplierID:   in.SupplierID,
		CostPrice:    in.CostPrice,
		SellingPrice: in.SellingPrice,
		MinStock:     in.MinStock,
		MaxStock:     in.MaxStock,
		Unit:         in.Unit,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto con su stock vivo.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// Update modifica los datos descriptivos del producto. current_stock no es
// editable por esta vía.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := uc.categoryRepo.GetByID(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if in.SupplierID != "" {
		if _, err := uc.supplierRepo.GetByID(ctx, in.SupplierID); err != nil {
			return nil, err
		}
	}
	if in.CostPrice.IsNegative() || in.SellingPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	product.Barcode = in.Barcode
	product.Name = in.Name
	product.Description = in.Description
	product.CategoryID = in.CategoryID
	product.SupplierID = in.SupplierID
	product.CostPrice = in.CostPrice
	product.SellingPrice = in.SellingPrice
	product.MinStock = in.MinStock
	product.MaxStock = in.MaxStock
	product.Unit = in.Unit
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.UpdatedAt = time.Now()

	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// List lista productos con filtros y paginación.
func (uc *ProductUseCase) List(ctx context.Context, filters dto.ProductFiltersRequest, page dto.PageRequest) ([]*dto.ProductResponse, error) {
	page.DefaultPage()
	products, err := uc.productRepo.List(ctx, repository.ProductFilters{
		Search:     filters.Search,
		CategoryID: filters.CategoryID,
		SupplierID: filters.SupplierID,
		LowStock:   filters.LowStock,
		OutOfStock: filters.OutOfStock,
	}, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ToProductResponse(p))
	}
	return out, nil
}

// Deactivate marca el producto como inactivo (soft delete). El historial de
// movimientos se conserva.
func (uc *ProductUseCase) Deactivate(ctx context.Context, id string) error {
	if _, err := uc.productRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return uc.productRepo.Deactivate(ctx, id)
}

// ToProductResponse mapea la entidad a su DTO, derivando las banderas de
// stock del valor vivo.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Barcode:      p.Barcode,
		Name:         p.Name,
		Description:  p.Description,
		CategoryID:   p.CategoryID,
		SupplierID:   p.SupplierID,
		CostPrice:    p.CostPrice,
		SellingPrice: p.SellingPrice,
		MinStock:     p.MinStock,
		MaxStock:     p.MaxStock,
		CurrentStock: p.CurrentStock,
		Unit:         p.Unit,
		IsActive:     p.IsActive,
		LowStock:     p.IsLowStock(),
		OutOfStock:   p.IsOutOfStock(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
