package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/dashboard"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/application/purchases"
	"github.com/jhoicas/almacen-api/internal/application/sales"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ProductUC   *usecase.ProductUseCase
	CategoryUC  *usecase.CategoryUseCase
	SupplierUC  *usecase.SupplierUseCase
	UserUC      *usecase.UserUseCase
	Engine      *ledger.Engine
	PurchaseUC  *purchases.UseCase
	SaleUC      *sales.UseCase
	DashboardUC *dashboard.UseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
//
// RBAC: VIEWER solo lee; USER opera stock, compras y ventas; MANAGER además
// administra el catálogo; ADMIN administra usuarios.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	operator := RequireRole(entity.RoleAdmin, entity.RoleManager, entity.RoleUser)
	manager := RequireRole(entity.RoleAdmin, entity.RoleManager)
	admin := RequireRole(entity.RoleAdmin)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", manager, productHandler.Create)
	products.Put("/:id", manager, productHandler.Update)
	products.Delete("/:id", manager, productHandler.Deactivate)

	// Categories
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Post("/", manager, categoryHandler.Create)
	categories.Put("/:id", manager, categoryHandler.Update)
	categories.Delete("/:id", manager, categoryHandler.Deactivate)

	// Suppliers
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Post("/", manager, supplierHandler.Create)
	suppliers.Put("/:id", manager, supplierHandler.Update)
	suppliers.Delete("/:id", manager, supplierHandler.Deactivate)

	// Stock: ledger de movimientos
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.Engine, deps.DashboardUC)
	stock.Get("/:productId", stockHandler.GetStock)
	stock.Get("/:productId/movements", stockHandler.GetHistory)
	stock.Post("/movements", operator, stockHandler.RegisterMovement)
	stock.Post("/rebuild/:productId", manager, stockHandler.Rebuild)

	// Purchases
	purchasesGroup := protected.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.PurchaseUC, deps.DashboardUC)
	purchasesGroup.Get("/", purchaseHandler.List)
	purchasesGroup.Get("/:id", purchaseHandler.GetByID)
	purchasesGroup.Post("/", operator, purchaseHandler.Create)
	purchasesGroup.Post("/:id/approve", manager, purchaseHandler.Approve)
	purchasesGroup.Post("/:id/cancel", manager, purchaseHandler.Cancel)
	purchasesGroup.Post("/:id/receive", operator, purchaseHandler.Receive)
	purchasesGroup.Post("/:id/return", manager, purchaseHandler.Return)

	// Sales
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC, deps.DashboardUC)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Post("/", operator, saleHandler.Create)
	salesGroup.Post("/:id/complete", operator, saleHandler.Complete)
	salesGroup.Post("/:id/cancel", operator, saleHandler.Cancel)
	salesGroup.Post("/:id/refund", manager, saleHandler.Refund)

	// Dashboard
	dash := protected.Group("/dashboard")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dash.Get("/stats", dashboardHandler.Stats)
	dash.Get("/low-stock", dashboardHandler.LowStock)
	dash.Get("/out-of-stock", dashboardHandler.OutOfStock)

	// Users (solo ADMIN)
	users := protected.Group("/users", admin)
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
}
