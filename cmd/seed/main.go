// seed puebla la base con datos mínimos de arranque: un usuario ADMIN, una
// categoría y un proveedor de ejemplo. Idempotente: si el admin ya existe no
// hace nada.
//
// Uso: go run ./cmd/seed
// Variables: las mismas de la API (DATABASE_URL o DB_*), más
// SEED_ADMIN_EMAIL y SEED_ADMIN_PASSWORD.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/almacen-api/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	email := getenv("SEED_ADMIN_EMAIL", "admin@almacen.local")
	password := getenv("SEED_ADMIN_PASSWORD", "")
	if password == "" {
		fmt.Fprintln(os.Stderr, "SEED_ADMIN_PASSWORD es obligatorio")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	if existing, err := userRepo.FindByEmail(ctx, email); err == nil && existing != nil {
		fmt.Printf("admin %s ya existe, nada que hacer\n", email)
		return
	} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		fmt.Fprintf(os.Stderr, "buscar admin: %v\n", err)
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash de password: %v\n", err)
		os.Exit(1)
	}
	now := time.Now()
	admin := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Administrador",
		Role:         entity.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		fmt.Fprintf(os.Stderr, "crear admin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("admin %s creado\n", email)

	categoryRepo := postgres.NewCategoryRepository(pool)
	category := &entity.Category{
		ID:          uuid.New().String(),
		Name:        "General",
		Description: "Categoría por defecto",
		Color:       "#607d8b",
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			fmt.Println("categoría General ya existe")
		} else {
			fmt.Fprintf(os.Stderr, "crear categoría: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println("categoría General creada")
	}

	supplierRepo := postgres.NewSupplierRepository(pool)
	supplier := &entity.Supplier{
		ID:        uuid.New().String(),
		Name:      "Proveedor genérico",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := supplierRepo.Create(ctx, supplier); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			fmt.Println("proveedor genérico ya existe")
		} else {
			fmt.Fprintf(os.Stderr, "crear proveedor: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println("proveedor genérico creado")
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
