// Command createadmin bootstraps the first admin account.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/qaforge/qaforge/internal/adapter/persistence"
	"github.com/qaforge/qaforge/internal/auth"
	"github.com/qaforge/qaforge/internal/config"
	"github.com/qaforge/qaforge/internal/domain"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: createadmin <email> <password> [name]")
		os.Exit(2)
	}
	email := os.Args[1]
	password := os.Args[2]
	name := "Administrator"
	if len(os.Args) > 3 {
		name = os.Args[3]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	users := persistence.NewPostgresUserRepository(db)

	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		log.Fatalf("failed to check existing user: %v", err)
	}
	if existing != nil {
		log.Fatalf("user %s already exists", email)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	admin := domain.NewUser(email, name, hash, domain.UserRoleAdmin)
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}

	fmt.Printf("admin user created: %s (%s)\n", email, admin.ID)
}
