// Seeds the database with the demo staff roster (bcrypt-hashed PINs) and
// the demo menu. Safe to run once against a fresh database; refuses to
// touch a database that already has staff.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/emberline-pos/api/internal/config"
	"github.com/emberline-pos/api/internal/database"
	"github.com/emberline-pos/api/internal/demo"
)

func main() {
	envPath := flag.String("env", ".env", "path to .env file")
	flag.Parse()

	cfg, err := config.Load(*envPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(cfg.DatabaseURL()); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var existing int64
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM staff`).Scan(&existing); err != nil {
		log.Fatalf("count staff: %v", err)
	}
	if existing > 0 {
		log.Printf("staff table already has %d rows, nothing to do", existing)
		return
	}

	for _, pin := range demo.PINs() {
		st, _ := demo.StaffByPIN(pin)
		hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash pin: %v", err)
		}
		if _, err := pool.Exec(ctx, `
			INSERT INTO staff (pin_hash, name, email, role, permissions)
			VALUES ($1, $2, $3, $4, $5)`,
			string(hash), st.Name, st.Email, st.Role, st.Permissions,
		); err != nil {
			log.Fatalf("insert staff %s: %v", st.Name, err)
		}
		log.Printf("seeded staff %s (%s), PIN %s", st.Name, st.Role, pin)
	}

	for _, p := range demo.Products() {
		if _, err := pool.Exec(ctx, `
			INSERT INTO products (name, price, category)
			VALUES ($1, $2, $3)`,
			p.Name, p.Price, p.Category,
		); err != nil {
			log.Fatalf("insert product %s: %v", p.Name, err)
		}
	}
	log.Printf("seeded %d products", len(demo.Products()))
}
