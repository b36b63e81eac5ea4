//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/emberline-pos/api/internal/database"
	mw "github.com/emberline-pos/api/internal/middleware"
	"github.com/emberline-pos/api/internal/router"
	"github.com/emberline-pos/api/internal/session"
)

// TestIntegrationFlow exercises the full stack against a real PostgreSQL
// database: seed staff, PIN login, order creation with persisted totals,
// the kitchen view, and concurrent order numbering.
func TestIntegrationFlow(t *testing.T) {
	ctx := context.Background()

	connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	if err := database.Migrate(connStr); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	queries := database.New(pool)
	sessions := session.NewStore(12 * time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	server := httptest.NewServer(router.New(queries, pool, sessions, logger))
	defer server.Close()

	// --- 1. Seed an admin and a server directly (bootstrap) ---
	adminID := seedStaff(t, ctx, pool, "1234", "Admin User", "admin", map[string]bool{
		"pos": true, "inventory": true, "reports": true, "staff": true, "settings": true,
	})
	seedStaff(t, ctx, pool, "2222", "Sarah Staff", "staff", map[string]bool{"pos": true})
	seedProducts(t, ctx, pool)

	// --- 2. Login with a wrong PIN, then the right one ---
	if status := loginStatus(t, server, "9999"); status != http.StatusUnauthorized {
		t.Fatalf("wrong pin login: status %d, want 401", status)
	}
	cookie := login(t, server, "2222")

	// --- 3. last_login is stamped asynchronously ---
	waitForLastLogin(t, ctx, pool, "Sarah Staff")

	// --- 4. Create an order through the API ---
	orderResp := httpPostJSON(t, server, "/api/orders", map[string]any{
		"table":      "5",
		"order_type": "dine-in",
		"items": []map[string]any{
			{"id": 1, "name": "Classic Burger", "price": 12.99},
			{"id": 3, "name": "French Fries", "price": 4.99},
		},
	}, cookie)
	if orderResp["total_amount"].(string) != "19.51" {
		t.Fatalf("total_amount = %v, want 19.51", orderResp["total_amount"])
	}
	orderNumber := orderResp["order_number"].(string)
	if !strings.HasPrefix(orderNumber, "ORD-") {
		t.Fatalf("order_number = %q", orderNumber)
	}

	// --- 5. Totals and attribution persisted, one row per item unit ---
	var subtotal, tax, total string
	var createdByName string
	var itemCount int
	err = pool.QueryRow(ctx, `
		SELECT o.subtotal::text, o.tax_amount::text, o.total_amount::text, o.created_by_name,
		       (SELECT count(*) FROM order_items i WHERE i.order_id = o.id)
		FROM orders o WHERE o.order_number = $1`, orderNumber,
	).Scan(&subtotal, &tax, &total, &createdByName, &itemCount)
	if err != nil {
		t.Fatalf("read back order: %v", err)
	}
	if subtotal != "17.98" || tax != "1.53" || total != "19.51" {
		t.Fatalf("persisted totals = %s/%s/%s", subtotal, tax, total)
	}
	if createdByName != "Sarah Staff" {
		t.Fatalf("created_by_name = %q", createdByName)
	}
	if itemCount != 2 {
		t.Fatalf("item rows = %d, want 2", itemCount)
	}

	// --- 6. Kitchen view shows the new order, no session needed ---
	kitchen := httpGetJSON(t, server, "/api/kitchen-orders", nil)
	orders := kitchen["orders"].([]any)
	if len(orders) != 1 {
		t.Fatalf("kitchen orders = %d, want 1", len(orders))
	}

	// --- 7. Concurrent order creation: distinct order numbers ---
	const workers = 8
	numbers := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := httpPostJSON(t, server, "/api/orders", map[string]any{
				"items": []map[string]any{{"id": 5, "name": "Soda", "price": 1.99}},
			}, cookie)
			numbers <- resp["order_number"].(string)
		}()
	}
	wg.Wait()
	close(numbers)
	seen := map[string]bool{}
	for n := range numbers {
		if seen[n] {
			t.Fatalf("duplicate order number %s", n)
		}
		seen[n] = true
	}

	// --- 8. Staff management: create, then login as the new hire ---
	adminCookie := login(t, server, "1234")
	created := httpPostJSON(t, server, "/api/auth/staff/", map[string]any{
		"pin":         "7777",
		"name":        "New Server",
		"role":        "staff",
		"permissions": map[string]bool{"pos": true},
	}, adminCookie)
	if created["success"] != true {
		t.Fatalf("create staff: %v", created)
	}
	login(t, server, "7777")

	// Duplicate PIN is rejected.
	if status := postStatus(t, server, "/api/auth/staff/", map[string]any{
		"pin": "2222", "name": "Impostor", "role": "staff",
	}, adminCookie); status != http.StatusConflict {
		t.Fatalf("duplicate pin: status %d, want 409", status)
	}

	t.Logf("integration flow passed: admin=%d, order=%s", adminID, orderNumber)
}

// --- Setup helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("pos"),
		tcpostgres.WithPassword("pos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}
	return connStr, cleanup
}

func seedStaff(t *testing.T, ctx context.Context, pool *pgxpool.Pool, pin, name, role string, perms map[string]bool) int64 {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	permsJSON, err := json.Marshal(perms)
	if err != nil {
		t.Fatalf("marshal permissions: %v", err)
	}

	var id int64
	err = pool.QueryRow(ctx, `
		INSERT INTO staff (pin_hash, name, role, permissions, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id`,
		string(hash), name, role, permsJSON,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed staff %s: %v", name, err)
	}
	return id
}

func seedProducts(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(ctx, `
		INSERT INTO products (name, price, category, is_available) VALUES
		('Classic Burger', 12.99, 'Mains', true),
		('French Fries', 4.99, 'Sides', true),
		('Soda', 1.99, 'Drinks', true)`)
	if err != nil {
		t.Fatalf("seed products: %v", err)
	}
}

func waitForLastLogin(t *testing.T, ctx context.Context, pool *pgxpool.Pool, name string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var stamped bool
		err := pool.QueryRow(ctx,
			`SELECT last_login IS NOT NULL FROM staff WHERE name = $1`, name,
		).Scan(&stamped)
		if err != nil {
			t.Fatalf("check last_login: %v", err)
		}
		if stamped {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("last_login was never stamped")
}

// --- HTTP helpers ---

func login(t *testing.T, server *httptest.Server, pin string) *http.Cookie {
	t.Helper()

	resp, err := http.Post(server.URL+"/api/auth/login", "application/json",
		strings.NewReader(fmt.Sprintf(`{"pin":%q}`, pin)))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login as %s: status %d", pin, resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == mw.SessionCookie {
			return c
		}
	}
	t.Fatal("login set no session cookie")
	return nil
}

func loginStatus(t *testing.T, server *httptest.Server, pin string) int {
	t.Helper()
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json",
		strings.NewReader(fmt.Sprintf(`{"pin":%q}`, pin)))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func httpPostJSON(t *testing.T, server *httptest.Server, path string, body map[string]any, cookie *http.Cookie) map[string]any {
	t.Helper()

	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest("POST", server.URL+path, bytes.NewReader(b))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]any
		json.NewDecoder(resp.Body).Decode(&errResp)
		t.Fatalf("POST %s: status %d, body: %v", path, resp.StatusCode, errResp)
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}

func postStatus(t *testing.T, server *httptest.Server, path string, body map[string]any, cookie *http.Cookie) int {
	t.Helper()

	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest("POST", server.URL+path, bytes.NewReader(b))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func httpGetJSON(t *testing.T, server *httptest.Server, path string, cookie *http.Cookie) map[string]any {
	t.Helper()

	req, err := http.NewRequest("GET", server.URL+path, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]any
		json.NewDecoder(resp.Body).Decode(&errResp)
		t.Fatalf("GET %s: status %d, body: %v", path, resp.StatusCode, errResp)
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}
