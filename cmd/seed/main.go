// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"opsboard/internal/core/timeperiod"
	"opsboard/internal/domain/auth"
	"opsboard/internal/infrastructure/storage/postgres"
	"opsboard/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@opsboard.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID int64
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var userID int64
	err = pool.Pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, role, created_at)
		VALUES ($1, $2, 'Administrator', $3, now())
		RETURNING id
	`, adminEmail, string(passwordHash), auth.RoleAdmin).Scan(&userID)
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", userID)
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	// 1. Categories
	categories := []string{
		"Кофе и чай",
		"Выпечка",
		"Молочные продукты",
		"Бакалея",
		"Хозтовары",
	}

	categoryIDs := make(map[string]int64)

	for _, name := range categories {
		var catID int64
		err := pool.Pool.QueryRow(ctx, `
			INSERT INTO categories (name, created_at, updated_at)
			VALUES ($1, now(), now())
			ON CONFLICT (name) DO UPDATE SET updated_at = now()
			RETURNING id
		`, name).Scan(&catID)
		if err != nil {
			log.Warnw("failed to seed category", "name", name, "error", err)
			continue
		}
		categoryIDs[name] = catID
	}

	// 2. Products
	type productSeed struct {
		name     string
		category string
		article  string
		purchase string
		sale     string
		remains  int
		minStock *int
	}

	five := 5
	ten := 10
	two := 2

	products := []productSeed{
		{"Кофе зерновой 1кг", "Кофе и чай", "COF-001", "850.00", "1490.00", 24, &five},
		{"Чай черный листовой", "Кофе и чай", "TEA-001", "210.00", "390.00", 40, &ten},
		{"Круассан с миндалем", "Выпечка", "BAK-001", "45.00", "120.00", 8, &ten},
		{"Хлеб бородинский", "Выпечка", "BAK-002", "28.00", "65.00", 15, nil},
		{"Молоко 3.2% 1л", "Молочные продукты", "MLK-001", "52.00", "89.00", 30, &ten},
		{"Сыр твердый 300г", "Молочные продукты", "MLK-002", "240.00", "420.00", 6, &five},
		{"Рис длиннозерный 900г", "Бакалея", "GRC-001", "78.00", "135.00", 50, nil},
		{"Макароны 450г", "Бакалея", "GRC-002", "42.00", "79.00", 0, &five},
		{"Средство для мытья посуды", "Хозтовары", "HSH-001", "95.00", "189.00", 12, &two},
		{"Губки кухонные 5шт", "Хозтовары", "HSH-002", "35.00", "75.00", 2, &two},
	}

	productIDs := make([]int64, 0, len(products))
	salePrices := make([]string, 0, len(products))

	for _, p := range products {
		catID, ok := categoryIDs[p.category]
		if !ok {
			log.Warnw("category missing for product", "product", p.name, "category", p.category)
			continue
		}
		var prodID int64
		err := pool.Pool.QueryRow(ctx, `
			INSERT INTO products (
				name, category_id, article_number,
				purchase_price, sale_price, remains, min_stock,
				created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
			ON CONFLICT (article_number) DO UPDATE SET updated_at = now()
			RETURNING id
		`, p.name, catID, p.article, p.purchase, p.sale, p.remains, p.minStock).Scan(&prodID)
		if err != nil {
			log.Warnw("failed to seed product", "name", p.name, "error", err)
			continue
		}
		productIDs = append(productIDs, prodID)
		salePrices = append(salePrices, p.sale)
	}

	// 3. Sales over the trailing year. Skipped when sales already exist so
	// the seeder stays idempotent.
	var saleCount int64
	if err := pool.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales`).Scan(&saleCount); err != nil {
		return fmt.Errorf("count sales: %w", err)
	}

	if saleCount > 0 {
		log.Infow("sales already present, skipping sale seeding", "count", saleCount)
	} else if len(productIDs) > 0 {
		rng := rand.New(rand.NewSource(42))
		now := timeperiod.AnchorNow()
		inserted := 0

		for daysAgo := 365; daysAgo >= 0; daysAgo-- {
			date := now.AddDate(0, 0, -daysAgo)
			// Busier days closer to the present.
			salesToday := rng.Intn(3)
			if daysAgo < 30 {
				salesToday = 1 + rng.Intn(4)
			}
			for i := 0; i < salesToday; i++ {
				idx := rng.Intn(len(productIDs))
				qty := 1 + rng.Intn(5)
				_, err := pool.Pool.Exec(ctx, `
					INSERT INTO sales (sale_date, product_id, quantity_sold, total_price, created_at, updated_at)
					VALUES ($1, $2, $3, $4::numeric * $3, now(), now())
				`, date, productIDs[idx], qty, salePrices[idx])
				if err != nil {
					log.Warnw("failed to seed sale", "date", date, "error", err)
					continue
				}
				inserted++
			}
		}
		log.Infow("sales seeded", "count", inserted)
	}

	// 4. Tasks
	var taskCount int64
	if err := pool.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&taskCount); err != nil {
		return fmt.Errorf("count tasks: %w", err)
	}

	if taskCount > 0 {
		log.Infow("tasks already present, skipping task seeding", "count", taskCount)
		return nil
	}

	now := timeperiod.AnchorNow()
	executor := "Мария"
	executor2 := "Сергей"

	tasks := []struct {
		title    string
		status   string
		priority string
		executor *string
		deadline time.Time
	}{
		{"Заказать кофе у поставщика", "pending", "high", &executor, now.AddDate(0, 0, 2)},
		{"Провести инвентаризацию склада", "in_progress", "medium", &executor2, now.AddDate(0, 0, 7)},
		{"Обновить ценники в зале", "completed", "low", &executor, now.AddDate(0, 0, -1)},
		{"Продлить договор аренды", "pending", "high", nil, now.AddDate(0, 1, 0)},
		{"Списать просроченную выпечку", "completed", "medium", &executor2, now.AddDate(0, 0, -3)},
		{"Настроить акцию на молочные продукты", "pending", "medium", nil, now.AddDate(0, 0, 5)},
	}

	for _, t := range tasks {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO tasks (title, deadline, status, priority, executor, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, t.title, t.deadline, t.status, t.priority, t.executor)
		if err != nil {
			log.Warnw("failed to seed task", "title", t.title, "error", err)
		}
	}

	log.Infow("tasks seeded", "count", len(tasks))
	return nil
}
