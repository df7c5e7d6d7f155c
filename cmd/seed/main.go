package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	defaultDSN := os.Getenv("DATABASE_URL")
	dsn := flag.String("dsn", defaultDSN, "database url")
	withTestData := flag.Bool("test-data", false, "also create sample users")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("DSN required via flag -dsn or DATABASE_URL env")
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Cannot ping DB:", err)
	}

	seedAdmin(db)

	if *withTestData {
		seedTestUsers(db)
	}
}

func seedAdmin(db *sql.DB) {
	email := "admin@authgate.local"
	password := "password"

	if envEmail := os.Getenv("DB_ADMIN_EMAIL"); envEmail != "" {
		email = envEmail
	}

	if envPass := os.Getenv("DB_ADMIN_PASSWORD"); envPass != "" {
		password = envPass
	}

	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	query := `
		INSERT INTO users (email, full_name, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET password_hash = excluded.password_hash, updated_at = now();
	`

	if _, err := db.Exec(query, email, "Admin", string(hashed)); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	fmt.Printf("✅ Admin Seeded!\n   User: %s\n   Pass: %s\n", email, password)
}

func seedTestUsers(db *sql.DB) {
	users := []struct {
		email    string
		fullName string
	}{
		{"alice@example.com", "Alice Example"},
		{"bob@example.com", "Bob Example"},
		{"carol@example.com", "Carol Example"},
	}

	hashed, _ := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.DefaultCost)

	query := `
		INSERT INTO users (email, full_name, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING;
	`

	for _, u := range users {
		if _, err := db.Exec(query, u.email, u.fullName, string(hashed)); err != nil {
			log.Fatalf("Failed to seed test user %s: %v", u.email, err)
		}
	}

	fmt.Printf("✅ %d test users seeded (password: testpassword123)\n", len(users))
}
